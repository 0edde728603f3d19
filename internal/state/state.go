package state

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"rejoin/internal/config"
)

// ErrLocked is returned when another run holds the state lock.
var ErrLocked = errors.New("state directory is locked by another run")

// Chain is an ordered run of recordings that continue one another.
type Chain []string

// First returns the first member, or "" for an empty chain.
func (c Chain) First() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Last returns the last member, or "" for an empty chain.
func (c Chain) Last() string {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

// Clone returns a copy that does not share backing storage.
func (c Chain) Clone() Chain {
	return append(Chain(nil), c...)
}

// State is the in-memory form of the persisted run state.
type State struct {
	Processed map[string]struct{}
	Chains    []Chain
}

// New returns an empty state.
func New() *State {
	return &State{Processed: make(map[string]struct{})}
}

// IsProcessed reports whether path was already evaluated.
func (s *State) IsProcessed(path string) bool {
	_, ok := s.Processed[path]
	return ok
}

// MarkProcessed records path and reports whether it was new.
func (s *State) MarkProcessed(path string) bool {
	if s.Processed == nil {
		s.Processed = make(map[string]struct{})
	}
	if _, ok := s.Processed[path]; ok {
		return false
	}
	s.Processed[path] = struct{}{}
	return true
}

// ProcessedPaths returns the processed set in sorted order.
func (s *State) ProcessedPaths() []string {
	out := make([]string, 0, len(s.Processed))
	for path := range s.Processed {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Store loads and saves run state.
type Store interface {
	// Load returns the persisted state, or an empty state when nothing has
	// been saved yet.
	Load(ctx context.Context) (*State, error)
	SaveProcessed(ctx context.Context, paths []string) error
	SaveChains(ctx context.Context, chains []Chain) error
	// Reset discards everything persisted.
	Reset(ctx context.Context) error
	// Location describes where the state lives, for diagnostics.
	Location() string
	Close() error
}

// Open returns the store selected by cfg.State.Backend.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("state: config is required")
	}
	dir := cfg.Paths.StateDir
	switch cfg.State.Backend {
	case config.StateBackendSQLite:
		return OpenSQLite(dir)
	case config.StateBackendText, "":
		return OpenText(dir)
	default:
		return nil, fmt.Errorf("state: unsupported backend %q", cfg.State.Backend)
	}
}
