package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rejoin/internal/logging"
	"rejoin/internal/state"
)

// PairMatcher decides whether b continues a.
type PairMatcher interface {
	Match(ctx context.Context, a, b string, window, tolerance int) Decision
}

// Options tunes a build.
type Options struct {
	Window    int
	Tolerance int
	UseCache  bool
	// RetryUnreadable keeps files whose decision failed for lack of a
	// reading out of the processed set, so a later run checks them again.
	RetryUnreadable bool
}

// Stats summarizes one build.
type Stats struct {
	Pairs     int
	Skipped   int
	Matched   int
	Unmatched int
	Failed    int
	Conflicts int
}

// Builder turns an ordered file list into chains.
type Builder struct {
	Matcher PairMatcher
	Store   state.Store
	State   *state.State
	Logger  *slog.Logger

	stats Stats
}

// NewBuilder returns a builder that updates st and persists it to store.
func NewBuilder(matcher PairMatcher, store state.Store, st *state.State, logger *slog.Logger) *Builder {
	if st == nil {
		st = state.New()
	}
	return &Builder{
		Matcher: matcher,
		Store:   store,
		State:   st,
		Logger:  logging.NewComponentLogger(logger, "chain"),
	}
}

// Stats returns counters for the most recent Build.
func (b *Builder) Stats() Stats { return b.stats }

// Build evaluates each adjacent pair of files once and returns the full
// chain registry, including chains found by earlier runs.
func (b *Builder) Build(ctx context.Context, files []string, opts Options) ([]state.Chain, error) {
	if b.Matcher == nil || b.Store == nil {
		return nil, errors.New("chain builder requires a matcher and a store")
	}
	if opts.Window == 0 {
		return nil, errors.New("chain build: window must be non-zero")
	}
	if opts.Tolerance < 0 {
		return nil, fmt.Errorf("chain build: negative tolerance %d", opts.Tolerance)
	}
	if b.State == nil {
		b.State = state.New()
	}
	b.stats = Stats{}
	logger := b.logger()

	if opts.UseCache {
		logger.Info("using processed cache", logging.Int("excluded", len(b.State.Processed)))
	}

	for i := 0; i+1 < len(files); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		left, right := files[i], files[i+1]
		if opts.UseCache && b.State.IsProcessed(left) {
			b.stats.Skipped++
			logger.Debug("pair skipped, already processed", logging.String(logging.FieldFile, left))
			continue
		}

		b.stats.Pairs++
		decision := b.Matcher.Match(ctx, left, right, opts.Window, opts.Tolerance)
		if decision.Err != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		switch {
		case decision.Matched:
			b.stats.Matched++
			if err := b.record(ctx, left, right); err != nil {
				return nil, err
			}
		case decision.Unreadable():
			b.stats.Failed++
		default:
			b.stats.Unmatched++
		}

		if !opts.UseCache {
			continue
		}
		if opts.RetryUnreadable && decision.Unreadable() {
			logger.Debug("left out of cache for retry", logging.String(logging.FieldFile, left))
			continue
		}
		if b.State.MarkProcessed(left) {
			if err := b.Store.SaveProcessed(ctx, b.State.ProcessedPaths()); err != nil {
				return nil, fmt.Errorf("persist processed set: %w", err)
			}
			logger.Debug("cache updated", logging.Int("excluded", len(b.State.Processed)))
		}
	}

	logger.Info("chain build complete",
		logging.Int("files", len(files)),
		logging.Int("pairs", b.stats.Pairs),
		logging.Int("skipped", b.stats.Skipped),
		logging.Int("matched", b.stats.Matched),
		logging.Int("unreadable", b.stats.Failed),
		logging.Int("chains", len(b.State.Chains)))
	return cloneChains(b.State.Chains), nil
}

func (b *Builder) record(ctx context.Context, left, right string) error {
	chains, outcome := link(b.State.Chains, left, right)
	logger := b.logger()
	switch outcome {
	case linkNone:
		return nil
	case linkConflict:
		b.stats.Conflicts++
		logger.Warn("match conflicts with existing chain, not linked",
			logging.String("left", left),
			logging.String("right", right),
			logging.String(logging.FieldEventType, "chain_conflict"))
		return nil
	}
	b.State.Chains = chains
	if err := b.Store.SaveChains(ctx, b.State.Chains); err != nil {
		return fmt.Errorf("persist chain registry: %w", err)
	}
	logger.Debug("chain registry updated",
		logging.String("left", left),
		logging.String("right", right),
		logging.String("outcome", outcome.String()),
		logging.Int("chains", len(b.State.Chains)))
	return nil
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return logging.NewNop()
	}
	return b.Logger
}
