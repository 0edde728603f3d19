package state

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rejoin/internal/fileutil"
)

const (
	processedFile = "processed.txt"
	chainsFile    = "chains.txt"
)

// TextStore keeps state in two line-oriented files. processed.txt holds one
// path per line; chains.txt holds one CSV record per chain, which for plain
// paths is simply the members joined by commas.
type TextStore struct {
	dir string
}

// OpenText returns a text store rooted at dir, creating dir if needed.
func OpenText(dir string) (*TextStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &TextStore{dir: dir}, nil
}

func (s *TextStore) processedPath() string { return filepath.Join(s.dir, processedFile) }
func (s *TextStore) chainsPath() string    { return filepath.Join(s.dir, chainsFile) }

func (s *TextStore) Location() string { return s.dir }

func (s *TextStore) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st := New()

	processed, err := readLines(s.processedPath())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", processedFile, err)
	}
	for _, path := range processed {
		st.MarkProcessed(path)
	}

	chains, err := readChains(s.chainsPath())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", chainsFile, err)
	}
	st.Chains = chains
	return st, nil
}

func (s *TextStore) SaveProcessed(ctx context.Context, paths []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, path := range paths {
		if strings.ContainsAny(path, "\r\n") {
			return fmt.Errorf("save %s: path %q contains a line break", processedFile, path)
		}
		buf.WriteString(path)
		buf.WriteByte('\n')
	}
	if err := fileutil.WriteFileAtomic(s.processedPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", processedFile, err)
	}
	return nil
}

func (s *TextStore) SaveChains(ctx context.Context, chains []Chain) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, chain := range chains {
		if err := w.Write(chain); err != nil {
			return fmt.Errorf("encode chain: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode chains: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.chainsPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", chainsFile, err)
	}
	return nil
}

func (s *TextStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, path := range []string{s.processedPath(), s.chainsPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func (s *TextStore) Close() error { return nil }

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func readChains(path string) ([]Chain, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false

	var chains []Chain
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		chain := make(Chain, 0, len(record))
		for _, member := range record {
			if member == "" {
				continue
			}
			chain = append(chain, member)
		}
		if len(chain) > 0 {
			chains = append(chains, chain)
		}
	}
	return chains, nil
}
