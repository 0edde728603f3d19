package scratch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rejoin/internal/logging"
)

// Result contains the outcome of a cleanup pass.
type Result struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// IsListFile reports whether name looks like a concat list written by merge.
func IsListFile(name string) bool {
	return strings.HasPrefix(name, "concat-") && strings.HasSuffix(name, ".txt")
}

// IsPartialFile reports whether name looks like an unfinished merge output.
func IsPartialFile(name string) bool {
	if !strings.HasPrefix(name, ".") {
		return false
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.HasSuffix(name, ".partial") || strings.HasSuffix(base, ".partial")
}

// CleanLists removes concat list files in scratchDir older than maxAge.
func CleanLists(ctx context.Context, scratchDir string, maxAge time.Duration, logger *slog.Logger) Result {
	return clean(ctx, scratchDir, maxAge, IsListFile, "concat list", logger)
}

// CleanPartials removes partial merge outputs in outputDir older than maxAge.
func CleanPartials(ctx context.Context, outputDir string, maxAge time.Duration, logger *slog.Logger) Result {
	return clean(ctx, outputDir, maxAge, IsPartialFile, "partial output", logger)
}

func clean(ctx context.Context, dir string, maxAge time.Duration, match func(string) bool, kind string, logger *slog.Logger) Result {
	result := Result{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.Type().IsRegular() || !match(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale "+kind,
					logging.String(logging.FieldFile, path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "scratch_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check directory permissions"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Info("removed stale "+kind,
				logging.String(logging.FieldFile, path),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "scratch_cleanup"),
			)
		}
	}

	return result
}
