package chain

import (
	"context"
	"fmt"
	"log/slog"

	"rejoin/internal/logging"
	"rejoin/internal/timecode"
)

// TimeReader reads the dominant clock value over a signed frame window.
type TimeReader interface {
	ReadTime(ctx context.Context, path string, window int) (timecode.Reading, error)
}

// Decision is the outcome of comparing the tail of Left with the head of Right.
type Decision struct {
	Left    string
	Right   string
	Tail    timecode.Reading
	Head    timecode.Reading
	Diff    int
	Matched bool
	// Err is set when either clock could not be read; Matched is then false.
	Err error
}

// Unreadable reports whether the decision failed for lack of a reading.
func (d Decision) Unreadable() bool {
	return d.Err != nil
}

// Matcher compares clock readings across a file boundary.
type Matcher struct {
	Reader TimeReader
	Logger *slog.Logger
}

func NewMatcher(reader TimeReader, logger *slog.Logger) *Matcher {
	return &Matcher{Reader: reader, Logger: logging.NewComponentLogger(logger, "matcher")}
}

// Match reads the last |window| frames of a and the first |window| frames of
// b. The pair matches when the readings differ by at most tolerance seconds.
func (m *Matcher) Match(ctx context.Context, a, b string, window, tolerance int) Decision {
	if window < 0 {
		window = -window
	}
	d := Decision{Left: a, Right: b}
	logger := m.logger().With(logging.String("left", a), logging.String("right", b))

	tail, err := m.Reader.ReadTime(ctx, a, -window)
	if err != nil {
		d.Err = fmt.Errorf("read tail of %s: %w", a, err)
		logger.Info("pair not matched", logging.String("reason", "tail unreadable"), logging.Error(err))
		return d
	}
	d.Tail = tail

	head, err := m.Reader.ReadTime(ctx, b, window)
	if err != nil {
		d.Err = fmt.Errorf("read head of %s: %w", b, err)
		logger.Info("pair not matched",
			logging.String("tail", string(tail)),
			logging.String("reason", "head unreadable"),
			logging.Error(err))
		return d
	}
	d.Head = head

	diff, err := timecode.Diff(tail, head)
	if err != nil {
		d.Err = err
		return d
	}
	d.Diff = diff
	d.Matched = diff <= tolerance

	logger.Info("pair compared",
		logging.String("tail", string(tail)),
		logging.String("head", string(head)),
		logging.Int("diff_seconds", diff),
		logging.Int("tolerance_seconds", tolerance),
		logging.Bool("matched", d.Matched))
	return d
}

// Matches is Match reduced to its verdict.
func (m *Matcher) Matches(ctx context.Context, a, b string, window, tolerance int) bool {
	return m.Match(ctx, a, b, window, tolerance).Matched
}

func (m *Matcher) logger() *slog.Logger {
	if m.Logger == nil {
		return logging.NewNop()
	}
	return m.Logger
}
