// Package progress provides the reporter capability used while frames are
// scanned: a terminal progress bar, sampled log lines, or nothing at all.
package progress

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"rejoin/internal/config"
	"rejoin/internal/logging"
)

// Reporter receives progress for one bounded unit of work at a time.
type Reporter interface {
	Start(label string, total int)
	Update(done int)
	Finish()
}

// New picks a reporter for mode. ProgressAuto draws a bar when w is a
// terminal and falls back to sampled log lines otherwise.
func New(mode config.ProgressMode, logger *slog.Logger, w io.Writer) Reporter {
	switch mode {
	case config.ProgressNone:
		return Nop{}
	case config.ProgressBar:
		return NewBar(w)
	case config.ProgressLog:
		return NewLog(logger)
	default:
		if isTerminal(w) {
			return NewBar(w)
		}
		return NewLog(logger)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Nop discards progress.
type Nop struct{}

func (Nop) Start(string, int) {}
func (Nop) Update(int)        {}
func (Nop) Finish()           {}

// Bar draws a single-line progress bar.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func NewBar(w io.Writer) *Bar {
	if w == nil {
		w = os.Stderr
	}
	return &Bar{w: w}
}

func (b *Bar) Start(label string, total int) {
	b.Finish()
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *Bar) Update(done int) {
	if b.bar == nil {
		return
	}
	_ = b.bar.Set(done)
}

func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	b.bar = nil
}

// Log emits debug lines when the file changes and at quarter boundaries.
type Log struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	label   string
	total   int
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(25),
	}
}

func (l *Log) Start(label string, total int) {
	l.label = label
	l.total = total
	l.sampler.Reset()
}

func (l *Log) Update(done int) {
	percent := -1.0
	if l.total > 0 {
		percent = float64(done) * 100 / float64(l.total)
	}
	if !l.sampler.ShouldLog(percent, l.label) {
		return
	}
	l.logger.Debug("scanning frames",
		logging.String("label", l.label),
		logging.Int("done", done),
		logging.Int("total", l.total))
}

func (l *Log) Finish() {}
