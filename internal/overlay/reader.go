package overlay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"

	"rejoin/internal/frames"
	"rejoin/internal/logging"
	"rejoin/internal/ocr"
	"rejoin/internal/progress"
	"rejoin/internal/timecode"
)

var (
	// ErrNoReading means no frame in the window produced a valid reading.
	ErrNoReading = errors.New("no clock reading in window")
	// ErrWindowExceedsLength means the window asks for more frames than the clip has.
	ErrWindowExceedsLength = errors.New("window exceeds clip length")
)

// Reader extracts the clock reading from a window of frames.
type Reader struct {
	Frames   frames.Source
	OCR      ocr.Engine
	Region   image.Rectangle
	Reporter progress.Reporter
	Logger   *slog.Logger
}

// NewReader wires a reader. A nil reporter disables progress and a nil
// logger discards diagnostics.
func NewReader(source frames.Source, engine ocr.Engine, region image.Rectangle, reporter progress.Reporter, logger *slog.Logger) *Reader {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Reader{
		Frames:   source,
		OCR:      engine,
		Region:   region,
		Reporter: reporter,
		Logger:   logging.NewComponentLogger(logger, "overlay"),
	}
}

// ReadTime returns the dominant reading over the window. A window >= 0 covers
// frames [0, window); a negative window covers the last |window| frames.
func (r *Reader) ReadTime(ctx context.Context, path string, window int) (timecode.Reading, error) {
	logger := r.logger().With(logging.String(logging.FieldFile, path), logging.Int(logging.FieldWindow, window))

	clip, err := r.Frames.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = clip.Close() }()

	total := clip.TotalFrames()
	start, count, err := windowRange(window, total)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if count == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoReading)
	}
	if start > 0 {
		if err := clip.Seek(start); err != nil {
			return "", fmt.Errorf("seek %s to frame %d: %w", path, start, err)
		}
	}

	reporter := r.reporter()
	reporter.Start(path, count)
	defer reporter.Finish()

	var tally timecode.Tally
	for offset := 0; offset < count; offset++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		index := start + offset
		img, err := clip.Next(ctx)
		if errors.Is(err, io.EOF) {
			logger.Debug("clip ended before window", logging.Int(logging.FieldFrame, index))
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			logger.Warn("frame unreadable",
				logging.Int(logging.FieldFrame, index),
				logging.Error(err),
				logging.String(logging.FieldEventType, "frame_read_failed"))
			reporter.Update(offset + 1)
			continue
		}
		text, err := r.recognize(ctx, img)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			logger.Warn("clock recognition failed",
				logging.Int(logging.FieldFrame, index),
				logging.Error(err),
				logging.String(logging.FieldEventType, "ocr_failed"))
		} else if !tally.Add(text) {
			logger.Debug("discarded reading", logging.Int(logging.FieldFrame, index), logging.String("text", text))
		}
		reporter.Update(offset + 1)
	}

	reading, ok := tally.Mode()
	if !ok {
		return "", fmt.Errorf("%s: %w", path, ErrNoReading)
	}
	logger.Debug("clock vote",
		logging.String("reading", string(reading)),
		logging.Int("votes", tally.Counts()[reading]),
		logging.Int("valid", tally.Len()),
		logging.Strings("readings", tally.Distinct()))
	return reading, nil
}

func (r *Reader) recognize(ctx context.Context, img image.Image) (string, error) {
	cropped, err := Crop(img, r.Region)
	if err != nil {
		return "", err
	}
	return r.OCR.Recognize(ctx, cropped)
}

func (r *Reader) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

func (r *Reader) reporter() progress.Reporter {
	if r.Reporter == nil {
		return progress.Nop{}
	}
	return r.Reporter
}

func windowRange(window, total int) (start, count int, err error) {
	size := window
	if size < 0 {
		size = -size
	}
	if size > total {
		return 0, 0, fmt.Errorf("%w: window %d, %d frames", ErrWindowExceedsLength, window, total)
	}
	if window < 0 {
		return total - size, size, nil
	}
	return 0, size, nil
}

type subImager interface {
	SubImage(image.Rectangle) image.Image
}

// Crop returns the part of img inside region. An empty region returns img
// unchanged; a region that does not fit inside the frame is an error.
func Crop(img image.Image, region image.Rectangle) (image.Image, error) {
	if region.Empty() {
		return img, nil
	}
	bounds := img.Bounds()
	rect := region.Add(bounds.Min)
	if !rect.In(bounds) {
		return nil, fmt.Errorf("clock region %v outside frame %v", region, bounds)
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(rect), nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst, nil
}
