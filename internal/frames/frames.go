package frames

import (
	"context"
	"errors"
	"image"
)

// ErrFrameRead marks a single frame that could not be decoded. Callers may
// skip the frame and keep reading.
var ErrFrameRead = errors.New("frame read failed")

// Source opens recordings for frame access.
type Source interface {
	Open(ctx context.Context, path string) (Clip, error)
}

// Clip is an open recording positioned at a frame index.
type Clip interface {
	// TotalFrames reports the number of frames in the video stream.
	TotalFrames() int
	// Seek positions the clip so the next call to Next yields frame index.
	Seek(index int) error
	// Next decodes the frame at the current position and advances by one.
	// It returns io.EOF past the last frame and an ErrFrameRead-wrapped
	// error for a frame that could not be decoded.
	Next(ctx context.Context) (image.Image, error)
	Close() error
}
