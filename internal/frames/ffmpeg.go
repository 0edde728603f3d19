package frames

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"rejoin/internal/media/ffprobe"
)

// FFmpegSource decodes frames with the ffmpeg and ffprobe executables.
type FFmpegSource struct {
	FFmpeg  string
	FFprobe string
}

// NewFFmpegSource returns a source using the given executables; empty names
// fall back to "ffmpeg" and "ffprobe" on PATH.
func NewFFmpegSource(ffmpegBinary, ffprobeBinary string) *FFmpegSource {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &FFmpegSource{FFmpeg: ffmpegBinary, FFprobe: ffprobeBinary}
}

// Open inspects path and returns a clip positioned at frame 0.
func (s *FFmpegSource) Open(ctx context.Context, path string) (Clip, error) {
	info, err := ffprobe.Inspect(ctx, s.FFprobe, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	video, ok := info.VideoStream()
	if !ok {
		return nil, fmt.Errorf("open %s: no video stream", path)
	}
	if video.Width <= 0 || video.Height <= 0 {
		return nil, fmt.Errorf("open %s: invalid frame size %dx%d", path, video.Width, video.Height)
	}
	total := info.FrameCount()
	if total <= 0 {
		return nil, fmt.Errorf("open %s: unknown frame count", path)
	}
	rate := video.FrameRate()
	if rate <= 0 {
		return nil, fmt.Errorf("open %s: unknown frame rate", path)
	}
	return &ffmpegClip{
		binary: s.FFmpeg,
		path:   path,
		width:  video.Width,
		height: video.Height,
		rate:   rate,
		total:  total,
	}, nil
}

// maxRestarts bounds how often a clip relaunches ffmpeg after a failed
// read before giving up on the rest of the clip.
const maxRestarts = 3

type ffmpegClip struct {
	binary string
	path   string
	width  int
	height int
	rate   float64
	total  int

	pos      int
	restarts int
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	stdout   io.ReadCloser
	reader   *bufio.Reader
	stderr   bytes.Buffer
	drained  bool
}

func (c *ffmpegClip) TotalFrames() int { return c.total }

func (c *ffmpegClip) Seek(index int) error {
	if index < 0 || index > c.total {
		return fmt.Errorf("seek %s: frame %d outside [0, %d]", c.path, index, c.total)
	}
	c.stop()
	c.drained = false
	c.restarts = 0
	c.pos = index
	return nil
}

// Next returns the next frame. A failed read skips that frame; the following
// call restarts the decoder one frame later until the restart budget is spent.
func (c *ffmpegClip) Next(ctx context.Context) (image.Image, error) {
	if c.pos >= c.total {
		return nil, io.EOF
	}
	index := c.pos
	c.pos++

	if c.drained {
		return nil, fmt.Errorf("%w: %s frame %d: decoder stopped early", ErrFrameRead, c.path, index)
	}
	if c.cmd == nil {
		if err := c.start(ctx, index); err != nil {
			c.fail()
			return nil, fmt.Errorf("%w: %s frame %d: %v", ErrFrameRead, c.path, index, err)
		}
	}

	frameSize := c.width * c.height * 4
	buf := make([]byte, frameSize)
	if _, err := io.ReadFull(c.reader, buf); err != nil {
		c.stop()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.fail()
		detail := strings.TrimSpace(c.stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%w: %s frame %d: %s", ErrFrameRead, c.path, index, detail)
	}
	return &image.RGBA{
		Pix:    buf,
		Stride: 4 * c.width,
		Rect:   image.Rect(0, 0, c.width, c.height),
	}, nil
}

// fail charges one restart; once the budget is spent the clip reports every
// remaining frame as unreadable without relaunching ffmpeg.
func (c *ffmpegClip) fail() {
	c.restarts++
	if c.restarts > maxRestarts {
		c.drained = true
	}
}

func (c *ffmpegClip) start(ctx context.Context, index int) error {
	args := []string{"-v", "error", "-nostdin"}
	if index > 0 {
		args = append(args, "-ss", strconv.FormatFloat(float64(index)/c.rate, 'f', 3, 64))
	}
	args = append(args,
		"-i", c.path,
		"-map", "0:v:0",
		"-frames:v", strconv.Itoa(c.total-index),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, c.binary, args...)
	c.stderr.Reset()
	cmd.Stderr = &c.stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}
	c.cmd = cmd
	c.cancel = cancel
	c.stdout = stdout
	c.reader = bufio.NewReaderSize(stdout, c.width*c.height*4)
	return nil
}

func (c *ffmpegClip) stop() {
	if c.cmd == nil {
		return
	}
	c.cancel()
	_ = c.stdout.Close()
	// ffmpeg exits non-zero when killed or when its pipe closes early.
	_ = c.cmd.Wait()
	c.cmd = nil
	c.cancel = nil
	c.stdout = nil
	c.reader = nil
}

func (c *ffmpegClip) Close() error {
	c.stop()
	return nil
}
