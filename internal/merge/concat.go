package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"rejoin/internal/media/ffprobe"
)

// Concatenator joins the files named in a concat list into output.
type Concatenator interface {
	Concat(ctx context.Context, listFile, output string) error
}

// Inspector reports the stream parameters of a file.
type Inspector interface {
	Signature(ctx context.Context, path string) (ffprobe.Signature, error)
}

// FFmpegConcat runs ffmpeg's concat demuxer with stream copy.
type FFmpegConcat struct {
	Binary string
}

func NewFFmpegConcat(binary string) FFmpegConcat {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return FFmpegConcat{Binary: binary}
}

// Concat runs ffmpeg quietly, capturing stderr for the error.
func (f FFmpegConcat) Concat(ctx context.Context, listFile, output string) error {
	args := concatArgs(listFile, output)
	cmd := exec.CommandContext(ctx, f.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("%w: ffmpeg: %v", ErrMergeFailed, err)
		}
		return fmt.Errorf("%w: ffmpeg: %v: %s", ErrMergeFailed, err, lastLines(detail, 5))
	}
	return nil
}

func concatArgs(listFile, output string) []string {
	return []string{
		"-v", "error",
		"-nostdin",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-map", "0",
		"-c", "copy",
		output,
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// FFprobeInspector reads signatures with ffprobe.
type FFprobeInspector struct {
	Binary string
}

func (p FFprobeInspector) Signature(ctx context.Context, path string) (ffprobe.Signature, error) {
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return ffprobe.Signature{}, err
	}
	if _, ok := result.VideoStream(); !ok {
		return ffprobe.Signature{}, errors.New("no video stream")
	}
	return result.Signature(), nil
}

// WriteList writes an ffmpeg concat list naming members in order.
func WriteList(path string, members []string) error {
	var buf bytes.Buffer
	for _, member := range members {
		buf.WriteString("file ")
		buf.WriteString(quoteListPath(member))
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// quoteListPath single-quotes path for the concat demuxer, closing and
// reopening the quotes around each embedded quote.
func quoteListPath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}
