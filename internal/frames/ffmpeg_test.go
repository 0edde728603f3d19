package frames_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rejoin/internal/frames"
	"rejoin/internal/testsupport"
)

// 2x2 RGBA frames are 16 bytes; the ffmpeg stub emits two of them no matter
// what was requested, so every third frame of a run fails to decode.
const streamsJSON = `{"streams":[{"codec_type":"video","codec_name":"mjpeg","width":2,"height":2,"r_frame_rate":"10/1","avg_frame_rate":"10/1","nb_frames":"5"}],"format":{"duration":"0.5"}}`

func stubSource(t *testing.T) (*frames.FFmpegSource, string) {
	t.Helper()
	dir := t.TempDir()
	argsLog := filepath.Join(dir, "ffmpeg.args")
	ffprobe := testsupport.WriteStub(t, dir, "ffprobe", "cat <<'JSON'\n"+streamsJSON+"\nJSON\n")
	ffmpeg := testsupport.WriteStub(t, dir, "ffmpeg", "printf '%s ' \"$@\" >> '"+argsLog+"'\nhead -c 32 /dev/zero\n")
	return frames.NewFFmpegSource(ffmpeg, ffprobe), argsLog
}

func TestFFmpegClipRestartsDecoderAfterShortOutput(t *testing.T) {
	src, argsLog := stubSource(t)
	ctx := context.Background()

	clip, err := src.Open(ctx, "/videos/MOVI0001.AVI")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer clip.Close()

	if clip.TotalFrames() != 5 {
		t.Fatalf("TotalFrames = %d, want 5", clip.TotalFrames())
	}
	for i := 0; i < 5; i++ {
		img, err := clip.Next(ctx)
		if i == 2 {
			if !errors.Is(err, frames.ErrFrameRead) {
				t.Fatalf("frame 2: expected ErrFrameRead, got %v", err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
			t.Fatalf("unexpected bounds %v", b)
		}
	}
	if _, err := clip.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF past the end, got %v", err)
	}

	data, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("read args log: %v", err)
	}
	if !strings.Contains(string(data), "-ss 0.300") {
		t.Fatalf("expected decoder restart at frame 3, args %q", data)
	}
}

func TestFFmpegClipSkipsOnlyTheFailedFrame(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "first-run")
	ffprobe := testsupport.WriteStub(t, dir, "ffprobe", "cat <<'JSON'\n"+streamsJSON+"\nJSON\n")
	ffmpeg := testsupport.WriteStub(t, dir, "ffmpeg",
		"if [ ! -e '"+marker+"' ]; then\n"+
			"  : > '"+marker+"'\n"+
			"  head -c 16 /dev/zero\n"+
			"  echo 'packet corrupt' >&2\n"+
			"  exit 1\n"+
			"fi\n"+
			"head -c 64 /dev/zero\n")
	src := frames.NewFFmpegSource(ffmpeg, ffprobe)
	ctx := context.Background()

	clip, err := src.Open(ctx, "/videos/MOVI0001.AVI")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer clip.Close()

	var failed []int
	for i := 0; i < 5; i++ {
		if _, err := clip.Next(ctx); err != nil {
			if !errors.Is(err, frames.ErrFrameRead) {
				t.Fatalf("frame %d: unexpected error %v", i, err)
			}
			failed = append(failed, i)
		}
	}
	if len(failed) != 1 || failed[0] != 1 {
		t.Fatalf("failed frames = %v, want [1]", failed)
	}
}

func TestFFmpegClipGivesUpOnDeadDecoder(t *testing.T) {
	dir := t.TempDir()
	runs := filepath.Join(dir, "runs")
	ffprobe := testsupport.WriteStub(t, dir, "ffprobe", "cat <<'JSON'\n"+streamsJSON+"\nJSON\n")
	ffmpeg := testsupport.WriteStub(t, dir, "ffmpeg", "printf 'run\\n' >> '"+runs+"'\necho 'invalid data' >&2\nexit 1\n")
	src := frames.NewFFmpegSource(ffmpeg, ffprobe)
	ctx := context.Background()

	clip, err := src.Open(ctx, "/videos/broken.AVI")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer clip.Close()

	for i := 0; i < 5; i++ {
		_, err := clip.Next(ctx)
		if !errors.Is(err, frames.ErrFrameRead) {
			t.Fatalf("frame %d: expected ErrFrameRead, got %v", i, err)
		}
		if i == 0 && !strings.Contains(err.Error(), "invalid data") {
			t.Fatalf("expected ffmpeg stderr in error, got %v", err)
		}
	}
	data, err := os.ReadFile(runs)
	if err != nil {
		t.Fatalf("read runs: %v", err)
	}
	if got := strings.Count(string(data), "run"); got != 4 {
		t.Fatalf("ffmpeg launched %d times, want 4", got)
	}
}

func TestFFmpegClipSeekRestartsDecoderAtOffset(t *testing.T) {
	src, argsLog := stubSource(t)
	ctx := context.Background()

	clip, err := src.Open(ctx, "/videos/MOVI0001.AVI")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer clip.Close()

	if err := clip.Seek(3); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := clip.Next(ctx); err != nil {
		t.Fatalf("Next after seek: %v", err)
	}
	if err := clip.Seek(6); err == nil {
		t.Fatal("expected seek past the end to fail")
	}

	data, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatalf("read args log: %v", err)
	}
	args := string(data)
	for _, want := range []string{"-ss 0.300", "-frames:v 2", "-pix_fmt rgba", "/videos/MOVI0001.AVI"} {
		if !strings.Contains(args, want) {
			t.Fatalf("ffmpeg args %q missing %q", args, want)
		}
	}
}

func TestFFmpegSourceOpenFailsWithoutVideo(t *testing.T) {
	dir := t.TempDir()
	ffprobe := testsupport.WriteStub(t, dir, "ffprobe", "echo '{\"streams\":[{\"codec_type\":\"audio\"}],\"format\":{}}'\n")
	src := frames.NewFFmpegSource("ffmpeg", ffprobe)
	if _, err := src.Open(context.Background(), "/videos/audio-only.AVI"); err == nil || !strings.Contains(err.Error(), "no video stream") {
		t.Fatalf("expected no video stream error, got %v", err)
	}
}

func TestFFmpegSourceOpenReportsInspectFailure(t *testing.T) {
	dir := t.TempDir()
	ffprobe := testsupport.WriteStub(t, dir, "ffprobe", "echo 'moov atom not found' >&2\nexit 1\n")
	src := frames.NewFFmpegSource("ffmpeg", ffprobe)
	_, err := src.Open(context.Background(), "/videos/broken.AVI")
	if err == nil || !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("expected ffprobe stderr in error, got %v", err)
	}
}
