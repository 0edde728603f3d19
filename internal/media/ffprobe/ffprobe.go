package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	CodecTag     string `json:"codec_tag_string"`
	Profile      string `json:"profile"`
	PixFmt       string `json:"pix_fmt"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w", path, err)
	}
	return Decode(output)
}

// Decode parses raw ffprobe JSON.
func Decode(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStream returns the first video stream.
func (r Result) VideoStream() (Stream, bool) {
	return r.firstOfType("video")
}

// AudioStream returns the first audio stream.
func (r Result) AudioStream() (Stream, bool) {
	return r.firstOfType("audio")
}

func (r Result) firstOfType(kind string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// FrameRate returns the stream's frame rate, preferring the average rate
// over the base rate. Zero means unknown.
func (s Stream) FrameRate() float64 {
	if rate := parseRational(s.AvgFrameRate); rate > 0 {
		return rate
	}
	return parseRational(s.RFrameRate)
}

// FrameCount returns the number of frames in the first video stream. The
// container's frame count is used when present; otherwise it is estimated
// from duration and frame rate. Zero means unknown.
func (r Result) FrameCount() int {
	video, ok := r.VideoStream()
	if !ok {
		return 0
	}
	if n, err := strconv.Atoi(strings.TrimSpace(video.NbFrames)); err == nil && n > 0 {
		return n
	}
	duration := parseFloat(video.Duration)
	if duration <= 0 || math.IsNaN(duration) {
		duration = r.DurationSeconds()
	}
	rate := video.FrameRate()
	if duration <= 0 || math.IsNaN(duration) || rate <= 0 {
		return 0
	}
	return int(math.Round(duration * rate))
}

// Signature lists the stream parameters that must match for a lossless
// concatenation.
type Signature struct {
	VideoCodec string
	Width      int
	Height     int
	PixFmt     string
	FrameRate  string
	AudioCodec string
	SampleRate string
	Channels   int
}

// Signature extracts the concat-relevant parameters of the first video and
// audio streams.
func (r Result) Signature() Signature {
	var sig Signature
	if v, ok := r.VideoStream(); ok {
		sig.VideoCodec = v.CodecName
		sig.Width = v.Width
		sig.Height = v.Height
		sig.PixFmt = v.PixFmt
		sig.FrameRate = v.RFrameRate
	}
	if a, ok := r.AudioStream(); ok {
		sig.AudioCodec = a.CodecName
		sig.SampleRate = a.SampleRate
		sig.Channels = a.Channels
	}
	return sig
}

// Mismatch describes the first field where two signatures differ, or "" when they agree.
func (s Signature) Mismatch(other Signature) string {
	switch {
	case s.VideoCodec != other.VideoCodec:
		return fmt.Sprintf("video codec %q vs %q", s.VideoCodec, other.VideoCodec)
	case s.Width != other.Width || s.Height != other.Height:
		return fmt.Sprintf("resolution %dx%d vs %dx%d", s.Width, s.Height, other.Width, other.Height)
	case s.PixFmt != other.PixFmt:
		return fmt.Sprintf("pixel format %q vs %q", s.PixFmt, other.PixFmt)
	case s.FrameRate != other.FrameRate:
		return fmt.Sprintf("frame rate %q vs %q", s.FrameRate, other.FrameRate)
	case s.AudioCodec != other.AudioCodec:
		return fmt.Sprintf("audio codec %q vs %q", s.AudioCodec, other.AudioCodec)
	case s.SampleRate != other.SampleRate:
		return fmt.Sprintf("sample rate %q vs %q", s.SampleRate, other.SampleRate)
	case s.Channels != other.Channels:
		return fmt.Sprintf("channels %d vs %d", s.Channels, other.Channels)
	}
	return ""
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

func parseRational(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		v := parseFloat(num)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 {
		return 0
	}
	return n / d
}
