// Package ocr is the text recognition capability used to read the on-screen
// clock. Recognition is best effort: callers must validate whatever text
// comes back.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"strings"
)

// Engine maps an image to the text it shows.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Tesseract runs the tesseract CLI, feeding it a PNG on stdin.
type Tesseract struct {
	Binary       string
	AllowedChars string
	PageSegMode  int
}

// NewTesseract returns an engine restricted to allowed characters. An empty
// binary means "tesseract" on PATH; psm <= 0 selects single-word mode (8).
func NewTesseract(binary, allowed string, psm int) *Tesseract {
	if strings.TrimSpace(binary) == "" {
		binary = "tesseract"
	}
	if psm <= 0 {
		psm = 8
	}
	return &Tesseract{Binary: binary, AllowedChars: allowed, PageSegMode: psm}
}

// Recognize returns the recognized text with line breaks dropped and
// surrounding whitespace removed, so a clock split across lines reads as one.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	var input bytes.Buffer
	if err := png.Encode(&input, img); err != nil {
		return "", fmt.Errorf("encode ocr input: %w", err)
	}

	args := []string{"stdin", "stdout", "--psm", strconv.Itoa(t.PageSegMode)}
	if t.AllowedChars != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+t.AllowedChars)
	}
	cmd := exec.CommandContext(ctx, t.Binary, args...)
	cmd.Stdin = &input
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	text := strings.NewReplacer("\r", "", "\n", "").Replace(string(output))
	return strings.TrimSpace(text), nil
}
