package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Reading is a zero-padded "mm:ss" clock value as read off a frame.
type Reading string

var readingPattern = regexp.MustCompile(`^\d\d:\d\d$`)

// Valid reports whether s is a strict two-digit:two-digit reading. Blank,
// partial, or garbled OCR output is rejected.
func Valid(s string) bool {
	return readingPattern.MatchString(s)
}

// Parse converts a reading into seconds (minutes*60 + seconds). Only the
// shape produced upstream is supported: two numeric fields, no hours.
func Parse(r Reading) (int, error) {
	minutes, seconds, ok := strings.Cut(string(r), ":")
	if !ok {
		return 0, fmt.Errorf("parse reading %q: missing colon", r)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, fmt.Errorf("parse reading %q: minutes: %w", r, err)
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, fmt.Errorf("parse reading %q: seconds: %w", r, err)
	}
	return m*60 + s, nil
}

// Diff returns the absolute distance in seconds between two readings.
func Diff(a, b Reading) (int, error) {
	as, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bs, err := Parse(b)
	if err != nil {
		return 0, err
	}
	if as > bs {
		return as - bs, nil
	}
	return bs - as, nil
}
