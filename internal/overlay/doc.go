// Package overlay reads the burned-in clock of a recording.
//
// A Reader scans a window of frames at the start (positive window) or end
// (negative window) of a clip, crops the clock rectangle, runs OCR and keeps
// the most frequent well-formed MM:SS reading. Individual frames that fail to
// decode or recognize are skipped.
package overlay
