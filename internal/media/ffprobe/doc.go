// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties, including frame
//     counts and rates needed to seek by frame index
//   - Signature: the codec parameters that must agree before files can be
//     joined with a stream copy
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
