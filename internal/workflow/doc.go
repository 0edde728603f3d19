// Package workflow runs rejoin end to end.
//
// A Runner takes the state lock, loads the processed set and chain registry,
// lists the input directory, builds chains and merges them. Each run gets a
// run_id that is attached to every log line so interleaved log files can be
// separated. The external capabilities (clock reader, concatenator, inspector)
// default to the ffmpeg/tesseract implementations and can be swapped with
// options for tests.
package workflow
