// Package frames is the frame source capability: it opens a recording,
// reports its frame count, seeks by frame index, and yields decoded frames
// one at a time.
//
// Source and Clip are the seams the timestamp reader depends on; the
// FFmpegSource implementation inspects geometry with ffprobe and decodes RGBA
// frames from an ffmpeg rawvideo pipe started at the seek position.
package frames
