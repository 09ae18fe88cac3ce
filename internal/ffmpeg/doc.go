// Package ffmpeg builds and runs the two ffmpeg processes used by video
// transcoding: a decoder that streams raw RGB24 frames on stdout and an
// encoder that reads raw RGB24 frames on stdin and writes an MP4.
//
// Argument construction (builder.go) is kept separate from process
// management (executor.go) so the command lines can be tested without an
// ffmpeg binary. Stderr from both processes is captured and classified
// into short human reasons (errors.go).
package ffmpeg
