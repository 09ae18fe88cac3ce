package ffmpeg

import (
	"strconv"

	"github.com/backmassage/mediaconv/internal/media"
)

// DefaultQuality is the mpeg4 -q:v used when Options.Quality is zero.
const DefaultQuality = 4

// Raw frame layout shared by the decoder and the encoder.
const (
	rawFormat = "rawvideo"
	rawPixFmt = "rgb24"
	outCodec  = "mpeg4"
	outTag    = "mp4v"
	outPixFmt = "yuv420p"
	outFormat = "mp4"

	minQuality, maxQuality = 1, 31
)

// Options configures both ffmpeg processes.
type Options struct {
	Binary  string // ffmpeg executable; "ffmpeg" when empty
	Verbose bool   // ffmpeg logs at info level and stderr is tee'd
	Quality int    // mpeg4 -q:v, 1 (best) to 31; DefaultQuality when zero
}

func (o Options) binary() string {
	if o.Binary == "" {
		return "ffmpeg"
	}
	return o.Binary
}

func (o Options) quality() int {
	if o.Quality == 0 {
		return DefaultQuality
	}
	return clamp(o.Quality, minQuality, maxQuality)
}

// preamble is shared by every invocation.
func (o Options) preamble() []string {
	args := []string{o.binary(), "-hide_banner", "-nostdin", "-y"}
	if o.Verbose {
		return append(args, "-loglevel", "info")
	}
	return append(args, "-loglevel", "error")
}

// DecodeArgs returns the command line that decodes the first video stream
// of input into packed RGB24 frames on stdout, one frame per source frame.
func DecodeArgs(o Options, input string) []string {
	args := o.preamble()
	args = append(args,
		"-i", input,
		"-map", "0:v:0",
		"-an", "-sn", "-dn",
		"-vsync", "passthrough",
		"-f", rawFormat,
		"-pix_fmt", rawPixFmt,
		"pipe:1",
	)
	return args
}

// EncodeArgs returns the command line that reads packed RGB24 frames of
// the given size and rate from stdin and writes an MPEG-4 Part 2 video
// (fourcc mp4v) in an MP4 container to output.
func EncodeArgs(o Options, output string, props media.VideoProps) []string {
	args := o.preamble()
	args = append(args,
		"-f", rawFormat,
		"-pix_fmt", rawPixFmt,
		"-s", strconv.Itoa(props.Width)+"x"+strconv.Itoa(props.Height),
		"-framerate", props.FrameRate.String(),
		"-i", "pipe:0",
		"-an",
		"-c:v", outCodec,
		"-q:v", strconv.Itoa(o.quality()),
		"-tag:v", outTag,
		"-pix_fmt", outPixFmt,
		"-movflags", "+faststart",
		"-f", outFormat,
		output,
	)
	return args
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
