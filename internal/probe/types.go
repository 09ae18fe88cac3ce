package probe

import (
	"strconv"

	"github.com/backmassage/mediaconv/internal/media"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
}

// VideoStream holds the parsed properties of a single video stream.
// FrameRate is r_frame_rate, falling back to avg_frame_rate.
type VideoStream struct {
	Index         int
	Codec         string
	PixFmt        string
	Width         int
	Height        int
	FrameRate     media.Rational
	NbFrames      int
	IsAttachedPic bool
}

// ProbeResult is the parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
	HasAudio     bool
}

// Props returns the transcoder-facing properties of the primary video
// stream.
func (p *ProbeResult) Props() (media.VideoProps, error) {
	if p.PrimaryVideo == nil {
		return media.VideoProps{}, ErrNoVideoStream
	}
	v := p.PrimaryVideo
	props := media.VideoProps{FrameRate: v.FrameRate, Width: v.Width, Height: v.Height}
	if !props.Valid() {
		return props, ErrBadVideoProps
	}
	return props, nil
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (p *ProbeResult) Resolution() string {
	if p.PrimaryVideo == nil || p.PrimaryVideo.Width <= 0 || p.PrimaryVideo.Height <= 0 {
		return "unknown"
	}
	return strconv.Itoa(p.PrimaryVideo.Width) + "x" + strconv.Itoa(p.PrimaryVideo.Height)
}
