package anim

import (
	"errors"
	"fmt"
	"image"
)

// DefaultDuration is the per-frame display time in milliseconds used when
// a source omits it or declares zero.
const DefaultDuration = 100

// ErrNoFrames is returned by Validate for a FrameSet with no frames.
var ErrNoFrames = errors.New("no frames")

// FrameSet is an ordered sequence of fully composited frames and their
// display durations in milliseconds. Frames never alias each other.
type FrameSet struct {
	Frames    []*image.NRGBA
	Durations []int
}

// Append adds one frame. A non-positive duration becomes DefaultDuration.
func (fs *FrameSet) Append(frame *image.NRGBA, durationMs int) {
	if durationMs <= 0 {
		durationMs = DefaultDuration
	}
	fs.Frames = append(fs.Frames, frame)
	fs.Durations = append(fs.Durations, durationMs)
}

// Len returns the number of frames.
func (fs *FrameSet) Len() int { return len(fs.Frames) }

// Validate checks the FrameSet invariants: at least one frame and one
// duration per frame.
func (fs *FrameSet) Validate() error {
	if len(fs.Frames) == 0 {
		return ErrNoFrames
	}
	if len(fs.Frames) != len(fs.Durations) {
		return fmt.Errorf("frame/duration mismatch: %d frames, %d durations", len(fs.Frames), len(fs.Durations))
	}
	return nil
}

// Bounds returns the union of all frame bounds.
func (fs *FrameSet) Bounds() image.Rectangle {
	var r image.Rectangle
	for _, f := range fs.Frames {
		r = r.Union(f.Bounds())
	}
	return r
}
