package anim

import (
	"errors"
	"fmt"
)

// DefaultMaxPixels caps canvas area when the caller passes no limit. A
// 64 MP RGBA canvas is 256 MiB.
const DefaultMaxPixels = 64 << 20

// maxContainerPixels is the largest canvas the WebP container allows.
const maxContainerPixels = 1<<32 - 1

// ErrCanvasTooLarge is returned when a header declares a canvas over the
// pixel limit. Nothing is allocated for such a file.
var ErrCanvasTooLarge = errors.New("canvas too large")

// CheckCanvas rejects a w×h canvas that is empty or holds more than
// maxPixels pixels. A non-positive maxPixels means DefaultMaxPixels.
func CheckCanvas(w, h, maxPixels int) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", w, h)
	}
	area := int64(w) * int64(h)
	if area > maxContainerPixels || area > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrCanvasTooLarge, w, h, maxPixels)
	}
	return nil
}
