package anim

// Info is the header-level description of an image container.
type Info struct {
	Format string
	Width  int
	Height int
	Frames int

	// Declared is set when the container announces animation (WebP VP8X
	// animation flag, GIF NETSCAPE2.0 loop extension) regardless of how
	// many frames actually follow.
	Declared  bool
	LoopCount int
}

// Animated reports whether the container holds more than one frame.
func (i Info) Animated() bool { return i.Frames > 1 }
