package media

import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	// Still-image decoders beyond the standard library set.
	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Output extensions for the three conversion targets (without dot).
const (
	StaticExt   = "png"
	AnimatedExt = "gif"
	VideoExt    = "mp4"
)

// Supported input extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".webp": true,
	".png":  true,
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

var videoExtensions = map[string]bool{
	".webm": true,
}

// Supported reports whether ext (lowercase, with dot) is a routable input.
func Supported(ext string) bool {
	return imageExtensions[ext] || videoExtensions[ext]
}
