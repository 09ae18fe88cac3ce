package probe

import (
	"fmt"
	"image"
	"os"

	"github.com/backmassage/mediaconv/internal/anim"
	"github.com/backmassage/mediaconv/internal/media"
)

// Classify reports the kind of src. Video extensions are classified without
// touching the file. Image extensions are inspected header-only; any other
// extension, or an open or parse failure, is KindUnknown.
func Classify(src media.Source) media.Kind {
	switch {
	case src.IsVideo():
		return media.KindVideo
	case src.IsImage():
		info, err := Inspect(src)
		if err != nil {
			return media.KindUnknown
		}
		return KindOf(info)
	default:
		return media.KindUnknown
	}
}

// KindOf maps image header info to a kind. A container that declares animation
// but carries no frames is still animated so the animated encoder can
// report it as empty media.
func KindOf(info anim.Info) media.Kind {
	if info.Animated() || (info.Declared && info.Frames == 0) {
		return media.KindAnimated
	}
	return media.KindStatic
}

// Inspect reads the container header of an image source. The file is
// closed before Inspect returns.
func Inspect(src media.Source) (anim.Info, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return anim.Info{}, err
	}
	defer f.Close()

	switch src.Ext {
	case ".webp":
		return anim.InspectWebP(f)
	case ".gif":
		return anim.InspectGIF(f)
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return anim.Info{}, fmt.Errorf("%s: %w", src.Path, err)
	}
	return anim.Info{Format: format, Width: cfg.Width, Height: cfg.Height, Frames: 1, LoopCount: -1}, nil
}
