package convert

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/backmassage/mediaconv/internal/anim"
	"github.com/backmassage/mediaconv/internal/media"
	"github.com/backmassage/mediaconv/internal/naming"
)

// AnimatedEncoder writes any supported image as a GIF. Animated sources
// keep every frame and its duration; still sources become one-frame GIFs.
type AnimatedEncoder struct {
	Dither    bool
	MaxPixels int // canvas cap; anim.DefaultMaxPixels when zero
}

// Encode decodes src into a FrameSet and writes <destDir>/<stem>.gif. A
// source that declares animation but carries no frames fails with
// ErrEmptyMedia.
func (e *AnimatedEncoder) Encode(_ context.Context, src media.Source, destDir string) (o Outcome) {
	defer recoverFailed(src, &o)

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return Failed(src, decodeErr(err))
	}
	fs, info, err := decodeFrames(src, data, e.MaxPixels)
	if err != nil {
		return Failed(src, decodeErr(err))
	}
	if fs.Len() == 0 {
		return Failed(src, ErrEmptyMedia)
	}

	opts := anim.GIFOptions{Dither: e.Dither}
	animated := info.Declared || fs.Len() > 1
	out := naming.OutputPath(destDir, src.Stem(), media.AnimatedExt)
	err = writeAtomic(out, func(w io.Writer) error {
		if animated {
			return anim.EncodeGIF(w, fs, opts)
		}
		return anim.EncodeStillGIF(w, fs.Frames[0], opts)
	})
	if err != nil {
		return Failed(src, encodeErr(err))
	}
	return Succeeded(src, out)
}

// decodeFrames returns every frame of src. Container inspection happens
// first so an empty animation is reported without invoking a decoder that
// would reject it.
func decodeFrames(src media.Source, data []byte, maxPixels int) (*anim.FrameSet, anim.Info, error) {
	switch src.Ext {
	case ".webp":
		return anim.DecodeWebP(data, maxPixels)
	case ".gif":
		info, err := anim.InspectGIF(bytes.NewReader(data))
		if err != nil {
			return nil, info, err
		}
		if info.Frames == 0 {
			return &anim.FrameSet{}, info, nil
		}
		fs, err := anim.DecodeGIF(bytes.NewReader(data), maxPixels)
		return fs, info, err
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if err := anim.CheckCanvas(cfg.Width, cfg.Height, maxPixels); err != nil {
			return nil, anim.Info{}, err
		}
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, anim.Info{}, err
	}
	b := img.Bounds()
	info := anim.Info{Format: strings.TrimPrefix(src.Ext, "."), Width: b.Dx(), Height: b.Dy(), Frames: 1, LoopCount: -1}
	fs := &anim.FrameSet{}
	fs.Append(imaging.Clone(img), anim.DefaultDuration)
	return fs, info, nil
}
