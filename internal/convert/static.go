package convert

import (
	"context"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"

	"github.com/backmassage/mediaconv/internal/anim"
	"github.com/backmassage/mediaconv/internal/media"
	"github.com/backmassage/mediaconv/internal/naming"
)

// StaticEncoder writes any supported image as a single PNG.
type StaticEncoder struct {
	Compression png.CompressionLevel
	MaxPixels   int // canvas cap; anim.DefaultMaxPixels when zero
}

// Encode decodes src fully once and writes <destDir>/<stem>.png. Animated
// sources contribute their first composited frame. Pixels are written in
// stored order; EXIF orientation is not applied, so the output keeps the
// source dimensions.
func (e *StaticEncoder) Encode(_ context.Context, src media.Source, destDir string) (o Outcome) {
	defer recoverFailed(src, &o)

	img, err := decodeStill(src, e.MaxPixels)
	if err != nil {
		return Failed(src, decodeErr(err))
	}

	out := naming.OutputPath(destDir, src.Stem(), media.StaticExt)
	err = writeAtomic(out, func(w io.Writer) error {
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(e.Compression))
	})
	if err != nil {
		return Failed(src, encodeErr(err))
	}
	return Succeeded(src, out)
}

// decodeStill decodes the first frame of src. libwebp's still decoder
// rejects animated WebP, so those fall back to the frame decoder.
func decodeStill(src media.Source, maxPixels int) (image.Image, error) {
	if err := checkHeader(src.Path, maxPixels); err != nil {
		return nil, err
	}
	img, err := imaging.Open(src.Path)
	if err == nil {
		return img, nil
	}
	if src.Ext != ".webp" {
		return nil, err
	}
	data, rerr := os.ReadFile(src.Path)
	if rerr != nil {
		return nil, rerr
	}
	fs, _, derr := anim.DecodeWebP(data, maxPixels)
	if derr != nil {
		return nil, derr
	}
	if fs.Len() == 0 {
		return nil, ErrEmptyMedia
	}
	return fs.Frames[0], nil
}

// checkHeader rejects a source whose header declares more than maxPixels
// pixels. Headers the config decoder cannot read are left to the full
// decode to report.
func checkHeader(path string, maxPixels int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil
	}
	return anim.CheckCanvas(cfg.Width, cfg.Height, maxPixels)
}
