package anim

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/disintegration/imaging"
)

// alphaThreshold splits pixels into transparent and opaque; GIF has no
// partial transparency.
const alphaThreshold = 128

// transparentIndex is the palette slot reserved for transparent pixels.
const transparentIndex = 255

// GIFOptions tunes GIF output.
type GIFOptions struct {
	Dither bool // Floyd-Steinberg error diffusion when quantizing.
}

// EncodeGIF writes fs as an infinitely looping GIF. Every frame carries
// its duration and the restore-to-background disposal so no pixels from a
// previous frame survive into the next.
func EncodeGIF(w io.Writer, fs *FrameSet, opts GIFOptions) error {
	if err := fs.Validate(); err != nil {
		return err
	}
	b := fs.Bounds()
	out := &gif.GIF{
		LoopCount:       0,
		Config:          image.Config{Width: b.Dx(), Height: b.Dy()},
		BackgroundIndex: transparentIndex,
	}
	for i, f := range fs.Frames {
		out.Image = append(out.Image, quantize(f, opts.Dither))
		out.Delay = append(out.Delay, centiseconds(fs.Durations[i]))
		out.Disposal = append(out.Disposal, gif.DisposalBackground)
	}
	return gif.EncodeAll(w, out)
}

// EncodeStillGIF writes a single-frame GIF with no timing or disposal
// metadata.
func EncodeStillGIF(w io.Writer, img image.Image, opts GIFOptions) error {
	pm := quantize(imaging.Clone(img), opts.Dither)
	return gif.EncodeAll(w, &gif.GIF{
		Image: []*image.Paletted{pm},
		Delay: []int{0},
	})
}

// gifPalette is Plan9 with the last slot replaced by full transparency.
func gifPalette() color.Palette {
	p := make(color.Palette, 0, 256)
	p = append(p, palette.Plan9[:transparentIndex]...)
	return append(p, color.NRGBA{})
}

// quantize maps an NRGBA frame onto the GIF palette. Alpha is binarized
// first so transparent pixels land exactly on the reserved slot.
func quantize(src *image.NRGBA, dither bool) *image.Paletted {
	img := binarizeAlpha(src)
	b := img.Bounds()
	pm := image.NewPaletted(b, gifPalette())
	if dither {
		draw.FloydSteinberg.Draw(pm, b, img, b.Min)
	} else {
		draw.Draw(pm, b, img, b.Min, draw.Src)
	}
	return pm
}

func binarizeAlpha(src *image.NRGBA) *image.NRGBA {
	dst := imaging.Clone(src)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] < alphaThreshold {
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = 0, 0, 0, 0
		} else {
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}

// centiseconds converts milliseconds to GIF delay units, never below 1.
func centiseconds(ms int) int {
	cs := (ms + 5) / 10
	if cs < 1 {
		cs = 1
	}
	return cs
}
