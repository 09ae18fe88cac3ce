// Package animtest builds image fixtures for tests: still and animated
// WebP files assembled from lossless libwebp frames, GIFs, and solid-color
// frames.
package animtest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/require"
)

// Solid returns a w×h NRGBA image filled with c.
func Solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// WebP encodes img as a lossless still WebP.
func WebP(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, img, &webp.Options{Lossless: true}))
	return buf.Bytes()
}

// Frame describes one ANMF frame of an animated WebP fixture.
type Frame struct {
	Image    image.Image
	X, Y     int // must be even
	Duration int // milliseconds
	Dispose  bool
	NoBlend  bool
}

// AnimatedWebP assembles an animated WebP with a w×h canvas from frames.
// Each frame bitstream comes from the real libwebp encoder.
func AnimatedWebP(t testing.TB, w, h int, frames []Frame) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteString("WEBP")

	vp8x := make([]byte, 10)
	vp8x[0] = 0x02 | 0x10 // animation + alpha
	put24(vp8x[4:], w-1)
	put24(vp8x[7:], h-1)
	chunk(&body, "VP8X", vp8x)

	anim := make([]byte, 6) // transparent background, loop forever
	chunk(&body, "ANIM", anim)

	for _, f := range frames {
		b := f.Image.Bounds()
		hdr := make([]byte, 16)
		put24(hdr[0:], f.X/2)
		put24(hdr[3:], f.Y/2)
		put24(hdr[6:], b.Dx()-1)
		put24(hdr[9:], b.Dy()-1)
		put24(hdr[12:], f.Duration)
		if f.Dispose {
			hdr[15] |= 0x01
		}
		if f.NoBlend {
			hdr[15] |= 0x02
		}
		payload := append(hdr, frameBitstream(t, f.Image)...)
		chunk(&body, "ANMF", payload)
	}
	return riff(body.Bytes())
}

// EmptyAnimatedWebP returns a WebP that declares animation but holds no
// frames.
func EmptyAnimatedWebP(w, h int) []byte {
	var body bytes.Buffer
	body.WriteString("WEBP")
	vp8x := make([]byte, 10)
	vp8x[0] = 0x02
	put24(vp8x[4:], w-1)
	put24(vp8x[7:], h-1)
	chunk(&body, "VP8X", vp8x)
	chunk(&body, "ANIM", make([]byte, 6))
	return riff(body.Bytes())
}

// WithScreen returns a copy of a GIF with its logical screen size
// replaced, leaving the frames untouched.
func WithScreen(data []byte, w, h int) []byte {
	out := bytes.Clone(data)
	binary.LittleEndian.PutUint16(out[6:], uint16(w))
	binary.LittleEndian.PutUint16(out[8:], uint16(h))
	return out
}

// GIF encodes frames as a GIF with the given per-frame delays
// (centiseconds). loop follows image/gif semantics: 0 loops forever.
func GIF(t testing.TB, frames []image.Image, delays []int, loop int) []byte {
	t.Helper()
	g := &gif.GIF{LoopCount: loop}
	for i, f := range frames {
		pm := image.NewPaletted(f.Bounds(), palette.Plan9)
		draw.Draw(pm, pm.Bounds(), f, f.Bounds().Min, draw.Src)
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delays[i])
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

// WriteFile writes data under dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// frameBitstream encodes img and returns its chunks minus the RIFF header
// and any VP8X chunk, ready to embed in an ANMF payload.
func frameBitstream(t testing.TB, img image.Image) []byte {
	t.Helper()
	data := WebP(t, img)
	require.GreaterOrEqual(t, len(data), 12)
	var out bytes.Buffer
	b := data[12:]
	for len(b) >= 8 {
		id := string(b[0:4])
		size := int(binary.LittleEndian.Uint32(b[4:8]))
		padded := size + size&1
		require.LessOrEqual(t, 8+size, len(b))
		if id != "VP8X" {
			out.Write(b[:8+min(padded, len(b)-8)])
		}
		b = b[min(8+padded, len(b)):]
	}
	return out.Bytes()
}

func chunk(w *bytes.Buffer, id string, data []byte) {
	var hdr [8]byte
	copy(hdr[:4], id)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(data)))
	w.Write(hdr[:])
	w.Write(data)
	if len(data)&1 == 1 {
		w.WriteByte(0)
	}
}

func riff(body []byte) []byte {
	out := make([]byte, 8, 8+len(body))
	copy(out, "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	return append(out, body...)
}

func put24(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
