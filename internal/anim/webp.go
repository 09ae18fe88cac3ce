package anim

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// VP8X feature flags.
const (
	flagAnimation = 0x02
	flagAlpha     = 0x10
)

// ANMF flag bits.
const (
	anmfDispose = 0x01 // dispose frame area to background after display
	anmfNoBlend = 0x02 // overwrite instead of alpha-blending
)

const (
	vp8xSize       = 10
	animSize       = 6
	anmfHeaderSize = 16
)

var (
	errNotWebP        = errors.New("webp: missing RIFF/WEBP signature")
	errTruncatedChunk = errors.New("webp: truncated chunk")
)

// rawChunk is one RIFF chunk with its payload (padding stripped).
type rawChunk struct {
	id   string
	data []byte
}

// InspectWebP reads chunk headers from r and reports canvas size, frame
// count, and declared animation. Bitstream payloads are skipped, never
// decoded. A chunk that runs past the end of r is an error.
func InspectWebP(r io.ReadSeeker) (Info, error) {
	info := Info{Format: "webp"}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return info, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return info, err
	}

	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return info, errNotWebP
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WEBP" {
		return info, errNotWebP
	}

	stills := 0
	pos := int64(len(hdr))
	for {
		var ch [8]byte
		if _, err := io.ReadFull(r, ch[:]); err != nil {
			if err == io.EOF {
				break
			}
			return info, errTruncatedChunk
		}
		id := string(ch[0:4])
		size := int64(binary.LittleEndian.Uint32(ch[4:8]))
		padded := size + size&1
		if pos+8+size > end {
			return info, errTruncatedChunk
		}
		pos += 8 + padded

		var consumed int64
		switch id {
		case "VP8X":
			p, err := readPayload(r, size, vp8xSize)
			if err != nil {
				return info, err
			}
			consumed = vp8xSize
			info.Declared = p[0]&flagAnimation != 0
			info.Width = le24(p[4:]) + 1
			info.Height = le24(p[7:]) + 1
		case "ANIM":
			p, err := readPayload(r, size, animSize)
			if err != nil {
				return info, err
			}
			consumed = animSize
			info.LoopCount = int(binary.LittleEndian.Uint16(p[4:6]))
		case "ANMF":
			info.Frames++
		case "VP8 ", "VP8L":
			stills++
			if info.Width == 0 {
				n := min(size, 10)
				p, err := readPayload(r, size, n)
				if err != nil {
					return info, err
				}
				consumed = n
				info.Width, info.Height = bitstreamSize(id, p)
			}
		}
		if _, err := r.Seek(padded-consumed, io.SeekCurrent); err != nil {
			return info, err
		}
	}

	if info.Frames == 0 && !info.Declared && stills > 0 {
		info.Frames = 1
	}
	return info, nil
}

// DecodeWebP decodes every frame of a WebP file. Still files yield a single
// frame. Animated files are composited onto a transparent canvas following
// each ANMF frame's blend and dispose bits. A file that declares animation
// but carries no frames yields an empty FrameSet and no error.
//
// A canvas over maxPixels (DefaultMaxPixels when non-positive) fails with
// ErrCanvasTooLarge before anything is allocated, as does a frame that
// does not fit on the canvas.
func DecodeWebP(data []byte, maxPixels int) (*FrameSet, Info, error) {
	info := Info{Format: "webp"}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, info, errNotWebP
	}
	chunks, err := parseChunks(data[12:])
	if err != nil {
		return nil, info, err
	}

	var anmf []rawChunk
	for _, c := range chunks {
		switch c.id {
		case "VP8X":
			if len(c.data) < vp8xSize {
				return nil, info, errTruncatedChunk
			}
			info.Declared = c.data[0]&flagAnimation != 0
			info.Width = le24(c.data[4:]) + 1
			info.Height = le24(c.data[7:]) + 1
		case "ANIM":
			if len(c.data) >= animSize {
				info.LoopCount = int(binary.LittleEndian.Uint16(c.data[4:6]))
			}
		case "ANMF":
			anmf = append(anmf, c)
		}
	}
	info.Frames = len(anmf)

	fs := &FrameSet{}
	if !info.Declared {
		if info.Width > 0 {
			if err := CheckCanvas(info.Width, info.Height, maxPixels); err != nil {
				return nil, info, fmt.Errorf("webp: %w", err)
			}
		}
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, info, fmt.Errorf("webp: %w", err)
		}
		info.Frames = 1
		b := img.Bounds()
		info.Width, info.Height = b.Dx(), b.Dy()
		fs.Append(imaging.Clone(img), DefaultDuration)
		return fs, info, nil
	}

	if err := CheckCanvas(info.Width, info.Height, maxPixels); err != nil {
		return nil, info, fmt.Errorf("webp: %w", err)
	}
	canvas := imaging.New(info.Width, info.Height, color.NRGBA{})
	for i, c := range anmf {
		fr, err := parseFrame(c.data)
		if err != nil {
			return nil, info, fmt.Errorf("webp frame %d: %w", i, err)
		}
		if fr.x+fr.width > info.Width || fr.y+fr.height > info.Height {
			return nil, info, fmt.Errorf("webp frame %d: %dx%d at (%d,%d) outside %dx%d canvas",
				i, fr.width, fr.height, fr.x, fr.y, info.Width, info.Height)
		}
		img, err := webp.Decode(bytes.NewReader(fr.standalone()))
		if err != nil {
			return nil, info, fmt.Errorf("webp frame %d: %w", i, err)
		}

		pos := image.Pt(fr.x, fr.y)
		if fr.noBlend {
			canvas = imaging.Paste(canvas, img, pos)
		} else {
			canvas = imaging.Overlay(canvas, img, pos, 1.0)
		}
		fs.Append(canvas, fr.duration)

		if fr.dispose {
			canvas = imaging.Paste(canvas, imaging.New(fr.width, fr.height, color.NRGBA{}), pos)
		}
	}
	return fs, info, nil
}

// anmfFrame is a parsed ANMF payload.
type anmfFrame struct {
	x, y          int
	width, height int
	duration      int
	dispose       bool
	noBlend       bool
	alpha         *rawChunk
	bits          *rawChunk
}

func parseFrame(p []byte) (*anmfFrame, error) {
	if len(p) < anmfHeaderSize {
		return nil, errTruncatedChunk
	}
	fr := &anmfFrame{
		x:        le24(p[0:]) * 2,
		y:        le24(p[3:]) * 2,
		width:    le24(p[6:]) + 1,
		height:   le24(p[9:]) + 1,
		duration: le24(p[12:]),
		dispose:  p[15]&anmfDispose != 0,
		noBlend:  p[15]&anmfNoBlend != 0,
	}
	subs, err := parseChunks(p[anmfHeaderSize:])
	if err != nil {
		return nil, err
	}
	for i := range subs {
		switch subs[i].id {
		case "ALPH":
			fr.alpha = &subs[i]
		case "VP8 ", "VP8L":
			fr.bits = &subs[i]
		}
	}
	if fr.bits == nil {
		return nil, errors.New("frame has no VP8/VP8L bitstream")
	}
	return fr, nil
}

// standalone rebuilds the frame as a self-contained still WebP file so the
// bitstream can go through the regular decoder.
func (fr *anmfFrame) standalone() []byte {
	var body bytes.Buffer
	body.WriteString("WEBP")
	if fr.alpha != nil && fr.bits.id == "VP8 " {
		var x [vp8xSize]byte
		x[0] = flagAlpha
		put24(x[4:], fr.width-1)
		put24(x[7:], fr.height-1)
		writeChunk(&body, "VP8X", x[:])
		writeChunk(&body, "ALPH", fr.alpha.data)
	}
	writeChunk(&body, fr.bits.id, fr.bits.data)
	return riff(body.Bytes())
}

// parseChunks splits a RIFF body into chunks.
func parseChunks(b []byte) ([]rawChunk, error) {
	var out []rawChunk
	for len(b) > 0 {
		if len(b) < 8 {
			return nil, errTruncatedChunk
		}
		id := string(b[0:4])
		size := int(binary.LittleEndian.Uint32(b[4:8]))
		b = b[8:]
		if size > len(b) {
			return nil, errTruncatedChunk
		}
		out = append(out, rawChunk{id: id, data: b[:size]})
		b = b[size:]
		if size&1 == 1 && len(b) > 0 {
			b = b[1:]
		}
	}
	return out, nil
}

func readPayload(r io.Reader, size, n int64) ([]byte, error) {
	if size < n {
		return nil, errTruncatedChunk
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(r, p); err != nil {
		return nil, errTruncatedChunk
	}
	return p, nil
}

// bitstreamSize extracts frame dimensions from the first bytes of a VP8 or
// VP8L payload.
func bitstreamSize(id string, p []byte) (int, int) {
	switch id {
	case "VP8 ":
		if len(p) < 10 || p[3] != 0x9d || p[4] != 0x01 || p[5] != 0x2a {
			return 0, 0
		}
		w := int(binary.LittleEndian.Uint16(p[6:8]) & 0x3fff)
		h := int(binary.LittleEndian.Uint16(p[8:10]) & 0x3fff)
		return w, h
	case "VP8L":
		if len(p) < 5 || p[0] != 0x2f {
			return 0, 0
		}
		v := binary.LittleEndian.Uint32(p[1:5])
		return int(v&0x3fff) + 1, int((v>>14)&0x3fff) + 1
	}
	return 0, 0
}

func writeChunk(w *bytes.Buffer, id string, data []byte) {
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

func le24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func put24(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
