package anim

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"

	"github.com/disintegration/imaging"
)

// GIF block introducers.
const (
	gifExtension  = 0x21
	gifDescriptor = 0x2c
	gifTrailer    = 0x3b
	gifAppLabel   = 0xff
	gifHasCTable  = 0x80
)

var errNotGIF = errors.New("gif: missing GIF87a/GIF89a signature")

// InspectGIF walks the GIF block structure, counting image descriptors and
// noting a NETSCAPE2.0 loop extension. LZW data is skipped, never decoded.
func InspectGIF(r io.Reader) (Info, error) {
	info := Info{Format: "gif", LoopCount: -1}
	br := bufio.NewReader(r)

	var hdr [13]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return info, errNotGIF
	}
	if sig := string(hdr[0:6]); sig != "GIF87a" && sig != "GIF89a" {
		return info, errNotGIF
	}
	info.Width = int(binary.LittleEndian.Uint16(hdr[6:8]))
	info.Height = int(binary.LittleEndian.Uint16(hdr[8:10]))
	if err := skipColorTable(br, hdr[10]); err != nil {
		return info, err
	}

	for {
		intro, err := br.ReadByte()
		if err != nil {
			return info, fmt.Errorf("gif: missing trailer: %w", err)
		}
		switch intro {
		case gifTrailer:
			return info, nil
		case gifExtension:
			label, err := br.ReadByte()
			if err != nil {
				return info, err
			}
			if label == gifAppLabel {
				if err := readAppExtension(br, &info); err != nil {
					return info, err
				}
				continue
			}
			if err := skipSubBlocks(br); err != nil {
				return info, err
			}
		case gifDescriptor:
			var desc [9]byte
			if _, err := io.ReadFull(br, desc[:]); err != nil {
				return info, err
			}
			if err := skipColorTable(br, desc[8]); err != nil {
				return info, err
			}
			if _, err := br.ReadByte(); err != nil { // LZW minimum code size
				return info, err
			}
			if err := skipSubBlocks(br); err != nil {
				return info, err
			}
			info.Frames++
		default:
			return info, fmt.Errorf("gif: unknown block 0x%02x", intro)
		}
	}
}

// readAppExtension consumes an application extension, recording the loop
// count when it is the NETSCAPE2.0 block.
func readAppExtension(br *bufio.Reader, info *Info) error {
	size, err := br.ReadByte()
	if err != nil {
		return err
	}
	id := make([]byte, size)
	if _, err := io.ReadFull(br, id); err != nil {
		return err
	}
	if string(id) != "NETSCAPE2.0" && string(id) != "ANIMEXTS1.0" {
		return skipSubBlocks(br)
	}
	info.Declared = true
	for {
		n, err := br.ReadByte()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(br, b); err != nil {
			return err
		}
		if n == 3 && b[0] == 1 {
			info.LoopCount = int(binary.LittleEndian.Uint16(b[1:3]))
		}
	}
}

func skipColorTable(br *bufio.Reader, packed byte) error {
	if packed&gifHasCTable == 0 {
		return nil
	}
	n := 3 * (1 << ((packed & 0x07) + 1))
	_, err := br.Discard(n)
	return err
}

func skipSubBlocks(br *bufio.Reader) error {
	for {
		n, err := br.ReadByte()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := br.Discard(int(n)); err != nil {
			return err
		}
	}
}

// DecodeGIF decodes every frame of a GIF and composites it onto the logical
// screen, applying each frame's disposal method before the next one is
// drawn. Delays are converted from centiseconds to milliseconds. A logical
// screen over maxPixels (DefaultMaxPixels when non-positive) fails with
// ErrCanvasTooLarge.
func DecodeGIF(r io.Reader, maxPixels int) (*FrameSet, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, p := range g.Image {
			screen = screen.Union(p.Bounds())
		}
		screen.Min = image.Point{}
	}
	if err := CheckCanvas(screen.Dx(), screen.Dy(), maxPixels); err != nil {
		return nil, fmt.Errorf("gif: %w", err)
	}

	canvas := image.NewNRGBA(screen)
	fs := &FrameSet{}
	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved *image.NRGBA
		if disposal == gif.DisposalPrevious {
			saved = imaging.Clone(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		fs.Append(imaging.Clone(canvas), g.Delay[i]*10)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return fs, nil
}
