package media

import (
	"path/filepath"
	"strings"
)

// Source is an immutable reference to an input file. Ext is the lowercased
// extension including the leading dot.
type Source struct {
	Path string
	Ext  string
}

// NewSource builds a Source from a path, normalizing the extension.
func NewSource(path string) Source {
	return Source{Path: path, Ext: strings.ToLower(filepath.Ext(path))}
}

// Stem returns the file name without directory and extension.
func (s Source) Stem() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsVideo reports whether the extension is a supported video container.
func (s Source) IsVideo() bool { return videoExtensions[s.Ext] }

// IsImage reports whether the extension is a supported image format.
func (s Source) IsImage() bool { return imageExtensions[s.Ext] }

// Kind is the probe classification of a source.
type Kind int

const (
	KindUnknown Kind = iota
	KindStatic
	KindAnimated
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindAnimated:
		return "animated"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// VideoProps are the stream properties captured once per transcode and
// reused unchanged for the output writer.
type VideoProps struct {
	FrameRate Rational
	Width     int
	Height    int
}

// FrameSize returns the byte size of one packed RGB24 frame.
func (p VideoProps) FrameSize() int {
	return p.Width * p.Height * 3
}

// Valid reports whether every property is usable by an encoder.
func (p VideoProps) Valid() bool {
	return p.Width > 0 && p.Height > 0 && p.FrameRate.Valid()
}
