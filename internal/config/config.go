// Package config holds runtime configuration: defaults, dotenv and
// environment overrides, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"
)

// DefaultMaxPixels is the largest image canvas decoded by default (64 MP).
const DefaultMaxPixels = 64 << 20

// maxWebPPixels is the largest canvas any WebP file can declare.
const maxWebPPixels = 1<<32 - 1

// --- Enum types for validated string fields ---

// Mode selects the conversion target for every input in a batch.
type Mode string

const (
	ModeStatic   Mode = "static"   // Every input to PNG.
	ModeAnimated Mode = "animated" // Every input to GIF.
	ModeVideo    Mode = "video"    // WebM inputs to MP4; everything else skipped.
	ModeAuto     Mode = "auto"     // Route each input by its probed kind (default).
)

// PNGCompression selects the zlib effort for PNG output.
type PNGCompression string

const (
	PNGDefault PNGCompression = "default"
	PNGNone    PNGCompression = "none"
	PNGFast    PNGCompression = "fast"
	PNGBest    PNGCompression = "best"
)

// Level maps the setting to the encoder constant.
func (p PNGCompression) Level() png.CompressionLevel {
	switch p {
	case PNGNone:
		return png.NoCompression
	case PNGFast:
		return png.BestSpeed
	case PNGBest:
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [ApplyEnv], then [ParseFlags] before being passed (by pointer) to
// packages that need it.
type Config struct {
	// Paths. Inputs come from positional args (files or directories).
	Inputs    []string
	OutputDir string
	Recursive bool // Descend into subdirectories of directory inputs.

	// Conversion.
	Mode           Mode           // Default: "auto".
	Dither         bool           // Default: true. Floyd-Steinberg for GIF frames.
	PNGCompression PNGCompression // Default: "default".
	VideoQuality   int            // Default: 4. mpeg4 -q:v, 1 (best) to 31.
	MaxPixels      int            // Default: DefaultMaxPixels. Larger image canvases fail.

	// External tools.
	FFmpegPath  string // Default: "ffmpeg" (resolved on PATH).
	FFprobePath string // Default: "ffprobe".

	// Behavior flags.
	DryRun       bool // Route and report without writing anything.
	SkipExisting bool // Default: false. Outputs are overwritten unless set.

	// Display and logging.
	Verbose     bool
	ColorMode   ColorMode // Default: "auto".
	LogFile     string    // Optional log file path.
	MetricsFile string    // Optional Prometheus textfile path.
	EnvFile     string    // Optional dotenv file; ".env" is read when present.
	CheckOnly   bool      // Run --check diagnostics and exit.
	AnalyzeOnly bool      // Classify inputs, print a table, and exit.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// environment and CLI overrides are applied.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeAuto,
		Dither:         true,
		PNGCompression: PNGDefault,
		VideoQuality:   4,
		MaxPixels:      DefaultMaxPixels,
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		DryRun:         false,
		SkipExisting:   false,
		Verbose:        false,
		ColorMode:      ColorAuto,
		CheckOnly:      false,
		AnalyzeOnly:    false,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// NeedsVideo reports whether the batch may route inputs to the video
// transcoder and therefore needs ffmpeg and ffprobe.
func (c *Config) NeedsVideo() bool {
	return c.Mode == ModeVideo || c.Mode == ModeAuto
}

// Validate checks that enum fields hold valid values and numeric settings
// are in range. When not in CheckOnly mode, it also requires at least one
// input, and an output directory unless only analyzing.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStatic, ModeAnimated, ModeVideo, ModeAuto:
		// valid
	default:
		return errors.New("invalid mode (use 'static', 'animated', 'video', or 'auto')")
	}

	switch c.PNGCompression {
	case PNGDefault, PNGNone, PNGFast, PNGBest:
		// valid
	default:
		return errors.New("invalid PNG compression (use 'default', 'none', 'fast', or 'best')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always', or 'never')")
	}

	if c.VideoQuality < 1 || c.VideoQuality > 31 {
		return fmt.Errorf("video quality must be between 1 and 31 (got %d)", c.VideoQuality)
	}

	if c.MaxPixels < 1 || int64(c.MaxPixels) > maxWebPPixels {
		return fmt.Errorf("max pixels must be between 1 and %d (got %d)", int64(maxWebPPixels), c.MaxPixels)
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.Inputs) == 0 {
		return errors.New("need at least one input file or directory")
	}
	if c.OutputDir == "" && !c.AnalyzeOnly {
		return errors.New("need an output directory (-o)")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside a
// recursively scanned input directory, so a later run does not pick up its
// own outputs. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if !c.Recursive {
		return nil
	}
	sep := string(filepath.Separator)
	if outputAbs != inputAbs && strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside a recursively scanned input directory")
	}
	return nil
}
