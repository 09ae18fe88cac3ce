package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, behavior, tools, display, and utility.
// Negated flags (e.g. --no-dither) are applied after Parse so earlier
// layers hold unless the flag is set.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrVersion is returned by ParseFlags after printing the version.
// Callers treat it, like flag.ErrHelp, as a request to exit cleanly.
var ErrVersion = errors.New("version requested")

// ParseFlags parses args (without the program name) into cfg. Flags start
// from cfg's current values so environment overrides hold unless a flag is
// given. On --help it prints usage and returns flag.ErrHelp; on --version
// it prints the version and returns ErrVersion.
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("mediaconv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(os.Stderr, version) }

	var negated negatedFlags

	defineConversionFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, &negated)
	defineToolFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, cfg, &negated)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stderr, version)
		}
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(os.Stderr, version)
		return flag.ErrHelp
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "mediaconv v"+version)
		return ErrVersion
	}

	parsePositionalArgs(fs, cfg)
	return nil
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (noDither -> Dither=false) or request an
// early exit (showHelp, showVersion).
type negatedFlags struct {
	noDither    bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineConversionFlags registers -m/--mode, -o/--output, --png-compression, --video-quality, --max-pixels.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&modeValue{&cfg.Mode}, "mode", "Target: static | animated | video | auto")
	fs.Var(&modeValue{&cfg.Mode}, "m", "Same as --mode")
	fs.Var(&dirValue{&cfg.OutputDir}, "output", "Destination directory")
	fs.Var(&dirValue{&cfg.OutputDir}, "o", "Same as --output")
	fs.Var(&pngCompressionValue{&cfg.PNGCompression}, "png-compression", "PNG compression: default | none | fast | best")
	fs.Var(&intValue{&cfg.VideoQuality}, "video-quality", "mpeg4 quantizer 1 (best) to 31")
	fs.Var(&intValue{&cfg.MaxPixels}, "max-pixels", "Largest image canvas to decode, in pixels")
}

// defineBehaviorFlags registers recursive, dry-run, skip-existing, no-dither.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.Recursive, "recursive", cfg.Recursive, "Descend into subdirectories")
	fs.BoolVar(&cfg.Recursive, "r", cfg.Recursive, "Same as --recursive")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Preview only; do not write outputs")
	fs.BoolVar(&cfg.DryRun, "d", cfg.DryRun, "Same as --dry-run")
	fs.BoolVar(&cfg.SkipExisting, "skip-existing", cfg.SkipExisting, "Skip inputs whose output already exists")
	fs.BoolVar(&n.noDither, "no-dither", false, "Disable dithering of GIF frames")
}

// defineToolFlags registers --ffmpeg and --ffprobe.
func defineToolFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "ffmpeg executable")
	fs.StringVar(&cfg.FFprobePath, "ffprobe", cfg.FFprobePath, "ffprobe executable")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log, --metrics-file, --env-file.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to file")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "Read settings from a dotenv file")
}

// defineUtilityFlags registers --check, --analyze, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&cfg.AnalyzeOnly, "analyze", false, "Classify inputs and exit")
	fs.BoolVar(&cfg.AnalyzeOnly, "a", false, "Same as --analyze")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noDither {
		cfg.Dither = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Inputs from the remaining args. Directory
// arguments are normalized; file arguments are kept as given.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) {
	args := fs.Args()
	if len(args) == 0 {
		return
	}
	cfg.Inputs = cfg.Inputs[:0]
	for _, a := range args {
		cfg.Inputs = append(cfg.Inputs, NormalizeDirArg(a))
	}
}

// printUsage writes the help text to w. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "mediaconv v" + version + " - batch image and video converter"},
		{"", ""},
		{"  mediaconv [OPTIONS] -o <output_dir> <input>...", ""},
		{"", ""},
		{"Conversion", ""},
		{"  -m, --mode <target>", "static|png, animated|gif, video|mp4, auto (default: auto)"},
		{"  -o, --output <dir>", "Destination directory"},
		{"  --png-compression <level>", "default | none | fast | best"},
		{"  --video-quality <1-31>", "mpeg4 quantizer (default: 4)"},
		{"  --no-dither", "Disable dithering of GIF frames"},
		{"  --max-pixels <n>", "Largest image canvas to decode (default: 67108864)"},
		{"", ""},
		{"Inputs & behavior", ""},
		{"  -r, --recursive", "Descend into subdirectories of directory inputs"},
		{"  -d, --dry-run", "Preview only; do not write outputs"},
		{"  --skip-existing", "Skip inputs whose output already exists"},
		{"", ""},
		{"Tools", ""},
		{"  --ffmpeg <path>", "ffmpeg executable (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe executable (default: ffprobe)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  --metrics-file <path>", "Write Prometheus textfile metrics"},
		{"  --env-file <path>", "Read MEDIACONV_* settings (default: .env)"},
		{"  -a, --analyze", "Classify inputs and print a table"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, encoders, host)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so enum and numeric fields work with flag.Var and
// with the environment layer in env.go.

type modeValue struct{ p *Mode }

func (m *modeValue) String() string {
	if m.p == nil {
		return ""
	}
	return string(*m.p)
}
func (m *modeValue) Set(s string) error {
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m.p = mode
	return nil
}

// ParseMode accepts the mode names and their target-format aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static", "png", "image":
		return ModeStatic, nil
	case "animated", "gif":
		return ModeAnimated, nil
	case "video", "mp4":
		return ModeVideo, nil
	case "auto":
		return ModeAuto, nil
	}
	return "", fmt.Errorf("invalid mode %q (use 'static', 'animated', 'video', or 'auto')", s)
}

type pngCompressionValue struct{ p *PNGCompression }

func (c *pngCompressionValue) String() string {
	if c.p == nil {
		return ""
	}
	return string(*c.p)
}
func (c *pngCompressionValue) Set(s string) error {
	switch v := PNGCompression(strings.ToLower(strings.TrimSpace(s))); v {
	case PNGDefault, PNGNone, PNGFast, PNGBest:
		*c.p = v
	default:
		return fmt.Errorf("invalid PNG compression %q (use 'default', 'none', 'fast', or 'best')", s)
	}
	return nil
}

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string {
	if c.p == nil {
		return ""
	}
	return string(*c.p)
}
func (c *colorModeValue) Set(s string) error {
	switch v := ColorMode(strings.ToLower(strings.TrimSpace(s))); v {
	case ColorAuto, ColorAlways, ColorNever:
		*c.p = v
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always', or 'never')", s)
	}
	return nil
}

type dirValue struct{ p *string }

func (d *dirValue) String() string {
	if d.p == nil {
		return ""
	}
	return *d.p
}
func (d *dirValue) Set(s string) error {
	*d.p = NormalizeDirArg(strings.TrimSpace(s))
	return nil
}

type intValue struct{ p *int }

func (i *intValue) String() string {
	if i.p == nil {
		return ""
	}
	return fmt.Sprint(*i.p)
}
func (i *intValue) Set(s string) error {
	n, err := parseInt(s, "setting")
	if err != nil {
		return err
	}
	*i.p = n
	return nil
}
