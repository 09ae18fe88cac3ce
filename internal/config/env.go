package config

// This file implements the dotenv and environment layers. Every setting
// that makes sense outside a single invocation can be given as a
// MEDIACONV_* variable, either exported or listed in a dotenv file.
// Exported variables win over the file; flags win over both.

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "MEDIACONV_"

// DefaultEnvFile is read when no --env-file is given and it exists.
const DefaultEnvFile = ".env"

// envBindings maps environment keys (without prefix) onto cfg fields via
// the same flag.Value adapters the CLI uses.
func envBindings(cfg *Config) map[string]flag.Value {
	return map[string]flag.Value{
		"MODE":            &modeValue{&cfg.Mode},
		"OUTPUT_DIR":      &dirValue{&cfg.OutputDir},
		"RECURSIVE":       &boolValue{&cfg.Recursive},
		"DRY_RUN":         &boolValue{&cfg.DryRun},
		"SKIP_EXISTING":   &boolValue{&cfg.SkipExisting},
		"DITHER":          &boolValue{&cfg.Dither},
		"PNG_COMPRESSION": &pngCompressionValue{&cfg.PNGCompression},
		"VIDEO_QUALITY":   &intValue{&cfg.VideoQuality},
		"MAX_PIXELS":      &intValue{&cfg.MaxPixels},
		"FFMPEG":          &stringValue{&cfg.FFmpegPath},
		"FFPROBE":         &stringValue{&cfg.FFprobePath},
		"VERBOSE":         &boolValue{&cfg.Verbose},
		"COLOR":           &colorModeValue{&cfg.ColorMode},
		"LOG_FILE":        &stringValue{&cfg.LogFile},
		"METRICS_FILE":    &stringValue{&cfg.MetricsFile},
	}
}

// Load builds the full configuration for args (without the program name):
// defaults, then the dotenv file, then MEDIACONV_* variables from the
// process environment, then flags. The result is not validated.
func Load(args []string, version string) (Config, error) {
	cfg := DefaultConfig()

	envFile, explicit := scanEnvFile(args)
	vars, err := ReadEnvFile(envFile, explicit)
	if err != nil {
		return cfg, err
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			vars[k] = v
		}
	}
	if err := ApplyEnv(&cfg, vars); err != nil {
		return cfg, err
	}
	if explicit {
		cfg.EnvFile = envFile
	}

	err = ParseFlags(&cfg, args, version)
	return cfg, err
}

// ReadEnvFile reads a dotenv file. A missing file is an error only when
// it was requested explicitly.
func ReadEnvFile(path string, explicit bool) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err == nil {
		return vars, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return nil, fmt.Errorf("env file %s: %w", path, err)
}

// ApplyEnv sets cfg fields from MEDIACONV_* entries in vars. Unknown keys
// with the prefix are rejected so typos surface early; keys without the
// prefix are ignored.
func ApplyEnv(cfg *Config, vars map[string]string) error {
	bindings := envBindings(cfg)
	for k, v := range vars {
		name, ok := strings.CutPrefix(k, EnvPrefix)
		if !ok {
			continue
		}
		b, ok := bindings[name]
		if !ok {
			return fmt.Errorf("unknown setting %s", k)
		}
		if err := b.Set(v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

// scanEnvFile finds --env-file in args before the flag set is built, since
// the file feeds the defaults the flags start from. Flag parsing stops at
// the first positional argument, and so does the scan.
func scanEnvFile(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" || !strings.HasPrefix(a, "-") {
			break
		}
		name := strings.TrimLeft(a, "-")
		if v, ok := strings.CutPrefix(name, "env-file="); ok {
			return v, true
		}
		if name == "env-file" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return DefaultEnvFile, false
}

type boolValue struct{ p *bool }

func (b *boolValue) String() string {
	if b.p == nil {
		return ""
	}
	return strconv.FormatBool(*b.p)
}
func (b *boolValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		*b.p = true
	case "0", "false", "no", "off", "":
		*b.p = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

type stringValue struct{ p *string }

func (s *stringValue) String() string {
	if s.p == nil {
		return ""
	}
	return *s.p
}
func (s *stringValue) Set(v string) error {
	*s.p = strings.TrimSpace(v)
	return nil
}

// parseInt parses a string as an integer; returns a clear error on failure.
func parseInt(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number (got %q)", name, s)
	}
	return n, nil
}
