// Package term holds the ANSI color state shared by the logger, progress
// bar, banner, and analysis table, plus TTY detection.
//
// The colors are package-level strings set once by [Configure]. When
// colors are off they are empty, so concatenating them is a no-op.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/mediaconv/internal/config"
)

// ANSI color codes. Empty when colors are disabled.
var (
	Red     = ""
	Green   = ""
	Yellow  = ""
	Orange  = ""
	Blue    = ""
	Cyan    = ""
	Magenta = ""
	NC      = "" // Reset sequence.
)

// Configure resolves mode against stdout and the environment and sets the
// color variables. Called once during startup from logging.NewLogger.
func Configure(mode config.ColorMode) {
	set(resolve(mode, IsTerminal(os.Stdout), os.Getenv))
}

func set(on bool) {
	if !on {
		Red, Green, Yellow, Orange, Blue, Cyan, Magenta, NC = "", "", "", "", "", "", "", ""
		return
	}
	Red = "\033[1;91m"
	Green = "\033[1;92m"
	Yellow = "\033[1;93m"
	Orange = "\033[1;38;5;208m"
	Blue = "\033[1;94m"
	Cyan = "\033[1;96m"
	Magenta = "\033[1;95m"
	NC = "\033[0m"
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return NC != "" }

// Paint wraps s in color and a reset. With colors off it returns s.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + NC
}

// resolve decides whether colors are on. Auto mode needs a TTY, no
// NO_COLOR (https://no-color.org), and a TERM other than "dumb".
func resolve(mode config.ColorMode, tty bool, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return tty && getenv("NO_COLOR") == "" && strings.ToLower(getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
