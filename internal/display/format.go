package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// FormatFrameRate returns a short frame rate label (e.g. "30 fps",
// "29.97 fps"), or "n/a" when fps is not positive.
func FormatFrameRate(fps float64) string {
	if fps <= 0 {
		return "n/a"
	}
	if fps == float64(int64(fps)) {
		return fmt.Sprintf("%d fps", int64(fps))
	}
	return fmt.Sprintf("%.2f fps", fps)
}

// FormatDimensions returns "WxH", or "?" when either side is unknown.
func FormatDimensions(w, h int) string {
	if w <= 0 || h <= 0 {
		return "?"
	}
	return fmt.Sprintf("%dx%d", w, h)
}
