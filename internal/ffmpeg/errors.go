package ffmpeg

import (
	"regexp"
	"strings"
)

// Pre-compiled regexes for classifying ffmpeg stderr output. Checked in
// order by [Reason]; the first match wins.
var stderrReasons = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`(?i)No space left on device|Disk quota exceeded`), "disk full"},
	{regexp.MustCompile(`(?i)Permission denied|Read-only file system`), "permission denied"},
	{regexp.MustCompile(`(?i)No such file or directory`), "file not found"},
	{regexp.MustCompile(`(?i)Unknown encoder|Encoder .* not found|Automatic encoder selection failed`), "encoder unavailable"},
	{regexp.MustCompile(`(?i)Invalid data found when processing input|EBML header parsing failed|moov atom not found|corrupt|Truncating packet`), "corrupt or unreadable input"},
	{regexp.MustCompile(`(?i)does not contain any stream|Stream map .* matches no streams|Output file #0 does not contain any stream`), "no video stream"},
	{regexp.MustCompile(`(?i)Incompatible pixel format|not supported by the .* encoder|Invalid frame dimensions`), "unsupported frame format"},
	{regexp.MustCompile(`(?i)Broken pipe`), "ffmpeg exited early"},
}

// Reason condenses ffmpeg stderr into a short human reason. Unrecognized
// output falls back to its last non-empty line.
func Reason(stderr string) string {
	for _, r := range stderrReasons {
		if r.re.MatchString(stderr) {
			return r.reason
		}
	}
	return lastLine(stderr)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
