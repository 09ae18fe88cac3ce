package check

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backmassage/mediaconv/internal/config"
)

// recordLogger captures log lines by level.
type recordLogger struct {
	lines map[string][]string
}

func newRecordLogger() *recordLogger { return &recordLogger{lines: map[string][]string{}} }

func (r *recordLogger) add(level, format string, args ...interface{}) {
	r.lines[level] = append(r.lines[level], fmt.Sprintf(format, args...))
}
func (r *recordLogger) Info(f string, a ...interface{})    { r.add("info", f, a...) }
func (r *recordLogger) Success(f string, a ...interface{}) { r.add("success", f, a...) }
func (r *recordLogger) Warn(f string, a ...interface{})    { r.add("warn", f, a...) }
func (r *recordLogger) Error(f string, a ...interface{})   { r.add("error", f, a...) }
func (r *recordLogger) Debug(v bool, f string, a ...interface{}) {
	if v {
		r.add("debug", f, a...)
	}
}

const encodersTable = `Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V.S..D mpeg4                MPEG-4 part 2
 A....D aac                  AAC (Advanced Audio Coding)
`

const demuxersTable = `File formats:
 D. = Demuxing supported
 --
 D  gif             CompuServe Graphics Interchange Format (GIF)
 D  matroska,webm   Matroska / WebM
`

func TestListed(t *testing.T) {
	tests := []struct {
		table, name string
		want        bool
	}{
		{encodersTable, "mpeg4", true},
		{encodersTable, "libx264", true},
		{encodersTable, "mpeg", false},
		{encodersTable, "hevc_vaapi", false},
		{demuxersTable, "webm", true},
		{demuxersTable, "matroska", true},
		{demuxersTable, "mp4", false},
		{"", "webm", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, listed(tt.table, tt.name), tt.name)
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "ffmpeg version 7.0", firstLine("ffmpeg version 7.0\nbuilt with gcc\n"))
	assert.Equal(t, "single", firstLine("  single  "))
}

func missingBinaries(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.FFmpegPath = filepath.Join(dir, "no-ffmpeg")
	cfg.FFprobePath = filepath.Join(dir, "no-ffprobe")
	cfg.OutputDir = dir
	return &cfg
}

func TestCheckDeps_MissingFFmpeg(t *testing.T) {
	assert.ErrorIs(t, CheckDeps(missingBinaries(t)), ErrFfmpegNotFound)
}

func TestRunCheck_MissingBinaries(t *testing.T) {
	log := newRecordLogger()
	RunCheck(context.Background(), missingBinaries(t), log)

	errs := strings.Join(log.lines["error"], "\n")
	assert.Contains(t, errs, "ffmpeg not found")
	assert.Contains(t, errs, "ffprobe not found")
	assert.Contains(t, errs, "Encoder mpeg4 unavailable")
	assert.Contains(t, errs, "Demuxer webm unavailable")
	assert.Equal(t, "=== System Check ===", log.lines["info"][0])
}

func TestInspect(t *testing.T) {
	h := Inspect(context.Background(), t.TempDir())
	if len(h.Errors) > 0 {
		t.Skipf("host info unavailable: %v", h.Errors)
	}
	assert.Positive(t, h.LogicalCPUs)
	assert.Positive(t, h.TotalMemory)
	assert.NotEmpty(t, h.DiskPath)
}
