// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, ffprobe, the mpeg4 encoder,
// and the WebM demuxer.
package check

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/backmassage/mediaconv/internal/config"
	"github.com/backmassage/mediaconv/internal/display"
)

// Sentinel errors returned by CheckDeps when a required tool or codec is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrNoMPEG4Encoder  = errors.New("ffmpeg has no mpeg4 encoder")
	ErrNoWebMDemuxer   = errors.New("ffmpeg cannot demux webm")
)

const (
	videoEncoder = "mpeg4"
	videoDemuxer = "webm"
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: ffmpeg and ffprobe versions,
// the codecs the video path needs, and host resources. It is informational
// only and does not stop on failure.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkTool(log, "ffmpeg", cfg.FFmpegPath)
	checkTool(log, "ffprobe", cfg.FFprobePath)
	checkCodecs(log, cfg.FFmpegPath)
	checkHost(ctx, log, cfg.OutputDir)
}

// checkTool verifies a binary is runnable and logs its version line.
func checkTool(log Logger, name, path string) {
	if _, err := exec.LookPath(path); err != nil {
		log.Error("%s not found (%s)", name, path)
		return
	}
	out, err := exec.Command(path, "-version").Output()
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return
	}
	log.Success("%s: %s", name, firstLine(string(out)))
}

func checkCodecs(log Logger, ffmpegPath string) {
	if hasEncoder(ffmpegPath, videoEncoder) {
		log.Success("Encoder %s available", videoEncoder)
	} else {
		log.Error("Encoder %s unavailable: WebM inputs cannot be converted", videoEncoder)
	}
	if hasDemuxer(ffmpegPath, videoDemuxer) {
		log.Success("Demuxer %s available", videoDemuxer)
	} else {
		log.Error("Demuxer %s unavailable: WebM inputs cannot be read", videoDemuxer)
	}
}

func checkHost(ctx context.Context, log Logger, dir string) {
	h := Inspect(ctx, dir)
	if h.LogicalCPUs > 0 {
		log.Info("CPU: %d logical / %d physical cores", h.LogicalCPUs, h.PhysicalCPUs)
	}
	if h.TotalMemory > 0 {
		log.Info("Memory: %s available of %s", display.FormatBytes(int64(h.AvailableMemory)), display.FormatBytes(int64(h.TotalMemory)))
	}
	if h.DiskPath != "" {
		log.Info("Output disk (%s): %s free", h.DiskPath, display.FormatBytes(int64(h.DiskFree)))
	}
	for _, err := range h.Errors {
		log.Warn("Host info: %v", err)
	}
}

// CheckDeps is the pre-pipeline validation for batches that contain video:
// ffmpeg and ffprobe must run, ffmpeg must list the mpeg4 encoder and be
// able to demux WebM. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath(cfg.FFprobePath); err != nil {
		return ErrFfprobeNotFound
	}
	if !hasEncoder(cfg.FFmpegPath, videoEncoder) {
		return ErrNoMPEG4Encoder
	}
	if !hasDemuxer(cfg.FFmpegPath, videoDemuxer) {
		return ErrNoWebMDemuxer
	}
	return nil
}

// --- internal helpers ---

func hasEncoder(ffmpegPath, name string) bool {
	out, err := exec.Command(ffmpegPath, "-hide_banner", "-encoders").Output()
	if err != nil {
		return false
	}
	return listed(string(out), name)
}

func hasDemuxer(ffmpegPath, name string) bool {
	out, err := exec.Command(ffmpegPath, "-hide_banner", "-demuxers").Output()
	if err != nil {
		return false
	}
	return listed(string(out), name)
}

// listed reports whether name appears as a component of the second column
// of ffmpeg's -encoders/-demuxers table. Demuxer names may be
// comma-joined ("matroska,webm").
func listed(table, name string) bool {
	for _, line := range strings.Split(table, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		for _, n := range strings.Split(fields[1], ",") {
			if n == name {
				return true
			}
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		return s[:idx]
	}
	return s
}
