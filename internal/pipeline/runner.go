package pipeline

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/mediaconv/internal/config"
	"github.com/backmassage/mediaconv/internal/display"
	"github.com/backmassage/mediaconv/internal/ffmpeg"
	"github.com/backmassage/mediaconv/internal/logging"
	"github.com/backmassage/mediaconv/internal/media"
	"github.com/backmassage/mediaconv/internal/metrics"
	"github.com/backmassage/mediaconv/internal/probe"
)

// Run is the top-level batch entry point. It converts sources in order
// into cfg.OutputDir, logs a header and summary, records metrics when
// cfg.MetricsFile is set, and returns aggregate stats.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, sources []media.Source, reporter ProgressReporter) RunStats {
	stats := RunStats{RunID: uuid.NewString(), Total: len(sources)}
	logBatchHeader(cfg, log, &stats)

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.NewRecorder(string(cfg.Mode))
	}

	d := NewDispatcher(cfg, log, probe.Classify, reporter)
	req := Request{Sources: sources, DestDir: cfg.OutputDir, Mode: cfg.Mode}

	start := time.Now()
	for o := range d.Run(ctx, req) {
		in, out := stats.Record(o)
		rec.Observe(o.Status.String(), time.Since(start))
		if o.Ok() {
			rec.AddBytes(in, out)
		}
		start = time.Now()
	}

	logSummary(cfg, log, &stats)

	rec.Finish(stats.RunID, time.Now())
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn("Cannot write metrics file %s: %v", cfg.MetricsFile, err)
	}
	return stats
}

func ffmpegOptions(cfg *config.Config) ffmpeg.Options {
	return ffmpeg.Options{
		Binary:  cfg.FFmpegPath,
		Verbose: cfg.Verbose,
		Quality: cfg.VideoQuality,
	}
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Run %s", stats.RunID)
	log.Info("Found %d files", stats.Total)
	log.Info("Mode: %s, output: %s", cfg.Mode, cfg.OutputDir)

	var opts []string
	opts = append(opts, "png compression "+string(cfg.PNGCompression))
	if cfg.Dither {
		opts = append(opts, "gif dither")
	}
	if cfg.NeedsVideo() {
		opts = append(opts, "mp4 q:v "+strconv.Itoa(cfg.VideoQuality))
	}
	log.Info("Options: %s", strings.Join(opts, ", "))

	if cfg.DryRun {
		log.Info("Dry run: nothing will be written")
	}
	if cfg.SkipExisting {
		log.Info("Existing outputs: skip")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d succeeded, %d skipped, %d failed", stats.Succeeded, stats.Skipped, stats.Failed)
	log.Info("Summary report:")
	log.Info("  Total files processed: %d of %d", stats.Current, stats.Total)
	if stats.Interrupted() {
		log.Warn("  Interrupted: %d files not attempted", stats.Total-stats.Current)
	}

	for _, f := range stats.Failures {
		log.Error("  Failed: %s (%s)", f.Source.Path, f.Reason())
	}

	if cfg.DryRun {
		log.Info("  Output size: n/a (dry run)")
		return
	}
	if stats.Succeeded == 0 {
		return
	}
	log.Info("  Output size: %s (input %s, %s)",
		display.FormatBytes(stats.TotalOutputBytes),
		display.FormatBytes(stats.TotalInputBytes),
		display.FormatBytesWithSign(stats.SizeDelta()))
}
