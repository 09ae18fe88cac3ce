package pipeline

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"

	"github.com/backmassage/mediaconv/internal/config"
	"github.com/backmassage/mediaconv/internal/convert"
	"github.com/backmassage/mediaconv/internal/logging"
	"github.com/backmassage/mediaconv/internal/media"
	"github.com/backmassage/mediaconv/internal/naming"
	"github.com/backmassage/mediaconv/internal/planner"
)

// Skip reasons produced by the dispatcher itself rather than an encoder.
var (
	ErrDryRun       = errors.New("dry run")
	ErrOutputExists = errors.New("output exists")
)

// Request is one batch: sources in processing order, the destination
// directory, and the conversion mode.
type Request struct {
	Sources []media.Source
	DestDir string
	Mode    config.Mode
}

// Encoders holds one encoder per route.
type Encoders struct {
	Static   convert.Encoder
	Animated convert.Encoder
	Video    convert.Encoder
}

func (e Encoders) forRoute(r planner.Route) convert.Encoder {
	switch r {
	case planner.RouteStatic:
		return e.Static
	case planner.RouteAnimated:
		return e.Animated
	case planner.RouteVideo:
		return e.Video
	default:
		return nil
	}
}

// Dispatcher routes each source to its encoder and reports progress.
type Dispatcher struct {
	Encoders     Encoders
	Classify     planner.Classifier
	Reporter     ProgressReporter
	Log          *logging.Logger
	DryRun       bool
	SkipExisting bool
}

// NewDispatcher builds a Dispatcher with the production encoders
// configured from cfg.
func NewDispatcher(cfg *config.Config, log *logging.Logger, classify planner.Classifier, reporter ProgressReporter) *Dispatcher {
	return &Dispatcher{
		Encoders: Encoders{
			Static:   &convert.StaticEncoder{Compression: cfg.PNGCompression.Level(), MaxPixels: cfg.MaxPixels},
			Animated: &convert.AnimatedEncoder{Dither: cfg.Dither, MaxPixels: cfg.MaxPixels},
			Video:    convert.NewVideoTranscoder(ffmpegOptions(cfg), cfg.FFprobePath),
		},
		Classify:     classify,
		Reporter:     reporter,
		Log:          log,
		DryRun:       cfg.DryRun,
		SkipExisting: cfg.SkipExisting,
	}
}

// Run returns the batch as a lazy sequence. Each step converts one source,
// notifies the reporter, and yields the outcome with the new progress.
// Every source is attempted exactly once and a failure never stops the
// batch. The context is checked before each file; a file already started
// always finishes. Breaking out of the range loop stops the batch after
// the current file.
//
// The sequence is single-use: ranging over it a second time yields
// nothing.
func (d *Dispatcher) Run(ctx context.Context, req Request) iter.Seq2[convert.Outcome, Progress] {
	used := false
	return func(yield func(convert.Outcome, Progress) bool) {
		if used {
			return
		}
		used = true

		reporter := d.Reporter
		if reporter == nil {
			reporter = noProgress{}
		}
		claims := naming.NewCollisionTracker()
		total := len(req.Sources)

		for i, src := range req.Sources {
			if ctx.Err() != nil {
				d.Log.Warn("Interrupted before %s (%d of %d files done)", filepath.Base(src.Path), i, total)
				return
			}

			plan := planner.BuildPlan(req.Mode, src, req.DestDir, d.Classify)
			outcome := d.dispatch(ctx, plan, req.DestDir, claims)
			d.report(plan, outcome)

			p := Progress{Current: i + 1, Total: total}
			reporter.OnProgress(p.Current, p.Total)
			if !yield(outcome, p) {
				return
			}
		}
	}
}

// dispatch converts one planned source. All outcomes, including the
// dispatcher's own skips, come back as convert.Outcome values.
func (d *Dispatcher) dispatch(ctx context.Context, plan *planner.FilePlan, destDir string, claims *naming.CollisionTracker) convert.Outcome {
	src := plan.Source
	if plan.Skip() {
		return convert.Skipped(src, plan.SkipReason)
	}

	if owner, hit := claims.Claim(src.Path, plan.OutputPath); hit {
		d.Log.Warn("%s and %s both write %s; the later file wins",
			filepath.Base(owner), filepath.Base(src.Path), filepath.Base(plan.OutputPath))
	}

	if d.SkipExisting {
		if _, err := os.Stat(plan.OutputPath); err == nil {
			return convert.Skipped(src, ErrOutputExists)
		}
	}

	if d.DryRun {
		d.Log.Info("[DRY] Would convert %s -> %s", filepath.Base(src.Path), filepath.Base(plan.OutputPath))
		return convert.Skipped(src, ErrDryRun)
	}

	enc := d.Encoders.forRoute(plan.Route)
	if enc == nil {
		return convert.Skipped(src, convert.ErrUnsupported)
	}
	d.Log.Debug(d.Log.Verbose(), "Route %s (%s): %s", plan.Route, plan.Kind, src.Path)
	return enc.Encode(ctx, src, destDir)
}

// report logs the per-file diagnostic line.
func (d *Dispatcher) report(plan *planner.FilePlan, o convert.Outcome) {
	name := filepath.Base(o.Source.Path)
	switch o.Status {
	case convert.StatusSucceeded:
		d.Log.Success("%s -> %s", name, filepath.Base(o.OutputPath))
	case convert.StatusSkipped:
		if errors.Is(o.Err, ErrDryRun) {
			return
		}
		d.Log.Warn("Skip (%s): %s", o.Reason(), name)
	case convert.StatusFailed:
		d.Log.Error("Error converting %s to %s: %s", o.Source.Path, plan.Route.Target(), o.Reason())
	}
}
