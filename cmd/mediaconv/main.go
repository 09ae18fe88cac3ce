// Command mediaconv is the CLI entrypoint for the mediaconv batch converter.
//
// It loads configuration (defaults, dotenv, environment, flags), validates
// it, and either runs system diagnostics (--check), the analysis table
// (--analyze), or the conversion pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/mediaconv/internal/check"
	"github.com/backmassage/mediaconv/internal/config"
	"github.com/backmassage/mediaconv/internal/display"
	"github.com/backmassage/mediaconv/internal/logging"
	"github.com/backmassage/mediaconv/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg, err := config.Load(os.Args[1:], version)
	if errors.Is(err, flag.ErrHelp) || errors.Is(err, config.ErrVersion) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mediaconv: %v\n", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "mediaconv: %v\n", err)
		return 2
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mediaconv: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available; all output goes through log from here on.
	display.PrintBanner(os.Stdout, version)

	ctx, stop := signalContext(log)
	defer stop()

	if cfg.CheckOnly {
		check.RunCheck(ctx, &cfg, log)
		return 0
	}

	sources, err := pipeline.Discover(cfg.Inputs, cfg.Recursive)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if len(sources) == 0 {
		log.Warn("No media files found")
		return 0
	}

	if cfg.AnalyzeOnly {
		pipeline.Analyze(ctx, &cfg, log, sources)
		return 0
	}

	// Output is created if needed and must not sit inside a recursively
	// scanned input directory.
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	for _, in := range cfg.Inputs {
		if fi, err := os.Stat(in); err != nil || !fi.IsDir() {
			continue
		}
		inputAbs, err := absPath(in)
		if err != nil {
			log.Error("Cannot resolve input path: %s", in)
			return 1
		}
		if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
			log.Error("%v", err)
			log.Error("Choose an output path outside: %s", in)
			return 1
		}
	}

	log.Info("=== mediaconv v%s (%s) ===", version, commit)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	// Fail fast when WebM inputs would reach a missing ffmpeg.
	if cfg.NeedsVideo() && pipeline.ContainsVideo(sources) {
		if err := check.CheckDeps(&cfg); err != nil {
			log.Error("%v (needed for WebM inputs; run --check for details)", err)
			return 1
		}
	}

	// Phase 3: Run pipeline (route, convert, report).
	stats := pipeline.Run(ctx, &cfg, log, sources, display.NewProgressBar(os.Stdout))

	if stats.Failed > 0 || stats.Interrupted() {
		return 1
	}
	return 0
}

// signalContext cancels the returned context on the first SIGINT/SIGTERM
// so the pipeline stops between files. A second signal exits immediately.
func signalContext(log *logging.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		log.Warn("Received interrupt, finishing current file… (again to abort)")
		cancel()
		<-sigCh
		log.Error("Aborted")
		os.Exit(130)
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
