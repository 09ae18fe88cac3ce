// Package pipeline orchestrates input discovery, per-file dispatch to the
// encoders, progress reporting, and batch summary reporting.
//
// Dispatcher.Run is the conversion core: a lazy, single-pass sequence of
// (outcome, progress) pairs, one per source in input order. Run wraps it
// with discovery, logging, stats, and metrics for the CLI.
package pipeline
