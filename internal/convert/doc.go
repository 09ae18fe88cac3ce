// Package convert holds the three per-file encoders (static image to PNG,
// animated image to GIF, WebM video to MP4) and the tagged Outcome every
// encoder returns.
//
// Encoders never return errors or panic across their boundary: every
// decode, encode, and I/O failure is folded into a Failed outcome, and
// inputs the encoder does not handle become Skipped outcomes. Outputs are
// written to a temporary file in the destination directory and renamed
// into place only after a complete encode.
package convert
