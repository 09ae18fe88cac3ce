// Package probe classifies inputs and reads the stream properties the
// converters need.
//
// Image inputs are classified from container headers alone (see package
// anim for WebP and GIF, image.DecodeConfig for the rest). Video inputs are
// described by a single ffprobe JSON call per file.
package probe
