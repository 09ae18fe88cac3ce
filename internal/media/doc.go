// Package media holds the domain types shared by the probe, convert, and
// pipeline packages: source references, media kinds, video stream
// properties, and the extension tables that drive routing.
//
// Importing media also registers the extra still-image decoders (BMP, TIFF,
// WebP) with the standard image registry, so image.Decode and
// image.DecodeConfig work on every supported input.
package media
