// Package anim reads and writes animated images.
//
// Inspection walks container headers only (WebP RIFF chunks, GIF blocks)
// so a caller can learn frame counts without decoding pixel data. Decoding
// composites every frame onto a full canvas, honoring the source's blend
// and disposal rules, and yields a FrameSet of independent NRGBA frames.
// Encoding writes a FrameSet as a looping GIF.
package anim
