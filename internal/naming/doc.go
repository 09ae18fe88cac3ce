// Package naming builds output paths and tracks which input claimed each
// output within a run.
//
// An output is always <destDir>/<source stem>.<target ext>. Two inputs that
// share a stem and a target overwrite each other; the tracker only reports
// the collision so the caller can warn about it.
package naming
