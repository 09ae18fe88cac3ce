package pipeline

// Progress is the batch position after a file finishes. Total is fixed for
// the whole run; Current counts finished files, 1..Total.
type Progress struct {
	Current int
	Total   int
}

// Fraction returns Current/Total in 0..1. An empty batch is complete.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Current) / float64(p.Total)
}

// Done reports whether every file has been processed.
func (p Progress) Done() bool { return p.Current >= p.Total }

// ProgressReporter receives a notification after every file. The
// presentation layer decides how to render it.
type ProgressReporter interface {
	OnProgress(current, total int)
}

// ProgressFunc adapts a plain function to ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress calls f.
func (f ProgressFunc) OnProgress(current, total int) { f(current, total) }

type noProgress struct{}

func (noProgress) OnProgress(int, int) {}
