package pipeline

import (
	"os"

	"github.com/backmassage/mediaconv/internal/convert"
)

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	RunID            string
	Total            int
	Current          int
	Succeeded        int
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64
	Failures         []convert.Outcome
}

// Record folds one outcome into the counters. Byte totals cover successful
// conversions only. It returns the input and output sizes it added.
func (s *RunStats) Record(o convert.Outcome) (in, out int64) {
	s.Current++
	switch o.Status {
	case convert.StatusSucceeded:
		s.Succeeded++
		in, out = fileSize(o.Source.Path), fileSize(o.OutputPath)
		s.TotalInputBytes += in
		s.TotalOutputBytes += out
	case convert.StatusSkipped:
		s.Skipped++
	case convert.StatusFailed:
		s.Failed++
		s.Failures = append(s.Failures, o)
	}
	return in, out
}

// SizeDelta returns the aggregate byte difference between outputs and
// inputs. Positive means the outputs grew.
func (s *RunStats) SizeDelta() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}

// Interrupted reports whether the batch stopped before every file ran.
func (s *RunStats) Interrupted() bool { return s.Current < s.Total }

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
