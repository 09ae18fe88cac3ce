package convert

import (
	"fmt"

	"github.com/backmassage/mediaconv/internal/media"
)

// Status is the per-file result category.
type Status int

const (
	StatusSucceeded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the result of converting one source. OutputPath is set only
// on success; Err only on skip or failure.
type Outcome struct {
	Source     media.Source
	Status     Status
	OutputPath string
	Err        error
}

// Succeeded reports a completed conversion.
func Succeeded(src media.Source, output string) Outcome {
	return Outcome{Source: src, Status: StatusSucceeded, OutputPath: output}
}

// Skipped reports an input the encoder deliberately did not convert.
func Skipped(src media.Source, reason error) Outcome {
	return Outcome{Source: src, Status: StatusSkipped, Err: reason}
}

// Failed reports a conversion that was attempted and did not complete.
func Failed(src media.Source, err error) Outcome {
	return Outcome{Source: src, Status: StatusFailed, Err: err}
}

// Reason returns the human-readable cause of a skip or failure, or "" on
// success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Ok reports whether the conversion succeeded.
func (o Outcome) Ok() bool { return o.Status == StatusSucceeded }
