package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Rational is a frame rate as reported by ffprobe ("30000/1001").
type Rational struct {
	Num int
	Den int
}

// ParseRational parses "num/den" or a plain integer. It returns the zero
// Rational for empty, malformed, or "0/0" input.
func ParseRational(s string) Rational {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}
	}
	num, den, found := strings.Cut(s, "/")
	if !found {
		den = "1"
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return Rational{}
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return Rational{}
	}
	return Rational{Num: n, Den: d}
}

// Valid reports whether the rate is positive and finite.
func (r Rational) Valid() bool { return r.Num > 0 && r.Den > 0 }

// Float returns the rate as frames per second, or 0 when invalid.
func (r Rational) Float() float64 {
	if !r.Valid() {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String formats the rate the way ffmpeg accepts it on the command line.
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
