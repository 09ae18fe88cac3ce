package convert

import "errors"

// Sentinel errors carried by Failed and Skipped outcomes. Underlying causes
// are wrapped with %w so errors.Is works on the outcome's Err.
var (
	ErrDecode      = errors.New("decode error")
	ErrEncode      = errors.New("encode error")
	ErrEmptyMedia  = errors.New("empty frame set")
	ErrNotVideo    = errors.New("not a video")
	ErrUnsupported = errors.New("unsupported format")
)

// IsUnsupported reports whether err is a routing outcome (the input is not
// handled in the current mode) rather than a fault.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrNotVideo) || errors.Is(err, ErrUnsupported)
}
