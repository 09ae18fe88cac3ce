package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		current, total, want int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 66},
		{3, 3, 100},
		{5, 3, 100},
		{0, 0, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.current, tt.total), "%d/%d", tt.current, tt.total)
	}
}

func TestProgressBar_Lines(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBarWriter(&buf)
	for i := 1; i <= 3; i++ {
		bar.OnProgress(i, 3)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"File Converter - 33% Completed [######--------------] 1/3",
		"File Converter - 66% Completed [#############-------] 2/3",
		"File Converter - 100% Completed [####################] 3/3",
	}, lines)
}
