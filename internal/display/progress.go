package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/backmassage/mediaconv/internal/term"
)

const (
	progressTitle = "File Converter"
	barWidth      = 20
)

// ProgressBar renders batch progress as one line per completed file:
//
//	File Converter - 67% Completed [#############-------] 2/3
//
// On a terminal the bar is colored.
type ProgressBar struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewProgressBar writes to f, enabling color when f is a terminal and
// colors are on.
func NewProgressBar(f *os.File) *ProgressBar {
	return &ProgressBar{out: f, color: term.Enabled() && term.IsTerminal(f)}
}

// NewProgressBarWriter writes uncolored lines to w.
func NewProgressBarWriter(w io.Writer) *ProgressBar {
	return &ProgressBar{out: w}
}

// OnProgress prints the line for current of total completed files.
func (b *ProgressBar) OnProgress(current, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.out, b.render(current, total))
}

func (b *ProgressBar) render(current, total int) string {
	pct := Percent(current, total)
	filled := pct * barWidth / 100
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	if b.color {
		bar = term.Paint(term.Green, strings.Repeat("#", filled)) + strings.Repeat("-", barWidth-filled)
	}
	return fmt.Sprintf("%s - %d%% Completed [%s] %d/%d", progressTitle, pct, bar, current, total)
}

// Percent returns current/total as a whole percentage clamped to 0..100.
// An empty batch counts as complete.
func Percent(current, total int) int {
	if total <= 0 {
		return 100
	}
	pct := current * 100 / total
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
