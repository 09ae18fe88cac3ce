package pipeline

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/backmassage/mediaconv/internal/config"
	"github.com/backmassage/mediaconv/internal/convert"
	"github.com/backmassage/mediaconv/internal/display"
	"github.com/backmassage/mediaconv/internal/logging"
	"github.com/backmassage/mediaconv/internal/media"
	"github.com/backmassage/mediaconv/internal/probe"
	"github.com/backmassage/mediaconv/internal/term"
)

// fileRow holds the inspected per-file data for the analysis table.
type fileRow struct {
	Name   string
	Kind   media.Kind
	Dims   string
	Frames string
	Rate   string
	SizeKB int64
}

// Analyze inspects every source without converting it and prints a table
// of kind, dimensions, frame count, frame rate, and size, flagging sizes
// that are statistical outliers within the batch.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger, sources []media.Source) {
	if len(sources) == 0 {
		log.Warn("No media files found")
		return
	}

	total := len(sources)
	log.Info("Analyzing %d files …", total)
	fmt.Println()

	isTTY := term.IsTerminal(os.Stdout)
	var rows []fileRow
	var skipped int
	var sizeVals []float64

	for i, src := range sources {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress()
			}
			log.Warn("Interrupted")
			return
		}

		name := filepath.Base(src.Path)
		printProgress(isTTY, i+1, total, skipped, name)

		row, err := inspectRow(ctx, cfg, src)
		if err != nil {
			skipped++
			if isTTY {
				clearProgress()
			}
			log.Warn("Skip (%v): %s", err, name)
			continue
		}

		rows = append(rows, row)
		if row.SizeKB > 0 {
			sizeVals = append(sizeVals, float64(row.SizeKB))
		}
	}

	if isTTY {
		clearProgress()
	}

	if len(rows) == 0 {
		log.Warn("No files could be inspected")
		return
	}

	sStats := computeStats(sizeVals)
	printAnalysisTable(rows, sStats)
	printAnalysisSummary(log, rows, sStats)
}

// inspectRow classifies one source. Images are read header-only; video
// goes through a single ffprobe call.
func inspectRow(ctx context.Context, cfg *config.Config, src media.Source) (fileRow, error) {
	row := fileRow{Name: filepath.Base(src.Path), Dims: "?", Frames: "?", Rate: "n/a"}
	fi, err := os.Stat(src.Path)
	if err != nil {
		return row, err
	}
	row.SizeKB = (fi.Size() + 1023) / 1024

	switch {
	case src.IsVideo():
		row.Kind = media.KindVideo
		pr, err := probe.Probe(ctx, cfg.FFprobePath, src.Path)
		if err != nil {
			return row, fmt.Errorf("probe failed: %w", err)
		}
		if v := pr.PrimaryVideo; v != nil {
			row.Dims = display.FormatDimensions(v.Width, v.Height)
			row.Rate = display.FormatFrameRate(v.FrameRate.Float())
			if v.NbFrames > 0 {
				row.Frames = strconv.Itoa(v.NbFrames)
			}
		}
	case src.IsImage():
		info, err := probe.Inspect(src)
		if err != nil {
			return row, fmt.Errorf("unreadable: %w", err)
		}
		row.Kind = probe.KindOf(info)
		row.Dims = display.FormatDimensions(info.Width, info.Height)
		row.Frames = strconv.Itoa(info.Frames)
	default:
		return row, convert.ErrUnsupported
	}
	return row, nil
}

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

func printAnalysisTable(rows []fileRow, sStats iqrBounds) {
	nameW := len("File")
	kindW := len("Kind")
	dimW := len("Size (px)")
	frW := len("Frames")
	rateW := len("Rate")
	sizeW := len("Size")

	for _, r := range rows {
		nameW = max(nameW, len(r.Name))
		kindW = max(kindW, len(r.Kind.String()))
		dimW = max(dimW, len(r.Dims))
		frW = max(frW, len(r.Frames))
		rateW = max(rateW, len(r.Rate))
		sizeW = max(sizeW, len(fmtSize(r.SizeKB)))
	}

	if nameW > 50 {
		nameW = 50
	}

	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %-*s  %-*s",
		nameW, "File",
		kindW, "Kind",
		dimW, "Size (px)",
		frW, "Frames",
		rateW, "Rate",
		sizeW, "Size",
	)
	separator := "  " + strings.Repeat("─", len(header)-2)

	fmt.Println(header)
	fmt.Println(separator)

	for _, r := range rows {
		name := r.Name
		if len(name) > nameW {
			name = name[:nameW-1] + "…"
		}

		sClass := sStats.classify(float64(r.SizeKB))

		// Pad the plain text first, then wrap in ANSI color. This avoids
		// the alignment bug where %-*s counts escape bytes as visible width.
		sizeCell := colorPad(fmtSize(r.SizeKB), sizeW, sClass)

		fmt.Printf("  %-*s  %-*s  %-*s  %-*s  %-*s  %s  %s\n",
			nameW, name,
			kindW, r.Kind,
			dimW, r.Dims,
			frW, r.Frames,
			rateW, r.Rate,
			sizeCell,
			formatFlag(sClass),
		)
	}
	fmt.Println()
}

func printAnalysisSummary(log *logging.Logger, rows []fileRow, sStats iqrBounds) {
	counts := make(map[media.Kind]int)
	var outliers, extremes int
	for _, r := range rows {
		counts[r.Kind]++
		switch sStats.classify(float64(r.SizeKB)) {
		case "extreme":
			extremes++
		case "outlier":
			outliers++
		}
	}

	log.Info("Analyzed %d files: %d static, %d animated, %d video",
		len(rows), counts[media.KindStatic], counts[media.KindAnimated], counts[media.KindVideo])
	if sStats.valid {
		log.Info("  Size IQR: %.0f – %.0f KiB (outlier < %.0f or > %.0f)",
			sStats.q1, sStats.q3, sStats.outlierLo, sStats.outlierHi)
	}
	if outliers > 0 {
		log.Warn("  %d size outlier(s) flagged [*]", outliers)
	}
	if extremes > 0 {
		log.Error("  %d extreme size outlier(s) flagged [!]", extremes)
	}
	if outliers == 0 && extremes == 0 {
		log.Success("  No outliers detected")
	}
}

func fmtSize(kb int64) string {
	return display.FormatBytes(kb * 1024)
}

func formatFlag(flag string) string {
	switch flag {
	case "extreme":
		return term.Paint(term.Red, "[!]")
	case "outlier":
		return term.Paint(term.Orange, "[*]")
	default:
		return ""
	}
}

// colorPad pads a plain string to width, then wraps in ANSI color. This
// ensures %-*s-style alignment works correctly regardless of escape sequences.
func colorPad(s string, width int, class string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	switch class {
	case "extreme":
		return term.Paint(term.Red, padded)
	case "outlier":
		return term.Paint(term.Orange, padded)
	default:
		return padded
	}
}

// printProgress shows a live probe counter. On a TTY it writes an
// inline \r-overwritten line; otherwise it is a no-op (the skip warnings
// already provide enough breadcrumbs in piped/logged output).
func printProgress(isTTY bool, current, total, skipped int, name string) {
	if !isTTY {
		return
	}
	pct := current * 100 / total
	status := fmt.Sprintf("  Inspecting [%d/%d] %d%% ", current, total, pct)
	if skipped > 0 {
		status += fmt.Sprintf("(%d skipped) ", skipped)
	}

	maxName := 40
	if len(name) > maxName {
		name = name[:maxName-1] + "…"
	}
	status += name

	// Pad to 80 chars to overwrite previous longer lines, then \r.
	if len(status) < 80 {
		status += strings.Repeat(" ", 80-len(status))
	}
	fmt.Fprintf(os.Stdout, "\r%s", status)
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress() {
	fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", 80))
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
