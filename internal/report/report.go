// Package report renders per-file results and the end-of-run summary.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"squeeze/internal/processor"
	"squeeze/internal/tui"
)

const megabyte = 1024 * 1024

// Rows builds the summary table. Size and ratio rows only appear when at
// least one file was processed and the originals were non-empty.
func Rows(stats processor.RunStatistics) []tui.SummaryRow {
	rows := []tui.SummaryRow{
		{Label: "Total files", Value: strconv.Itoa(stats.Total)},
		{Label: "Processed", Value: strconv.Itoa(stats.Processed)},
		{Label: "Skipped", Value: strconv.Itoa(stats.Skipped)},
		{Label: "Failed", Value: strconv.Itoa(stats.Failed)},
	}

	if stats.Processed > 0 && stats.OriginalBytes > 0 {
		originalMB := float64(stats.OriginalBytes) / megabyte
		compressedMB := float64(stats.CompressedBytes) / megabyte
		rows = append(rows,
			tui.SummaryRow{Blank: true},
			tui.SummaryRow{Label: "Original size", Value: fmt.Sprintf("%.2f MB", originalMB)},
			tui.SummaryRow{Label: "Compressed size", Value: fmt.Sprintf("%.2f MB", compressedMB)},
			tui.SummaryRow{Label: "Average ratio", Value: fmt.Sprintf("%.1f%%", stats.Ratio())},
			tui.SummaryRow{Label: "Space saved", Value: fmt.Sprintf("%.2f MB", originalMB-compressedMB)},
		)
		if stats.MetadataDropped > 0 {
			rows = append(rows, tui.SummaryRow{Label: "Metadata stripped", Value: strconv.Itoa(stats.MetadataDropped)})
		}
	}

	rows = append(rows,
		tui.SummaryRow{Blank: true},
		tui.SummaryRow{Label: "Elapsed", Value: fmt.Sprintf("%.1fs", stats.Elapsed().Seconds())},
	)
	return rows
}

// Write prints the summary table to w.
func Write(w io.Writer, stats processor.RunStatistics) {
	fmt.Fprintln(w, tui.RenderSummary("Compression report", Rows(stats)))
}

// WriteOutcome prints the result lines for one file; idx is 1-based.
func WriteOutcome(w io.Writer, idx, total int, o processor.Outcome) {
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render(fmt.Sprintf("(%d/%d)", idx, total)), fileStyle.Render(o.Display))

	switch o.Status {
	case processor.StatusSkipped:
		fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("skipped, exists:"), o.Destination)
	case processor.StatusFailed:
		fmt.Fprintf(w, "  %s %v\n", failStyle.Render("failed:"), o.Err)
	default:
		fmt.Fprintf(w, "  %s %s -> %s\n",
			dimStyle.Render("size:"),
			humanize.IBytes(uint64(o.OriginalSize)),
			okStyle.Render(humanize.IBytes(uint64(o.CompressedSize))),
		)
		fmt.Fprintf(w, "  %s %.1f%% | %s %d (%s)\n",
			dimStyle.Render("ratio:"), o.Ratio(),
			dimStyle.Render("quality:"), o.Quality, o.Bucket,
		)
	}
}

// WriteTrials prints every ladder rung tried for o, marking the winner.
func WriteTrials(w io.Writer, o processor.Outcome) {
	for _, t := range o.Trials {
		mark := " "
		if t.Err == nil && t.Quality == o.Quality {
			mark = okStyle.Render("*")
		}
		if t.Err != nil {
			fmt.Fprintf(w, "  %s q=%-3d %s\n", mark, t.Quality, failStyle.Render(t.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "  %s q=%-3d %s\n", mark, t.Quality, humanize.IBytes(uint64(t.Size)))
	}
}

var (
	fileStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	dimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
	okStyle   = lipgloss.NewStyle().Foreground(tui.ColorSuccess)
	warnStyle = lipgloss.NewStyle().Foreground(tui.ColorWarn)
	failStyle = lipgloss.NewStyle().Foreground(tui.ColorFail)
)
