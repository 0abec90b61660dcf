package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type SummaryRow struct {
	Label string
	Value string
	// Blank rows render as an empty separator line.
	Blank bool
}

// RenderSummary draws rows as a two-column table under title.
func RenderSummary(title string, rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
		valueWidth = max(valueWidth, lipgloss.Width(row.Value))
	}

	width := max(labelWidth+valueWidth+3, lipgloss.Width(title))
	hline := strings.Repeat("=", width)
	lines := []string{hline}
	if title != "" {
		lines = append(lines, titleStyle.Render(title), hline)
	}

	for _, row := range rows {
		if row.Blank {
			lines = append(lines, "")
			continue
		}
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
)
