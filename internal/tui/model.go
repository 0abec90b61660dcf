package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"squeeze/internal/processor"
)

type Model struct {
	updates    <-chan processor.ProgressUpdate
	cancel     context.CancelFunc
	started    time.Time
	width      int
	total      int
	processed  int
	skipped    int
	failed     int
	bytesSaved int64
	current    string
	quitting   bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

// NewModel follows updates until the channel closes. cancel, when set, is
// called if the user quits the view early.
func NewModel(updates <-chan processor.ProgressUpdate, cancel context.CancelFunc) Model {
	return Model{updates: updates, cancel: cancel, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.total += msg.TotalDelta
		m.processed += msg.ProcessedDelta
		m.skipped += msg.SkippedDelta
		m.failed += msg.FailedDelta
		m.bytesSaved += msg.BytesSavedDelta
		if msg.Current != "" {
			m.current = msg.Current
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) done() int {
	return m.processed + m.skipped + m.failed
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done()) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	bar := renderBar(barWidth, ratio)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("squeeze"),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.done(), m.total)) +
			dimStyle.Render(fmt.Sprintf("  skipped:%d  failed:%d", m.skipped, m.failed)),
		labelStyle.Render(fmt.Sprintf("Saved: %s", signedBytes(m.bytesSaved))),
		dimStyle.Render(fmt.Sprintf("Last: %s", m.current)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar),
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

// signedBytes humanizes n, keeping the sign when outputs grew.
func signedBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	barStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
