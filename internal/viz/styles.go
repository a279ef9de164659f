package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	WarningText = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(24)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)
)

// Field is one labelled line of a summary.
type Field struct {
	Label, Value string
}

// Summary renders fields, then metrics sorted by name, then warnings, inside
// a titled panel.
func Summary(title string, fields []Field, metrics map[string]float64, warnings []string) string {
	var b strings.Builder
	b.WriteString(Title.Render(title))
	b.WriteByte('\n')

	for _, f := range fields {
		b.WriteString(MetricLabel.Render(f.Label) + f.Value + "\n")
	}

	if len(metrics) > 0 {
		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("\n" + Subtle.Render("metrics") + "\n")
		for _, name := range names {
			b.WriteString(MetricLabel.Render(name) + MetricValue.Render(fmt.Sprintf("%.6f", metrics[name])) + "\n")
		}
	}

	for _, w := range warnings {
		b.WriteString("\n" + WarningText.Render("warning: "+w))
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// ProgressBar renders a fraction in [0, 1] as a bar of the given width.
func ProgressBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	filled = max(0, min(filled, width))
	return MetricValue.Render(strings.Repeat("█", filled)) + Subtle.Render(strings.Repeat("░", width-filled))
}
