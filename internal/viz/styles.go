package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas  lipgloss.Style
	stats   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	active  lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	failed  lipgloss.Style
	high    lipgloss.Style
	mid     lipgloss.Style
	low     lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas:  lipgloss.NewStyle().Padding(1, 2).Foreground(t.Secondary),
		stats:   lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(48),
		header:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		active:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		high:    lipgloss.NewStyle().Foreground(t.Error),
		mid:     lipgloss.NewStyle().Foreground(t.Warning),
		low:     lipgloss.NewStyle().Foreground(t.Success),
	}
}

// ratioBar renders ratio in [0,1] as a fixed-width bar.
func ratioBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

// sparkline renders the last width values, coloured by magnitude
// relative to the window's range.
func (s styles) sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := max(0, min(len(chars)-1, int(norm*float64(len(chars)-1))))
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(s.high.Render(c))
		case norm > 0.3:
			result.WriteString(s.mid.Render(c))
		default:
			result.WriteString(s.low.Render(c))
		}
	}
	return result.String()
}
