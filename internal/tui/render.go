// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"math"
	"strings"

	"regionplay/internal/session"

	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A5A6E"))

	selectedBarStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#25A065"))

	selectedGapStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#1B3A2B"))

	playheadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25D94")).
			Bold(true)

	rulerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F2C14E"))
)

// cell kinds, used to batch styled runs.
const (
	cellEmpty = iota
	cellBar
	cellSelectedBar
	cellSelectedGap
	cellPlayhead
	cellPlayheadBar
)

// layout maps percentages onto a fixed number of columns.
type layout struct {
	width int
}

// column returns the column holding percentage p, clamped to the grid.
func (l layout) column(p float64) int {
	c := int(p / 100 * float64(l.width))
	return max(0, min(c, l.width-1))
}

// percent returns the percentage at the centre of column c.
func (l layout) percent(c int) float64 {
	return (float64(c) + 0.5) / float64(l.width) * 100
}

// renderWaveform draws bars for the snapshot's samples with the region and
// playhead overlaid. bars must have one value per column.
func renderWaveform(v session.View, bars []float64, height int) string {
	width := len(bars)
	if width == 0 || height <= 0 {
		return ""
	}
	l := layout{width: width}
	playhead := l.column(v.PlayheadPercent)

	levels := make([]int, width)
	selected := make([]bool, width)
	for c, a := range bars {
		levels[c] = int(math.Ceil(a * float64(height)))
		p := l.percent(c)
		selected[c] = v.EndPercent > v.StartPercent && p >= v.StartPercent && p <= v.EndPercent
	}

	var sb strings.Builder
	cells := make([]int, width)
	for row := range height {
		fromBottom := height - row
		for c := range width {
			filled := levels[c] >= fromBottom
			switch {
			case c == playhead && filled:
				cells[c] = cellPlayheadBar
			case c == playhead:
				cells[c] = cellPlayhead
			case filled && selected[c]:
				cells[c] = cellSelectedBar
			case filled:
				cells[c] = cellBar
			case selected[c]:
				cells[c] = cellSelectedGap
			default:
				cells[c] = cellEmpty
			}
		}
		writeRuns(&sb, cells)
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// writeRuns renders consecutive cells of the same kind with one style call.
func writeRuns(sb *strings.Builder, cells []int) {
	for start := 0; start < len(cells); {
		end := start + 1
		for end < len(cells) && cells[end] == cells[start] {
			end++
		}
		n := end - start
		switch cells[start] {
		case cellBar:
			sb.WriteString(barStyle.Render(strings.Repeat("█", n)))
		case cellSelectedBar:
			sb.WriteString(selectedBarStyle.Render(strings.Repeat("█", n)))
		case cellSelectedGap:
			sb.WriteString(selectedGapStyle.Render(strings.Repeat(" ", n)))
		case cellPlayhead:
			sb.WriteString(playheadStyle.Render(strings.Repeat("│", n)))
		case cellPlayheadBar:
			sb.WriteString(playheadStyle.Render(strings.Repeat("█", n)))
		default:
			sb.WriteString(strings.Repeat(" ", n))
		}
		start = end
	}
}

// renderRuler marks the region bounds and the playhead under the waveform.
func renderRuler(v session.View, width int) string {
	if width <= 0 {
		return ""
	}
	l := layout{width: width}
	line := []rune(strings.Repeat(" ", width))

	startCol, endCol := l.column(v.StartPercent), l.column(v.EndPercent)
	if v.EndPercent > v.StartPercent {
		for c := startCol; c <= endCol; c++ {
			line[c] = '─'
		}
		line[startCol] = '['
		line[endCol] = ']'
	}
	line[l.column(v.PlayheadPercent)] = '▲'
	return rulerStyle.Render(string(line))
}

// formatTime renders seconds as m:ss.s.
func formatTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	m := int(sec) / 60
	return fmt.Sprintf("%d:%04.1f", m, sec-float64(m*60))
}

// renderStatus summarizes the selection and playback state.
func renderStatus(s *session.Snapshot) string {
	state := "■ stopped"
	switch {
	case s.IsPlaying:
		state = "▶ playing"
	case !s.IsReady:
		state = "… loading"
	}
	return fmt.Sprintf("%s – %s (%.1fs)   %s %s / %s",
		formatTime(s.Region.Start), formatTime(s.Region.End), s.Region.Width(),
		state, formatTime(s.CurrentTime), formatTime(s.Duration))
}
