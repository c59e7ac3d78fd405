// SPDX-License-Identifier: MIT
package tui

import (
	"strings"
	"testing"

	"regionplay/internal/region"
	"regionplay/internal/session"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	l := layout{width: 10}

	assert.Equal(t, 0, l.column(0))
	assert.Equal(t, 5, l.column(55))
	assert.Equal(t, 9, l.column(100), "100% stays on the grid")
	assert.Equal(t, 0, l.column(-20))
	assert.InDelta(t, 5.0, l.percent(0), 1e-9)
	assert.InDelta(t, 95.0, l.percent(9), 1e-9)
}

func TestRenderRuler(t *testing.T) {
	v := session.View{StartPercent: 20, EndPercent: 60, PlayheadPercent: 50}
	assert.Equal(t, "  [──▲]   ", ansi.Strip(renderRuler(v, 10)))

	empty := session.View{StartPercent: 30, EndPercent: 30, PlayheadPercent: 30}
	assert.Equal(t, "   ▲      ", ansi.Strip(renderRuler(empty, 10)), "empty regions draw no bracket")

	assert.Empty(t, renderRuler(v, 0))
}

func TestRenderWaveform(t *testing.T) {
	v := session.View{StartPercent: 0, EndPercent: 50, PlayheadPercent: 100}
	bars := []float64{1, 0.5, 0, 1}

	out := renderWaveform(v, bars, 2)
	lines := strings.Split(ansi.Strip(out), "\n")
	require.Len(t, lines, 2)

	// Only full bars reach the top row; the last column is the playhead.
	assert.Equal(t, "█  █", lines[0])
	assert.Equal(t, "██ █", lines[1])
}

func TestRenderWaveformEmpty(t *testing.T) {
	assert.Empty(t, renderWaveform(session.View{}, nil, 4))
	assert.Empty(t, renderWaveform(session.View{}, []float64{1}, 0))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:00.0", formatTime(0))
	assert.Equal(t, "0:05.3", formatTime(5.3))
	assert.Equal(t, "2:05.0", formatTime(125))
	assert.Equal(t, "0:00.0", formatTime(-3))
}

func TestRenderStatus(t *testing.T) {
	s := &session.Snapshot{
		View:        session.View{IsReady: true, IsPlaying: true},
		Region:      region.Region{Start: 10, End: 40},
		Duration:    120,
		CurrentTime: 12.5,
	}
	assert.Equal(t, "0:10.0 – 0:40.0 (30.0s)   ▶ playing 0:12.5 / 2:00.0", renderStatus(s))

	s.IsPlaying = false
	assert.Contains(t, renderStatus(s), "■ stopped")

	s.IsReady = false
	assert.Contains(t, renderStatus(s), "… loading")
}
