// SPDX-License-Identifier: MIT
package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentRoundTrip(t *testing.T) {
	m := NewMapper(120, Box{Left: 0, Width: 600})

	for _, tm := range []float64{0, 0.001, 1, 10, 33.333, 59.9, 119.999, 120} {
		got := m.PercentToTime(m.TimeToPercent(tm))
		assert.InDelta(t, tm, got, 1e-9, "round trip of %v", tm)
	}
}

func TestZeroDurationNeverDivides(t *testing.T) {
	for _, d := range []float64{0, -5} {
		m := NewMapper(d, Box{Width: 100})
		assert.Equal(t, 0.0, m.TimeToPercent(10))
		assert.Equal(t, 0.0, m.PercentToTime(50))
	}
}

func TestPointerXToPercent(t *testing.T) {
	m := NewMapper(60, Box{Left: 10, Width: 200})

	tests := []struct {
		desc string
		x    float64
		want float64
	}{
		{"Left edge", 10, 0},
		{"Right edge", 210, 100},
		{"Middle", 110, 50},
		{"Left of container", -50, 0},
		{"Right of container", 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.PointerXToPercent(tt.x), 1e-9)
		})
	}
}

func TestZeroWidthContainer(t *testing.T) {
	m := NewMapper(60, Box{Left: 10, Width: 0})
	assert.Equal(t, 0.0, m.PointerXToPercent(50))
	assert.Equal(t, 0.0, m.PointerXToTime(50))
}

func TestPointerTimeInverse(t *testing.T) {
	m := NewMapper(120, Box{Left: 4, Width: 120})
	for _, tm := range []float64{0, 10, 35, 120} {
		assert.InDelta(t, tm, m.PointerXToTime(m.TimeToPointerX(tm)), 1e-9)
	}
}

func TestMapperIsIdempotent(t *testing.T) {
	m := NewMapper(90, Box{Left: 2, Width: 77})
	first := m.PointerXToTime(40)
	for range 5 {
		assert.Equal(t, first, m.PointerXToTime(40))
	}
}
