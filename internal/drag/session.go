// SPDX-License-Identifier: MIT
package drag

import (
	"math"

	"regionplay/internal/region"
)

// Mode is the part of the region a gesture manipulates.
type Mode int

const (
	ModeStart Mode = iota
	ModeEnd
	ModeRegion
)

func (m Mode) String() string {
	switch m {
	case ModeStart:
		return "start"
	case ModeEnd:
		return "end"
	case ModeRegion:
		return "region"
	default:
		return "unknown"
	}
}

// DefaultThreshold is the pointer travel, exclusive, that turns a click
// into a drag.
const DefaultThreshold = 3.0

// Session is the scratch state of one pointer gesture. It is created on
// pointer-down and dropped on pointer-up or teardown.
type Session struct {
	Mode               Mode
	PointerStartX      float64
	RegionAtStart      region.Region
	MovedPastThreshold bool
}

// NewSession starts a gesture at x over the given region.
func NewSession(mode Mode, x float64, r region.Region) *Session {
	return &Session{Mode: mode, PointerStartX: x, RegionAtStart: r}
}

// Move records pointer travel to x. It returns true exactly once: on the
// move that first exceeds threshold.
func (s *Session) Move(x, threshold float64) bool {
	if s.MovedPastThreshold {
		return false
	}
	if math.Abs(x-s.PointerStartX) > threshold {
		s.MovedPastThreshold = true
		return true
	}
	return false
}

// Propose computes the region a pointer at x asks for. current is the
// host's latest region; edge drags keep its opposite bound, a body drag
// shifts the region captured at pointer-down.
func (s *Session) Propose(m region.Mapper, current region.Region, x float64) region.Region {
	switch s.Mode {
	case ModeStart:
		t := m.PointerXToTime(x)
		return region.Region{
			Start: region.Clamp(t, 0, current.End-region.MinDuration),
			End:   current.End,
		}
	case ModeEnd:
		t := m.PointerXToTime(x)
		return region.Region{
			Start: current.Start,
			End:   region.Clamp(t, current.Start+region.MinDuration, m.Duration),
		}
	default:
		dp := m.PointerXToPercent(x) - m.PointerXToPercent(s.PointerStartX)
		dt := dp * m.Duration / 100
		return s.RegionAtStart.Shift(dt, m.Duration)
	}
}

// HitTest reports which drag mode a pointer-down at x would start. Handles
// win over the body when the pointer is within handleWidth of a boundary;
// the nearer handle wins when both qualify.
func HitTest(m region.Mapper, r region.Region, x, handleWidth float64) (Mode, bool) {
	startX := m.TimeToPointerX(r.Start)
	endX := m.TimeToPointerX(r.End)
	dStart := math.Abs(x - startX)
	dEnd := math.Abs(x - endX)

	switch {
	case dStart <= handleWidth && (dStart < dEnd || (dStart == dEnd && x <= startX)):
		return ModeStart, true
	case dEnd <= handleWidth:
		return ModeEnd, true
	case !r.Empty() && x > startX && x < endX:
		return ModeRegion, true
	}
	return 0, false
}
