// SPDX-License-Identifier: MIT
package region

// Box is the horizontal extent of the container the waveform is drawn in,
// in pointer units (terminal cells for the TUI).
type Box struct {
	Left  float64
	Width float64
}

// Mapper converts between pointer x, percent of width and time. It is a
// value type with no state beyond its inputs.
type Mapper struct {
	Duration float64
	Box      Box
}

// NewMapper returns a Mapper for the given duration and container geometry.
func NewMapper(duration float64, box Box) Mapper {
	return Mapper{Duration: duration, Box: box}
}

// TimeToPercent returns t as a percentage of the duration. A non-positive
// duration yields 0.
func (m Mapper) TimeToPercent(t float64) float64 {
	if m.Duration <= 0 {
		return 0
	}
	return t / m.Duration * 100
}

// PercentToTime converts a percentage of the width back into seconds.
func (m Mapper) PercentToTime(p float64) float64 {
	if m.Duration <= 0 {
		return 0
	}
	return p / 100 * m.Duration
}

// PointerXToPercent maps a pointer x into [0, 100]. A pointer outside the
// container clamps to the nearest edge; a zero-width container yields 0.
func (m Mapper) PointerXToPercent(x float64) float64 {
	if m.Box.Width <= 0 {
		return 0
	}
	return Clamp((x-m.Box.Left)/m.Box.Width*100, 0, 100)
}

// PointerXToTime is PercentToTime(PointerXToPercent(x)).
func (m Mapper) PointerXToTime(x float64) float64 {
	return m.PercentToTime(m.PointerXToPercent(x))
}

// TimeToPointerX is the inverse of PointerXToTime for t inside the track.
func (m Mapper) TimeToPointerX(t float64) float64 {
	return m.Box.Left + m.TimeToPercent(t)/100*m.Box.Width
}
