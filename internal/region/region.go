// SPDX-License-Identifier: MIT
/*
Package region holds the selected time sub-range of an audio track and the
pure conversions between pointer position, percentage of width and time.

Everything here is a value or a pure function. The authoritative Region is
owned by the host; controllers only propose new values.
*/
package region

import (
	"errors"
	"fmt"
)

const (
	// MinDuration is the smallest width, in seconds, a drag can produce.
	MinDuration = 1.0

	// DefaultLength is the width of the region selected when a track loads.
	DefaultLength = 30.0
)

// ErrEmpty reports a region whose start is not before its end.
var ErrEmpty = errors.New("region: empty range")

// Region is a [Start, End] range in seconds.
type Region struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Default returns the region selected for a freshly loaded track of the
// given duration: the first DefaultLength seconds, or the whole track when
// it is shorter than that.
func Default(duration float64) Region {
	return Initial(duration, DefaultLength)
}

// Initial is Default with a configurable length.
func Initial(duration, length float64) Region {
	if duration <= 0 {
		return Region{}
	}
	if length <= 0 || duration < length {
		return Region{Start: 0, End: duration}
	}
	return Region{Start: 0, End: length}
}

// Width returns End-Start. It may be negative for a malformed region.
func (r Region) Width() float64 {
	return r.End - r.Start
}

// Empty reports whether the region contains nothing. A host can hand us
// start >= end; such a region renders zero-width and never seeks.
func (r Region) Empty() bool {
	return !(r.Start < r.End)
}

// Contains reports whether t lies in the closed interval [Start, End].
func (r Region) Contains(t float64) bool {
	if r.Empty() {
		return false
	}
	return t >= r.Start && t <= r.End
}

// Validate checks the region against a track duration.
func (r Region) Validate(duration float64) error {
	if r.Empty() {
		return fmt.Errorf("%w: start=%.3f end=%.3f", ErrEmpty, r.Start, r.End)
	}
	if r.Start < 0 || r.End > duration {
		return fmt.Errorf("region: [%.3f, %.3f] outside [0, %.3f]", r.Start, r.End, duration)
	}
	return nil
}

// Shift moves the region by dt seconds keeping its width, clamped to
// [0, duration]. The start bound is checked first, then the end bound.
// End is always start plus the original width, so the width is exact
// whenever that sum is representable and otherwise off by one rounding.
func (r Region) Shift(dt, duration float64) Region {
	width := r.Width()
	start := r.Start + dt
	end := start + width
	if start < 0 {
		start, end = 0, width
	}
	if end > duration {
		start, end = duration-width, duration
	}
	return Region{Start: start, End: end}
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return fmt.Sprintf("[%.2fs, %.2fs]", r.Start, r.End)
}

// Clamp limits v to the closed interval [lo, hi]. When lo > hi the lower
// bound wins, which keeps a degenerate host region from producing NaNs.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
