// SPDX-License-Identifier: MIT
package session

import "regionplay/internal/region"

// Kind identifies an input event.
type Kind int

const (
	KindPointerDown Kind = iota
	KindPointerMove
	KindPointerUp
	KindResize
	KindToggle
	KindNudge
	KindExport
	KindSetRegion
)

func (k Kind) String() string {
	switch k {
	case KindPointerDown:
		return "pointer-down"
	case KindPointerMove:
		return "pointer-move"
	case KindPointerUp:
		return "pointer-up"
	case KindResize:
		return "resize"
	case KindToggle:
		return "toggle"
	case KindNudge:
		return "nudge"
	case KindExport:
		return "export"
	case KindSetRegion:
		return "set-region"
	}
	return "unknown"
}

// Event is an input from the host UI. Only the fields relevant to Kind are
// read.
type Event struct {
	Kind   Kind
	X      float64       // Pointer position, in the same unit as Box.
	Box    region.Box    // Waveform geometry, for KindResize.
	Delta  float64       // Seconds, for KindNudge.
	Region region.Region // For KindSetRegion.
}

func PointerDown(x float64) Event { return Event{Kind: KindPointerDown, X: x} }
func PointerMove(x float64) Event { return Event{Kind: KindPointerMove, X: x} }
func PointerUp(x float64) Event   { return Event{Kind: KindPointerUp, X: x} }
func Resize(b region.Box) Event   { return Event{Kind: KindResize, Box: b} }
func Toggle() Event               { return Event{Kind: KindToggle} }
func Nudge(dt float64) Event      { return Event{Kind: KindNudge, Delta: dt} }
func Export() Event               { return Event{Kind: KindExport} }

// SetRegion replaces the region as if the host had edited it directly.
func SetRegion(r region.Region) Event { return Event{Kind: KindSetRegion, Region: r} }
