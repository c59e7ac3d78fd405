// SPDX-License-Identifier: MIT
/*
Package drag turns pointer gestures over the waveform into proposed
region changes.

The controller is a two-state machine, Idle and Dragging(mode). While
dragging it holds pointer capture on a Surface, the equivalent of global
move/up listeners, and releases it on pointer-up or Close through the same
teardown path. It never stores the authoritative region; every event reads
the host's latest value and proposes a new one through OnRegionChange.
*/
package drag

import (
	applog "regionplay/internal/log"
	"regionplay/internal/region"
)

// Host owns the region and the geometry the pointer is measured against.
type Host interface {
	Region() region.Region
	Mapper() region.Mapper
	OnRegionChange(r region.Region)
}

// Player is the slice of playback the controller drives: pause on a real
// drag, seek-and-play on a click.
type Player interface {
	IsPlaying() bool
	IsReady() bool
	Pause()
	PlayFrom(t float64)
}

// PointerHandler receives captured pointer events.
type PointerHandler interface {
	PointerMove(x float64)
	PointerUp(x float64)
}

// Surface routes every pointer move/up to a captured handler, wherever the
// pointer is, until released.
type Surface interface {
	Capture(h PointerHandler)
	Release()
}

// Controller interprets pointer events. It must be driven from a single
// goroutine.
type Controller struct {
	host      Host
	player    Player
	surface   Surface
	threshold float64

	session *Session
}

var _ PointerHandler = (*Controller)(nil)

// NewController creates an idle controller. player may be nil when there is
// no audio source; dragging still works.
func NewController(host Host, player Player, surface Surface, threshold float64) *Controller {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Controller{
		host:      host,
		player:    player,
		surface:   surface,
		threshold: threshold,
	}
}

// SetPlayer swaps the playback collaborator. Passing nil disables pause and
// click-to-play, including for a gesture already in progress.
func (c *Controller) SetPlayer(p Player) {
	c.player = p
}

// Dragging reports the active mode, if any.
func (c *Controller) Dragging() (Mode, bool) {
	if c.session == nil {
		return 0, false
	}
	return c.session.Mode, true
}

// Session exposes the in-flight gesture for inspection. Nil when idle.
func (c *Controller) Session() *Session {
	return c.session
}

// PointerDown starts a gesture in the given mode at x.
func (c *Controller) PointerDown(mode Mode, x float64) {
	if c.session != nil {
		c.end()
	}
	c.session = NewSession(mode, x, c.host.Region())
	if c.surface != nil {
		c.surface.Capture(c)
	}
	applog.Debugf("drag: %s gesture started at x=%.1f", mode, x)
}

// PointerMove handles a captured move. Ignored while idle.
func (c *Controller) PointerMove(x float64) {
	s := c.session
	if s == nil {
		return
	}

	if s.Move(x, c.threshold) {
		applog.Debugf("drag: %s gesture passed threshold", s.Mode)
		if c.player != nil && c.player.IsPlaying() {
			c.player.Pause()
		}
	}
	if !s.MovedPastThreshold {
		return
	}

	next := s.Propose(c.host.Mapper(), c.host.Region(), x)
	c.host.OnRegionChange(next)
}

// PointerUp ends the gesture. A body click that never crossed the
// threshold seeks to the clicked time and plays, provided the time is
// inside the region and the media is ready.
func (c *Controller) PointerUp(x float64) {
	s := c.session
	if s == nil {
		return
	}
	c.end()

	if s.MovedPastThreshold || s.Mode != ModeRegion || c.player == nil {
		return
	}

	r := c.host.Region()
	t := c.host.Mapper().PointerXToTime(x)
	if !r.Contains(t) || !c.player.IsReady() {
		applog.Debugf("drag: click at %.2fs ignored (region %s, ready=%v)", t, r, c.player.IsReady())
		return
	}
	c.player.PlayFrom(t)
}

// Close drops any gesture in progress and releases pointer capture.
func (c *Controller) Close() {
	if c.session != nil {
		applog.Debugf("drag: closing mid-gesture")
		c.end()
	}
}

// end is the single teardown path for a gesture.
func (c *Controller) end() {
	c.session = nil
	if c.surface != nil {
		c.surface.Release()
	}
}
