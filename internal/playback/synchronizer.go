// SPDX-License-Identifier: MIT
/*
Package playback confines a media backend to the selected region and
exposes a playhead for rendering.

The Synchronizer runs on an eventloop.Scheduler. While playing it keeps at
most one frame callback armed; each frame re-reads the host's region, so
bounds are never cached across a playback session. Reaching region.End
stops playback and rewinds the playhead to region.Start.
*/
package playback

import (
	"errors"

	"regionplay/internal/eventloop"
	applog "regionplay/internal/log"
	"regionplay/internal/region"
)

// ErrRejected is the generic start failure a backend can report.
var ErrRejected = errors.New("playback: start rejected")

// StartResult is the outcome of an asynchronous start request.
type StartResult struct {
	Err error
}

// OK reports whether playback actually started.
func (r StartResult) OK() bool { return r.Err == nil }

// Media is the playable backend. Play must not block; the backend calls
// done exactly once, on the scheduler's goroutine.
type Media interface {
	Seek(t float64)
	CurrentTime() float64
	Play(done func(StartResult))
	Pause()
}

// RegionSource yields the host's current region.
type RegionSource interface {
	Region() region.Region
}

// State is the render-facing playback state.
type State struct {
	IsPlaying   bool    `json:"is_playing"`
	CurrentTime float64 `json:"current_time"`
	IsReady     bool    `json:"is_ready"`
}

// Synchronizer drives a Media within a region. Not safe for concurrent
// use; call it from the scheduler's goroutine.
type Synchronizer struct {
	sched   eventloop.Scheduler
	regions RegionSource
	media   Media

	state     State
	lastStart float64

	cancelFrame func() // Non-nil while a frame callback is armed.
	gen         uint64 // Bumped by every play/stop so late start results can be recognised.
	closed      bool
}

// NewSynchronizer creates a stopped synchronizer. media may be nil, in
// which case every playback operation is a no-op until SetMedia.
func NewSynchronizer(sched eventloop.Scheduler, regions RegionSource, media Media) *Synchronizer {
	r := regions.Region()
	return &Synchronizer{
		sched:     sched,
		regions:   regions,
		media:     media,
		state:     State{CurrentTime: r.Start},
		lastStart: r.Start,
	}
}

// State returns a copy of the current state.
func (s *Synchronizer) State() State { return s.state }

// IsPlaying reports whether playback is running or has been requested.
func (s *Synchronizer) IsPlaying() bool { return s.state.IsPlaying }

// IsReady reports whether the backend can start without buffering.
func (s *Synchronizer) IsReady() bool { return s.state.IsReady }

// CurrentTime returns the playhead position in seconds.
func (s *Synchronizer) CurrentTime() float64 { return s.state.CurrentTime }

// Armed reports whether a frame callback is scheduled.
func (s *Synchronizer) Armed() bool { return s.cancelFrame != nil }

// SetMedia replaces the backend. A new source identity is never trusted to
// be ready: readiness drops and must be re-signalled.
func (s *Synchronizer) SetMedia(m Media) {
	if s.state.IsPlaying && s.media != nil {
		s.media.Pause()
	}
	s.stop()
	s.media = m
	s.state.IsReady = false
	s.state.CurrentTime = s.regions.Region().Start
	applog.Debugf("playback: media source replaced (present=%v)", m != nil)
}

// CanPlay handles the "can start without buffering" signal.
func (s *Synchronizer) CanPlay() {
	if s.media == nil || s.closed {
		return
	}
	s.state.IsReady = true
}

// LoadedData handles the "first frame decoded" signal.
func (s *Synchronizer) LoadedData() {
	s.CanPlay()
}

// Play starts playback from region.Start.
func (s *Synchronizer) Play() {
	if s.media == nil || s.closed {
		return
	}
	r := s.regions.Region()
	if r.Empty() {
		applog.Debugf("playback: play ignored for empty region %s", r)
		return
	}
	s.media.Seek(r.Start)
	s.state.CurrentTime = r.Start
	s.request()
}

// PlayFrom seeks to t and starts playback.
func (s *Synchronizer) PlayFrom(t float64) {
	if s.media == nil || s.closed {
		return
	}
	s.media.Seek(t)
	s.state.CurrentTime = t
	s.request()
}

// Pause stops playback and the frame loop. The playhead stays where it is.
func (s *Synchronizer) Pause() {
	if s.media == nil {
		return
	}
	if s.state.IsPlaying {
		s.media.Pause()
	}
	s.stop()
}

// Toggle pauses when playing, plays otherwise.
func (s *Synchronizer) Toggle() {
	if s.state.IsPlaying {
		s.Pause()
		return
	}
	s.Play()
}

// SetRegion tells the synchronizer the host's region changed. When idle, a
// moved start drags the playhead with it.
func (s *Synchronizer) SetRegion(r region.Region) {
	if r.Start != s.lastStart && !s.state.IsPlaying {
		s.state.CurrentTime = r.Start
	}
	s.lastStart = r.Start
}

// Ended handles the backend running out of media before region.End.
func (s *Synchronizer) Ended() {
	if s.closed {
		return
	}
	s.stop()
	s.state.CurrentTime = s.regions.Region().Start
	applog.Debugf("playback: media ended, playhead reset to %.2fs", s.state.CurrentTime)
}

// Close cancels the frame loop and stops the backend. Further calls to
// Play are ignored.
func (s *Synchronizer) Close() {
	if s.closed {
		return
	}
	if s.state.IsPlaying && s.media != nil {
		s.media.Pause()
	}
	s.stop()
	s.closed = true
}

// request issues an asynchronous start and optimistically reports playing.
func (s *Synchronizer) request() {
	s.gen++
	gen := s.gen
	s.state.IsPlaying = true
	applog.Debugf("playback: start requested at %.2fs", s.state.CurrentTime)
	s.media.Play(func(res StartResult) {
		s.started(gen, res)
	})
}

// started consumes a StartResult on the scheduler goroutine.
func (s *Synchronizer) started(gen uint64, res StartResult) {
	if gen != s.gen || s.closed {
		// Superseded by a pause, a newer play or teardown. A backend that
		// started anyway must not keep running unobserved.
		if res.OK() && !s.state.IsPlaying && s.media != nil {
			s.media.Pause()
		}
		return
	}
	if !res.OK() {
		applog.Warnf("playback: start rejected: %v", res.Err)
		s.state.IsPlaying = false
		return
	}
	s.arm()
}

// arm schedules the next frame unless one is already scheduled.
func (s *Synchronizer) arm() {
	if s.cancelFrame != nil {
		return
	}
	s.cancelFrame = s.sched.RequestFrame(s.frame)
}

func (s *Synchronizer) disarm() {
	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
}

// frame is the per-refresh body of the playback loop.
func (s *Synchronizer) frame() {
	s.cancelFrame = nil
	if !s.state.IsPlaying || s.media == nil || s.closed {
		return
	}

	r := s.regions.Region()
	now := s.media.CurrentTime()
	if now >= r.End {
		s.media.Pause()
		s.media.Seek(r.Start)
		s.stop()
		s.state.CurrentTime = r.Start
		applog.Debugf("playback: reached region end %.2fs, rewound to %.2fs", r.End, r.Start)
		return
	}

	s.state.CurrentTime = now
	s.arm()
}

// stop is the single path to the not-playing state.
func (s *Synchronizer) stop() {
	s.gen++
	s.state.IsPlaying = false
	s.disarm()
}
