// SPDX-License-Identifier: MIT
/*
Package session is the host application around the selection and playback
core. It owns the authoritative Region, the loaded track and its waveform,
and wires the drag controller and the playback synchronizer together on a
single event loop.

Everything except Dispatch, Load, Snapshot and Status must run on the loop
goroutine. Each callback that runs through the session's scheduler
republishes an immutable Snapshot for readers on other goroutines.
*/
package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"regionplay/internal/audio"
	"regionplay/internal/config"
	"regionplay/internal/drag"
	"regionplay/internal/eventloop"
	applog "regionplay/internal/log"
	"regionplay/internal/playback"
	"regionplay/internal/region"
	"regionplay/internal/transport"
	"regionplay/internal/transport/udp"
	"regionplay/internal/waveform"
)

// Backend is the playable media the session loads tracks into.
// *audio.Player implements it.
type Backend interface {
	playback.Media
	Load(t *audio.Track) error
	SetListener(l audio.Listener)
	Close() error
}

// Options configures a Session.
type Options struct {
	Selection config.SelectionConfig
	// ExportDir receives clips written by KindExport. Empty means next to
	// the source file.
	ExportDir string
	// Transport mirrors region changes and snapshots. Nil disables it.
	Transport transport.Transport
}

// View holds the render-facing values, recomputed from the current state
// on every call.
type View struct {
	StartPercent    float64 `json:"start_percent"`
	EndPercent      float64 `json:"end_percent"`
	PlayheadPercent float64 `json:"playhead_percent"`
	IsPlaying       bool    `json:"is_playing"`
	IsReady         bool    `json:"is_ready"`
}

// Session is the host. Create it with New and drive it with Dispatch.
type Session struct {
	sched     eventloop.Scheduler
	opts      Options
	transport transport.Transport

	// Loop-owned state.
	region   region.Region
	box      region.Box
	duration float64
	wave     waveform.Waveform
	track    *audio.Track
	backend  Backend
	sync     *playback.Synchronizer
	drag     *drag.Controller
	captured drag.PointerHandler
	message  string
	lastSent View
	closed   bool

	snap atomic.Pointer[Snapshot]
}

var (
	_ drag.Host      = (*Session)(nil)
	_ drag.Surface   = (*Session)(nil)
	_ audio.Listener = (*Session)(nil)
)

// New creates an empty session on sched. backend may be nil, in which case
// the session selects regions but never plays.
func New(sched eventloop.Scheduler, backend Backend, opts Options) *Session {
	s := &Session{opts: opts, transport: opts.Transport}
	if s.transport == nil {
		s.transport = transport.Multi{}
	}
	s.sched = observed{inner: sched, after: s.publish}

	s.sync = playback.NewSynchronizer(s.sched, s, nil)
	s.drag = drag.NewController(s, nil, s, opts.Selection.DragThreshold)
	s.backend = backend
	if backend != nil {
		backend.SetListener(s)
		if b, ok := backend.(interface{ SetScheduler(eventloop.Scheduler) }); ok {
			b.SetScheduler(s.sched)
		}
	}
	s.publish()
	return s
}

// Scheduler returns the scheduler media backends must post through so that
// their signals republish the snapshot.
func (s *Session) Scheduler() eventloop.Scheduler {
	return s.sched
}

// Dispatch queues ev for the loop. Safe from any goroutine.
func (s *Session) Dispatch(ev Event) {
	s.sched.Post(func() { s.Handle(ev) })
}

// Load queues a newly decoded track. Safe from any goroutine.
func (s *Session) Load(t *audio.Track, wf waveform.Waveform) {
	s.sched.Post(func() { s.Open(t, wf) })
}

// Open installs a track and its waveform. The region resets to its
// initial selection and readiness must be re-signalled by the backend.
func (s *Session) Open(t *audio.Track, wf waveform.Waveform) {
	if s.closed {
		return
	}
	s.drag.Close()

	s.track = t
	s.wave = wf
	s.duration = wf.Duration
	if t != nil && t.Duration() > 0 {
		s.duration = t.Duration()
	}
	s.OnRegionChange(region.Initial(s.duration, s.opts.Selection.DefaultLength))

	if s.backend == nil || t == nil {
		s.sync.SetMedia(nil)
		s.drag.SetPlayer(nil)
		s.message = "playback unavailable"
		return
	}

	s.sync.SetMedia(s.backend)
	if err := s.backend.Load(t); err != nil {
		applog.Errorf("session: loading %s: %v", t.Path, err)
		s.sync.SetMedia(nil)
		s.drag.SetPlayer(nil)
		s.message = fmt.Sprintf("playback unavailable: %v", err)
		return
	}
	s.drag.SetPlayer(s.sync)
	s.message = ""

	s.send(transport.KindSource, map[string]any{
		"id":       t.ID.String(),
		"path":     t.Path,
		"duration": s.duration,
	})
}

// Handle applies one event.
func (s *Session) Handle(ev Event) {
	if s.closed {
		return
	}
	switch ev.Kind {
	case KindPointerDown:
		mode, ok := drag.HitTest(s.Mapper(), s.region, ev.X, s.opts.Selection.HandleWidth)
		if !ok {
			return
		}
		s.drag.PointerDown(mode, ev.X)
	case KindPointerMove:
		if s.captured != nil {
			s.captured.PointerMove(ev.X)
		}
	case KindPointerUp:
		if s.captured != nil {
			s.captured.PointerUp(ev.X)
		}
	case KindResize:
		s.box = ev.Box
	case KindToggle:
		s.sync.Toggle()
	case KindNudge:
		if s.duration <= 0 || s.region.Empty() {
			return
		}
		s.OnRegionChange(s.region.Shift(ev.Delta, s.duration))
	case KindExport:
		s.export()
	case KindSetRegion:
		s.OnRegionChange(ev.Region)
	default:
		applog.Warnf("session: unknown event %s", ev.Kind)
	}
}

// Region implements drag.Host.
func (s *Session) Region() region.Region {
	return s.region
}

// Mapper implements drag.Host.
func (s *Session) Mapper() region.Mapper {
	return region.NewMapper(s.duration, s.box)
}

// OnRegionChange implements drag.Host. The proposed region becomes
// authoritative immediately.
func (s *Session) OnRegionChange(r region.Region) {
	s.region = r
	s.sync.SetRegion(r)
	s.send(transport.KindRegion, r)
}

// Capture implements drag.Surface.
func (s *Session) Capture(h drag.PointerHandler) {
	s.captured = h
}

// Release implements drag.Surface.
func (s *Session) Release() {
	s.captured = nil
}

// CanPlay implements audio.Listener.
func (s *Session) CanPlay() { s.sync.CanPlay() }

// LoadedData implements audio.Listener.
func (s *Session) LoadedData() { s.sync.LoadedData() }

// Ended implements audio.Listener.
func (s *Session) Ended() { s.sync.Ended() }

// View computes the render-facing values.
func (s *Session) View() View {
	m := s.Mapper()
	st := s.sync.State()
	v := View{
		StartPercent:    m.TimeToPercent(s.region.Start),
		EndPercent:      m.TimeToPercent(s.region.End),
		PlayheadPercent: m.TimeToPercent(st.CurrentTime),
		IsPlaying:       st.IsPlaying,
		IsReady:         st.IsReady,
	}
	if s.region.Empty() {
		v.EndPercent = v.StartPercent
	}
	return v
}

// Playback returns the synchronizer state.
func (s *Session) Playback() playback.State {
	return s.sync.State()
}

// Dragging reports whether a gesture holds pointer capture.
func (s *Session) Dragging() bool {
	return s.captured != nil
}

// Close tears the session down: any gesture is dropped and its capture
// released, the frame loop is cancelled and the backend stopped. Safe to
// call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.drag.Close()
	s.sync.Close()
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			applog.Warnf("session: closing backend: %v", err)
		}
	}
	s.closed = true
	s.publish()
	applog.Debugf("session: closed")
}

// export writes the current region off the loop and reports back on it.
func (s *Session) export() {
	if s.track == nil {
		s.message = "nothing to export"
		return
	}
	track, r := s.track, s.region
	path := s.exportPath(track, r)
	s.message = "exporting..."

	go func() {
		err := audio.ExportRegion(track, r, path)
		s.sched.Post(func() {
			if err != nil {
				applog.Errorf("session: export %s: %v", r, err)
				s.message = fmt.Sprintf("export failed: %v", err)
				return
			}
			applog.Infof("session: exported %s to %s", r, path)
			s.message = "exported " + path
			s.send(transport.KindExport, map[string]any{"path": path, "region": r})
		})
	}()
}

func (s *Session) exportPath(t *audio.Track, r region.Region) string {
	dir := s.opts.ExportDir
	if dir == "" {
		dir = filepath.Dir(t.Path)
	}
	base := strings.TrimSuffix(filepath.Base(t.Path), filepath.Ext(t.Path))
	return filepath.Join(dir, fmt.Sprintf("%s_%.1f-%.1f.wav", base, r.Start, r.End))
}

func (s *Session) send(kind transport.Kind, payload any) {
	if s.closed {
		return
	}
	if err := s.transport.Send(transport.NewMessage(kind, payload)); err != nil {
		applog.Debugf("session: transport send: %v", err)
	}
}

// publish stores a fresh snapshot and mirrors view changes.
func (s *Session) publish() {
	snap := s.snapshot()
	s.snap.Store(snap)
	if snap.View != s.lastSent {
		s.lastSent = snap.View
		s.send(transport.KindSnapshot, snap)
	}
}

// Snapshot returns the latest published state. Safe from any goroutine.
func (s *Session) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Status implements udp.StatusProvider.
func (s *Session) Status() udp.Status {
	snap := s.Snapshot()
	return udp.Status{
		Start:    snap.Region.Start,
		End:      snap.Region.End,
		Playhead: snap.CurrentTime,
		Playing:  snap.IsPlaying,
		Ready:    snap.IsReady,
	}
}

var _ udp.StatusProvider = (*Session)(nil)

// observed wraps a scheduler so that every callback it runs is followed by
// after.
type observed struct {
	inner eventloop.Scheduler
	after func()
}

func (o observed) Post(fn func()) {
	o.inner.Post(func() {
		fn()
		o.after()
	})
}

func (o observed) RequestFrame(fn func()) func() {
	return o.inner.RequestFrame(func() {
		fn()
		o.after()
	})
}
