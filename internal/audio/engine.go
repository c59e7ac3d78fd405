// SPDX-License-Identifier: MIT
/*
Package audio implements the playback backend:
- WAV decoding into memory and region export
- PortAudio output with a lock-free callback
- Readiness and end-of-media signals delivered on the event loop

Thread Safety:
- The output callback only touches atomics and the immutable track data
- Stream lifecycle is serialized by a mutex and never held in the callback
- Listener methods always run on the scheduler goroutine
*/
package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"regionplay/internal/config"
	"regionplay/internal/eventloop"
	applog "regionplay/internal/log"
	"regionplay/internal/playback"

	"github.com/gordonklaus/portaudio"
)

// Listener receives the media lifecycle signals.
type Listener interface {
	CanPlay()
	LoadedData()
	Ended()
}

// output is the part of a PortAudio stream the player drives.
type output interface {
	Start() error
	Stop() error
	Close() error
}

// openFunc opens an output stream for a track.
type openFunc func(p *Player, t *Track) (output, error)

// Player plays a Track through a PortAudio output stream. It implements
// playback.Media.
type Player struct {
	sched    eventloop.Scheduler
	listener Listener
	open     openFunc

	// Output device handling.
	device        *portaudio.DeviceInfo
	outputLatency time.Duration
	framesPerBuf  int

	mu      sync.Mutex // Protects track, stream and running.
	track   *Track
	stream  output
	running bool

	// Shared with the output callback.
	data     atomic.Pointer[[]float32]
	channels atomic.Int32
	rate     atomic.Int32
	pos      atomic.Int64 // Next frame to play.
	playing  atomic.Bool
	ended    atomic.Bool // Set once the end has been signalled for this run.

	endedFn func()
}

var _ playback.Media = (*Player)(nil)

// NewPlayer resolves the configured output device and returns an idle
// player. PortAudio must already be initialized.
func NewPlayer(sched eventloop.Scheduler, cfg config.AudioConfig) (*Player, error) {
	device, err := OutputDevice(cfg.OutputDevice)
	if err != nil {
		return nil, err
	}

	p := newPlayer(sched, openStream)
	p.device = device
	p.framesPerBuf = cfg.FramesPerBuffer
	if cfg.LowLatency {
		p.outputLatency = device.DefaultLowOutputLatency
	} else {
		p.outputLatency = device.DefaultHighOutputLatency
	}
	applog.Infof("audio: output device %q (latency %s)", device.Name, p.outputLatency)
	return p, nil
}

func newPlayer(sched eventloop.Scheduler, open openFunc) *Player {
	p := &Player{sched: sched, open: open}
	p.endedFn = p.signalEnded
	return p
}

// SetListener registers the receiver of lifecycle signals.
func (p *Player) SetListener(l Listener) {
	p.listener = l
}

// SetScheduler replaces the scheduler signals are posted to. Call it before
// the first Load.
func (p *Player) SetScheduler(sched eventloop.Scheduler) {
	p.sched = sched
}

// Track returns the loaded track, or nil.
func (p *Player) Track() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// Load replaces the current source. Any open stream is closed first; once
// the new stream is open LoadedData and CanPlay are posted to the loop.
func (p *Player) Load(t *Track) error {
	if t == nil || t.Channels <= 0 || t.SampleRate <= 0 {
		return ErrInvalidFile
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing.Store(false)
	if err := p.closeStream(); err != nil {
		applog.Warnf("audio: closing previous stream: %v", err)
	}

	p.track = t
	p.data.Store(&t.Data)
	p.channels.Store(int32(t.Channels))
	p.rate.Store(int32(t.SampleRate))
	p.pos.Store(0)
	p.ended.Store(false)

	stream, err := p.open(p, t)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	p.stream = stream

	applog.Infof("audio: loaded %s (%s, %.2fs, %d ch, %d Hz)", t.Path, t.ID, t.Duration(), t.Channels, t.SampleRate)
	p.sched.Post(func() {
		if p.listener != nil {
			p.listener.LoadedData()
			p.listener.CanPlay()
		}
	})
	return nil
}

// Seek moves the read position to t seconds, clamped to the track.
func (p *Player) Seek(t float64) {
	rate := p.rate.Load()
	data := p.data.Load()
	if rate <= 0 || data == nil {
		return
	}
	frames := int64(len(*data) / int(p.channels.Load()))
	f := int64(t * float64(rate))
	f = max(0, min(f, frames))
	p.pos.Store(f)
	p.ended.Store(false)
}

// CurrentTime returns the read position in seconds.
func (p *Player) CurrentTime() float64 {
	rate := p.rate.Load()
	if rate <= 0 {
		return 0
	}
	return float64(p.pos.Load()) / float64(rate)
}

// Play starts the output stream without blocking. done is posted to the
// loop with the outcome.
func (p *Player) Play(done func(playback.StartResult)) {
	go func() {
		err := p.start()
		p.sched.Post(func() {
			done(playback.StartResult{Err: err})
		})
	}()
}

func (p *Player) start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.track == nil || p.stream == nil {
		return fmt.Errorf("%w: %w", playback.ErrRejected, ErrNoTrack)
	}
	if !p.running {
		if err := p.stream.Start(); err != nil {
			return fmt.Errorf("%w: %w", playback.ErrRejected, err)
		}
		p.running = true
	}
	p.ended.Store(false)
	p.playing.Store(true)
	return nil
}

// Pause silences output. The stream keeps running so that a later Play
// resumes without reopening the device.
func (p *Player) Pause() {
	p.playing.Store(false)
}

// Playing reports whether the callback is producing sound.
func (p *Player) Playing() bool {
	return p.playing.Load()
}

// Close stops and releases the output stream.
func (p *Player) Close() error {
	p.playing.Store(false)

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeStream()
}

// closeStream must be called with mu held.
func (p *Player) closeStream() error {
	if p.stream == nil {
		return nil
	}
	stream := p.stream
	p.stream = nil
	if p.running {
		p.running = false
		if err := stream.Stop(); err != nil {
			stream.Close()
			return err
		}
	}
	return stream.Close()
}

// process is the output callback.
// Performance Critical:
// - Uses the shared track data only, no allocations while playing
// - Never blocks; the end signal is posted from its own goroutine
func (p *Player) process(out []float32) {
	data := p.data.Load()
	if !p.playing.Load() || data == nil {
		clear(out)
		return
	}

	ch := int(p.channels.Load())
	pos := p.pos.Load()
	offset := int(pos) * ch
	n := 0
	if offset < len(*data) {
		n = copy(out, (*data)[offset:])
	}
	clear(out[n:])
	if !p.advance(pos, int64(n/ch)) {
		// A Seek landed mid-buffer; the next callback reads from there.
		return
	}

	if n < len(out) {
		p.playing.Store(false)
		if p.ended.CompareAndSwap(false, true) {
			go p.sched.Post(p.endedFn)
		}
	}
}

// advance moves the read position from one frame to the next unless a
// Seek replaced it in the meantime.
func (p *Player) advance(from, frames int64) bool {
	return p.pos.CompareAndSwap(from, from+frames)
}

func (p *Player) signalEnded() {
	applog.Debugf("audio: end of media")
	if p.listener != nil {
		p.listener.Ended()
	}
}

// openStream opens a PortAudio output stream sized for the track.
func openStream(p *Player, t *Track) (output, error) {
	channels := t.Channels
	if p.device != nil && p.device.MaxOutputChannels < channels {
		return nil, fmt.Errorf("device %s has %d output channels, track needs %d",
			p.device.Name, p.device.MaxOutputChannels, channels)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0, // No input device
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: channels,
			Device:   p.device,
			Latency:  p.outputLatency,
		},
		FramesPerBuffer: p.framesPerBuf,
		SampleRate:      float64(t.SampleRate),
	}

	stream, err := portaudio.OpenStream(params, p.process)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
