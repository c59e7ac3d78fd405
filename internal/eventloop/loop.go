// SPDX-License-Identifier: MIT
/*
Package eventloop provides the single-threaded cooperative loop the
selection and playback core runs on.

All callbacks, posted work and frame callbacks alike, execute on one
goroutine, so the components built on top of it need no locks. The only
suspension points are Post (work completed elsewhere, observed later) and
RequestFrame (yield until the next display refresh).
*/
package eventloop

import (
	"sync"
	"time"

	applog "regionplay/internal/log"
)

// Scheduler is the subset of the loop that components depend on.
type Scheduler interface {
	// Post queues fn to run on the loop. Safe from any goroutine.
	Post(fn func())
	// RequestFrame schedules fn for the next frame. The returned cancel
	// function is idempotent and must be called from the loop.
	RequestFrame(fn func()) (cancel func())
}

// DefaultFrameRate is used when a Loop is created with a non-positive rate.
const DefaultFrameRate = 60

// Loop is a Scheduler backed by a goroutine and a frame ticker.
type Loop struct {
	interval time.Duration

	posted chan func()

	frameMu sync.Mutex
	frames  []*frame

	ticker   *time.Ticker   // Non-nil while running.
	doneChan chan struct{}  // Closed to stop the loop goroutine.
	stopOnce sync.Once      // Guards the stop sequence for one Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the loop goroutine during Stop.
	mu       sync.Mutex     // Protects ticker and doneChan during Start/Stop.
}

var _ Scheduler = (*Loop)(nil)

// New creates a loop that fires frame callbacks frameRate times a second.
func New(frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
		applog.Warnf("eventloop: invalid frame rate, defaulting to %d", frameRate)
	}
	return &Loop{
		interval: time.Second / time.Duration(frameRate),
		posted:   make(chan func(), 256),
	}
}

// Start launches the loop goroutine. Calling Start on a running loop is a
// no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.ticker != nil {
		l.mu.Unlock()
		applog.Warnf("eventloop: Start called but already running")
		return
	}

	l.ticker = time.NewTicker(l.interval)
	l.doneChan = make(chan struct{})
	l.stopOnce = sync.Once{}

	ticker := l.ticker
	doneChan := l.doneChan
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		applog.Debugf("eventloop: started (interval %s)", l.interval)
		for {
			select {
			case fn := <-l.posted:
				fn()
			case <-ticker.C:
				l.runFrame()
			case <-doneChan:
				applog.Debugf("eventloop: stop signal received")
				return
			}
		}
	}()
}

// Stop terminates the loop goroutine and waits for it. Pending frame
// callbacks are dropped. Safe to call more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.ticker == nil {
		l.mu.Unlock()
		return
	}
	l.stopOnce.Do(func() {
		close(l.doneChan)
		l.ticker.Stop()
		l.ticker = nil
	})
	l.mu.Unlock()

	l.wg.Wait()

	l.frameMu.Lock()
	for _, f := range l.frames {
		f.cancelled = true
	}
	l.frames = nil
	l.frameMu.Unlock()
}

// Post queues fn for the loop goroutine. Work posted to a stopped loop is
// discarded once its queue is full rather than blocking the caller.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	done := l.doneChan
	l.mu.Unlock()

	select {
	case l.posted <- fn:
	case <-done:
		applog.Debugf("eventloop: dropped work posted after stop")
	}
}

// Call runs fn on the loop and waits for it to return. It reports false,
// without running fn, when the loop is not running. Never call it from the
// loop goroutine.
func (l *Loop) Call(fn func()) bool {
	l.mu.Lock()
	done := l.doneChan
	running := l.ticker != nil
	l.mu.Unlock()
	if !running {
		return false
	}

	finished := make(chan struct{})
	select {
	case l.posted <- func() { fn(); close(finished) }:
	case <-done:
		return false
	}
	select {
	case <-finished:
		return true
	case <-done:
		return false
	}
}

// RequestFrame registers fn for the next tick.
func (l *Loop) RequestFrame(fn func()) func() {
	f := &frame{fn: fn}
	l.frameMu.Lock()
	l.frames = append(l.frames, f)
	l.frameMu.Unlock()

	return func() {
		l.frameMu.Lock()
		f.cancelled = true
		l.frameMu.Unlock()
	}
}

// runFrame fires the callbacks registered before this tick, in request
// order. Callbacks requested while running land in the next frame.
func (l *Loop) runFrame() {
	l.frameMu.Lock()
	due := l.frames
	l.frames = nil
	l.frameMu.Unlock()

	for _, f := range due {
		l.frameMu.Lock()
		skip := f.cancelled
		f.cancelled = true
		l.frameMu.Unlock()
		if !skip {
			f.fn()
		}
	}
}

// Pending returns the number of live frame callbacks waiting for a tick.
func (l *Loop) Pending() int {
	l.frameMu.Lock()
	defer l.frameMu.Unlock()
	n := 0
	for _, f := range l.frames {
		if !f.cancelled {
			n++
		}
	}
	return n
}

type frame struct {
	fn        func()
	cancelled bool
}
