// SPDX-License-Identifier: MIT
package eventloop

import "sync"

// Manual is a deterministic Scheduler driven by the caller. Posted work
// runs on Flush and frame callbacks run on Frame. It is meant for tests
// and for headless tools that step the core by hand. Post may be called
// from any goroutine; everything else belongs to the driving goroutine.
type Manual struct {
	mu     sync.Mutex // Protects posted.
	posted []func()
	frames []*frame
}

var _ Scheduler = (*Manual)(nil)

// NewManual returns an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// Post queues fn until the next Flush.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()
}

// RequestFrame queues fn until the next Frame.
func (m *Manual) RequestFrame(fn func()) func() {
	f := &frame{fn: fn}
	m.frames = append(m.frames, f)
	return func() { f.cancelled = true }
}

// Flush runs posted work, including work posted while flushing.
func (m *Manual) Flush() {
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()
		fn()
	}
}

// Frame fires one frame: every live callback requested before the call.
// It reports how many callbacks ran.
func (m *Manual) Frame() int {
	due := m.frames
	m.frames = nil
	ran := 0
	for _, f := range due {
		if f.cancelled {
			continue
		}
		f.cancelled = true
		f.fn()
		ran++
	}
	return ran
}

// Pending returns the number of live frame callbacks.
func (m *Manual) Pending() int {
	n := 0
	for _, f := range m.frames {
		if !f.cancelled {
			n++
		}
	}
	return n
}

// Queued returns the number of posted callbacks not yet flushed.
func (m *Manual) Queued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posted)
}
