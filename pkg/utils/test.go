// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"sync"
)

// MockTransport records everything sent through it instead of transmitting.
// It satisfies the transport.Transport interface.
type MockTransport struct {
	mu     sync.Mutex
	Sent   []any
	Closed bool
}

// Send stores the data for later inspection.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockTransport) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// GenerateSineWave returns frames*channels interleaved samples of a sine at
// the given frequency and amplitude, identical on every channel.
func GenerateSineWave(frames, channels int, sampleRate, frequency, amplitude float64) []float32 {
	buffer := make([]float32, frames*channels)
	for i := range frames {
		t := float64(i) / sampleRate
		v := float32(math.Sin(2*math.Pi*frequency*t) * amplitude)
		for c := range channels {
			buffer[i*channels+c] = v
		}
	}
	return buffer
}

// GenerateComplexWave is a mono 440Hz fundamental with two harmonics.
func GenerateComplexWave(frames int, sampleRate float64) []float32 {
	buffer := make([]float32, frames)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// GenerateSilence returns frames*channels zero samples.
func GenerateSilence(frames, channels int) []float32 {
	return make([]float32, frames*channels)
}
