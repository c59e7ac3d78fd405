// SPDX-License-Identifier: MIT
package waveform

// Gate hides low-level noise in the rendered waveform. Amplitudes strictly
// below the threshold draw as silence.
type Gate struct {
	enabled   bool
	threshold float64
}

// NewGate returns an enabled gate with the given threshold.
func NewGate(threshold float64) *Gate {
	g := &Gate{enabled: true}
	g.SetThreshold(threshold)
	return g
}

func (g *Gate) Enable() {
	g.enabled = true
}

func (g *Gate) Disable() {
	g.enabled = false
}

// SetThreshold adjusts the gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	g.threshold = threshold
}

// Threshold returns the current threshold in the range 0.0-1.0.
func (g *Gate) Threshold() float64 {
	return g.threshold
}

// Apply returns a gated copy of samples. The input is left untouched.
func (g *Gate) Apply(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	if !g.enabled {
		return out
	}
	for i := range out {
		if out[i].Amplitude < g.threshold {
			out[i].Amplitude = 0
		}
	}
	return out
}
