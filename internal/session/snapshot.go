// SPDX-License-Identifier: MIT
package session

import (
	"regionplay/internal/region"
	"regionplay/internal/waveform"
)

// Snapshot is an immutable copy of the session state for readers off the
// loop. Samples is shared with the session and must not be modified.
type Snapshot struct {
	View
	Region      region.Region     `json:"region"`
	Duration    float64           `json:"duration"`
	CurrentTime float64           `json:"current_time"`
	Dragging    bool              `json:"dragging"`
	Source      string            `json:"source,omitempty"`
	Message     string            `json:"message,omitempty"`
	Closed      bool              `json:"closed"`
	Samples     []waveform.Sample `json:"-"`
}

func (s *Session) snapshot() *Snapshot {
	snap := &Snapshot{
		View:        s.View(),
		Region:      s.region,
		Duration:    s.duration,
		CurrentTime: s.sync.CurrentTime(),
		Dragging:    s.Dragging(),
		Message:     s.message,
		Closed:      s.closed,
		Samples:     s.wave.Samples,
	}
	if s.track != nil {
		snap.Source = s.track.Path
	}
	return snap
}
