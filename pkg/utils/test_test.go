// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"testing"
)

func TestMockTransport(t *testing.T) {
	mt := &MockTransport{}
	if err := mt.Send("a"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	_ = mt.Send(42)

	got := mt.Messages()
	if len(got) != 2 || got[0] != "a" || got[1] != 42 {
		t.Errorf("Messages() = %v, want [a 42]", got)
	}

	got[0] = "mutated"
	if mt.Messages()[0] != "a" {
		t.Error("Messages() should return a copy")
	}

	_ = mt.Close()
	if !mt.Closed {
		t.Error("Close() should mark the transport closed")
	}
}

func TestGenerateSineWave(t *testing.T) {
	tests := []struct {
		name       string
		frames     int
		channels   int
		sampleRate float64
		frequency  float64
	}{
		{"A4 mono", 1024, 1, 44100, 440.0},
		{"A4 stereo", 1024, 2, 44100, 440.0},
		{"Low sample rate", 1024, 1, 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineWave(tt.frames, tt.channels, tt.sampleRate, tt.frequency, 0.5)

			if len(result) != tt.frames*tt.channels {
				t.Fatalf("buffer size = %d, want %d", len(result), tt.frames*tt.channels)
			}

			peak := 0.0
			for i := 0; i < tt.frames; i++ {
				for c := 1; c < tt.channels; c++ {
					if result[i*tt.channels+c] != result[i*tt.channels] {
						t.Fatalf("frame %d: channels differ", i)
					}
				}
				peak = math.Max(peak, math.Abs(float64(result[i*tt.channels])))
			}
			if peak > 0.5+1e-6 || peak < 0.45 {
				t.Errorf("peak = %.3f, want about 0.5", peak)
			}
		})
	}
}

func TestGenerateComplexWave(t *testing.T) {
	result := GenerateComplexWave(1024, 44100)
	if len(result) != 1024 {
		t.Fatalf("buffer size = %d, want 1024", len(result))
	}
	hasNonZero := false
	for _, v := range result {
		if v != 0 {
			hasNonZero = true
			break
		}
		if math.Abs(float64(v)) > 1 {
			t.Fatalf("sample %v out of range", v)
		}
	}
	if !hasNonZero {
		t.Error("GenerateComplexWave() produced all zeros")
	}
}

func TestGenerateSilence(t *testing.T) {
	for _, v := range GenerateSilence(10, 2) {
		if v != 0 {
			t.Fatal("expected silence")
		}
	}
}
