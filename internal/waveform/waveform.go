// SPDX-License-Identifier: MIT
/*
Package waveform reduces decoded audio to the (offset, amplitude) pairs the
region selector draws, and resamples them to a column count for display.

Samples are immutable once produced; nothing downstream mutates them.
*/
package waveform

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultPoints is the number of samples produced per track.
const DefaultPoints = 200

// ErrNoAudio reports an empty or malformed input buffer.
var ErrNoAudio = errors.New("waveform: no audio frames")

// Sample is one point of the waveform: its time offset in seconds and the
// normalized peak amplitude in [0, 1].
type Sample struct {
	Offset    float64 `json:"offset"`
	Amplitude float64 `json:"amplitude"`
}

// Waveform is the analysis result for one audio source.
type Waveform struct {
	Samples  []Sample `json:"samples"`
	Duration float64  `json:"duration"`
}

// Analyze splits interleaved PCM data into chunks of max(1, frames/points)
// frames and keeps each chunk's peak absolute level. The offset is the
// chunk's centre. Amplitudes are normalized to the loudest chunk.
func Analyze(data []float32, channels, sampleRate, points int) (Waveform, error) {
	if channels <= 0 || sampleRate <= 0 || len(data) < channels {
		return Waveform{}, ErrNoAudio
	}
	if points <= 0 {
		points = DefaultPoints
	}

	frames := len(data) / channels
	duration := float64(frames) / float64(sampleRate)
	chunk := max(1, frames/points)

	peaks := make([]float64, 0, points)
	offsets := make([]float64, 0, points)
	for start := 0; start < frames && len(peaks) < points; start += chunk {
		end := min(start+chunk, frames)
		peak := 0.0
		for f := start; f < end; f++ {
			peak = math.Max(peak, math.Abs(mono(data, f, channels)))
		}
		peaks = append(peaks, peak)
		offsets = append(offsets, float64(start+chunk/2)/float64(sampleRate))
	}

	if loudest := floats.Max(peaks); loudest > 0 {
		floats.Scale(1/loudest, peaks)
	}

	samples := make([]Sample, len(peaks))
	for i := range peaks {
		samples[i] = Sample{Offset: offsets[i], Amplitude: math.Min(peaks[i], 1)}
	}
	return Waveform{Samples: samples, Duration: duration}, nil
}

// mono averages the channels of frame f.
func mono(data []float32, f, channels int) float64 {
	sum := 0.0
	base := f * channels
	for c := 0; c < channels; c++ {
		sum += float64(data[base+c])
	}
	return sum / float64(channels)
}

// Bars resamples the amplitudes to n columns, taking the maximum of the
// samples that fall into each column. Columns with no sample inherit the
// nearest preceding one so sparse waveforms still draw continuously.
func Bars(samples []Sample, n int) []float64 {
	if n <= 0 {
		return nil
	}
	bars := make([]float64, n)
	if len(samples) == 0 {
		return bars
	}

	filled := make([]bool, n)
	for i, s := range samples {
		col := i * n / len(samples)
		bars[col] = math.Max(bars[col], s.Amplitude)
		filled[col] = true
	}
	for i := 1; i < n; i++ {
		if !filled[i] {
			bars[i] = bars[i-1]
		}
	}
	return bars
}
