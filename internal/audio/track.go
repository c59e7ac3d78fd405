// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

var (
	// ErrInvalidFile reports input that is not a readable PCM WAV file.
	ErrInvalidFile = errors.New("audio: invalid WAV file")
	// ErrNoTrack reports an operation that needs a loaded track.
	ErrNoTrack = errors.New("audio: no track loaded")
)

// Track is a decoded audio source held in memory as interleaved float32
// samples in [-1, 1]. Every decode gets a fresh ID, so reloading the same
// path still counts as a new source.
type Track struct {
	ID         uuid.UUID
	Path       string
	Data       []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames.
func (t *Track) Frames() int {
	if t.Channels <= 0 {
		return 0
	}
	return len(t.Data) / t.Channels
}

// Duration returns the track length in seconds.
func (t *Track) Duration() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(t.Frames()) / float64(t.SampleRate)
}

// Decode reads a whole WAV file into memory.
func Decode(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	norm, err := sampleScale(int(d.BitDepth))
	if err != nil {
		return nil, err
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	data := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		data[i] = norm.apply(s)
	}

	return &Track{
		ID:         uuid.New(),
		Path:       path,
		Data:       data,
		Channels:   int(d.NumChans),
		SampleRate: int(d.SampleRate),
	}, nil
}

// pcmScale maps raw integer PCM samples onto [-1, 1].
type pcmScale struct {
	bias    int // Subtracted first; 8-bit PCM is unsigned with silence at 128.
	divisor float32
}

func (n pcmScale) apply(s int) float32 {
	return float32(s-n.bias) / n.divisor
}

// sampleScale returns the normalization for a PCM bit depth.
func sampleScale(bitDepth int) (pcmScale, error) {
	switch bitDepth {
	case 8:
		return pcmScale{bias: 128, divisor: 128.0}, nil
	case 16:
		return pcmScale{divisor: 32768.0}, nil
	case 24:
		return pcmScale{divisor: 8388608.0}, nil
	case 32:
		return pcmScale{divisor: 2147483648.0}, nil
	default:
		return pcmScale{}, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidFile, bitDepth)
	}
}
