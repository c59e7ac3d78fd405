// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"os"

	applog "regionplay/internal/log"
	"regionplay/internal/region"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// exportBitDepth is the PCM depth of exported clips.
const exportBitDepth = 16

type exportFile interface {
	io.WriteSeeker
	io.Closer
}

var createExportFile = func(path string) (exportFile, error) {
	return os.Create(path)
}

// ExportRegion writes the part of track covered by r to a 16-bit PCM WAV
// file at path. A failed export leaves no file behind.
func ExportRegion(track *Track, r region.Region, path string) error {
	if track == nil {
		return ErrNoTrack
	}
	if err := r.Validate(track.Duration()); err != nil {
		return err
	}

	first := int(r.Start * float64(track.SampleRate))
	last := min(int(r.End*float64(track.SampleRate)), track.Frames())
	samples := track.Data[first*track.Channels : last*track.Channels]

	file, err := createExportFile(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(file, track.SampleRate, exportBitDepth, track.Channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: track.Channels,
			SampleRate:  track.SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: exportBitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(region.Clamp(float64(s), -1, 1) * 32767)
	}

	if err := enc.Write(buf); err != nil {
		discard(file, path)
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		discard(file, path)
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// discard closes and removes a partially written export.
func discard(file io.Closer, path string) {
	_ = file.Close()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		applog.Warnf("audio: removing partial export %s: %v", path, err)
	}
}
