// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"testing"

	"regionplay/internal/audio"
	"regionplay/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDevices = []audio.Device{
	{ID: 0, Name: "Mic", MaxInputChannels: 2, DefaultSampleRate: 48000},
	{ID: 1, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
	{ID: 2, Name: "Interface", MaxInputChannels: 8, MaxOutputChannels: 8, DefaultSampleRate: 96000},
}

func deviceModel(t *testing.T, base config.AudioConfig, fetch func() ([]audio.Device, error)) DeviceListModel {
	t.Helper()
	m := NewDeviceListModel(base)
	m.fetch = fetch
	m = updateDevices(m, tea.WindowSizeMsg{Width: 80, Height: 40})
	return updateDevices(m, m.Init()())
}

func updateDevices(m DeviceListModel, msg tea.Msg) DeviceListModel {
	next, _ := m.Update(msg)
	return next.(DeviceListModel)
}

func keyPress(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestBufferSizes(t *testing.T) {
	sizes := NewDeviceListModel(config.AudioConfig{}).bufferSizes
	assert.Equal(t, config.MinBufferFrames, sizes[0])
	assert.Equal(t, config.MaxBufferFrames, sizes[len(sizes)-1])
	assert.Len(t, sizes, 8)
}

func TestDeviceListSelectsConfiguredDevice(t *testing.T) {
	base := config.AudioConfig{OutputDevice: 2, FramesPerBuffer: 512}
	m := deviceModel(t, base, func() ([]audio.Device, error) { return testDevices, nil })

	assert.Equal(t, 2, m.selectedIndex)
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "[1] Speakers (Output)")
	assert.Contains(t, out, "[2] Interface (Input/Output)")
}

func TestDeviceListChoose(t *testing.T) {
	base := config.AudioConfig{OutputDevice: -1, FramesPerBuffer: 300, LowLatency: true}
	m := deviceModel(t, base, func() ([]audio.Device, error) { return testDevices, nil })

	// Input-only devices cannot be configured.
	m = updateDevices(m, keyPress(tea.KeyEnter))
	assert.Equal(t, ListScreen, m.activeScreen)

	m = updateDevices(m, keyPress(tea.KeyDown))
	m = updateDevices(m, keyPress(tea.KeyEnter))
	require.Equal(t, ConfigScreen, m.activeScreen)
	assert.Equal(t, 512, m.bufferSizes[m.bufferIndex], "300 rounds up to the next power of two")
	assert.Contains(t, ansi.Strip(m.View()), "Configure Device: Speakers")

	m = updateDevices(m, keyPress(tea.KeyUp))
	next, cmd := m.Update(keyPress(tea.KeyEnter))
	m = next.(DeviceListModel)
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)

	chosen, ok := m.Choice()
	require.True(t, ok)
	assert.Equal(t, config.AudioConfig{OutputDevice: 1, FramesPerBuffer: 256, LowLatency: true}, chosen)
}

func TestDeviceListBack(t *testing.T) {
	m := deviceModel(t, config.AudioConfig{FramesPerBuffer: 64}, func() ([]audio.Device, error) { return testDevices, nil })

	m = updateDevices(m, keyPress(tea.KeyDown))
	m = updateDevices(m, keyPress(tea.KeyEnter))
	m = updateDevices(m, keyPress(tea.KeyEsc))
	assert.Equal(t, ListScreen, m.activeScreen)

	_, ok := m.Choice()
	assert.False(t, ok)
}

func TestDeviceListError(t *testing.T) {
	m := deviceModel(t, config.AudioConfig{}, func() ([]audio.Device, error) {
		return nil, errors.New("no host api")
	})
	assert.Contains(t, m.View(), "Error: no host api")
}

func TestDeviceListEmpty(t *testing.T) {
	m := deviceModel(t, config.AudioConfig{}, func() ([]audio.Device, error) { return nil, nil })
	assert.Contains(t, m.View(), "No audio devices found.")

	m = updateDevices(m, keyPress(tea.KeyEnter))
	assert.Equal(t, ListScreen, m.activeScreen)
}
