// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"regionplay/internal/audio"
	"regionplay/internal/config"
	"regionplay/pkg/bitint"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A5A6E"))
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	ConfigScreen
)

var (
	upKey    = key.NewBinding(key.WithKeys("up", "k"))
	downKey  = key.NewBinding(key.WithKeys("down", "j"))
	enterKey = key.NewBinding(key.WithKeys("enter"))
	backKey  = key.NewBinding(key.WithKeys("esc"))
	quitKey  = key.NewBinding(key.WithKeys("q", "ctrl+c"))
)

// DeviceListModel lets the user browse audio devices and choose the output
// device and buffer size used for playback.
type DeviceListModel struct {
	fetch         func() ([]audio.Device, error)
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType

	base        config.AudioConfig
	bufferSizes []int
	bufferIndex int
	chosen      *config.AudioConfig
}

// NewDeviceListModel creates a device browser starting from base.
func NewDeviceListModel(base config.AudioConfig) DeviceListModel {
	return DeviceListModel{
		fetch:        audio.GetDevices,
		activeScreen: ListScreen,
		base:         base,
		bufferSizes:  bitint.PowersOfTwo(config.MinBufferFrames, config.MaxBufferFrames),
	}
}

// Choice returns the audio settings confirmed by the user, if any.
func (m DeviceListModel) Choice() (config.AudioConfig, bool) {
	if m.chosen == nil {
		return config.AudioConfig{}, false
	}
	return *m.chosen, true
}

// Init initializes the Bubble Tea model
func (m DeviceListModel) Init() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		devices, err := fetch()
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg{devices}
	}
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// Update handles input and updates the model
func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = msg.devices
		m.selectedIndex = 0
		for i, d := range m.devices {
			if d.ID == m.base.OutputDevice {
				m.selectedIndex = i
			}
		}
		m.refresh()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, upKey):
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case key.Matches(msg, downKey):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
				}
			case key.Matches(msg, enterKey):
				if len(m.devices) > 0 && m.devices[m.selectedIndex].CanPlay() {
					m.activeScreen = ConfigScreen
					m.bufferIndex = m.indexOfBuffer(m.base.FramesPerBuffer)
				}
			}
			m.refresh()
			return m, nil

		case ConfigScreen:
			switch {
			case key.Matches(msg, backKey):
				m.activeScreen = ListScreen
			case key.Matches(msg, upKey):
				if m.bufferIndex > 0 {
					m.bufferIndex--
				}
			case key.Matches(msg, downKey):
				if m.bufferIndex < len(m.bufferSizes)-1 {
					m.bufferIndex++
				}
			case key.Matches(msg, enterKey):
				chosen := m.base
				chosen.OutputDevice = m.devices[m.selectedIndex].ID
				chosen.FramesPerBuffer = m.bufferSizes[m.bufferIndex]
				m.chosen = &chosen
				return m, tea.Quit
			}
			m.refresh()
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// indexOfBuffer finds the option for frames, rounding up to a power of two.
func (m DeviceListModel) indexOfBuffer(frames int) int {
	want := bitint.NextPowerOfTwo(max(frames, config.MinBufferFrames))
	for i, n := range m.bufferSizes {
		if n >= want {
			return i
		}
	}
	return len(m.bufferSizes) - 1
}

func (m *DeviceListModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == ConfigScreen {
		m.viewport.SetContent(m.renderDeviceConfig())
		return
	}
	m.viewport.SetContent(m.renderDevices())
}

// View renders the UI
func (m DeviceListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var title, help string

	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Output Devices")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Configure • q: Quit")
	} else {
		title = titleStyle.Render("Playback Configuration")
		help = infoStyle.Render("↑/↓: Change Value • Enter: Use • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list. Devices without outputs are
// listed but cannot be chosen.
func (m DeviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		deviceInfo := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Kind())
		deviceInfo += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		deviceInfo += fmt.Sprintf("    Default sample rate: %.0f Hz\n",
			device.DefaultSampleRate)

		switch {
		case i == m.selectedIndex:
			deviceInfo = highlightStyle.Render(deviceInfo)
		case !device.CanPlay():
			deviceInfo = mutedStyle.Render(deviceInfo)
		}

		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderDeviceConfig formats the buffer size options for the selected device.
func (m DeviceListModel) renderDeviceConfig() string {
	var sb strings.Builder
	device := m.devices[m.selectedIndex]

	fmt.Fprintf(&sb, "Configure Device: %s\n\n", device.Name)
	sb.WriteString("Frames per buffer:\n")

	for i, size := range m.bufferSizes {
		marker := " "
		if i == m.bufferIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %d (%.1f ms)\n", marker, size,
			float64(size)/device.DefaultSampleRate*1000)

		if i == m.bufferIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}

	return sb.String()
}

// StartDeviceListUI launches the device browser. ok is false when the user
// quit without choosing.
func StartDeviceListUI(base config.AudioConfig) (chosen config.AudioConfig, ok bool, err error) {
	p := tea.NewProgram(
		NewDeviceListModel(base),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return base, false, err
	}
	chosen, ok = final.(DeviceListModel).Choice()
	if !ok {
		return base, false, nil
	}
	return chosen, true, nil
}
