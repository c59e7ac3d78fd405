// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"regionplay/internal/region"
	"regionplay/internal/session"
	"regionplay/internal/waveform"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	margin        = 2 // Columns left and right of the waveform.
	headerLines   = 2 // Title and a blank line above the waveform.
	chromeLines   = 7 // Everything that is not waveform.
	minWaveHeight = 3
)

type keyMap struct {
	Toggle key.Binding
	Left   key.Binding
	Right  key.Binding
	Export key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Left, k.Right, k.Export, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "play/pause")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "nudge -1s")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "nudge +1s")),
	Export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export region")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// NudgeStep is the region shift, in seconds, of one arrow key press.
const NudgeStep = 1.0

type tickMsg time.Time

// Dispatcher is the part of the session the UI drives.
type Dispatcher interface {
	Dispatch(ev session.Event)
	Snapshot() *session.Snapshot
}

// RegionModel is the Bubble Tea model that renders the waveform with the
// selected region and turns mouse and key input into session events.
type RegionModel struct {
	sess     Dispatcher
	keys     keyMap
	help     help.Model
	gate     *waveform.Gate
	interval time.Duration

	ready  bool
	width  int // Waveform columns.
	height int // Waveform rows.
	snap   *session.Snapshot

	// Gated bars for the current samples and width.
	bars    []float64
	barsSrc []waveform.Sample
}

// NewRegionModel creates the model. frameRate sets the redraw rate.
func NewRegionModel(sess Dispatcher, gate *waveform.Gate, frameRate int) RegionModel {
	if frameRate <= 0 {
		frameRate = 30
	}
	if gate == nil {
		gate = waveform.NewGate(0)
		gate.Disable()
	}
	return RegionModel{
		sess:     sess,
		keys:     defaultKeys,
		help:     help.New(),
		gate:     gate,
		interval: time.Second / time.Duration(frameRate),
		snap:     sess.Snapshot(),
	}
}

// Init starts the redraw ticker.
func (m RegionModel) Init() tea.Cmd {
	return m.tick()
}

func (m RegionModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles input and refreshes from the session snapshot.
func (m RegionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(1, msg.Width-2*margin)
		m.height = max(minWaveHeight, msg.Height-chromeLines)
		m.help.Width = msg.Width
		m.ready = true
		m.sess.Dispatch(session.Resize(region.Box{Left: margin, Width: float64(m.width)}))
		m.bars = nil
		m.refreshBars()

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.sess.Dispatch(session.Toggle())
		case key.Matches(msg, m.keys.Left):
			m.sess.Dispatch(session.Nudge(-NudgeStep))
		case key.Matches(msg, m.keys.Right):
			m.sess.Dispatch(session.Nudge(NudgeStep))
		case key.Matches(msg, m.keys.Export):
			m.sess.Dispatch(session.Export())
		}

	case tickMsg:
		m.snap = m.sess.Snapshot()
		if m.snap != nil && m.snap.Closed {
			return m, tea.Quit
		}
		m.refreshBars()
		return m, m.tick()
	}

	return m, nil
}

// handleMouse forwards left-button input. Presses only count over the
// waveform; moves and releases are always forwarded so a drag that leaves
// the waveform keeps tracking.
func (m RegionModel) handleMouse(msg tea.MouseMsg) {
	if !m.ready {
		return
	}
	x := float64(msg.X) + 0.5 // Cell centre.

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.overWaveform(msg.X, msg.Y) {
			return
		}
		m.sess.Dispatch(session.PointerDown(x))
	case tea.MouseActionMotion:
		m.sess.Dispatch(session.PointerMove(x))
	case tea.MouseActionRelease:
		m.sess.Dispatch(session.PointerUp(x))
	}
}

// refreshBars recomputes the gated column levels when the samples or the
// width changed.
func (m *RegionModel) refreshBars() {
	if m.snap == nil || !m.ready {
		return
	}
	samples := m.snap.Samples
	if m.bars != nil && len(m.bars) == m.width && sameSamples(samples, m.barsSrc) {
		return
	}
	m.bars = waveform.Bars(m.gate.Apply(samples), m.width)
	m.barsSrc = samples
}

func sameSamples(a, b []waveform.Sample) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func (m RegionModel) overWaveform(x, y int) bool {
	return y >= headerLines && y < headerLines+m.height &&
		x >= margin && x < margin+m.width
}

// View renders the UI
func (m RegionModel) View() string {
	if !m.ready || m.snap == nil {
		return "Initializing..."
	}
	snap := m.snap

	source := "no track"
	if snap.Source != "" {
		source = filepath.Base(snap.Source)
	}
	title := titleStyle.Render("regionplay") + " " + infoStyle.Render(source)

	bars := m.bars
	if len(bars) != m.width {
		bars = make([]float64, m.width)
	}
	pad := lipgloss.NewStyle().PaddingLeft(margin)

	body := lipgloss.JoinVertical(lipgloss.Left,
		renderWaveform(snap.View, bars, m.height),
		renderRuler(snap.View, m.width),
	)

	status := infoStyle.Render(renderStatus(snap))
	message := messageStyle.Render(snap.Message)

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n%s",
		title, pad.Render(body), pad.Render(status), pad.Render(message), pad.Render(m.help.View(m.keys)))
}

// Run launches the region selector and blocks until the user quits.
func Run(sess Dispatcher, gate *waveform.Gate, frameRate int) error {
	p := tea.NewProgram(
		NewRegionModel(sess, gate, frameRate),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
