// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines playback display state and key handling for glitch controls
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hmicap/hmicap-go/pkg/audio/output"
	"github.com/hmicap/hmicap-go/pkg/control"
	"github.com/hmicap/hmicap-go/pkg/hmicap"
)

// volumeStep is the change per arrow key press
const volumeStep = 5

// TrackInfo describes the loaded file
type TrackInfo struct {
	Path       string
	Format     string
	SampleRate int
	Channels   int
	Duration   time.Duration
	Seed       uint64
}

// ProgressMsg carries a progress snapshot from the player
type ProgressMsg hmicap.Progress

// FinishedMsg tells the model playback ended
type FinishedMsg struct{}

// Model represents the TUI state
type Model struct {
	// Track
	track TrackInfo

	// Playback
	progress hmicap.Progress
	finished bool

	// Glitch
	glitch    bool
	intensity float32
	message   string

	// Output
	volume int
	muted  bool

	showHelp bool

	// Dimensions
	width  int
	height int

	ctrl *control.Controller
	vol  output.VolumeControl
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case ProgressMsg:
		m.applyProgress(hmicap.Progress(msg))
	case FinishedMsg:
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTrack()
	s += m.renderProgress()
	s += m.renderControls()

	if m.showHelp {
		s += m.renderGlitchHelp()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders the title and playback state
func (m Model) renderHeader() string {
	status := "Playing"
	switch {
	case m.finished:
		status = "Finished"
	case m.ctrl != nil && m.ctrl.Session().StopRequested():
		status = "Stopping"
	}

	return fmt.Sprintf(`┌─ HMICAP Player ──────────────────────────────────────┐
│ Status: %-45s │
├──────────────────────────────────────────────────────┤
`, status)
}

// renderTrack renders file and format details
func (m Model) renderTrack() string {
	if m.track.Path == "" {
		return "│ No file                                              │\n"
	}

	s := fmt.Sprintf("│ File:   %-45s │\n", truncate(filepath.Base(m.track.Path), 45))
	format := fmt.Sprintf("%s %dHz %s", m.track.Format, m.track.SampleRate, channelName(m.track.Channels))
	s += fmt.Sprintf("│ Format: %-45s │\n", truncate(format, 45))
	return s
}

// renderProgress renders the position bar
func (m Model) renderProgress() string {
	percent := m.progress.Percent()
	bar := renderBar(int(percent), 100, 30)
	elapsed := fmt.Sprintf("%.1fs / %.1fs", m.progress.Elapsed().Seconds(), m.track.Duration.Seconds())

	return fmt.Sprintf("│                                                      │\n"+
		"│ [%s] %5.1f%%%-14s │\n"+
		"│ Time:   %-45s │\n",
		bar, percent, "", elapsed)
}

// renderControls renders glitch and volume state
func (m Model) renderControls() string {
	glitch := "off"
	if m.glitch {
		glitch = fmt.Sprintf("💀 ON %d%% (%s)", int(m.intensity*100), control.IntensityLabel(m.intensity))
	}

	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}
	volumeBar := renderBar(m.volume, 100, 10)

	s := fmt.Sprintf("├──────────────────────────────────────────────────────┤\n"+
		"│ Glitch: %-45s │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n",
		glitch, volumeBar, m.volume, muteIcon, "")
	if m.message != "" {
		s += fmt.Sprintf("│ %-52s │\n", truncate(m.message, 52))
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ g:Glitch  0-9:Intensity  ↑/↓:Volume  m:Mute  q:Quit │
└──────────────────────────────────────────────────────┘
`
}

// renderGlitchHelp renders the command list
func (m Model) renderGlitchHelp() string {
	s := "├──────────────────────────────────────────────────────┤\n"
	for _, line := range strings.Split(control.HelpText, "\n") {
		s += fmt.Sprintf("│ %-52s │\n", line)
	}
	return s
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c":
		return m.apply(control.Command{Kind: control.Quit, Input: key})
	case "up":
		m.setVolume(m.volume + volumeStep)
	case "down":
		m.setVolume(m.volume - volumeStep)
	case "m":
		m.muted = !m.muted
		if m.vol != nil {
			m.vol.SetMuted(m.muted)
		}
	case "?":
		m.showHelp = !m.showHelp
	default:
		if len(msg.Runes) == 1 {
			return m.apply(control.Parse(key))
		}
	}

	return m, nil
}

// apply routes a command through the controller so the TUI and line
// sources share one set of semantics
func (m Model) apply(cmd control.Command) (tea.Model, tea.Cmd) {
	if m.ctrl == nil || cmd.Kind == control.Unknown {
		return m, nil
	}

	res := m.ctrl.Apply(cmd)
	m.message = res.Message
	session := m.ctrl.Session()
	m.glitch = session.GlitchEnabled()
	m.intensity = session.Intensity()

	if res.Quit {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) setVolume(volume int) {
	m.volume = max(0, min(100, volume))
	if m.vol != nil {
		m.vol.SetVolume(m.volume)
	}
}

// applyProgress updates model from a progress snapshot
func (m *Model) applyProgress(p hmicap.Progress) {
	m.progress = p
	m.glitch = p.Glitch
	m.intensity = p.Intensity
	if p.Finished() {
		m.finished = true
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}
