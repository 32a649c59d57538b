// ABOUTME: TUI initialization and control
// ABOUTME: Wraps a bubbletea program as a playback control source
package ui

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hmicap/hmicap-go/pkg/audio/output"
	"github.com/hmicap/hmicap-go/pkg/control"
	"github.com/hmicap/hmicap-go/pkg/hmicap"
)

// NewModel creates a new TUI model. ctrl and vol may be nil for display only.
func NewModel(track TrackInfo, ctrl *control.Controller, vol output.VolumeControl) Model {
	m := Model{
		track:  track,
		volume: 100,
		ctrl:   ctrl,
		vol:    vol,
	}
	if vol != nil {
		m.volume = vol.Volume()
		m.muted = vol.Muted()
	}
	return m
}

// Source runs the TUI as a control source for hmicap.Player
type Source struct {
	track TrackInfo
	vol   output.VolumeControl
	opts  []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	closed  bool
}

// NewSource creates a TUI source. Extra options are passed to bubbletea.
func NewSource(track TrackInfo, vol output.VolumeControl, opts ...tea.ProgramOption) *Source {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Source{track: track, vol: vol, opts: opts}
}

// Run shows the TUI until the user quits or the source is closed
func (s *Source) Run(c *control.Controller) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(NewModel(s.track, c, s.vol), s.opts...)
	s.program = p
	s.mu.Unlock()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Progress forwards a snapshot to the running TUI. It fits
// hmicap.PlayerConfig.OnProgress.
func (s *Source) Progress(p hmicap.Progress) {
	if prog := s.running(); prog != nil {
		prog.Send(ProgressMsg(p))
	}
}

// Close ends the TUI
func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	p := s.program
	s.mu.Unlock()

	if p != nil {
		p.Send(FinishedMsg{})
	}
	return nil
}

func (s *Source) running() *tea.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.program
}
