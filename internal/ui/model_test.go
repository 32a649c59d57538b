// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests key handling, progress updates and rendering helpers
package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hmicap/hmicap-go/pkg/control"
	"github.com/hmicap/hmicap-go/pkg/engine"
	"github.com/hmicap/hmicap-go/pkg/hmicap"
)

type fakeVolume struct {
	volume int
	muted  bool
}

func (f *fakeVolume) SetVolume(v int) { f.volume = v }
func (f *fakeVolume) Volume() int { return f.volume }
func (f *fakeVolume) SetMuted(m bool) { f.muted = m }
func (f *fakeVolume) Muted() bool { return f.muted }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel() (Model, *engine.Session, *fakeVolume) {
	var session engine.Session
	vol := &fakeVolume{volume: 80}
	track := TrackInfo{
		Path:       "/music/song.hmicap7",
		Format:     "HMICAP7",
		SampleRate: 48000,
		Channels:   2,
		Duration:   3 * time.Second,
	}
	return NewModel(track, control.NewController(&session, nil), vol), &session, vol
}

func press(m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(key)
	return next.(Model), cmd
}

func TestNewModel(t *testing.T) {
	model, _, _ := newTestModel()

	if model.volume != 80 {
		t.Errorf("expected volume from output 80, got %d", model.volume)
	}
	if model.muted {
		t.Error("expected muted to be false initially")
	}
	if model.glitch {
		t.Error("expected glitch to be off initially")
	}

	bare := NewModel(TrackInfo{}, nil, nil)
	if bare.volume != 100 {
		t.Errorf("expected default volume 100, got %d", bare.volume)
	}
}

func TestGlitchKeys(t *testing.T) {
	model, session, _ := newTestModel()

	model, _ = press(model, runeKey('g'))
	if !session.GlitchEnabled() || !model.glitch {
		t.Fatal("expected 'g' to enable glitch")
	}
	if model.message != "Glitch enabled" {
		t.Errorf("unexpected message %q", model.message)
	}

	model, _ = press(model, runeKey('9'))
	if session.Intensity() != 1 || model.intensity != 1 {
		t.Errorf("expected intensity 1, got session=%v model=%v", session.Intensity(), model.intensity)
	}

	model, _ = press(model, runeKey('g'))
	if session.GlitchEnabled() || model.glitch {
		t.Error("expected second 'g' to disable glitch")
	}
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"q", runeKey('q')},
		{"Q", runeKey('Q')},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, session, _ := newTestModel()

			_, cmd := press(model, tt.key)
			if !session.StopRequested() {
				t.Error("expected stop to be requested")
			}
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestUnknownKeyIgnored(t *testing.T) {
	model, session, _ := newTestModel()

	model, cmd := press(model, runeKey('x'))
	if cmd != nil {
		t.Error("expected no command for unknown key")
	}
	if model.message != "" || session.StopRequested() {
		t.Error("unknown key should not change state")
	}
}

func TestVolumeKeys(t *testing.T) {
	model, _, vol := newTestModel()

	model, _ = press(model, tea.KeyMsg{Type: tea.KeyUp})
	if model.volume != 85 || vol.volume != 85 {
		t.Errorf("expected volume 85, got model=%d output=%d", model.volume, vol.volume)
	}

	for range 10 {
		model, _ = press(model, tea.KeyMsg{Type: tea.KeyUp})
	}
	if model.volume != 100 {
		t.Errorf("expected volume capped at 100, got %d", model.volume)
	}

	for range 30 {
		model, _ = press(model, tea.KeyMsg{Type: tea.KeyDown})
	}
	if model.volume != 0 || vol.volume != 0 {
		t.Errorf("expected volume floored at 0, got model=%d output=%d", model.volume, vol.volume)
	}

	model, _ = press(model, runeKey('m'))
	if !model.muted || !vol.muted {
		t.Error("expected 'm' to mute")
	}
}

func TestHelpToggle(t *testing.T) {
	model, _, _ := newTestModel()
	model.width = 80

	model, _ = press(model, runeKey('?'))
	if !model.showHelp {
		t.Fatal("expected help to be shown")
	}
	if !strings.Contains(model.View(), "Toggle glitch on/off") {
		t.Error("expected help text in view")
	}
}

func TestProgressMsg(t *testing.T) {
	model, _, _ := newTestModel()

	next, _ := model.Update(ProgressMsg(hmicap.Progress{
		Frame:      48000,
		Total:      144000,
		SampleRate: 48000,
		Glitch:     true,
		Intensity:  0.5,
	}))
	model = next.(Model)

	if model.progress.Frame != 48000 {
		t.Errorf("expected frame 48000, got %d", model.progress.Frame)
	}
	if !model.glitch || model.intensity != 0.5 {
		t.Error("expected glitch state from progress")
	}
	if model.finished {
		t.Error("did not expect finished")
	}

	next, _ = model.Update(ProgressMsg(hmicap.Progress{Frame: 10, Total: 10, SampleRate: 48000}))
	if !next.(Model).finished {
		t.Error("expected finished at the last frame")
	}
}

func TestFinishedMsgQuits(t *testing.T) {
	model, _, _ := newTestModel()

	next, cmd := model.Update(FinishedMsg{})
	if !next.(Model).finished {
		t.Error("expected finished")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestView(t *testing.T) {
	model, _, _ := newTestModel()
	if model.View() != "Loading..." {
		t.Error("expected loading view before the first window size")
	}

	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := next.(Model).View()
	for _, want := range []string{"HMICAP Player", "song.hmicap7", "48000Hz Stereo", "Glitch: off"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{100, "██████████"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, 100, 10); got != tt.want {
			t.Errorf("renderBar(%d) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.length); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestChannelNameFunction(t *testing.T) {
	tests := []struct {
		channels int
		want     string
	}{
		{1, "Mono"},
		{2, "Stereo"},
		{6, "6 channels"},
	}

	for _, tt := range tests {
		if got := channelName(tt.channels); got != tt.want {
			t.Errorf("channelName(%d) = %q, want %q", tt.channels, got, tt.want)
		}
	}
}

func TestSourceClosedBeforeRun(t *testing.T) {
	var session engine.Session
	src := NewSource(TrackInfo{}, nil)
	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := src.Run(control.NewController(&session, nil)); err != nil {
		t.Errorf("Run after Close should return nil, got %v", err)
	}
	// Progress after Close is dropped
	src.Progress(hmicap.Progress{})
}
