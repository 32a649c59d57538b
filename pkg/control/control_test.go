package control

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hmicap/hmicap-go/pkg/engine"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line      string
		kind      Kind
		intensity float32
	}{
		{"", None, 0},
		{"   ", None, 0},
		{"g", ToggleGlitch, 0},
		{"G", ToggleGlitch, 0},
		{"  g  ", ToggleGlitch, 0},
		{"0", SetIntensity, 0},
		{"9", SetIntensity, 1},
		{"3", SetIntensity, 3.0 / 9},
		{"q", Quit, 0},
		{"Q", Quit, 0},
		{"quit", Quit, 0},
		{"?", Help, 0},
		{"x", Unknown, 0},
		{"-1", Unknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Parse(tt.line)
			if got.Kind != tt.kind {
				t.Errorf("Parse(%q).Kind = %v, want %v", tt.line, got.Kind, tt.kind)
			}
			if got.Intensity != tt.intensity {
				t.Errorf("Parse(%q).Intensity = %v, want %v", tt.line, got.Intensity, tt.intensity)
			}
		})
	}
}

func TestApply(t *testing.T) {
	s := &engine.Session{}
	c := NewController(s, nil)

	if res := c.Apply(Parse("g")); res.Message != "Glitch enabled" || !s.GlitchEnabled() {
		t.Errorf("toggle on: %+v glitch=%v", res, s.GlitchEnabled())
	}
	if res := c.Apply(Parse("g")); res.Message != "Glitch disabled" || s.GlitchEnabled() {
		t.Errorf("toggle off: %+v glitch=%v", res, s.GlitchEnabled())
	}

	res := c.Apply(Parse("9"))
	if s.Intensity() != 1 {
		t.Errorf("intensity = %v, want 1", s.Intensity())
	}
	if res.Message != "Glitch intensity set to 100% (maximum chaos)" {
		t.Errorf("unexpected message %q", res.Message)
	}

	if res := c.Apply(Parse("0")); !strings.Contains(res.Message, "(clean)") || s.Intensity() != 0 {
		t.Errorf("intensity 0: %+v", res)
	}

	if res := c.Apply(Parse("zz")); res.Quit || !strings.Contains(res.Message, "Unknown command") {
		t.Errorf("unknown: %+v", res)
	}
	if res := c.Apply(Parse("?")); res.Message != HelpText {
		t.Errorf("help: %+v", res)
	}
	if res := c.Apply(Parse("")); res != (Result{}) {
		t.Errorf("empty: %+v", res)
	}

	res = c.Apply(Parse("q"))
	if !res.Quit || !s.StopRequested() {
		t.Errorf("quit: %+v stop=%v", res, s.StopRequested())
	}
}

func TestIntensityLabel(t *testing.T) {
	tests := []struct {
		digit int
		want  string
	}{
		{0, "clean"},
		{1, "subtle"},
		{2, "subtle"},
		{3, "moderate"},
		{5, "moderate"},
		{6, "intense"},
		{8, "intense"},
		{9, "maximum chaos"},
	}
	for _, tt := range tests {
		if got := IntensityLabel(float32(tt.digit) / 9); got != tt.want {
			t.Errorf("IntensityLabel(%d/9) = %q, want %q", tt.digit, got, tt.want)
		}
	}
}

func TestRunQuits(t *testing.T) {
	s := &engine.Session{}
	var out bytes.Buffer
	c := NewController(s, &out)

	src := NewReaderSource(strings.NewReader("g\n5\nwhat\n\nq\ng\n"))
	if err := src.Run(c); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !s.StopRequested() {
		t.Error("quit did not request stop")
	}
	if !s.GlitchEnabled() {
		t.Error("line after quit was applied")
	}
	if s.Intensity() != 5.0/9 {
		t.Errorf("intensity = %v, want 5/9", s.Intensity())
	}

	text := out.String()
	for _, want := range []string{HelpText, "Glitch enabled", "55% (moderate)", "Unknown command", "Stopping playback..."} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunEndOfInput(t *testing.T) {
	s := &engine.Session{}
	c := NewController(s, nil)

	if err := NewReaderSource(strings.NewReader("g\n")).Run(c); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s.StopRequested() {
		t.Error("end of input must not stop playback")
	}
}

func TestRunStopsWhenStopRequestedElsewhere(t *testing.T) {
	s := &engine.Session{}
	c := NewController(s, nil)

	pr, pw := io.Pipe()
	defer pw.Close()
	src := NewReaderSource(pr)

	done := make(chan error, 1)
	go func() { done <- src.Run(c) }()

	s.RequestStop()
	go pw.Write([]byte("g\n"))

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not notice the stop request")
	}
	if s.GlitchEnabled() {
		t.Error("command applied after stop was requested")
	}
}

func TestCloseUnblocksRun(t *testing.T) {
	s := &engine.Session{}
	c := NewController(s, nil)

	pr, pw := io.Pipe()
	defer pw.Close()

	sources := map[string]Source{
		"reader": NewReaderSource(pr),
		"idle":   NewIdleSource(),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() { done <- src.Run(c) }()

			time.Sleep(10 * time.Millisecond)
			if err := src.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("Run returned %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Close did not unblock Run")
			}
		})
	}
}

type scriptedReader struct {
	lines []string
	err   error
}

func (r *scriptedReader) ReadLine() (string, error) {
	if len(r.lines) == 0 {
		return "", r.err
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func TestRunInterrupt(t *testing.T) {
	s := &engine.Session{}
	c := NewController(s, nil)

	if err := c.Run(&scriptedReader{lines: []string{"7"}, err: ErrInterrupted}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !s.StopRequested() {
		t.Error("interrupt must request stop")
	}
}

func TestRunReadError(t *testing.T) {
	c := NewController(&engine.Session{}, nil)
	boom := errors.New("tty gone")

	err := c.Run(&scriptedReader{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want %v", err, boom)
	}
}
