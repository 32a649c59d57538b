// ABOUTME: Playback progress snapshots
// ABOUTME: Formats the one-line progress display shown while playing
package hmicap

import (
	"fmt"
	"io"
	"time"

	"github.com/hmicap/hmicap-go/pkg/engine"
)

// DefaultProgressInterval is how often progress is reported
const DefaultProgressInterval = 100 * time.Millisecond

// Progress is a point-in-time view of a playback session
type Progress struct {
	Frame      int64
	Total      int64
	SampleRate int
	Glitch     bool
	Intensity  float32
	Phase      engine.Phase
}

func progressOf(e *engine.Engine) Progress {
	frame, total := e.Progress()
	snap := e.Session().Snapshot()
	p := Progress{
		Frame:     frame,
		Total:     total,
		Glitch:    snap.Glitch,
		Intensity: snap.Intensity,
		Phase:     e.Phase(),
	}
	if m := e.Model(); m != nil {
		p.SampleRate = m.SampleRate
	}
	return p
}

// Percent is the share of frames played, 0-100
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(min(p.Frame, p.Total)) / float64(p.Total) * 100
}

// Elapsed is the playback position
func (p Progress) Elapsed() time.Duration {
	return framesToDuration(p.Frame, p.SampleRate)
}

// Duration is the length of the loaded model
func (p Progress) Duration() time.Duration {
	return framesToDuration(p.Total, p.SampleRate)
}

// Finished reports whether every frame was played
func (p Progress) Finished() bool {
	return p.Total > 0 && p.Frame >= p.Total
}

func framesToDuration(frames int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second))
}

// String renders the progress line, e.g. "🎵 42.0% | 1.3s / 3.0s | 💀 GLITCHING 55%"
func (p Progress) String() string {
	line := fmt.Sprintf("🎵 %.1f%% | %.1fs / %.1fs",
		p.Percent(), p.Elapsed().Seconds(), p.Duration().Seconds())
	if p.Glitch {
		line += fmt.Sprintf(" | 💀 GLITCHING %d%%", int(p.Intensity*100))
	}
	return line
}

// LinePrinter returns an OnProgress callback that redraws one terminal line
func LinePrinter(w io.Writer) func(Progress) {
	return func(p Progress) {
		fmt.Fprintf(w, "\r%s        ", p)
	}
}
