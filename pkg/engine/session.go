// ABOUTME: Lock-free playback session state
// ABOUTME: Atomic flags and cursor shared by the audio, control and progress goroutines
package engine

import (
	"math"
	"sync/atomic"
)

// Session is the state shared between the audio callback and its observers.
// The callback is the only writer of the frame cursor; the control side writes
// the stop flag and the glitch settings. Every field is atomic, so no reader
// or writer ever blocks the audio thread.
type Session struct {
	playing   atomic.Bool
	stop      atomic.Bool
	frame     atomic.Int64
	glitch    atomic.Bool
	intensity atomic.Uint32
}

// Snapshot is a point-in-time copy of a Session. Fields are read one at a
// time, so a snapshot is not transactional.
type Snapshot struct {
	Playing       bool
	StopRequested bool
	Frame         int64
	Glitch        bool
	Intensity     float32
}

// Reset returns every field to its zero value
func (s *Session) Reset() {
	s.playing.Store(false)
	s.stop.Store(false)
	s.frame.Store(0)
	s.glitch.Store(false)
	s.intensity.Store(0)
}

// Playing reports whether a playback session is active
func (s *Session) Playing() bool {
	return s.playing.Load()
}

// RequestStop asks the audio callback to emit silence from its next frame
func (s *Session) RequestStop() {
	s.stop.Store(true)
}

// StopRequested reports whether a stop was requested
func (s *Session) StopRequested() bool {
	return s.stop.Load()
}

// Frame is the playback cursor
func (s *Session) Frame() int64 {
	return s.frame.Load()
}

// GlitchEnabled reports whether samples pass through the glitch processor
func (s *Session) GlitchEnabled() bool {
	return s.glitch.Load()
}

// SetGlitch enables or disables the glitch processor
func (s *Session) SetGlitch(on bool) {
	s.glitch.Store(on)
}

// ToggleGlitch flips the glitch flag and returns the new value
func (s *Session) ToggleGlitch() bool {
	for {
		old := s.glitch.Load()
		if s.glitch.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Intensity is the glitch intensity in [0, 1]
func (s *Session) Intensity() float32 {
	return math.Float32frombits(s.intensity.Load())
}

// SetIntensity stores v clamped to [0, 1]. NaN stores 0.
func (s *Session) SetIntensity(v float32) {
	if v != v || v < 0 {
		v = 0
	}
	s.intensity.Store(math.Float32bits(min(v, 1)))
}

// Snapshot copies the session for display
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Playing:       s.playing.Load(),
		StopRequested: s.stop.Load(),
		Frame:         s.frame.Load(),
		Glitch:        s.glitch.Load(),
		Intensity:     s.Intensity(),
	}
}
