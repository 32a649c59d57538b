// ABOUTME: Playback engine state machine
// ABOUTME: Serves interleaved frames from a loaded model to the output callback
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/hmicap/hmicap-go/pkg/audio/output"
	"github.com/hmicap/hmicap-go/pkg/glitch"
)

var (
	// ErrNotLoaded is returned by Start when no model is loaded
	ErrNotLoaded = errors.New("no audio loaded")
	// ErrBusy is returned when the model is swapped during playback
	ErrBusy = errors.New("engine is playing")
	// ErrInvalidModel is returned by Load for a model that fails validation
	ErrInvalidModel = audio.ErrInvalidModel
)

// Phase is the lifecycle stage of an Engine
type Phase int32

const (
	Idle Phase = iota
	Loaded
	Playing
	Draining
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Playing:
		return "playing"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithSeed seeds the glitch generator. Zero picks a random seed.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.glitch = glitch.NewProcessor(seed)
	}
}

// Engine plays one model at a time. Fill is the only method meant for the
// audio thread; it never locks or allocates.
type Engine struct {
	mu      sync.Mutex
	session Session
	glitch  *glitch.Processor
	model   atomic.Pointer[audio.Model]
	phase   atomic.Int32
}

// New creates an idle engine
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.glitch == nil {
		e.glitch = glitch.NewProcessor(0)
	}
	return e
}

// Session exposes the shared playback state
func (e *Engine) Session() *Session {
	return &e.session
}

// Seed reports the glitch seed, for replaying a session
func (e *Engine) Seed() uint64 {
	return e.glitch.Seed()
}

// Phase returns the current lifecycle stage
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

// Model returns the loaded model, or nil
func (e *Engine) Model() *audio.Model {
	return e.model.Load()
}

// Load validates m and makes it the model to play
func (e *Engine) Load(m *audio.Model) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.Phase() {
	case Playing, Draining:
		return ErrBusy
	}
	if err := m.Validate(); err != nil {
		return err
	}
	e.model.Store(m)
	e.phase.Store(int32(Loaded))
	return nil
}

// Start resets the session and moves to Playing. A stopped engine can be
// started again from the beginning.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.Phase() {
	case Idle:
		return ErrNotLoaded
	case Playing, Draining:
		return ErrBusy
	}

	e.session.Reset()
	e.glitch.Reset()
	e.session.playing.Store(true)
	e.phase.Store(int32(Playing))
	return nil
}

// Fill writes frames interleaved frames into out. It returns Complete once the
// cursor has passed the end of the model; a stop request only yields silence.
func (e *Engine) Fill(out []float32, frames int) output.Status {
	m := e.model.Load()
	phase := e.Phase()
	if m == nil || phase == Idle {
		clear(out)
		return output.Complete
	}

	ch := m.Channels
	frames = max(0, min(frames, len(out)/ch))
	if phase != Playing {
		clear(out)
		if phase == Loaded {
			return output.Continue
		}
		return output.Complete
	}

	s := &e.session
	glitching := s.GlitchEnabled()
	intensity := s.Intensity()

	ended := false
	i := 0
	for ; i < frames; i++ {
		if s.stop.Load() {
			break
		}
		cur := s.frame.Load()
		if cur >= m.Frames {
			ended = true
			break
		}

		base := cur * int64(ch)
		dst := out[i*ch : (i+1)*ch]
		for c := range dst {
			v := max(-1, min(1, m.SampleAt(base+int64(c))))
			if glitching {
				v = e.glitch.Process(v, intensity, cur)
			}
			dst[c] = v
		}
		s.frame.Store(cur + 1)
	}
	clear(out[i*ch : frames*ch])

	if ended {
		e.phase.CompareAndSwap(int32(Playing), int32(Draining))
		return output.Complete
	}
	return output.Continue
}

// Stop ends the session. Call it after the output has stopped.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.RequestStop()
	e.session.playing.Store(false)
	if e.Phase() != Idle {
		e.phase.Store(int32(Stopped))
	}
}

// Release drops the model and returns to Idle
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.playing.Store(false)
	e.model.Store(nil)
	e.phase.Store(int32(Idle))
}

// Progress reports the cursor and total frame count
func (e *Engine) Progress() (frame, total int64) {
	if m := e.model.Load(); m != nil {
		total = m.Frames
	}
	return e.session.Frame(), total
}
