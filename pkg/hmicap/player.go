// ABOUTME: High-level Player API for HMICAP playback
// ABOUTME: Wires container loading, the engine, an output backend and control input
package hmicap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/hmicap/hmicap-go/pkg/audio/output"
	"github.com/hmicap/hmicap-go/pkg/container"
	"github.com/hmicap/hmicap-go/pkg/control"
	"github.com/hmicap/hmicap-go/pkg/engine"
)

var (
	// ErrOutputSpent is returned by Play when a caller-supplied output was
	// already used by an earlier session
	ErrOutputSpent = errors.New("output already used")
	// ErrPlaying is returned when Play is called during another session
	ErrPlaying = errors.New("player is already playing")
)

// PlayerConfig holds player configuration
type PlayerConfig struct {
	// Backend names the output backend (see output.Backends). Ignored when
	// Output is set.
	Backend string

	// Output is a ready backend to use instead of Backend. It serves one
	// session only.
	Output output.Output

	// FramesPerBuffer is the callback size (default: 256)
	FramesPerBuffer int

	// ProgressInterval is how often OnProgress runs (default: 100ms)
	ProgressInterval time.Duration

	// Seed seeds the glitch generator; zero picks a random one
	Seed uint64

	// Glitch and Intensity are applied when a session starts
	Glitch    bool
	Intensity float32

	// Volume is the initial volume (0-100, default: 100)
	Volume int

	// Out receives control feedback when the source has no terminal writer
	Out io.Writer

	// OnProgress is called every ProgressInterval and once when playback ends
	OnProgress func(Progress)

	// OnStateChange is called when the engine changes phase
	OnStateChange func(engine.Phase)
}

// Player plays one loaded model at a time
type Player struct {
	config PlayerConfig
	engine *engine.Engine

	mu      sync.Mutex
	output  output.Output
	spent   bool
	playing bool
	path    string
}

// NewPlayer creates a player and its output backend
func NewPlayer(config PlayerConfig) (*Player, error) {
	// Set defaults
	if config.FramesPerBuffer <= 0 {
		config.FramesPerBuffer = output.DefaultFramesPerBuffer
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = DefaultProgressInterval
	}
	if config.Volume <= 0 {
		config.Volume = 100
	}
	if config.Out == nil {
		config.Out = io.Discard
	}

	out := config.Output
	if out == nil {
		var err error
		if out, err = output.New(config.Backend); err != nil {
			return nil, err
		}
	}
	out.SetVolume(config.Volume)

	return &Player{
		config: config,
		engine: engine.New(engine.WithSeed(config.Seed)),
		output: out,
	}, nil
}

// Engine exposes the playback engine
func (p *Player) Engine() *engine.Engine {
	return p.engine
}

// Session exposes the shared playback state
func (p *Player) Session() *engine.Session {
	return p.engine.Session()
}

// Path returns the file passed to the last successful Load
func (p *Player) Path() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Load reads a container file of any kind and makes it the model to play
func (p *Player) Load(path string) error {
	start := time.Now()
	m, err := container.ReadFile(path)
	if err != nil {
		return err
	}
	if err := p.LoadModel(m); err != nil {
		return err
	}

	p.mu.Lock()
	p.path = path
	p.mu.Unlock()
	log.Printf("Loaded %s in %v: %dHz, %d channels, %d frames (%s)",
		path, time.Since(start).Round(time.Millisecond), m.SampleRate, m.Channels, m.Frames, m.Width)
	return nil
}

// LoadModel makes m the model to play
func (p *Player) LoadModel(m *audio.Model) error {
	if err := p.engine.Load(m); err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	p.notifyStateChange()
	return nil
}

// Progress reports the current position
func (p *Player) Progress() Progress {
	return progressOf(p.engine)
}

// Play runs one playback session and blocks until it ends. The session ends
// when the model has been played out, when src quits, or when ctx is done.
// src may be nil. The model is released afterwards; Load again to replay.
func (p *Player) Play(ctx context.Context, src control.Source) (Progress, error) {
	m := p.engine.Model()
	if m == nil {
		return Progress{}, engine.ErrNotLoaded
	}
	out, err := p.beginSession()
	if err != nil {
		return Progress{}, err
	}
	defer p.endSession()
	if src == nil {
		src = control.NewIdleSource()
	}

	id := uuid.New().String()
	log.Printf("Session %s: starting on %s, %dHz %dch, glitch seed %d",
		id, out.Name(), m.SampleRate, m.Channels, p.engine.Seed())

	cfg := output.Config{
		SampleRate:      m.SampleRate,
		Channels:        m.Channels,
		FramesPerBuffer: p.config.FramesPerBuffer,
	}
	if err := out.Open(cfg, p.engine.Fill); err != nil {
		return Progress{}, fmt.Errorf("failed to open output: %w", err)
	}
	if err := p.engine.Start(); err != nil {
		return Progress{}, errors.Join(err, out.Close())
	}
	session := p.engine.Session()
	session.SetGlitch(p.config.Glitch)
	session.SetIntensity(p.config.Intensity)

	if err := out.Start(); err != nil {
		p.engine.Stop()
		p.engine.Release()
		return Progress{}, errors.Join(fmt.Errorf("failed to start output: %w", err), out.Close())
	}
	p.notifyStateChange()

	// Progress reporter
	progressCtx, cancelProgress := context.WithCancel(context.Background())
	var progressWG sync.WaitGroup
	progressWG.Add(1)
	go func() {
		defer progressWG.Done()
		p.reportProgress(progressCtx)
	}()

	// Control input
	ctrl := control.NewController(session, p.controlWriter(src))
	ctrlDone := make(chan error, 1)
	go func() {
		ctrlDone <- src.Run(ctrl)
	}()

	ctrlErr, joined, reason := p.wait(ctx, out, ctrlDone)
	log.Printf("Session %s: %s", id, reason)

	session.RequestStop()
	if err := src.Close(); err != nil {
		log.Printf("Session %s: failed to close control source: %v", id, err)
	}
	if !joined {
		ctrlErr = <-ctrlDone
	}

	// No callback runs once the output has stopped
	stopErr := out.Stop()
	p.engine.Stop()
	p.notifyStateChange()

	cancelProgress()
	progressWG.Wait()

	final := p.Progress()
	closeErr := out.Close()
	p.engine.Release()
	p.notifyStateChange()

	if p.config.OnProgress != nil {
		p.config.OnProgress(final)
	}
	log.Printf("Session %s: played %d of %d frames", id, final.Frame, final.Total)

	if stopErr != nil {
		stopErr = fmt.Errorf("failed to stop output: %w", stopErr)
	}
	if closeErr != nil {
		closeErr = fmt.Errorf("failed to close output: %w", closeErr)
	}
	return final, errors.Join(ctrlErr, stopErr, closeErr)
}

// wait blocks until the session should end and explains why. joined
// reports whether the control source's result was already received.
func (p *Player) wait(ctx context.Context, out output.Output, ctrlDone <-chan error) (ctrlErr error, joined bool, reason string) {
	ticker := time.NewTicker(p.config.ProgressInterval)
	defer ticker.Stop()

	session := p.engine.Session()
	done := ctrlDone
	for {
		select {
		case err := <-done:
			// End of input alone does not end playback
			done, joined = nil, true
			if err != nil {
				return err, true, "control source failed"
			}
			if session.StopRequested() {
				return nil, true, "stopped by user"
			}
		case <-out.Done():
			return nil, joined, "finished"
		case <-ctx.Done():
			return nil, joined, "cancelled"
		case <-ticker.C:
			if session.StopRequested() {
				return nil, joined, "stopped"
			}
		}
	}
}

func (p *Player) reportProgress(ctx context.Context) {
	if p.config.OnProgress == nil {
		return
	}

	ticker := time.NewTicker(p.config.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.config.OnProgress(p.Progress())
		case <-ctx.Done():
			return
		}
	}
}

// controlWriter prefers the source's own terminal writer so feedback does
// not corrupt its prompt
func (p *Player) controlWriter(src control.Source) io.Writer {
	if w, ok := src.(interface{ Stdout() io.Writer }); ok {
		return w.Stdout()
	}
	return p.config.Out
}

func (p *Player) beginSession() (output.Output, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return nil, ErrPlaying
	}
	if p.spent {
		if p.config.Output != nil {
			return nil, ErrOutputSpent
		}
		next, err := output.New(p.config.Backend)
		if err != nil {
			return nil, err
		}
		next.SetVolume(p.output.Volume())
		next.SetMuted(p.output.Muted())
		p.output = next
		p.spent = false
	}
	p.playing = true
	return p.output, nil
}

func (p *Player) endSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.spent = true
}

func (p *Player) currentOutput() output.Output {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output
}

// SetVolume sets the software volume (0-100)
func (p *Player) SetVolume(volume int) {
	p.currentOutput().SetVolume(volume)
}

// Volume returns the software volume
func (p *Player) Volume() int {
	return p.currentOutput().Volume()
}

// SetMuted mutes or unmutes output
func (p *Player) SetMuted(muted bool) {
	p.currentOutput().SetMuted(muted)
}

// Muted reports whether output is muted
func (p *Player) Muted() bool {
	return p.currentOutput().Muted()
}

func (p *Player) notifyStateChange() {
	if p.config.OnStateChange != nil {
		p.config.OnStateChange(p.engine.Phase())
	}
}
