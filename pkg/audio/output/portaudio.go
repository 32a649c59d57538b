//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform float32 callback stream using PortAudio
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	gain

	mu       sync.Mutex
	cfg      Config
	cb       Callback
	stream   *portaudio.Stream
	complete bool
	stopped  bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() *PortAudio {
	return &PortAudio{done: make(chan struct{})}
}

// Name identifies the backend
func (p *PortAudio) Name() string {
	return "portaudio"
}

// Open initializes PortAudio and opens the default output stream
func (p *PortAudio) Open(cfg Config, cb Callback) error {
	cfg, err := cfg.validate()
	if err != nil {
		return err
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.cfg = cfg
	p.cb = cb

	stream, err := portaudio.OpenDefaultStream(0, cfg.Channels, float64(cfg.SampleRate), cfg.FramesPerBuffer, p.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}
	p.stream = stream

	log.Printf("Audio output initialized: %dHz, %d channels (portaudio/float32)", cfg.SampleRate, cfg.Channels)
	return nil
}

func (p *PortAudio) process(out []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.complete {
		clear(out)
		if p.complete {
			p.doneOnce.Do(func() { close(p.done) })
		}
		return
	}

	if p.cb(out, len(out)/p.cfg.Channels) == Complete {
		p.complete = true
	}
	p.gain.apply(out)
}

// Start starts the stream
func (p *PortAudio) Start() error {
	if p.stream == nil {
		return ErrNotOpen
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	return nil
}

// Stop stops the stream; PortAudio waits for pending buffers to play
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop stream: %w", err)
	}
	return nil
}

// Done is closed when the stream has played out
func (p *PortAudio) Done() <-chan struct{} {
	return p.done
}

// Close releases resources
func (p *PortAudio) Close() error {
	if p.stream != nil {
		if err := p.stream.Close(); err != nil {
			return fmt.Errorf("failed to close stream: %w", err)
		}
		p.stream = nil
	}
	return portaudio.Terminate()
}
