//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"
)

// ErrPortAudioDisabled is returned by the stub backend
var ErrPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct {
	gain
	done chan struct{}
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() *PortAudio {
	return &PortAudio{done: make(chan struct{})}
}

// Name identifies the backend
func (p *PortAudio) Name() string {
	return "portaudio"
}

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(cfg Config, cb Callback) error {
	return ErrPortAudioDisabled
}

// Start always fails without the portaudio build tag
func (p *PortAudio) Start() error {
	return ErrPortAudioDisabled
}

// Stop is a no-op
func (p *PortAudio) Stop() error {
	return nil
}

// Done is never closed
func (p *PortAudio) Done() <-chan struct{} {
	return p.done
}

// Close is a no-op
func (p *PortAudio) Close() error {
	return nil
}
