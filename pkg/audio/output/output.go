// ABOUTME: Audio output interface definition
// ABOUTME: Pull-callback contract shared by every playback backend
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// DefaultFramesPerBuffer is the callback size requested from every backend
const DefaultFramesPerBuffer = 256

// ErrNotOpen is returned when Start is called before Open
var ErrNotOpen = errors.New("output not opened")

// Status is returned by a Callback to continue or end the stream
type Status int

const (
	// Continue asks for more buffers
	Continue Status = iota
	// Complete marks the last buffer. The backend plays it out and closes Done.
	Complete
)

func (s Status) String() string {
	if s == Complete {
		return "complete"
	}
	return "continue"
}

// Callback fills out with frames interleaved float32 frames. It runs on the
// backend's audio thread and must not block.
type Callback func(out []float32, frames int) Status

// Config describes the stream a backend opens
type Config struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

func (c Config) validate() (Config, error) {
	if c.SampleRate <= 0 {
		return c, fmt.Errorf("invalid sample rate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return c, fmt.Errorf("invalid channel count: %d", c.Channels)
	}
	if c.FramesPerBuffer <= 0 {
		c.FramesPerBuffer = DefaultFramesPerBuffer
	}
	return c, nil
}

// VolumeControl is software gain applied to every buffer after the callback
type VolumeControl interface {
	SetVolume(volume int)
	Volume() int
	SetMuted(muted bool)
	Muted() bool
}

// Output represents an audio output device driven by a pull callback
type Output interface {
	VolumeControl

	// Name identifies the backend
	Name() string

	// Open prepares the device; no callbacks run until Start
	Open(cfg Config, cb Callback) error

	// Start begins invoking the callback
	Start() error

	// Stop halts the stream. No callback is running or will run once it returns.
	Stop() error

	// Done is closed after the callback returned Complete and the final
	// buffer was handed to the device
	Done() <-chan struct{}

	// Close releases output resources
	Close() error
}

// Backends lists the names New accepts
func Backends() []string {
	return []string{"oto", "malgo", "portaudio", "null"}
}

// canonical maps accepted backend names, including aliases, to Backends
func canonical(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "", "oto":
		return "oto", true
	case "malgo", "miniaudio":
		return "malgo", true
	case "portaudio":
		return "portaudio", true
	case "null", "none":
		return "null", true
	default:
		return "", false
	}
}

// Known reports whether New accepts name
func Known(name string) bool {
	_, ok := canonical(name)
	return ok
}

// New returns the named backend. An empty name selects oto.
func New(name string) (Output, error) {
	backend, ok := canonical(name)
	if !ok {
		return nil, fmt.Errorf("unknown output backend %q (available: %s)", name, strings.Join(Backends(), ", "))
	}
	switch backend {
	case "malgo":
		return NewMalgo(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "null":
		return NewNull(NullOptions{Realtime: true}), nil
	default:
		return NewOto(), nil
	}
}

// gain holds volume state; the audio thread reads it without locking.
// It stores attenuation so the zero value plays at full volume.
type gain struct {
	cut   atomic.Int32
	muted atomic.Bool
}

// SetVolume sets the volume (0-100)
func (g *gain) SetVolume(volume int) {
	g.cut.Store(int32(100 - max(0, min(100, volume))))
}

// Volume returns current volume
func (g *gain) Volume() int {
	return 100 - int(g.cut.Load())
}

// SetMuted sets mute state
func (g *gain) SetMuted(muted bool) {
	g.muted.Store(muted)
}

// Muted returns mute state
func (g *gain) Muted() bool {
	return g.muted.Load()
}

// apply scales buf in place, clamping to [-1, 1]
func (g *gain) apply(buf []float32) {
	if g.muted.Load() {
		clear(buf)
		return
	}
	cut := g.cut.Load()
	if cut <= 0 {
		return
	}
	m := float32(100-cut) / 100
	for i, s := range buf {
		buf[i] = max(-1, min(1, s*m))
	}
}

// putFloat32LE encodes src into dst as little-endian IEEE 754 floats
func putFloat32LE(dst []byte, src []float32) {
	for i, s := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
}
