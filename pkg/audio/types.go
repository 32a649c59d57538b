// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and the fully decoded sample model
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidModel is returned by Validate when a model breaks its storage invariant
var ErrInvalidModel = errors.New("invalid sample model")

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Width tags how a Model stores its samples
type Width uint8

const (
	WidthInt32 Width = iota + 1
	WidthFloat32
)

func (w Width) String() string {
	switch w {
	case WidthInt32:
		return "int32"
	case WidthFloat32:
		return "float32"
	default:
		return fmt.Sprintf("width(%d)", uint8(w))
	}
}

// ParseWidth maps "int32"/"float32" to a Width
func ParseWidth(s string) (Width, error) {
	switch s {
	case "int32", "int", "":
		return WidthInt32, nil
	case "float32", "float":
		return WidthFloat32, nil
	default:
		return 0, fmt.Errorf("unknown sample width: %q", s)
	}
}

// Model is fully decoded, interleaved audio resident in memory.
// Exactly one of Int or Float is populated, selected by Width, and its
// length is always Frames*Channels.
type Model struct {
	SampleRate int
	Channels   int
	Frames     int64
	Width      Width
	Int        []int32
	Float      []float32
}

// NewInt32Model wraps interleaved int32 samples
func NewInt32Model(sampleRate, channels int, samples []int32) *Model {
	frames := int64(0)
	if channels > 0 {
		frames = int64(len(samples) / channels)
	}
	return &Model{
		SampleRate: sampleRate,
		Channels:   channels,
		Frames:     frames,
		Width:      WidthInt32,
		Int:        samples,
	}
}

// NewFloat32Model wraps interleaved float32 samples
func NewFloat32Model(sampleRate, channels int, samples []float32) *Model {
	frames := int64(0)
	if channels > 0 {
		frames = int64(len(samples) / channels)
	}
	return &Model{
		SampleRate: sampleRate,
		Channels:   channels,
		Frames:     frames,
		Width:      WidthFloat32,
		Float:      samples,
	}
}

// Validate checks the model's header fields and storage invariant
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil model", ErrInvalidModel)
	}
	if m.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidModel, m.SampleRate)
	}
	if m.Channels <= 0 || m.Channels > math.MaxUint16 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidModel, m.Channels)
	}
	if m.Frames < 0 {
		return fmt.Errorf("%w: frame count %d", ErrInvalidModel, m.Frames)
	}

	var have int
	switch m.Width {
	case WidthInt32:
		if m.Float != nil {
			return fmt.Errorf("%w: int32 model carries float storage", ErrInvalidModel)
		}
		have = len(m.Int)
	case WidthFloat32:
		if m.Int != nil {
			return fmt.Errorf("%w: float32 model carries int storage", ErrInvalidModel)
		}
		have = len(m.Float)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidModel, m.Width)
	}

	if int64(have) != m.Frames*int64(m.Channels) {
		return fmt.Errorf("%w: %d samples for %d frames x %d channels",
			ErrInvalidModel, have, m.Frames, m.Channels)
	}

	// Float samples must be finite
	for i, v := range m.Float {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: non-finite sample %v at index %d", ErrInvalidModel, v, i)
		}
	}
	return nil
}

// Len returns the number of interleaved samples
func (m *Model) Len() int {
	if m.Width == WidthFloat32 {
		return len(m.Float)
	}
	return len(m.Int)
}

// SampleAt returns interleaved sample i as float32 in [-1, 1].
// It does not allocate and is safe to call from the audio callback.
func (m *Model) SampleAt(i int64) float32 {
	if m.Width == WidthFloat32 {
		return m.Float[i]
	}
	return Int32ToFloat(m.Int[i])
}

// Duration returns the playing time of the model
func (m *Model) Duration() time.Duration {
	if m.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(m.Frames) / float64(m.SampleRate) * float64(time.Second))
}

// ToInt32 returns the model quantized to int32 storage. Int32 models are returned as is.
func (m *Model) ToInt32() *Model {
	if m.Width == WidthInt32 {
		return m
	}
	out := make([]int32, len(m.Float))
	for i, s := range m.Float {
		out[i] = FloatToInt32(s)
	}
	return &Model{
		SampleRate: m.SampleRate,
		Channels:   m.Channels,
		Frames:     m.Frames,
		Width:      WidthInt32,
		Int:        out,
	}
}

// ToFloat32 returns the model with float32 storage. Float32 models are returned as is.
func (m *Model) ToFloat32() *Model {
	if m.Width == WidthFloat32 {
		return m
	}
	out := make([]float32, len(m.Int))
	for i, s := range m.Int {
		out[i] = Int32ToFloat(s)
	}
	return &Model{
		SampleRate: m.SampleRate,
		Channels:   m.Channels,
		Frames:     m.Frames,
		Width:      WidthFloat32,
		Float:      out,
	}
}

// Channel returns a de-interleaved copy of channel ch (0-based) as float32
func (m *Model) Channel(ch int) []float32 {
	if ch < 0 || ch >= m.Channels {
		return nil
	}
	out := make([]float32, m.Frames)
	for f := int64(0); f < m.Frames; f++ {
		out[f] = m.SampleAt(f*int64(m.Channels) + int64(ch))
	}
	return out
}

// IsSilent reports whether the first limit samples are all zero.
// A limit <= 0 checks the whole model.
func (m *Model) IsSilent(limit int) bool {
	n := m.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		if m.Width == WidthFloat32 {
			if m.Float[i] != 0 {
				return false
			}
		} else if m.Int[i] != 0 {
			return false
		}
	}
	return true
}

// SampleFromInt16 widens a 16-bit sample to the 24-bit range, left-justified
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
