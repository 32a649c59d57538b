// ABOUTME: Raw binary container codec (HMICAP)
// ABOUTME: Fixed header followed by interleaved 32-bit samples
package container

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hmicap/hmicap-go/pkg/audio"
)

// EncodeBinary writes the header followed by the raw interleaved samples.
// The sample width of m selects the magic tag.
func EncodeBinary(m *audio.Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	h, err := HeaderFor(m)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, HeaderSize+m.Len()*4)
	buf = h.AppendBinary(buf)

	switch m.Width {
	case audio.WidthInt32:
		for _, s := range m.Int {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(s))
		}
	case audio.WidthFloat32:
		for _, s := range m.Float {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(s))
		}
	}
	return buf, nil
}

// DecodeBinary parses a binary container image. Trailing bytes after the
// promised payload are ignored. No model is returned on error.
func DecodeBinary(data []byte) (*audio.Model, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	size, ok := h.PayloadSize()
	if !ok {
		return nil, fmt.Errorf("%w: %d frames x %d channels overflows", ErrTruncatedData, h.Frames, h.Channels)
	}
	payload := data[HeaderSize:]
	if len(payload) < size {
		return nil, fmt.Errorf("%w: payload needs %d bytes, have %d", ErrTruncatedData, size, len(payload))
	}
	if uint64(h.SampleRate) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrCorruptContainer, h.SampleRate)
	}

	n := size / 4
	m := &audio.Model{
		SampleRate: int(h.SampleRate),
		Channels:   int(h.Channels),
		Frames:     int64(h.Frames),
		Width:      h.Width(),
	}

	switch m.Width {
	case audio.WidthInt32:
		m.Int = make([]int32, n)
		for i := range m.Int {
			m.Int[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
		}
	case audio.WidthFloat32:
		m.Float = make([]float32, n)
		for i := range m.Float {
			v := math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				v = 0
			}
			m.Float[i] = v
		}
	}
	return m, nil
}
