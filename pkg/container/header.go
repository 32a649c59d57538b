// ABOUTME: Fixed-size binary container header
// ABOUTME: Marshals the 40-byte HMICAP header in little-endian order
package container

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hmicap/hmicap-go/pkg/audio"
)

const (
	// HeaderSize is 36 bytes of fields padded to 8-byte alignment
	HeaderSize = 40

	// MagicInt32 tags a payload of interleaved int32 samples
	MagicInt32 = "HMICAP01"
	// MagicFloat32 tags a payload of interleaved IEEE 754 float32 samples
	MagicFloat32 = "HMICAF01"

	// BitDepth is the only sample depth either variant stores
	BitDepth = 32

	magicLen = 8
)

// Header is the decoded form of the binary container header
type Header struct {
	Magic      [magicLen]byte
	SampleRate uint32
	Channels   uint16
	BitDepth   uint16
	Frames     uint64
}

// HeaderFor builds the header describing m
func HeaderFor(m *audio.Model) (Header, error) {
	var h Header
	switch m.Width {
	case audio.WidthInt32:
		copy(h.Magic[:], MagicInt32)
	case audio.WidthFloat32:
		copy(h.Magic[:], MagicFloat32)
	default:
		return h, fmt.Errorf("unsupported sample width: %s", m.Width)
	}
	if m.SampleRate <= 0 || int64(m.SampleRate) > math.MaxUint32 {
		return h, fmt.Errorf("sample rate out of range: %d", m.SampleRate)
	}
	h.SampleRate = uint32(m.SampleRate)
	h.Channels = uint16(m.Channels)
	h.BitDepth = BitDepth
	h.Frames = uint64(m.Frames)
	return h, nil
}

// Width returns the sample width named by the magic tag, or 0 for an unknown tag
func (h Header) Width() audio.Width {
	switch string(h.Magic[:]) {
	case MagicInt32:
		return audio.WidthInt32
	case MagicFloat32:
		return audio.WidthFloat32
	default:
		return 0
	}
}

// PayloadSize is the number of payload bytes the header promises, and false when
// the size does not fit in an int.
func (h Header) PayloadSize() (int, bool) {
	samples := h.Frames * uint64(h.Channels)
	if h.Channels != 0 && samples/uint64(h.Channels) != h.Frames {
		return 0, false
	}
	if samples > uint64(math.MaxInt)/4 {
		return 0, false
	}
	return int(samples * 4), true
}

// AppendBinary appends the 40-byte encoding of h to b. Reserved bytes are zero.
func (h Header) AppendBinary(b []byte) []byte {
	var buf [HeaderSize]byte
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[8:12], h.SampleRate)
	binary.LittleEndian.PutUint16(buf[12:14], h.Channels)
	binary.LittleEndian.PutUint16(buf[14:16], h.BitDepth)
	binary.LittleEndian.PutUint64(buf[16:24], h.Frames)
	return append(b, buf[:]...)
}

// ParseHeader decodes and validates the header at the start of data
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < magicLen {
		return h, fmt.Errorf("%w: %d bytes is too short for a header", ErrCorruptContainer, len(data))
	}
	copy(h.Magic[:], data[:magicLen])
	if h.Width() == 0 {
		return h, fmt.Errorf("%w: bad magic %q", ErrCorruptContainer, data[:magicLen])
	}
	if len(data) < HeaderSize {
		return h, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncatedData, HeaderSize, len(data))
	}

	h.SampleRate = binary.LittleEndian.Uint32(data[8:12])
	h.Channels = binary.LittleEndian.Uint16(data[12:14])
	h.BitDepth = binary.LittleEndian.Uint16(data[14:16])
	h.Frames = binary.LittleEndian.Uint64(data[16:24])

	if h.SampleRate == 0 {
		return h, fmt.Errorf("%w: zero sample rate", ErrCorruptContainer)
	}
	if h.Channels == 0 {
		return h, fmt.Errorf("%w: zero channel count", ErrCorruptContainer)
	}
	if h.BitDepth != BitDepth && h.BitDepth != 0 {
		return h, fmt.Errorf("%w: unsupported bit depth %d", ErrCorruptContainer, h.BitDepth)
	}
	return h, nil
}
