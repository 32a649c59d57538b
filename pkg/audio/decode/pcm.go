// ABOUTME: PCM audio decoder
// ABOUTME: Decodes raw 16-bit and 24-bit little-endian PCM to float32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hmicap/hmicap-go/pkg/audio"
)

// PCM decodes headerless PCM audio whose format is supplied by the caller
type PCM struct {
	format audio.Format
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (*PCM, error) {
	if format.Codec != "" && format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}
	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("PCM needs a sample rate and channel count, got %dHz %dch",
			format.SampleRate, format.Channels)
	}
	format.Codec = "pcm"
	return &PCM{format: format}, nil
}

// Codec names the source format
func (d *PCM) Codec() string {
	return "pcm"
}

// Decode converts PCM bytes to float32 samples. A trailing partial frame is dropped.
func (d *PCM) Decode(r io.Reader) (*audio.Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	width := d.format.BitDepth / 8
	frames := len(data) / (width * d.format.Channels)
	samples := make([]float32, frames*d.format.Channels)

	if d.format.BitDepth == 24 {
		// 24-bit PCM: 3 bytes per sample
		for i := range samples {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			samples[i] = audio.NormalizeInt(audio.SampleFrom24Bit(b), 24)
		}
	} else {
		// 16-bit samples are widened to 24-bit so both depths share one scale
		for i := range samples {
			s := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = audio.NormalizeInt(audio.SampleFromInt16(s), 24)
		}
	}

	return finish(audio.NewFloat32Model(d.format.SampleRate, d.format.Channels, samples))
}
