// ABOUTME: WAV audio decoder
// ABOUTME: Decodes integer PCM WAV files to float32 samples via go-audio/wav
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/hmicap/hmicap-go/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAV decodes integer PCM WAV audio
type WAV struct{}

// Codec names the source format
func (WAV) Codec() string {
	return "wav"
}

// Decode converts a WAV stream to float32 samples. Non-seekable readers are
// buffered in memory first.
func (WAV) Decode(r io.Reader) (*audio.Model, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read WAV data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV audio format %d", ErrUnsupported, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV samples: %w", err)
	}

	channels := int(dec.NumChans)
	bits := int(dec.BitDepth)
	if channels == 0 {
		return nil, fmt.Errorf("WAV file has no channels")
	}

	frames := len(buf.Data) / channels
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = audio.NormalizeInt(int32(buf.Data[i]), bits)
	}

	return finish(audio.NewFloat32Model(int(dec.SampleRate), channels, samples))
}
