// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC audio to float32 samples via mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/hmicap/hmicap-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLAC decodes FLAC audio
type FLAC struct{}

// Codec names the source format
func (FLAC) Codec() string {
	return "flac"
}

// Decode converts a FLAC stream to float32 samples
func (FLAC) Decode(r io.Reader) (*audio.Model, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bits := int(info.BitsPerSample)
	if channels == 0 {
		return nil, fmt.Errorf("FLAC stream has no channels")
	}

	var samples []float32
	if info.NSamples > 0 && info.NSamples < 1<<28 {
		samples = make([]float32, 0, int(info.NSamples)*channels)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}
		if len(frame.Subframes) != channels {
			return nil, fmt.Errorf("FLAC frame has %d subframes, want %d", len(frame.Subframes), channels)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.NormalizeInt(frame.Subframes[ch].Samples[i], bits))
			}
		}
	}

	return finish(audio.NewFloat32Model(int(info.SampleRate), channels, samples))
}
