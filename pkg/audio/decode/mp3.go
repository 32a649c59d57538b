// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to float32 samples via go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/hmicap/hmicap-go/pkg/audio"
)

// go-mp3 always produces 16-bit little-endian stereo
const (
	mp3Channels = 2
	mp3Bits     = 16
)

// MP3 decodes MP3 audio
type MP3 struct{}

// Codec names the source format
func (MP3) Codec() string {
	return "mp3"
}

// Decode converts an MP3 stream to float32 samples
func (MP3) Decode(r io.Reader) (*audio.Model, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	var pcm []byte
	if n := decoder.Length(); n > 0 {
		pcm = make([]byte, 0, n)
	}
	buf := make([]byte, 8192)
	for {
		n, err := decoder.Read(buf)
		pcm = append(pcm, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mp3 decode error: %w", err)
		}
	}

	frameBytes := mp3Channels * mp3Bits / 8
	frames := len(pcm) / frameBytes
	if frames == 0 {
		return nil, fmt.Errorf("mp3 stream decoded to no audio")
	}
	samples := make([]float32, frames*mp3Channels)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = audio.NormalizeInt(int32(s), mp3Bits)
	}

	return finish(audio.NewFloat32Model(decoder.SampleRate(), mp3Channels, samples))
}
