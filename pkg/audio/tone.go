// ABOUTME: Test tone generator
// ABOUTME: Renders mixed sine waves into a float32 Model
package audio

import "math"

// DefaultToneFrequency is A4
const DefaultToneFrequency = 440.0

// Tone renders the average of sine waves at the given frequencies into a float32 model.
// Every channel carries the same signal. Amplitude is clamped to [0, 1].
func Tone(frequencies []float64, sampleRate, channels int, frames int64, amplitude float64) *Model {
	if amplitude < 0 {
		amplitude = 0
	} else if amplitude > 1 {
		amplitude = 1
	}
	if len(frequencies) == 0 {
		frequencies = []float64{DefaultToneFrequency}
	}

	samples := make([]float32, frames*int64(channels))
	for i := int64(0); i < frames; i++ {
		t := float64(i) / float64(sampleRate)

		var mixed float64
		for _, freq := range frequencies {
			mixed += math.Sin(2 * math.Pi * freq * t)
		}
		mixed /= float64(len(frequencies))

		v := float32(mixed * amplitude)
		for ch := 0; ch < channels; ch++ {
			samples[i*int64(channels)+int64(ch)] = v
		}
	}

	return NewFloat32Model(sampleRate, channels, samples)
}
