// ABOUTME: Per-sample glitch effects
// ABOUTME: Picks one of eight intensity-gated distortions per sample from an injected RNG
package glitch

import (
	"math"
	"math/rand/v2"
)

// Band identifies the transformation Apply chose for a sample
type Band int

const (
	BandNone Band = iota
	BandBitCrush
	BandStutter
	BandInvert
	BandClip
	BandNoise
	BandRing
	BandQuantize
	BandSilence
)

var bandNames = [...]string{"none", "bitcrush", "stutter", "invert", "clip", "noise", "ring", "quantize", "silence"}

func (b Band) String() string {
	if b < 0 || int(b) >= len(bandNames) {
		return "unknown"
	}
	return bandNames[b]
}

// BandFor returns the band a draw r in [0, 1) selects at the given intensity.
// Each band is 0.1*intensity wide, so draws above 0.8*intensity pass through.
func BandFor(r, intensity float32) Band {
	if intensity <= 0 {
		return BandNone
	}
	intensity = min(intensity, 1)
	for b := BandBitCrush; b <= BandSilence; b++ {
		if r < intensity*0.1*float32(b) {
			return b
		}
	}
	return BandNone
}

// Apply runs sample through one randomly selected glitch. position is the
// playback frame, used by ring modulation. At intensity <= 0 the sample is
// returned untouched and rng is not consumed.
func Apply(sample, intensity float32, position int64, rng *rand.Rand) float32 {
	if intensity <= 0 {
		return sample
	}
	intensity = min(intensity, 1)

	return Transform(BandFor(rng.Float32(), intensity), sample, intensity, position, rng)
}

// Transform applies a single band. Bands that need extra randomness draw it from rng.
func Transform(band Band, sample, intensity float32, position int64, rng *rand.Rand) float32 {
	switch band {
	case BandBitCrush:
		bits := int(16 - intensity*12)
		scale := float32(math.Exp2(float64(bits)))
		return float32(math.Floor(float64(sample*scale))) / scale
	case BandStutter:
		if rng.Float32() > 0.5 {
			return sample
		}
		return 0
	case BandInvert:
		return -sample
	case BandClip:
		threshold := 0.3 + rng.Float32()*0.4
		return max(-threshold, min(threshold, sample)) / threshold
	case BandNoise:
		noise := (rng.Float32()*2 - 1) * intensity * 0.5
		return max(-1, min(1, sample+noise))
	case BandRing:
		freq := 50 + rng.Float32()*500
		return sample * float32(math.Sin(float64(position)*float64(freq)*0.001))
	case BandQuantize:
		return float32(int(sample*8)) / 8
	case BandSilence:
		return 0
	default:
		return sample
	}
}

// Processor owns the random source for one playback session.
// It is not safe for concurrent use; the audio callback is its only caller.
type Processor struct {
	seed uint64
	rng  *rand.Rand
}

// NewProcessor returns a processor seeded with seed. A zero seed picks a random one.
func NewProcessor(seed uint64) *Processor {
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	return &Processor{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed reports the seed in use, so a session can be replayed
func (p *Processor) Seed() uint64 {
	return p.seed
}

// Process applies one glitch draw to sample
func (p *Processor) Process(sample, intensity float32, position int64) float32 {
	return Apply(sample, intensity, position, p.rng)
}

// Reset rewinds the random source to its seed
func (p *Processor) Reset() {
	p.rng = rand.New(rand.NewPCG(p.seed, p.seed^0x9e3779b97f4a7c15))
}
