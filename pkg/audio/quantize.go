// ABOUTME: Float <-> integer sample quantization
// ABOUTME: Clamps, sanitizes and scales samples between [-1, 1] and int32
package audio

import "math"

// Int32Scale is the positive magnitude used for int32 quantization. Scaling by
// MaxInt32 rather than 2^31 keeps +1.0 representable.
const Int32Scale = math.MaxInt32

// Sanitize replaces non-finite values with silence and clamps to [-1, 1]
func Sanitize(x float32) float32 {
	f := float64(x)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// FloatToInt32 quantizes a float sample to int32, truncating toward zero
func FloatToInt32(x float32) int32 {
	x = Sanitize(x)
	return int32(float64(x) * Int32Scale)
}

// Int32ToFloat converts an int32 sample back to [-1, 1]
func Int32ToFloat(s int32) float32 {
	f := float64(s) / Int32Scale
	if f < -1 {
		// only MinInt32 lands here
		f = -1
	}
	return float32(f)
}

// NormalizeInt converts a signed integer sample of the given bit depth to [-1, 1]
func NormalizeInt(sample int32, bits int) float32 {
	if bits <= 0 || bits > 32 {
		return 0
	}
	scale := float64(uint64(1) << uint(bits-1))
	f := float64(sample) / scale
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return float32(f)
}
