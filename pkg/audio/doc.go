// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Model types and sample quantization functions
// Package audio provides the in-memory representation of fully decoded audio.
//
// This package defines core types used throughout hmicap:
//   - Model: interleaved samples with rate, channel count and sample width
//   - Format: describes a source stream (codec, sample rate, channels, bit depth)
//
// It also provides the quantization layer used by the int32 containers:
//   - FloatToInt32 / Int32ToFloat with hard clamping to [-1, 1]
//   - Sanitize for samples coming out of external decoders
//   - 16-bit and 24-bit packing helpers for raw PCM input
//
// Example:
//
//	m := audio.NewFloat32Model(44100, 2, samples)
//	if err := m.Validate(); err != nil {
//	    return err
//	}
//	pcm := m.ToInt32()
package audio
