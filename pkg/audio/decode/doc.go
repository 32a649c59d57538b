// ABOUTME: Audio decoder package for source files
// ABOUTME: Provides Decoder interface and implementations for MP3, FLAC, WAV and PCM
// Package decode turns compressed or raw source audio into an audio.Model.
//
// Supports: MP3, FLAC, WAV (integer PCM) and headerless PCM (16-bit and 24-bit).
//
// Every decoder reads its whole input and returns float32 samples that are
// finite and within [-1, 1], ready for a container encoder.
//
// Example:
//
//	m, err := decode.File("song.flac")
//	err = container.WriteFile("song.hmicap7", m.ToInt32())
package decode
