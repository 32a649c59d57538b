// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the pull-callback Output interface and its backends
// Package output provides audio playback backends driven by a pull callback.
//
// The backend owns the audio thread and asks a Callback for interleaved
// float32 frames. When the callback returns Complete the backend plays the
// final buffer and closes Done. Stop guarantees no callback runs afterwards.
//
// Backends: oto (default), malgo (miniaudio), portaudio (build tag
// "portaudio") and null (headless, for tests and batch runs).
//
// Example:
//
//	out, err := output.New("oto")
//	err = out.Open(output.Config{SampleRate: 48000, Channels: 2}, fill)
//	err = out.Start()
//	<-out.Done()
//	out.Stop()
//	out.Close()
package output
