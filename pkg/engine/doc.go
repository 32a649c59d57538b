// ABOUTME: Playback engine package
// ABOUTME: Model-to-callback state machine with live glitch injection
// Package engine turns a loaded audio.Model into buffers for an output callback.
//
// Lifecycle:
//
//	Idle --Load--> Loaded --Start--> Playing --end of data--> Draining
//	                                    |                        |
//	                                    +--------Stop------------+--> Stopped
//
// Release returns any phase to Idle. Fill is safe to call from the audio
// thread: it reads the Session with atomics, writes real frames until the end
// of the model or a stop request, and zero-fills the rest of the buffer.
package engine
