// ABOUTME: Control channel package
// ABOUTME: Line commands that steer a running playback session
// Package control reads user commands and applies them to an engine.Session.
//
//	g / G   toggle glitch
//	0-9     intensity digit/9
//	q / Q   request stop and end the loop
//	?       print help
//
// A Source feeds lines to a Controller. ReadlineSource edits lines on the
// terminal, ReaderSource reads any io.Reader, and IdleSource takes no input.
// Close on any source unblocks its Run so playback can shut down while the
// user is mid-prompt.
package control
