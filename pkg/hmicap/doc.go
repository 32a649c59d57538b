// ABOUTME: High-level HMICAP library API
// ABOUTME: Loads a container and runs a complete playback session
// Package hmicap provides the high-level player for HMICAP and HMICA files.
//
// This is the main entry point for most library users. A Player owns:
//   - an engine.Engine serving frames to the output callback
//   - an output.Output backend (oto by default)
//   - a progress reporter and a control source for glitch commands
//
// For lower-level control, see the container, engine, glitch and control
// packages.
//
// Example:
//
//	player, err := hmicap.NewPlayer(hmicap.PlayerConfig{
//	    Backend:    "malgo",
//	    OnProgress: hmicap.LinePrinter(os.Stdout),
//	})
//	err = player.Load("song.hmicap7")
//	final, err := player.Play(ctx, control.NewReaderSource(os.Stdin))
package hmicap
