// ABOUTME: Terminal UI package
// ABOUTME: Bubbletea player view that doubles as a control source
// Package ui renders playback progress and turns key presses into glitch,
// volume and quit commands. Source plugs the TUI into hmicap.Player.
package ui
