// ABOUTME: Glitch effect package
// ABOUTME: Stateless per-sample distortions driven by a seedable generator
// Package glitch implements the live distortion applied during playback.
//
// Apply draws r uniformly from [0, 1) and picks the first band whose upper
// edge 0.1*k*intensity exceeds r:
//
//	k=1 bit crush to 16-12*intensity bits
//	k=2 stutter (random zeroing)
//	k=3 sign inversion
//	k=4 hard clip at a random threshold, renormalised
//	k=5 bounded additive noise
//	k=6 ring modulation keyed to the playback position
//	k=7 eight-step quantisation
//	k=8 silence
//
// Draws above 0.8*intensity leave the sample as is. The generator is always
// passed in, so a Processor built with a fixed seed replays exactly.
package glitch
