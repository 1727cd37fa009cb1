// Package viz replays trajectories in the terminal with Bubble Tea.
//
//   - [Player]: frame-by-frame replay of a finished trajectory
//   - [Canvas]: Braille sub-pixel canvas with world-to-screen [Viewport]
//   - [Scene]: bodies chained from the origin inside the max-radius circle
//
// The interactive app lists presets, lets their values be edited and runs
// them through the derivation pipeline before handing off to the player.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the first frame
//	[ ]   - Step one frame (pauses)
//	+ -   - Zoom, eased with a critically damped spring
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
