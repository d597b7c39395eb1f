// Package viz renders a running bubble field in the terminal.
//
// The package implements a live TUI using the Bubble Tea framework:
//
//   - [Model]: drives an [engine.Engine] tick by tick and draws its frames
//   - [Canvas]: Braille-based pixel canvas with per-cell colors
//   - [Theme]: panel colors plus a bubble palette usable as a lifecycle.Styler
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reload the catalog and start over
//	T     - Cycle color themes
//	Tab   - Select parameter, Up/Down to tune it
//	N/P   - Focus next/previous bubble, Enter to click it
//	S     - Save an SVG snapshot of the current frame
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
