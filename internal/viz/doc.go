// Package viz provides a terminal dashboard for a running fluid simulation.
//
// The dashboard is a Bubble Tea program:
//
//   - [Model]: steps the simulator on every tick and renders its statistics
//   - [Canvas]: Braille-based pixel canvas used for the side view
//   - [SideView]: grid occupancy projected along z
//   - Theme selection with 3 built-in color schemes
//
// The side view shows which grid columns hold liquid, not individual
// particles.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset the scene
//	f/F   - Lower/raise the FLIP ratio
//	d     - Toggle drift compensation
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
