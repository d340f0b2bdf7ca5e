// Package viz is the terminal trace player.
//
// Scenes are rasterized onto a braille [Canvas] (2x4 dots per cell) and
// colored per drawable with lipgloss. [Player] is a Bubble Tea model that
// steps through precomputed scenes.
//
// # Key Bindings
//
//	Space     - Play/Pause
//	←/→       - Previous/next step
//	Home/End  - First/last step
//	T         - Cycle color themes
//	?         - Show help
//	Q         - Quit
package viz
