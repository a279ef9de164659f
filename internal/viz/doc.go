// Package viz renders magnetization trajectories in the terminal.
//
//   - [PlotSpin]: Mx, My and Mz of one spin against step, via asciigraph
//   - [PlotSpectrum]: magnitude spectrum of the transverse signal
//   - [Summary]: run metadata and metrics in a styled panel
//   - [Playback]: Bubble Tea model that scrubs through a stored run
//   - [Canvas]: Braille canvas for the Bloch sphere projections
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	←/→   - Step backward/forward (pauses)
//	+/-   - Faster/slower
//	Tab   - Next spin
//	Home  - Rewind
//	Q     - Quit
package viz
