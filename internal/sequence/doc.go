// Package sequence builds rotating-frame field histories for the Bloch
// integrator.
//
// A [Sequence] produces an RF [Waveform] (complex B1 samples, real part along
// x and imaginary part along y) and [Spins] describes the isochromats it is
// applied to. [Fields] combines the two into the bx, by, bz matrices expected
// by [bloch.Integrate]:
//
//   - [HardPulse]: rectangular pulse of a given flip angle and phase
//   - [SincPulse]: Hamming-windowed sinc pulse
//   - [FreePrecession]: no RF at all
//
// Sequences implement GetParams/SetParam so presets and flags can adjust
// them by name.
package sequence
