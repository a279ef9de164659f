// Package analysis turns magnetization trajectories into signals.
//
//   - [Signal]: mean transverse signal Mx + iMy of all spins, per step
//   - [Spectrum]: magnitude spectrum of a signal, frequencies in kHz
//   - [PeakFrequency]: frequency of the largest spectral line
//   - [Portrait]: ASCII plot of one spin in the transverse plane
//
// # Free induction decay
//
// After an excitation the transverse magnetization of an off-resonant spin
// precesses at its offset frequency, so the spectrum of the FID peaks there:
//
//	sig := analysis.Signal(traj)
//	freqs, mags := analysis.Spectrum(sig, dt)
//	peak := analysis.PeakFrequency(freqs, mags)
package analysis
