package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/blochsim/internal/bloch"
)

// Signal returns the mean transverse magnetization Mx + iMy over all spins
// at every step.
func Signal(traj *bloch.Trajectory) []complex128 {
	steps, spins := traj.Dims()
	sig := make([]complex128, steps)
	if spins == 0 {
		return sig
	}

	n := complex(float64(spins), 0)
	for k := range sig {
		var sum complex128
		for j := 0; j < spins; j++ {
			sum += complex(traj.Mx.At(k, j), traj.My.At(k, j))
		}
		sig[k] = sum / n
	}
	return sig
}

// Spectrum returns the magnitude spectrum of a signal sampled every dt
// milliseconds. Frequencies are in kHz, in ascending order with zero
// frequency in the middle.
func Spectrum(signal []complex128, dt float64) (freqs, mags []float64) {
	n := len(signal)
	if n == 0 || dt <= 0 {
		return nil, nil
	}

	coeffs := fft.FFT(signal)
	freqs = make([]float64, n)
	mags = make([]float64, n)

	shift := (n + 1) / 2
	df := 1 / (float64(n) * dt)
	for i := range freqs {
		src := (i + shift) % n
		bin := src
		if src >= shift {
			bin = src - n
		}
		freqs[i] = float64(bin) * df
		mags[i] = cmplx.Abs(coeffs[src]) / float64(n)
	}
	return freqs, mags
}

// PeakFrequency returns the frequency of the largest magnitude, or zero for
// an empty spectrum.
func PeakFrequency(freqs, mags []float64) float64 {
	if len(mags) == 0 || len(freqs) != len(mags) {
		return 0
	}
	return freqs[floats.MaxIdx(mags)]
}
