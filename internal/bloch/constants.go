package bloch

import "math"

const (
	// GammaBar is the proton gyromagnetic ratio over 2π in kHz/T.
	GammaBar = 42.57e3

	// Gamma is the proton gyromagnetic ratio in rad/(ms·T).
	Gamma = 2 * math.Pi * GammaBar
)

// defaultMinChunk is the smallest spin count handed to one worker.
const defaultMinChunk = 64
