package sequence

import (
	"math"

	"github.com/pkg/errors"
)

// Waveform holds one complex B1 sample (Tesla) per step.
type Waveform []complex128

type Sequence interface {
	Name() string
	Waveform(steps int, dt float64) Waveform
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// pulseSamples returns how many field rows a pulse of the given duration
// occupies. Row k drives step k -> k+1, so at most steps-1 rows matter.
func pulseSamples(duration, dt float64, steps int) int {
	if steps < 2 {
		return 0
	}
	n := int(math.Round(duration / dt))
	if n < 1 {
		n = 1
	}
	return min(n, steps-1)
}

func unknownParam(seq, name string) error {
	return errors.Errorf("%s: unknown parameter: %s", seq, name)
}
