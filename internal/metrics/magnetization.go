package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// MagnitudeDrift is the largest change of |M| of any spin relative to its
// first observed magnitude. It stays at zero when relaxation is disabled.
type MagnitudeDrift struct {
	name     string
	initial  []float64
	maxDrift float64
}

func NewMagnitudeDrift() *MagnitudeDrift {
	return &MagnitudeDrift{name: "magnitude_drift"}
}

func (d *MagnitudeDrift) Name() string { return d.name }

func (d *MagnitudeDrift) Observe(step int, t float64, m []r3.Vec) {
	if d.initial == nil {
		d.initial = make([]float64, len(m))
		for j, v := range m {
			d.initial[j] = r3.Norm(v)
		}
		return
	}
	for j, v := range m {
		if j >= len(d.initial) {
			break
		}
		d.maxDrift = math.Max(d.maxDrift, math.Abs(r3.Norm(v)-d.initial[j]))
	}
}

func (d *MagnitudeDrift) Value() float64 { return d.maxDrift }

func (d *MagnitudeDrift) Reset() {
	d.initial = nil
	d.maxDrift = 0
}

// TransverseSignal is the mean transverse magnitude |Mxy| over the spins at
// the last observed step.
type TransverseSignal struct {
	name string
	last float64
}

func NewTransverseSignal() *TransverseSignal {
	return &TransverseSignal{name: "transverse_signal"}
}

func (s *TransverseSignal) Name() string { return s.name }

func (s *TransverseSignal) Observe(step int, t float64, m []r3.Vec) {
	mxy := make([]float64, len(m))
	for j, v := range m {
		mxy[j] = math.Hypot(v.X, v.Y)
	}
	s.last = mean(mxy)
}

func (s *TransverseSignal) Value() float64 { return s.last }

func (s *TransverseSignal) Reset() { s.last = 0 }

// LongitudinalRecovery is the mean Mz over the spins at the last observed
// step.
type LongitudinalRecovery struct {
	name string
	last float64
}

func NewLongitudinalRecovery() *LongitudinalRecovery {
	return &LongitudinalRecovery{name: "longitudinal_recovery"}
}

func (r *LongitudinalRecovery) Name() string { return r.name }

func (r *LongitudinalRecovery) Observe(step int, t float64, m []r3.Vec) {
	mz := make([]float64, len(m))
	for j, v := range m {
		mz[j] = v.Z
	}
	r.last = mean(mz)
}

func (r *LongitudinalRecovery) Value() float64 { return r.last }

func (r *LongitudinalRecovery) Reset() { r.last = 0 }

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Sum(v) / float64(len(v))
}
