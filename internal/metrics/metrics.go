package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/blochsim/internal/bloch"
)

// Metric accumulates a scalar over the rows of a trajectory.
type Metric interface {
	Name() string
	Observe(step int, t float64, m []r3.Vec)
	Value() float64
	Reset()
}

// Defaults returns a fresh instance of every built-in metric.
func Defaults() []Metric {
	return []Metric{
		NewMagnitudeDrift(),
		NewTransverseSignal(),
		NewLongitudinalRecovery(),
	}
}

// Observe resets the metrics, feeds them every row of traj and returns their
// values by name. times may be nil, in which case the step index is used.
func Observe(traj *bloch.Trajectory, times []float64, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}

	steps, _ := traj.Dims()
	for k := 0; k < steps; k++ {
		t := float64(k)
		if k < len(times) {
			t = times[k]
		}
		row := traj.Row(k)
		for _, m := range ms {
			m.Observe(k, t, row)
		}
	}

	values := make(map[string]float64, len(ms))
	for _, m := range ms {
		values[m.Name()] = m.Value()
	}
	return values
}
