package bloch

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Trajectory holds the magnetization of every spin at every step.
// Rows are steps, columns are spins.
type Trajectory struct {
	Mx, My, Mz *mat.Dense

	// Warnings lists recoverable conditions met while cleaning the input.
	Warnings []error
}

func newTrajectory(steps, spins int) *Trajectory {
	return &Trajectory{
		Mx: mat.NewDense(steps, spins, nil),
		My: mat.NewDense(steps, spins, nil),
		Mz: mat.NewDense(steps, spins, nil),
	}
}

func (t *Trajectory) Dims() (steps, spins int) {
	return t.Mx.Dims()
}

// At returns the magnetization of one spin at one step.
func (t *Trajectory) At(step, spin int) r3.Vec {
	return r3.Vec{X: t.Mx.At(step, spin), Y: t.My.At(step, spin), Z: t.Mz.At(step, spin)}
}

func (t *Trajectory) Magnitude(step, spin int) float64 {
	return r3.Norm(t.At(step, spin))
}

// Row returns the magnetization of all spins at one step.
func (t *Trajectory) Row(step int) []r3.Vec {
	_, spins := t.Dims()
	row := make([]r3.Vec, spins)
	for j := range row {
		row[j] = t.At(step, j)
	}
	return row
}

// Spin returns the full history of one spin.
func (t *Trajectory) Spin(spin int) []r3.Vec {
	steps, _ := t.Dims()
	hist := make([]r3.Vec, steps)
	for k := range hist {
		hist[k] = t.At(k, spin)
	}
	return hist
}

func (t *Trajectory) set(step, spin int, m r3.Vec) {
	t.Mx.Set(step, spin, m.X)
	t.My.Set(step, spin, m.Y)
	t.Mz.Set(step, spin, m.Z)
}
