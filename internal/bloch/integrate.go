package bloch

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Integrator evolves magnetization under a sampled field history.
// An Integrator holds no per-run state and may be shared between goroutines.
type Integrator struct {
	logger   logrus.FieldLogger
	workers  int
	minChunk int
}

// New returns an Integrator running on a single goroutine with a discarding
// logger unless configured otherwise.
func New(opts ...Option) *Integrator {
	in := &Integrator{
		logger:   discardLogger(),
		workers:  1,
		minChunk: defaultMinChunk,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Integrate evolves mi (3 x N) under the field history bx, by, bz (T x N,
// Tesla) with relaxation times t1, t2 (length N, ms) and time steps dt
// (length T, ms) using a default Integrator.
func Integrate(mi, bx, by, bz mat.Matrix, t1, t2, dt []float64) (*Trajectory, error) {
	return New().Run(context.Background(), mi, bx, by, bz, t1, t2, dt)
}

// Run validates the inputs and computes the trajectory. Row 0 of the result
// is mi; row k is obtained from row k-1 with field row k-1 held for dt[k-1].
// On any validation error or cancellation the returned trajectory is nil.
func (in *Integrator) Run(ctx context.Context, mi, bx, by, bz mat.Matrix, t1, t2, dt []float64) (*Trajectory, error) {
	return in.run(ctx, mi, bx, by, bz, t1, t2, dt, nil)
}

// RunComplex is Run for complex field histories. Imaginary parts are dropped;
// each field that had any is logged as a warning and listed in
// Trajectory.Warnings. Shape errors take precedence over warnings.
func (in *Integrator) RunComplex(ctx context.Context, mi mat.Matrix, bx, by, bz mat.CMatrix, t1, t2, dt []float64) (*Trajectory, error) {
	var warnings []error
	fields := make([]mat.Matrix, 3)
	for i, f := range []struct {
		name string
		m    mat.CMatrix
	}{{"bx", bx}, {"by", by}, {"bz", bz}} {
		if isNilC(f.m) {
			continue
		}
		re, warn := realPart(f.name, f.m)
		fields[i] = re
		if warn != nil {
			warnings = append(warnings, warn)
		}
	}
	return in.run(ctx, mi, fields[0], fields[1], fields[2], t1, t2, dt, warnings)
}

func (in *Integrator) run(ctx context.Context, mi, bx, by, bz mat.Matrix, t1, t2, dt []float64, warnings []error) (*Trajectory, error) {
	steps, spins, err := validate(mi, bx, by, bz, t1, t2, dt)
	if err != nil {
		in.logger.WithField("action", "bloch_validate").WithError(err).Debug("input rejected")
		return nil, err
	}

	for _, w := range warnings {
		in.logger.WithField("action", "bloch_truncate_imaginary").Warn(w.Error())
	}

	traj := newTrajectory(steps, spins)
	traj.Warnings = warnings
	for j := 0; j < spins; j++ {
		traj.set(0, j, r3.Vec{X: mi.At(0, j), Y: mi.At(1, j), Z: mi.At(2, j)})
	}

	// Radians per Tesla for each step; dt itself is only read.
	angle := make([]float64, steps)
	floats.ScaleTo(angle, Gamma, dt)

	p := &problem{bx: bx, by: by, bz: bz, t1: t1, t2: t2, dt: dt, angle: angle, traj: traj}
	if err := in.forEachChunk(ctx, spins, p.evolve); err != nil {
		return nil, err
	}

	in.logger.WithFields(logrus.Fields{
		"action": "bloch_run",
		"steps":  steps,
		"spins":  spins,
	}).Debug("trajectory computed")

	return traj, nil
}

type problem struct {
	bx, by, bz mat.Matrix
	t1, t2, dt []float64
	angle      []float64
	traj       *Trajectory
}

// evolve advances spins [lo, hi) through every step. Steps are strictly
// sequential; the spin range is owned exclusively by this call.
func (p *problem) evolve(ctx context.Context, lo, hi int) error {
	steps, _ := p.traj.Dims()
	for k := 1; k < steps; k++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s, h := p.angle[k-1], p.dt[k-1]
		for j := lo; j < hi; j++ {
			b := r3.Vec{X: p.bx.At(k-1, j), Y: p.by.At(k-1, j), Z: p.bz.At(k-1, j)}
			m := Rotate(p.traj.At(k-1, j), r3.Scale(s, b))

			e1 := h / p.t1[j]
			e2 := 1 - h/p.t2[j]
			p.traj.set(k, j, r3.Vec{
				X: m.X * e2,
				Y: m.Y * e2,
				Z: m.Z + (1-m.Z)*e1,
			})
		}
	}
	return nil
}

// Rotate turns m about the axis of b using Rodrigues' formula with
// cosθ = cos|b| and sinθ = -sin|b|, i.e. a right-handed rotation by -|b|.
// A zero b returns m unchanged.
func Rotate(m, b r3.Vec) r3.Vec {
	bmag := r3.Norm(b)
	if bmag == 0 {
		return m
	}
	w := r3.Scale(1/bmag, b)
	cos, sin := math.Cos(bmag), -math.Sin(bmag)

	rotated := r3.Add(r3.Scale(cos, m), r3.Scale(sin, r3.Cross(w, m)))
	return r3.Add(rotated, r3.Scale(r3.Dot(w, m)*(1-cos), w))
}

func realPart(name string, c mat.CMatrix) (mat.Matrix, error) {
	r, cols := c.Dims()
	if r == 0 || cols == 0 {
		return &mat.Dense{}, nil
	}

	re := mat.NewDense(r, cols, nil)
	var n int
	var maxImag float64
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			v := c.At(i, j)
			re.Set(i, j, real(v))
			if im := imag(v); im != 0 {
				n++
				maxImag = math.Max(maxImag, math.Abs(im))
			}
		}
	}
	if n == 0 {
		return re, nil
	}
	return re, &ImaginaryFieldWarning{Field: name, Samples: n, MaxImag: maxImag}
}
