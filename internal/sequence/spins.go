package sequence

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/blochsim/internal/bloch"
)

// Spins describes a set of isochromats sharing relaxation times and spread
// evenly in off-resonance.
type Spins struct {
	Count      int
	Offset     float64 // kHz, center of the off-resonance spread
	OffsetSpan float64 // kHz, full width of the off-resonance spread
	T1, T2     float64 // ms
}

// Offsets returns the off-resonance of each spin in kHz, spread evenly and
// symmetrically about Offset.
func (s Spins) Offsets() []float64 {
	off := make([]float64, s.Count)
	if s.Count > 1 {
		floats.Span(off, -s.OffsetSpan/2, s.OffsetSpan/2)
	}
	floats.AddConst(s.Offset, off)
	return off
}

// Fields expands a waveform over the spins: bx and by carry the RF, bz the
// off-resonance of each spin (offset / GammaBar Tesla).
func Fields(wf Waveform, spins Spins) (bx, by, bz *mat.Dense) {
	steps := len(wf)
	bx = mat.NewDense(steps, spins.Count, nil)
	by = mat.NewDense(steps, spins.Count, nil)
	bz = mat.NewDense(steps, spins.Count, nil)

	offsets := spins.Offsets()
	for k, b1 := range wf {
		for j, f := range offsets {
			bx.Set(k, j, real(b1))
			by.Set(k, j, imag(b1))
			bz.Set(k, j, f/bloch.GammaBar)
		}
	}
	return bx, by, bz
}

func Relaxation(spins Spins) (t1, t2 []float64) {
	t1 = make([]float64, spins.Count)
	t2 = make([]float64, spins.Count)
	for j := range t1 {
		t1[j] = spins.T1
		t2[j] = spins.T2
	}
	return t1, t2
}

// Uniform returns steps copies of dt.
func Uniform(steps int, dt float64) []float64 {
	d := make([]float64, steps)
	for i := range d {
		d[i] = dt
	}
	return d
}

// Initial returns a 3 x n magnetization with every spin set to (x, y, z).
func Initial(n int, x, y, z float64) *mat.Dense {
	mi := mat.NewDense(3, n, nil)
	for j := 0; j < n; j++ {
		mi.Set(0, j, x)
		mi.Set(1, j, y)
		mi.Set(2, j, z)
	}
	return mi
}

// Equilibrium returns n spins at thermal equilibrium, M = (0, 0, 1).
func Equilibrium(n int) *mat.Dense {
	return Initial(n, 0, 0, 1)
}
