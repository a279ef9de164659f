package bloch_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/blochsim/internal/bloch"
)

const dt = 0.05

var inf = []float64{math.Inf(1)}

// pulse rotates m0 by flip radians about the unit axis in a single step
// with relaxation disabled and returns the magnetization after the step.
func pulse(m0, axis r3.Vec, flip float64) r3.Vec {
	b := r3.Scale(flip/(bloch.Gamma*dt), axis)
	bx := mat.NewDense(2, 1, []float64{b.X, 0})
	by := mat.NewDense(2, 1, []float64{b.Y, 0})
	bz := mat.NewDense(2, 1, []float64{b.Z, 0})
	mi := mat.NewDense(3, 1, []float64{m0.X, m0.Y, m0.Z})

	traj, err := bloch.Integrate(mi, bx, by, bz, inf, inf, []float64{dt, dt})
	Expect(err).NotTo(HaveOccurred())
	return traj.At(1, 0)
}

func beNear(want r3.Vec) OmegaMatcher {
	return SatisfyAll(
		WithTransform(func(v r3.Vec) float64 { return v.X }, BeNumerically("~", want.X, 1e-12)),
		WithTransform(func(v r3.Vec) float64 { return v.Y }, BeNumerically("~", want.Y, 1e-12)),
		WithTransform(func(v r3.Vec) float64 { return v.Z }, BeNumerically("~", want.Z, 1e-12)),
	)
}

var _ = Describe("Rotation convention", func() {
	z := r3.Vec{Z: 1}

	DescribeTable("tipping longitudinal magnetization about x",
		func(flip float64) {
			Expect(pulse(z, r3.Vec{X: 1}, flip)).To(beNear(r3.Vec{Y: math.Sin(flip), Z: math.Cos(flip)}))
		},
		Entry("30 degrees", math.Pi/6),
		Entry("90 degrees", math.Pi/2),
		Entry("180 degrees", math.Pi),
		Entry("270 degrees", 3*math.Pi/2),
	)

	DescribeTable("tipping longitudinal magnetization about y",
		func(flip float64) {
			Expect(pulse(z, r3.Vec{Y: 1}, flip)).To(beNear(r3.Vec{X: -math.Sin(flip), Z: math.Cos(flip)}))
		},
		Entry("45 degrees", math.Pi/4),
		Entry("90 degrees", math.Pi/2),
	)

	It("precesses transverse magnetization clockwise about a positive z field", func() {
		phi := 0.7
		Expect(pulse(r3.Vec{X: 1}, r3.Vec{Z: 1}, phi)).To(beNear(r3.Vec{X: math.Cos(phi), Y: -math.Sin(phi)}))
	})

	It("leaves magnetization parallel to the field untouched", func() {
		m := r3.Vec{X: 0.3, Y: 0.4}
		Expect(pulse(m, r3.Unit(m), 1.1)).To(beNear(m))
	})
})

var _ = Describe("Relaxation", func() {
	It("recovers Mz toward one and never rotates a zero-field spin", func() {
		const steps = 200
		zero := mat.NewDense(steps, 1, nil)
		dts := make([]float64, steps)
		for i := range dts {
			dts[i] = 1
		}
		mi := mat.NewDense(3, 1, []float64{0, 0, -1})

		traj, err := bloch.Integrate(mi, zero, zero, zero, []float64{100}, []float64{50}, dts)
		Expect(err).NotTo(HaveOccurred())

		last := traj.At(steps-1, 0)
		Expect(last.X).To(BeZero())
		Expect(last.Y).To(BeZero())
		Expect(last.Z).To(BeNumerically("~", 1-2*math.Pow(0.99, steps-1), 1e-12))
	})

	It("applies no relaxation when T1 and T2 are infinite", func() {
		zero := mat.NewDense(3, 1, nil)
		mi := mat.NewDense(3, 1, []float64{0.5, 0.5, 0.1})

		traj, err := bloch.Integrate(mi, zero, zero, zero, inf, inf, []float64{1, 1, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.At(2, 0)).To(Equal(r3.Vec{X: 0.5, Y: 0.5, Z: 0.1}))
	})
})

var _ = Describe("Validation", func() {
	It("returns no trajectory when the field shapes disagree", func() {
		traj, err := bloch.Integrate(
			mat.NewDense(3, 2, nil),
			mat.NewDense(4, 2, nil), mat.NewDense(4, 3, nil), mat.NewDense(4, 2, nil),
			[]float64{1, 1}, []float64{1, 1}, []float64{1, 1, 1, 1},
		)
		Expect(traj).To(BeNil())
		Expect(err).To(MatchError(bloch.ErrFieldShape))
		Expect(err).To(MatchError(bloch.ErrShapeMismatch))
	})
})
