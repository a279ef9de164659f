package bloch

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// validate checks every precondition of a run in a fixed order and returns
// the first violation. It returns the number of steps T and spins N.
func validate(mi, bx, by, bz mat.Matrix, t1, t2, dt []float64) (steps, spins int, err error) {
	if isNil(bx) || isNil(by) || isNil(bz) {
		return 0, 0, &ShapeMismatchError{Param: "field", Want: "three T x N matrices", Got: "nil", Err: ErrFieldShape}
	}

	steps, spins = bx.Dims()
	if steps == 0 || spins == 0 {
		return 0, 0, &ShapeMismatchError{Param: "bx", Want: "non-empty", Got: shape(steps, spins), Err: ErrFieldShape}
	}
	for _, f := range []struct {
		name string
		m    mat.Matrix
	}{{"by", by}, {"bz", bz}} {
		if r, c := f.m.Dims(); r != steps || c != spins {
			return 0, 0, &ShapeMismatchError{Param: f.name, Want: shape(steps, spins), Got: shape(r, c), Err: ErrFieldShape}
		}
	}

	if len(dt) != steps {
		return 0, 0, &ShapeMismatchError{Param: "dt", Want: fmt.Sprint(steps), Got: fmt.Sprint(len(dt)), Err: ErrTimeStepLength}
	}

	if isNil(mi) {
		return 0, 0, &ShapeMismatchError{Param: "mi", Want: shape(3, spins), Got: "nil", Err: ErrMagnetizationShape}
	}
	if r, c := mi.Dims(); r != 3 || c != spins {
		return 0, 0, &ShapeMismatchError{Param: "mi", Want: shape(3, spins), Got: shape(r, c), Err: ErrMagnetizationShape}
	}

	if len(t1) != spins {
		return 0, 0, &ShapeMismatchError{Param: "t1", Want: fmt.Sprint(spins), Got: fmt.Sprint(len(t1)), Err: ErrT1Length}
	}
	if len(t2) != spins {
		return 0, 0, &ShapeMismatchError{Param: "t2", Want: fmt.Sprint(spins), Got: fmt.Sprint(len(t2)), Err: ErrT2Length}
	}

	if err := nonZero("t1", t1); err != nil {
		return 0, 0, err
	}
	if err := nonZero("t2", t2); err != nil {
		return 0, 0, err
	}

	return steps, spins, nil
}

func nonZero(name string, v []float64) error {
	for j, x := range v {
		if x == 0 {
			return fmt.Errorf("%w: %s[%d]", ErrZeroRelaxation, name, j)
		}
	}
	return nil
}

// isNil reports whether m is nil, including a nil *mat.Dense or
// *mat.VecDense held in a non-nil interface.
func isNil(m mat.Matrix) bool {
	switch v := m.(type) {
	case nil:
		return true
	case *mat.Dense:
		return v == nil
	case *mat.VecDense:
		return v == nil
	}
	return false
}

func isNilC(m mat.CMatrix) bool {
	switch v := m.(type) {
	case nil:
		return true
	case *mat.CDense:
		return v == nil
	}
	return false
}
