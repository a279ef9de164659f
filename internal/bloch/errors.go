package bloch

import (
	"errors"
	"fmt"
)

// Validation errors. A failed validation never produces a trajectory.
var (
	// ErrShapeMismatch matches every *ShapeMismatchError.
	ErrShapeMismatch = errors.New("bloch: shape mismatch")

	// ErrFieldShape indicates bx, by and bz are missing, empty or not the same T x N shape.
	ErrFieldShape = errors.New("bloch: bx, by and bz must share one non-empty T x N shape")

	// ErrTimeStepLength indicates len(dt) differs from the number of field samples.
	ErrTimeStepLength = errors.New("bloch: dt length must equal the number of field samples")

	// ErrMagnetizationShape indicates the initial magnetization is not 3 x N.
	ErrMagnetizationShape = errors.New("bloch: initial magnetization must be 3 x N")

	// ErrT1Length indicates len(T1) differs from the number of spins.
	ErrT1Length = errors.New("bloch: T1 length must equal the number of spins")

	// ErrT2Length indicates len(T2) differs from the number of spins.
	ErrT2Length = errors.New("bloch: T2 length must equal the number of spins")

	// ErrZeroRelaxation indicates a zero T1 or T2.
	ErrZeroRelaxation = errors.New("bloch: relaxation time must be non-zero")
)

// ErrImaginaryField is wrapped by warnings about complex field samples.
var ErrImaginaryField = errors.New("bloch: field has a non-zero imaginary part")

// ShapeMismatchError reports which argument failed a shape check.
type ShapeMismatchError struct {
	Param string
	Want  string
	Got   string
	Err   error
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%v: %s is %s, want %s", e.Err, e.Param, e.Got, e.Want)
}

func (e *ShapeMismatchError) Unwrap() error {
	return e.Err
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// ImaginaryFieldWarning is recorded when a complex field history had
// imaginary content that was discarded.
type ImaginaryFieldWarning struct {
	Field   string
	Samples int
	MaxImag float64
}

func (w *ImaginaryFieldWarning) Error() string {
	return fmt.Sprintf("%v: %s has %d samples with imaginary part (max %g T), using real part",
		ErrImaginaryField, w.Field, w.Samples, w.MaxImag)
}

func (w *ImaginaryFieldWarning) Unwrap() error {
	return ErrImaginaryField
}

func shape(r, c int) string {
	return fmt.Sprintf("%dx%d", r, c)
}
