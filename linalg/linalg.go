// Package linalg implements the three hand-coded numeric primitives
// the Newton–Raphson estimator composes to invert the information
// matrix: an upper Cholesky factorization, in-place triangular
// back-substitution, and a triangular self-product. These mirror a
// specific historical algorithm (including its strict failure test)
// rather than a generic decomposition, so gonum's own Cholesky type is
// deliberately not used for the factorization step.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stage codes for StageError, matching the three primitives in
// pipeline order.
const (
	StageCholesky          = 11
	StageBackSubstitute    = 12
	StageTriangularProduct = 13
)

// StageError reports which numeric stage failed.
type StageError struct {
	Stage int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("linalg: stage %d: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Cholesky factors symmetric positive-definite a of order m into
// upper-triangular U with UᵀU = a, overwriting a's upper triangle in
// place. The failure test is the strict `s ≥ a[i][i]` comparison (not
// a tolerance) so numeric near-indefiniteness is preserved rather than
// smoothed over.
func Cholesky(a *mat.Dense) error {
	m, n := a.Dims()
	if m != n {
		return &StageError{StageCholesky, fmt.Errorf("matrix is %dx%d, not square", m, n)}
	}

	for i := 0; i < m; i++ {
		s := 0.0
		for j := 0; j < i; j++ {
			u := a.At(j, i)
			s += u * u
		}
		diag := a.At(i, i)
		if s >= diag {
			return &StageError{StageCholesky, fmt.Errorf("matrix not positive definite at row %d", i)}
		}
		uii := math.Sqrt(diag - s)
		a.Set(i, i, uii)

		for j := i + 1; j < m; j++ {
			sum := 0.0
			for k := 0; k < i; k++ {
				sum += a.At(k, i) * a.At(k, j)
			}
			a.Set(i, j, (a.At(i, j)-sum)/uii)
		}
	}
	return nil
}

// BackSubstitute replaces upper-triangular u (as produced by Cholesky)
// with its inverse, in place.
func BackSubstitute(u *mat.Dense) error {
	m, n := u.Dims()
	if m != n {
		return &StageError{StageBackSubstitute, fmt.Errorf("matrix is %dx%d, not square", m, n)}
	}

	d0 := u.At(0, 0)
	if d0 == 0 {
		return &StageError{StageBackSubstitute, fmt.Errorf("zero diagonal at row 0")}
	}
	u.Set(0, 0, 1/d0)

	for i := 1; i < m; i++ {
		dii := u.At(i, i)
		if dii == 0 {
			return &StageError{StageBackSubstitute, fmt.Errorf("zero diagonal at row %d", i)}
		}
		inv := 1 / dii
		u.Set(i, i, inv)

		for j := 0; j < i; j++ {
			sum := 0.0
			for k := j; k < i; k++ {
				sum += u.At(j, k) * u.At(k, i)
			}
			u.Set(j, i, -inv*sum)
		}
	}
	return nil
}

// TriangularSelfProduct computes A⁻¹ = U⁻¹·U⁻ᵀ from upper-triangular
// uinv (as produced by BackSubstitute), returning the full symmetric
// result.
func TriangularSelfProduct(uinv *mat.Dense) (*mat.Dense, error) {
	m, n := uinv.Dims()
	if m != n {
		return nil, &StageError{StageTriangularProduct, fmt.Errorf("matrix is %dx%d, not square", m, n)}
	}

	out := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			start := i
			if j > start {
				start = j
			}
			sum := 0.0
			for k := start; k < m; k++ {
				sum += uinv.At(i, k) * uinv.At(j, k)
			}
			out.Set(i, j, sum)
		}
	}
	return out, nil
}

// Invert runs the three-stage primitive over a copy of the symmetric
// positive-definite matrix a (order m), returning a⁻¹. a itself is not
// modified.
func Invert(a *mat.Dense) (*mat.Dense, error) {
	m, _ := a.Dims()
	work := mat.NewDense(m, m, nil)
	work.Copy(a)

	if err := Cholesky(work); err != nil {
		return nil, err
	}
	if err := BackSubstitute(work); err != nil {
		return nil, err
	}
	return TriangularSelfProduct(work)
}
