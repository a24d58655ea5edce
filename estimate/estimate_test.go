package estimate

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const tol = 1e-6

func approxEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// TestRunBinarySinglePopulation hand-verifies one Newton–Raphson step
// for an intercept-only binary model (J=2, K=1) starting from β⁰=0.
func TestRunBinarySinglePopulation(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1})
	y := mat.NewDense(1, 2, []float64{6, 4})
	n := []float64{10}
	beta0 := []float64{0}

	step, err := Run(x, y, n, beta0, 1, 2)
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}

	approxEqual(t, "Beta[0]", step.Beta[0], 0.4)
	approxEqual(t, "Xtwx[0][0]", step.Xtwx.At(0, 0), 0.4)
	approxEqual(t, "LogLikelihood", step.LogLikelihood, -1.584364274881982)
	approxEqual(t, "Deviance", step.Deviance, 0.4027102710137772)
}

// TestRunThreeCategorySinglePopulation hand-verifies the off-diagonal
// Hessian block for a three-category intercept-only model (J=3, K=1).
func TestRunThreeCategorySinglePopulation(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1})
	y := mat.NewDense(1, 3, []float64{3, 4, 5})
	n := []float64{12}
	beta0 := []float64{0, 0}

	step, err := Run(x, y, n, beta0, 1, 3)
	if err != nil {
		t.Fatalf("Run() err = %v", err)
	}

	approxEqual(t, "Beta[0]", step.Beta[0], -0.5)
	approxEqual(t, "Beta[1]", step.Beta[1], -0.25)
	approxEqual(t, "Xtwx[0][0]", step.Xtwx.At(0, 0), 0.5)
	approxEqual(t, "Xtwx[0][1]", step.Xtwx.At(0, 1), 0.25)
	approxEqual(t, "Xtwx[1][1]", step.Xtwx.At(1, 1), 0.5)
}

// TestRunNonPositiveDefiniteHessian verifies a degenerate design (a
// response level with zero weight and zero predicted probability mass
// can't happen here, so instead force singularity via a zero-weight
// population) surfaces the Cholesky-stage error rather than NaNs.
func TestRunNonPositiveDefiniteHessian(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1})
	y := mat.NewDense(1, 2, []float64{0, 0})
	n := []float64{0}
	beta0 := []float64{0}

	_, err := Run(x, y, n, beta0, 1, 2)
	if err == nil {
		t.Fatalf("Run() err = nil, want a stage error for a singular Hessian")
	}
}
