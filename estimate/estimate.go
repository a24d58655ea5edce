// Package estimate implements one Newton–Raphson step of the
// multinomial log-likelihood: probabilities, gradient, Hessian, and
// the parameter update via linalg's Cholesky-based solve.
package estimate

import (
	"math"

	"github.com/mlogit/mlogit/linalg"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Step is the result of one Newton–Raphson iteration.
type Step struct {
	Beta          []float64  // length K*(J-1), column-major by response category
	LogLikelihood float64
	Deviance      float64
	Xtwx          *mat.Dense // (XᵀWX)⁻¹, the inverse information matrix
}

// Run performs one Newton–Raphson step. x is N×K, y is N×J, n holds
// population totals (length N), beta0 is the current parameter vector
// (length K*(J-1)). Parameter index j·K+k holds the coefficient for
// design column k in response equation j, j ∈ [0, J-1).
func Run(x, y *mat.Dense, n []float64, beta0 []float64, k, j int) (*Step, error) {
	numN, _ := x.Dims()
	m := k * (j - 1)

	pi := probabilities(x, beta0, k, j)
	ll := logLikelihood(y, n, pi, numN, j)
	dev := deviance(y, n, pi, numN, j)

	g := make([]float64, m)
	h := mat.NewDense(m, m, nil)
	accumulateGradientHessian(x, y, n, pi, g, h, numN, k, j)

	// g ← g + H·β⁰ (Eq. 40's right-hand side: XᵀWXβ⁰ + Xᵀ(Y−μ)).
	hBeta := make([]float64, m)
	for row := 0; row < m; row++ {
		hBeta[row] = floats.Dot(h.RawRowView(row), beta0)
	}
	floats.Add(g, hBeta)

	xtwx, err := linalg.Invert(h)
	if err != nil {
		return nil, err
	}

	beta1 := make([]float64, m)
	for row := 0; row < m; row++ {
		beta1[row] = floats.Dot(xtwx.RawRowView(row), g)
	}

	return &Step{Beta: beta1, LogLikelihood: ll, Deviance: dev, Xtwx: xtwx}, nil
}

// probabilities computes the N×J predicted-probability matrix π.
func probabilities(x *mat.Dense, beta []float64, k, j int) *mat.Dense {
	numN, _ := x.Dims()
	pi := mat.NewDense(numN, j, nil)

	for i := 0; i < numN; i++ {
		xrow := x.RawRowView(i)
		num := make([]float64, j-1)
		denom := 1.0
		for jj := 0; jj < j-1; jj++ {
			num[jj] = math.Exp(floats.Dot(xrow, beta[jj*k:(jj+1)*k]))
			denom += num[jj]
		}
		for jj := 0; jj < j-1; jj++ {
			pi.Set(i, jj, num[jj]/denom)
		}
		pi.Set(i, j-1, 1/denom)
	}
	return pi
}

// logLikelihood computes the multinomial log-likelihood.
func logLikelihood(y *mat.Dense, n []float64, pi *mat.Dense, numN, j int) float64 {
	l := 0.0
	for i := 0; i < numN; i++ {
		lg, _ := math.Lgamma(n[i] + 1)
		l += lg
		for jj := 0; jj < j; jj++ {
			yij := y.At(i, jj)
			lgY, _ := math.Lgamma(yij + 1)
			l -= lgY
			if yij > 0 {
				l += yij * math.Log(pi.At(i, jj))
			}
		}
	}
	return l
}

// deviance computes the saturated-model deviance.
func deviance(y *mat.Dense, n []float64, pi *mat.Dense, numN, j int) float64 {
	d := 0.0
	for i := 0; i < numN; i++ {
		for jj := 0; jj < j; jj++ {
			yij := y.At(i, jj)
			if yij <= 0 {
				continue
			}
			d += yij * math.Log(yij/(n[i]*pi.At(i, jj)))
		}
	}
	return 2 * d
}

// accumulateGradientHessian fills g and h: the gradient and the
// symmetric, block-structured Hessian of the log-likelihood.
func accumulateGradientHessian(x, y *mat.Dense, n []float64, pi *mat.Dense, g []float64, h *mat.Dense, numN, k, j int) {
	for i := 0; i < numN; i++ {
		xrow := x.RawRowView(i)
		ni := n[i]

		for jRow := 0; jRow < j-1; jRow++ {
			piRow := pi.At(i, jRow)
			yRow := y.At(i, jRow)
			resid := yRow - ni*piRow
			rowBase := jRow * k
			for kk := 0; kk < k; kk++ {
				g[rowBase+kk] += resid * xrow[kk]
			}

			w1 := ni * piRow * (1 - piRow)
			for kk := 0; kk < k; kk++ {
				for kp := kk; kp < k; kp++ {
					v := w1 * xrow[kk] * xrow[kp]
					a, b := rowBase+kk, rowBase+kp
					h.Set(a, b, h.At(a, b)+v)
					if a != b {
						h.Set(b, a, h.At(b, a)+v)
					}
				}
			}

			for jCol := jRow + 1; jCol < j-1; jCol++ {
				piCol := pi.At(i, jCol)
				w2 := -ni * piRow * piCol
				colBase := jCol * k
				for kk := 0; kk < k; kk++ {
					for kp := 0; kp < k; kp++ {
						v := w2 * xrow[kk] * xrow[kp]
						a, b := rowBase+kk, colBase+kp
						h.Set(a, b, h.At(a, b)+v)
						h.Set(b, a, h.At(b, a)+v)
					}
				}
			}
		}
	}
}
