// Package fit drives the outer Newton–Raphson convergence loop,
// computes the two goodness-of-fit tests and per-parameter Wald
// statistics, and renders the final report.
package fit

import (
	"fmt"
	"math"
	"strings"

	"github.com/mlogit/mlogit/design"
	"github.com/mlogit/mlogit/estimate"
	"github.com/mlogit/mlogit/tabulate"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxIter and Epsilon are the convergence loop's fixed parameters.
const (
	MaxIter = 30
	Epsilon = 1e-8
)

// ParamStat is one row of the parameter table.
type ParamStat struct {
	Name     string
	Response int // j, the fitted response category (excludes the reference)
	Estimate float64
	SE       float64
	Wald     float64
	P        float64 // -1 when undefined (xtwx[i][i] not > 0)
}

// Report is the outcome of a convergence run.
type Report struct {
	NumPopulations int
	NumResponses   int
	K              int
	Iterations     int
	Converged      bool
	FailureReason  string

	LogLikelihood0     float64
	LogLikelihoodFinal float64
	DevianceFinal      float64

	Chi1, DF1, P1 float64
	Chi2, DF2, P2 float64

	Params []ParamStat

	tabs *tabulate.Tables
	art  *design.Artifacts
}

// checkConvergence applies the per-parameter convergence test: every
// coefficient must move by no more than Epsilon times its previous
// magnitude.
func checkConvergence(beta, betaPrev []float64) bool {
	for i := range beta {
		if math.Abs(beta[i]-betaPrev[i]) > Epsilon*math.Abs(betaPrev[i]) {
			return false
		}
	}
	return true
}

// Run repeatedly invokes one Newton–Raphson step against art's design
// matrices until convergence, MaxIter is reached, or a numeric step
// fails. It always returns a report; numeric failure is reflected as
// Converged=false, never as an error return, so a bad fit never aborts
// the process.
func Run(art *design.Artifacts, tabs *tabulate.Tables, verbose bool, logger zerolog.Logger) *Report {
	k, j := art.K, art.NumResponses
	m := k * (j - 1)

	beta := make([]float64, m)
	betaPrev := make([]float64, m)

	var xtwx *mat.Dense
	var lFinal, dFinal float64
	var failureReason string
	iter := 0
	converged := false

	for iter < MaxIter && !converged {
		copy(betaPrev, beta)

		step, err := estimate.Run(art.X, art.Y, art.N, beta, k, j)
		if err != nil {
			failureReason = err.Error()
			logger.Warn().Err(err).Int("iter", iter).Msg("newton-raphson step failed")
			break
		}

		beta = step.Beta
		xtwx = step.Xtwx
		lFinal = step.LogLikelihood
		dFinal = step.Deviance
		converged = checkConvergence(beta, betaPrev)

		if verbose {
			logger.Debug().
				Int("iter", iter).
				Float64("logLikelihood", lFinal).
				Float64("deviance", dFinal).
				Bool("converged", converged).
				Msg("newton-raphson iteration")
		}
		iter++
	}

	report := &Report{
		NumPopulations:     art.NumPopulations,
		NumResponses:       j,
		K:                  k,
		Iterations:         iter,
		Converged:          converged,
		FailureReason:      failureReason,
		LogLikelihoodFinal: lFinal,
		DevianceFinal:      dFinal,
		tabs:               tabs,
		art:                art,
	}

	if !converged {
		return report
	}

	l0 := interceptOnlyLogLikelihood(art.Y, art.N, art.NumPopulations, j)
	report.LogLikelihood0 = l0

	n := art.NumPopulations
	df1 := float64(k*(j-1) - j - 1)
	df2 := float64(n*(j-1) - k*(j-1))

	chi1 := 2 * (lFinal - l0)
	chi2 := dFinal

	report.Chi1, report.DF1 = chi1, df1
	report.Chi2, report.DF2 = chi2, df2
	report.P1 = tailProbability(chi1, df1)
	report.P2 = tailProbability(chi2, df2)

	report.Params = buildParamStats(beta, xtwx, art.Labels, k)

	logger.Info().
		Int("iterations", iter).
		Float64("chiSquared1", chi1).
		Float64("chiSquared2", chi2).
		Msg("converged")

	return report
}

// interceptOnlyLogLikelihood fits an intercept-only submodel (a
// single design column of all ones) against the same response
// aggregates y and population totals n, and returns its maximized
// log-likelihood: the baseline the likelihood-ratio test compares the
// full model against. A model with no covariates is itself this
// submodel, so the two log-likelihoods coincide exactly.
func interceptOnlyLogLikelihood(y *mat.Dense, n []float64, numPop, j int) float64 {
	x := mat.NewDense(numPop, 1, nil)
	for p := 0; p < numPop; p++ {
		x.Set(p, 0, 1)
	}

	beta := make([]float64, j-1)
	betaPrev := make([]float64, j-1)
	ll := 0.0

	for iter := 0; iter < MaxIter; iter++ {
		copy(betaPrev, beta)
		step, err := estimate.Run(x, y, n, beta, 1, j)
		if err != nil {
			break
		}
		beta = step.Beta
		ll = step.LogLikelihood
		if checkConvergence(beta, betaPrev) {
			break
		}
	}
	return ll
}

func tailProbability(stat, df float64) float64 {
	if df <= 0 {
		return -1
	}
	dist := distuv.ChiSquared{K: df}
	return 1 - dist.CDF(stat)
}

func buildParamStats(beta []float64, xtwx *mat.Dense, labels []string, k int) []ParamStat {
	m := len(beta)
	params := make([]ParamStat, m)
	for i := 0; i < m; i++ {
		respJ := i / k
		col := i % k
		p := ParamStat{Name: labels[col], Response: respJ, Estimate: beta[i]}

		v := xtwx.At(i, i)
		if v > 0 {
			p.SE = math.Sqrt(v)
			p.Wald = (beta[i] / p.SE) * (beta[i] / p.SE)
			p.P = tailProbability(p.Wald, 1)
		} else {
			p.P = -1
		}
		params[i] = p
	}
	return params
}

// String renders the report in order: model summary, DV frequencies,
// crosstab, rounded design matrix, iteration/convergence, the two fit
// tests, and the parameter table.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Model: %d population(s), %d response categories, %d design columns\n\n", r.NumPopulations, r.NumResponses, r.K)

	if r.tabs != nil && r.tabs.DV != nil {
		b.WriteString("Dependent variable frequencies:\n")
		for _, l := range r.tabs.DV.Levels {
			fmt.Fprintf(&b, "  %v: %v\n", l.Value, l.Weight)
		}
		b.WriteString("\n")
	}

	if r.tabs != nil && r.tabs.Cross != nil {
		b.WriteString("Crosstab:\n")
		for _, row := range r.tabs.Cross.Rows {
			fmt.Fprintf(&b, "  %v -> %v : %v\n", row.Covariates, row.Response, row.Weight)
		}
		b.WriteString("\n")
	}

	if r.art != nil {
		b.WriteString("Design matrix X (rounded):\n")
		rows, cols := r.art.X.Dims()
		for i := 0; i < rows; i++ {
			b.WriteString("  [")
			for c := 0; c < cols; c++ {
				if c > 0 {
					b.WriteString(" ")
				}
				fmt.Fprintf(&b, "%.4g", r.art.X.At(i, c))
			}
			b.WriteString("]\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Iterations: %d\nConvergence: %s\n", r.Iterations, yesNo(r.Converged))
	if !r.Converged {
		if r.FailureReason != "" {
			fmt.Fprintf(&b, "Failure: %s\n", r.FailureReason)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "\nLikelihood-ratio test vs. intercept-only: chi2=%.6f df=%.0f p=%.6f\n", r.Chi1, r.DF1, r.P1)
	fmt.Fprintf(&b, "Deviance test vs. saturated model: chi2=%.6f df=%.0f p=%.6f\n\n", r.Chi2, r.DF2, r.P2)

	b.WriteString("Parameters:\n")
	for _, p := range r.Params {
		fmt.Fprintf(&b, "  %-16s resp=%d  estimate=%.6f  se=%.6f  wald=%.6f  p=%.6f\n", p.Name, p.Response, p.Estimate, p.SE, p.Wald, p.P)
	}
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
