package fit

import (
	"math"
	"testing"

	"github.com/mlogit/mlogit/design"
	"github.com/mlogit/mlogit/model"
	"github.com/mlogit/mlogit/tabulate"
	"github.com/mlogit/mlogit/table"
	"github.com/rs/zerolog"
)

func buildReport(t *testing.T, names []string, rows [][]float64, weightCol, dv int, mains []int, scheme design.Scheme) *Report {
	t.Helper()
	tbl, err := table.NewWeighted(names, rows, weightCol)
	if err != nil {
		t.Fatalf("table.NewWeighted() err = %v", err)
	}
	d := model.NewDescriptor(dv)
	for _, v := range mains {
		d.AddMainEffect(v, false)
	}
	tabs := tabulate.Build(tbl, d)
	art := design.Build(tabs, d, scheme, names)
	return Run(art, tabs, false, zerolog.Nop())
}

// TestBinaryLogisticDummyCoding fits a binary logistic model with a
// single categorical predictor under dummy coding.
func TestBinaryLogisticDummyCoding(t *testing.T) {
	r := buildReport(t, []string{"x", "y", "w"}, [][]float64{
		{0, 0, 40},
		{0, 1, 10},
		{1, 0, 20},
		{1, 1, 30},
	}, 2, 1, []int{0}, design.Dummy)

	if !r.Converged {
		t.Fatalf("Converged = false, want true (failure: %s)", r.FailureReason)
	}
	if len(r.Params) != 2 {
		t.Fatalf("len(Params) = %d, want 2", len(r.Params))
	}

	// x=1 and y=1 are the reference levels (largest value), so the
	// intercept is the log-odds of y=0 vs y=1 at x=1.
	want := []float64{math.Log(20.0 / 30.0), math.Log(40.0/10.0) - math.Log(20.0/30.0)}
	for i, p := range r.Params {
		if math.Abs(p.Estimate-want[i]) > 1e-3 {
			t.Errorf("Params[%d].Estimate = %v, want ~%v", i, p.Estimate, want[i])
		}
	}
}

// TestPerfectSeparationDoesNotConverge verifies a perfectly-separated
// dataset fails to converge within MaxIter rather than reporting a
// spurious fit.
func TestPerfectSeparationDoesNotConverge(t *testing.T) {
	r := buildReport(t, []string{"x", "y", "w"}, [][]float64{
		{0, 0, 10},
		{1, 1, 10},
	}, 2, 1, []int{0}, design.CenterPoint)

	if r.Converged {
		t.Fatalf("Converged = true, want false for perfect separation")
	}
}

// TestInterceptOnlyModelMatchesItsOwnBaseline verifies that with no
// covariates, the fitted model coincides with its own intercept-only
// baseline: the likelihood-ratio statistic against that baseline is
// zero and the final log-likelihood equals it exactly.
func TestInterceptOnlyModelMatchesItsOwnBaseline(t *testing.T) {
	rows := [][]float64{
		{0, 100},
		{1, 50},
		{2, 25},
	}
	r := buildReport(t, []string{"y", "w"}, rows, 1, 0, nil, design.CenterPoint)

	if !r.Converged {
		t.Fatalf("Converged = false, want true (failure: %s)", r.FailureReason)
	}
	if math.Abs(r.LogLikelihoodFinal-r.LogLikelihood0) > 1e-6 {
		t.Errorf("LogLikelihoodFinal - LogLikelihood0 = %v, want ~0", r.LogLikelihoodFinal-r.LogLikelihood0)
	}
	if math.Abs(r.Chi1) > 1e-6 {
		t.Errorf("Chi1 = %v, want ~0", r.Chi1)
	}

	want := []float64{math.Log(100.0 / 25.0), math.Log(50.0 / 25.0)}
	for i, p := range r.Params {
		if math.Abs(p.Estimate-want[i]) > 1e-3 {
			t.Errorf("Params[%d].Estimate = %v, want ~%v", i, p.Estimate, want[i])
		}
	}
}

// TestDirectEffectEquivalenceAcrossSchemes verifies the encoding
// scheme only affects categorical variables, so a direct-only model
// converges to the same estimates under either scheme.
func TestDirectEffectEquivalenceAcrossSchemes(t *testing.T) {
	names := []string{"x", "y"}
	rows := [][]float64{{0, 0}, {0, 1}, {0, 0}, {1, 1}, {1, 0}, {1, 1}}

	tbl, err := table.New(names, rows)
	if err != nil {
		t.Fatalf("table.New() err = %v", err)
	}
	d := model.NewDescriptor(1)
	d.MainEffects = append(d.MainEffects, model.MainEffect{VarIndex: 0, Direct: true})
	tabs := tabulate.Build(tbl, d)

	center := Run(design.Build(tabs, d, design.CenterPoint, names), tabs, false, zerolog.Nop())
	dummy := Run(design.Build(tabs, d, design.Dummy, names), tabs, false, zerolog.Nop())

	if !center.Converged || !dummy.Converged {
		t.Fatalf("expected both fits to converge")
	}
	for i := range center.Params {
		if math.Abs(center.Params[i].Estimate-dummy.Params[i].Estimate) > 1e-6 {
			t.Errorf("Params[%d] differ by scheme: center=%v dummy=%v", i, center.Params[i].Estimate, dummy.Params[i].Estimate)
		}
	}
}
