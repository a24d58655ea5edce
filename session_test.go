package mlogit

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/mlogit/mlogit/formula"
	"github.com/mlogit/mlogit/options"
	"github.com/mlogit/mlogit/table"
	"github.com/rs/zerolog"
)

// TestSessionFitBinaryLogisticDummyCoding fits a binary logistic
// model with a single categorical predictor under dummy coding
// through a Session end to end.
func TestSessionFitBinaryLogisticDummyCoding(t *testing.T) {
	names := []string{"x", "y", "w"}
	tbl, err := table.NewWeighted(names, [][]float64{
		{0, 0, 40},
		{0, 1, 10},
		{1, 0, 20},
		{1, 1, 30},
	}, 2)
	if err != nil {
		t.Fatalf("table.NewWeighted() err = %v", err)
	}

	opts := options.New()
	opts.Params = "dummy"
	sess := New(tbl, opts)

	desc, err := formula.Parse("survey y = x", names)
	if err != nil {
		t.Fatalf("formula.Parse() err = %v", err)
	}

	report := sess.Fit(desc)
	if !report.Converged {
		t.Fatalf("Converged = false, want true (failure: %s)", report.FailureReason)
	}

	want := math.Log(20.0 / 30.0) // log-odds of y=0 vs y=1 at the reference level x=1
	if math.Abs(report.Params[0].Estimate-want) > 1e-3 {
		t.Errorf("Params[0].Estimate = %v, want ~%v", report.Params[0].Estimate, want)
	}
}

func TestSessionFitSurfacesWarnings(t *testing.T) {
	names := []string{"a", "b", "y"}
	tbl, err := table.New(names, [][]float64{{0, 0, 0}, {1, 1, 1}})
	if err != nil {
		t.Fatalf("table.New() err = %v", err)
	}

	opts := options.New()
	sess := New(tbl, opts)
	var logBuf bytes.Buffer
	sess.Logger = zerolog.New(&logBuf)

	desc, err := formula.Parse("survey y = a*b", names)
	if err != nil {
		t.Fatalf("formula.Parse() err = %v", err)
	}
	if len(desc.Warnings) == 0 {
		t.Fatalf("expected auto-registration warnings on the descriptor")
	}

	report := sess.Fit(desc)
	if report == nil {
		t.Fatalf("Fit() returned nil report")
	}
	if !strings.Contains(logBuf.String(), desc.Warnings[0]) {
		t.Errorf("Fit() did not log descriptor warning %q; log = %q", desc.Warnings[0], logBuf.String())
	}
}
