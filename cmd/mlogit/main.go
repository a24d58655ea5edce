// Command mlogit is a thin demonstration driver over the mlogit core:
// a "fit" subcommand runs a single model, and a "batch" subcommand
// runs several independent models concurrently against the same
// table.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mlogit/mlogit"
	"github.com/mlogit/mlogit/fit"
	"github.com/mlogit/mlogit/formula"
	"github.com/mlogit/mlogit/options"
	"github.com/mlogit/mlogit/table"
	"golang.org/x/sync/errgroup"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mlogit <fit|batch> [flags]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "fit":
		runFit(os.Args[2:])
	case "batch":
		runBatch(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		os.Exit(1)
	}
}

// demoTable is a small binary logistic dataset standing in for
// delimited-file import, which lives outside this package.
func demoTable() (*table.Table, []string) {
	names := []string{"x", "y", "w"}
	tbl, err := table.NewWeighted(names, [][]float64{
		{0, 0, 40},
		{0, 1, 10},
		{1, 0, 20},
		{1, 1, 30},
	}, 2)
	if err != nil {
		panic(err) // demo data is fixed and known-valid
	}
	return tbl, names
}

func runFit(args []string) {
	fs := flag.NewFlagSet("fit", flag.ExitOnError)
	params := fs.String("params", "centerpoint", "categorical encoding: centerpoint or dummy")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	formulaStr := fs.String("formula", "demo y = x", `model formula: "dataset dep = tokens"`)
	fs.Parse(args)

	tbl, names := demoTable()
	opts := options.New()
	opts.Params = *params
	opts.Verbose = *verbose

	desc, err := formula.Parse(*formulaStr, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "formula rejected: %v\n", err)
		os.Exit(1)
	}

	sess := mlogit.New(tbl, opts)
	report := sess.Fit(desc)
	fmt.Print(report.String())
}

// runBatch fits several independent formulas concurrently via
// errgroup: each fit builds and owns its own design artifacts
// exclusively, so concurrent Session.Fit calls against the same
// read-only table share no mutable state.
func runBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	params := fs.String("params", "centerpoint", "categorical encoding: centerpoint or dummy")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Parse(args)

	tbl, names := demoTable()
	opts := options.New()
	opts.Params = *params
	opts.Verbose = *verbose
	sess := mlogit.New(tbl, opts)

	formulas := []string{
		"demo y = x",
		"demo y = direct.x",
	}

	reports := make([]*fit.Report, len(formulas))
	var g errgroup.Group
	for i, f := range formulas {
		i, f := i, f
		g.Go(func() error {
			desc, err := formula.Parse(f, names)
			if err != nil {
				return fmt.Errorf("formula %q rejected: %w", f, err)
			}
			reports[i] = sess.Fit(desc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for i, f := range formulas {
		fmt.Printf("=== %s ===\n", f)
		fmt.Print(reports[i].String())
	}
}
