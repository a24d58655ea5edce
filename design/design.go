// Package design assembles the design matrices X and Y, population
// totals n, and parameter labels from a tabulated crosstab and a
// model descriptor.
package design

import (
	"math"

	"github.com/mlogit/mlogit/model"
	"github.com/mlogit/mlogit/tabulate"
	"gonum.org/v1/gonum/mat"
)

// bitsEqual compares by raw 64-bit float equality, matching the
// tabulator's key semantics.
func bitsEqual(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}

// Scheme selects the categorical encoding parameterization.
type Scheme int

const (
	// CenterPoint encodes L levels as L-1 columns of {1, 0, -1}, the
	// largest level coded -1 in every column (the default).
	CenterPoint Scheme = iota
	// Dummy encodes L levels as L-1 columns of {1, 0}.
	Dummy
)

// Artifacts holds the assembled design matrices and bookkeeping the
// estimator and convergence driver need.
type Artifacts struct {
	X              *mat.Dense // N×K
	Y              *mat.Dense // N×J
	N              []float64  // population totals, length N
	NumPopulations int
	NumResponses   int // J
	K              int
	Labels         []string  // length K, column→parameter-name
	ResponseLevels []float64 // length J, sorted ascending
}

// block describes one contiguous span of design columns contributed
// by a main effect or interaction.
type block struct {
	start, width int
}

// Build assembles X, Y, n, and labels from tabs for desc, using the
// given categorical encoding scheme and names for parameter labels.
// Design-matrix assembly is total over a well-formed tabulation: there
// are no input errors to report.
func Build(tabs *tabulate.Tables, desc *model.Descriptor, scheme Scheme, names []string) *Artifacts {
	mainBlocks := make([]block, len(desc.MainEffects))
	col := 1 // column 0 is the intercept
	for i, me := range desc.MainEffects {
		width := 1
		if !me.Direct {
			width = len(tabs.MainEffect[i].Levels) - 1
			if width < 0 {
				width = 0
			}
		}
		mainBlocks[i] = block{start: col, width: width}
		col += width
	}

	interactionBlocks := make([]block, len(desc.Interactions))
	for g, group := range desc.Interactions {
		width := 1
		for _, termIdx := range group {
			width *= mainBlocks[termIdx].width
		}
		interactionBlocks[g] = block{start: col, width: width}
		col += width
	}
	k := col

	respLevels := make([]float64, len(tabs.DV.Levels))
	for i, l := range tabs.DV.Levels {
		respLevels[i] = l.Value
	}
	j := len(respLevels)

	popOf, numPop := segmentPopulations(tabs.Cross)

	x := mat.NewDense(numPop, k, nil)
	y := mat.NewDense(numPop, j, nil)
	n := make([]float64, numPop)

	// Intercept column.
	for p := 0; p < numPop; p++ {
		x.Set(p, 0, 1)
	}

	popStart := firstRowOfEachPopulation(tabs.Cross, popOf, numPop)
	for p := 0; p < numPop; p++ {
		row := tabs.Cross.Rows[popStart[p]]
		for i, me := range desc.MainEffects {
			b := mainBlocks[i]
			var cols []float64
			if me.Direct {
				cols = []float64{row.Covariates[i]}
			} else {
				cols = encodeCategorical(row.Covariates[i], levelValues(tabs.MainEffect[i]), scheme)
			}
			for c, v := range cols {
				x.Set(p, b.start+c, v)
			}
		}

		for g, group := range desc.Interactions {
			b := interactionBlocks[g]
			expandInteraction(x, p, b.start, group, mainBlocks)
		}
	}

	for rowIdx, row := range tabs.Cross.Rows {
		p := popOf[rowIdx]
		respIdx := responseIndex(respLevels, row.Response)
		y.Set(p, respIdx, y.At(p, respIdx)+row.Weight)
	}

	for p := 0; p < numPop; p++ {
		total := 0.0
		for jj := 0; jj < j; jj++ {
			total += y.At(p, jj)
		}
		n[p] = total
	}

	labels := buildLabels(desc, mainBlocks, interactionBlocks, names, k)

	return &Artifacts{
		X:              x,
		Y:              y,
		N:              n,
		NumPopulations: numPop,
		NumResponses:   j,
		K:              k,
		Labels:         labels,
		ResponseLevels: respLevels,
	}
}

// segmentPopulations walks the sorted crosstab and assigns each row a
// population index in [0, N), starting a new population whenever the
// covariate prefix changes from the previous row.
func segmentPopulations(cross *tabulate.Crosstab) (popOf []int, numPop int) {
	popOf = make([]int, len(cross.Rows))
	if len(cross.Rows) == 0 {
		return popOf, 0
	}

	pop := 0
	popOf[0] = 0
	for i := 1; i < len(cross.Rows); i++ {
		if !covariatesEqual(cross.Rows[i-1].Covariates, cross.Rows[i].Covariates) {
			pop++
		}
		popOf[i] = pop
	}
	return popOf, pop + 1
}

func covariatesEqual(a, b []float64) bool {
	for i := range a {
		if !bitsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func firstRowOfEachPopulation(cross *tabulate.Crosstab, popOf []int, numPop int) []int {
	first := make([]int, numPop)
	seen := make([]bool, numPop)
	for i, p := range popOf {
		if !seen[p] {
			first[p] = i
			seen[p] = true
		}
	}
	return first
}

func levelValues(vt *tabulate.VarTable) []float64 {
	out := make([]float64, len(vt.Levels))
	for i, l := range vt.Levels {
		out[i] = l.Value
	}
	return out
}

func responseIndex(levels []float64, v float64) int {
	for i, l := range levels {
		if bitsEqual(l, v) {
			return i
		}
	}
	return -1
}

// encodeCategorical produces the L-1 encoding columns for value given
// sorted distinct levels.
func encodeCategorical(value float64, levels []float64, scheme Scheme) []float64 {
	l := len(levels)
	if l == 0 {
		return nil
	}
	out := make([]float64, l-1)
	if l == 1 {
		return out
	}

	reference := levels[l-1]
	if bitsEqual(value, reference) {
		if scheme == CenterPoint {
			for k := range out {
				out[k] = -1
			}
		}
		return out
	}
	for k := 0; k < l-1; k++ {
		if bitsEqual(value, levels[k]) {
			out[k] = 1
			return out
		}
	}
	return out
}

// expandInteraction fills the interaction's width columns starting at
// start for population p, using a mixed-radix counter over the
// group's terms that cycles the last term fastest.
func expandInteraction(x *mat.Dense, p, start int, group []int, mainBlocks []block) {
	widths := make([]int, len(group))
	for i, termIdx := range group {
		widths[i] = mainBlocks[termIdx].width
	}

	total := 1
	for _, w := range widths {
		total *= w
	}

	idx := make([]int, len(group))
	for col := 0; col < total; col++ {
		product := 1.0
		for r, termIdx := range group {
			b := mainBlocks[termIdx]
			product *= x.At(p, b.start+idx[r])
		}
		x.Set(p, start+col, product)

		for r := len(idx) - 1; r >= 0; r-- {
			idx[r]++
			if idx[r] < widths[r] {
				break
			}
			idx[r] = 0
		}
	}
}

func buildLabels(desc *model.Descriptor, mainBlocks, interactionBlocks []block, names []string, k int) []string {
	labels := make([]string, k)
	labels[0] = "Intercept"

	for i, me := range desc.MainEffects {
		b := mainBlocks[i]
		name := names[me.VarIndex]
		for c := 0; c < b.width; c++ {
			labels[b.start+c] = name
		}
	}

	for g, group := range desc.Interactions {
		b := interactionBlocks[g]
		name := desc.InteractionName(group, names)
		for c := 0; c < b.width; c++ {
			labels[b.start+c] = name
		}
	}

	return labels
}
