// Package tabulate collapses a numeric table into weighted
// per-variable frequency tables and a joint crosstab, keyed by
// bit-exact float64 equality and sorted in ascending key order.
package tabulate

import (
	"math"
	"sort"

	"github.com/mlogit/mlogit/model"
	"github.com/mlogit/mlogit/table"
)

// LevelFreq is one (value, accumulated weight) entry in a per-variable
// frequency table.
type LevelFreq struct {
	Value  float64
	Weight float64
}

// VarTable is a single model variable's weighted frequency table,
// sorted ascending by Value.
type VarTable struct {
	VarIndex int
	Levels   []LevelFreq
}

// Weight returns the accumulated weight for value, and whether it was
// found, comparing by bit-exact equality.
func (vt *VarTable) Weight(value float64) (float64, bool) {
	for _, l := range vt.Levels {
		if bitsEqual(l.Value, value) {
			return l.Weight, true
		}
	}
	return 0, false
}

// CrosstabRow is one row of the joint crosstab: the covariate tuple
// (in model.Descriptor.MainEffects order), the response value, and the
// accumulated weight.
type CrosstabRow struct {
	Covariates []float64
	Response   float64
	Weight     float64
}

// Crosstab is the joint (covariates…, response) → weight mapping,
// sorted ascending lexicographically by all key columns.
type Crosstab struct {
	Rows []CrosstabRow
}

// Tables is the full output of tabulation: one VarTable per main
// effect (aligned with the descriptor's MainEffects), one for the
// dependent variable, and the joint crosstab.
type Tables struct {
	MainEffect []*VarTable
	DV         *VarTable
	Cross      *Crosstab
}

// Build performs a single linear scan of t, skipping observations
// whose weight is ≤ 0, and produces the per-variable frequency tables
// and joint crosstab for desc. SYSMIS values propagate as ordinary
// distinct entries; no observation is rejected for containing one.
//
// Locating a value's table entry is a linear scan over existing
// entries rather than a hash lookup: categorical level counts are
// small in practice, and this mirrors how the crosstab itself must be
// searched (its key is the full covariate+response tuple, which has
// no natural hash-friendly fixed shape across models).
func Build(t *table.Table, desc *model.Descriptor) *Tables {
	n := len(desc.MainEffects)

	mainTables := make([]*VarTable, n)
	for i, me := range desc.MainEffects {
		mainTables[i] = &VarTable{VarIndex: me.VarIndex}
	}
	dv := &VarTable{VarIndex: desc.DV}
	cross := &Crosstab{}

	covariates := make([]float64, n)
	for row := 0; row < t.NumRows(); row++ {
		w := t.Weight(row)
		if w <= 0 {
			continue
		}

		for i, me := range desc.MainEffects {
			v := t.At(row, me.VarIndex)
			covariates[i] = v
			addLevel(mainTables[i], v, w)
		}
		resp := t.At(row, desc.DV)
		addLevel(dv, resp, w)
		addCrosstabRow(cross, covariates, resp, w)
	}

	for _, vt := range mainTables {
		sortLevels(vt)
	}
	sortLevels(dv)
	sortCrosstab(cross)

	return &Tables{MainEffect: mainTables, DV: dv, Cross: cross}
}

func addLevel(vt *VarTable, v, w float64) {
	for i := range vt.Levels {
		if bitsEqual(vt.Levels[i].Value, v) {
			vt.Levels[i].Weight += w
			return
		}
	}
	vt.Levels = append(vt.Levels, LevelFreq{Value: v, Weight: w})
}

func addCrosstabRow(c *Crosstab, covariates []float64, resp, w float64) {
	for i := range c.Rows {
		if crosstabRowMatches(c.Rows[i], covariates, resp) {
			c.Rows[i].Weight += w
			return
		}
	}
	cov := make([]float64, len(covariates))
	copy(cov, covariates)
	c.Rows = append(c.Rows, CrosstabRow{Covariates: cov, Response: resp, Weight: w})
}

func crosstabRowMatches(row CrosstabRow, covariates []float64, resp float64) bool {
	if !bitsEqual(row.Response, resp) {
		return false
	}
	for i, v := range covariates {
		if !bitsEqual(row.Covariates[i], v) {
			return false
		}
	}
	return true
}

func sortLevels(vt *VarTable) {
	sort.Slice(vt.Levels, func(i, j int) bool {
		return totalOrderLess(vt.Levels[i].Value, vt.Levels[j].Value)
	})
}

func sortCrosstab(c *Crosstab) {
	sort.Slice(c.Rows, func(i, j int) bool {
		a, b := c.Rows[i], c.Rows[j]
		for k := range a.Covariates {
			if bitsEqual(a.Covariates[k], b.Covariates[k]) {
				continue
			}
			return totalOrderLess(a.Covariates[k], b.Covariates[k])
		}
		return totalOrderLess(a.Response, b.Response)
	})
}

// bitsEqual compares two values by raw 64-bit float equality, as
// required for frequency-table and crosstab keys: no tolerance, and
// SYSMIS is an ordinary distinct value.
func bitsEqual(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}

// totalOrderLess orders float64 values by their IEEE-754 bit pattern
// total order: negative values compare by the complement of their
// bits (so more-negative sorts first), non-negative values by their
// bits with the sign bit set (so they sort after all negatives). NaNs
// are not canonicalized specially; they sort by their raw bit pattern
// like any other value, which keeps the order total and deterministic
// without inventing a NaN policy the domain never exercises (SYSMIS is
// finite).
func totalOrderLess(a, b float64) bool {
	return totalOrderKey(a) < totalOrderKey(b)
}

func totalOrderKey(v float64) uint64 {
	bits := math.Float64bits(v)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}
