// Package table provides a dense, row-major numeric table with named
// columns and an optional per-row weight column.
package table

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sysmis is the sentinel for a logically missing value: the most
// negative finite float64.
const Sysmis = -math.MaxFloat64

// Table is an ordered sequence of observations, each a fixed-length
// vector of float64 values indexed by variable position.
type Table struct {
	data      *mat.Dense
	names     []string
	weightCol int // -1 if no weight column is designated
}

// New builds a Table from row-major data. names gives the column↔name
// map; every observation must have len(names) values.
func New(names []string, rows [][]float64) (*Table, error) {
	return NewWeighted(names, rows, -1)
}

// NewWeighted is like New but designates column weightCol (or -1) as
// the per-row weight. An unset weight column means every observation
// has weight 1.
func NewWeighted(names []string, rows [][]float64, weightCol int) (*Table, error) {
	if err := validateNames(names); err != nil {
		return nil, err
	}
	p := len(names)
	if weightCol >= p {
		return nil, fmt.Errorf("table: weight column %d out of range for %d variables", weightCol, p)
	}

	n := len(rows)
	data := mat.NewDense(n, p, nil)
	for i, row := range rows {
		if len(row) != p {
			return nil, fmt.Errorf("table: row %d has %d values, want %d", i, len(row), p)
		}
		data.SetRow(i, row)
	}

	return &Table{data: data, names: names, weightCol: weightCol}, nil
}

func validateNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("table: duplicate variable name %q", n)
		}
		seen[n] = true
	}
	return nil
}

// NumRows returns the number of observations.
func (t *Table) NumRows() int {
	r, _ := t.data.Dims()
	return r
}

// NumCols returns the number of variables.
func (t *Table) NumCols() int {
	_, c := t.data.Dims()
	return c
}

// Names returns the variable names, indexed by variable position.
func (t *Table) Names() []string {
	return t.names
}

// ColumnIndex returns the variable position for name, if present.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, n := range t.names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// At returns the value of variable col in observation row.
func (t *Table) At(row, col int) float64 {
	return t.data.At(row, col)
}

// WeightColumn returns the designated weight column, or -1 if none.
func (t *Table) WeightColumn() int {
	return t.weightCol
}

// Weight returns the weight of observation row: the value of the
// weight column, or 1 if no weight column is designated.
func (t *Table) Weight(row int) float64 {
	if t.weightCol < 0 {
		return 1
	}
	return t.data.At(row, t.weightCol)
}
