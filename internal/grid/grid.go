// Package grid builds, persists, and indexes parameter combination tables.
// A Table holds the full Cartesian product of a ParameterSet; every batch-array
// job selects exactly one row of it by a 1-based index.
package grid

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange reports a job index outside [1, row count].
var ErrIndexOutOfRange = errors.New("job index out of range")

// Parameter is one named axis of the sweep with its candidate values.
type Parameter struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values"`
}

// ParameterSet is an ordered list of sweep axes. Order matters: it fixes the
// column order of the table and the row-ordering convention of Expand.
type ParameterSet struct {
	Parameters []Parameter `yaml:"parameters"`
}

// Validate checks that every parameter has a unique, non-empty name and at
// least one candidate value.
func (ps ParameterSet) Validate() error {
	if len(ps.Parameters) == 0 {
		return errors.New("parameter set has no parameters")
	}
	seen := make(map[string]bool, len(ps.Parameters))
	for _, p := range ps.Parameters {
		if p.Name == "" {
			return errors.New("parameter with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter name: %s", p.Name)
		}
		seen[p.Name] = true
		if len(p.Values) == 0 {
			return fmt.Errorf("parameter %s has no values", p.Name)
		}
	}
	return nil
}

// Table is an ordered combination table: one column per parameter, one row
// per combination. Rows are addressed with 1-based indices to match the
// job-array convention of external schedulers.
type Table struct {
	Params []string
	Rows   [][]float64
}

// Expand returns the full Cartesian product of ps as a Table.
//
// Ordering convention: the last-listed parameter varies fastest, like an
// odometer with the rightmost wheel spinning. The convention is load-bearing:
// a job index must select the same combination across every run and host.
func Expand(ps ParameterSet) (*Table, error) {
	if err := ps.Validate(); err != nil {
		return nil, err
	}

	names := make([]string, len(ps.Parameters))
	total := 1
	for i, p := range ps.Parameters {
		names[i] = p.Name
		total *= len(p.Values)
	}

	rows := make([][]float64, 0, total)
	idx := make([]int, len(ps.Parameters)) // odometer digits
	for {
		row := make([]float64, len(ps.Parameters))
		for i, p := range ps.Parameters {
			row[i] = p.Values[idx[i]]
		}
		rows = append(rows, row)

		// Advance the rightmost digit, carrying left.
		i := len(idx) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < len(ps.Parameters[i].Values) {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			break
		}
	}

	return &Table{Params: names, Rows: rows}, nil
}

// NumRows returns the number of combinations in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Row returns the combination at the given 1-based job index as a
// name-to-value map. Indices outside [1, NumRows] return ErrIndexOutOfRange.
func (t *Table) Row(index int) (map[string]float64, error) {
	if index < 1 || index > len(t.Rows) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrIndexOutOfRange, index, len(t.Rows))
	}
	row := make(map[string]float64, len(t.Params))
	for i, name := range t.Params {
		row[name] = t.Rows[index-1][i]
	}
	return row, nil
}

// RowValues returns the combination at the given 1-based job index in column
// order. Indices outside [1, NumRows] return ErrIndexOutOfRange.
func (t *Table) RowValues(index int) ([]float64, error) {
	if index < 1 || index > len(t.Rows) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrIndexOutOfRange, index, len(t.Rows))
	}
	return t.Rows[index-1], nil
}
