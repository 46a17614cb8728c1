package grid

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// FormatValue encodes a cell value for persistence. The 'g' format with
// precision -1 emits the shortest decimal string that parses back to exactly
// the same float64, which is what gives Save/Load its round-trip guarantee.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Save writes the table to path as a CSV with a header row of parameter
// names. The written artifact is the contract between the grid builder and
// every runner invocation: Load(Save(t)) equals t cell-for-cell.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating grid file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Params); err != nil {
		return fmt.Errorf("writing grid header: %w", err)
	}
	record := make([]string, len(t.Params))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = FormatValue(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing grid row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing grid file: %w", err)
	}
	return f.Close()
}

// Load reads a table previously written by Save. A missing file, a missing
// header, or a non-numeric cell is an error; the runner treats any of them
// as a fatal I/O failure.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading grid file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("grid file %s is empty", path)
	}

	t := &Table{
		Params: records[0],
		Rows:   make([][]float64, 0, len(records)-1),
	}
	for lineNum, record := range records[1:] {
		row := make([]float64, len(record))
		for i, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("grid file %s row %d column %s: %w",
					path, lineNum+1, t.Params[i], err)
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
