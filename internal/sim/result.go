package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mrparker909/gridsim/internal/constants"
	"github.com/mrparker909/gridsim/internal/grid"
)

// ResultRecord is the outcome of one job: the selected row's parameter values
// plus the drawn samples, flattened into one wide CSV row. The schema is
// <param columns in grid order>,sample_1..sample_n, identical across all jobs
// of a grid so the aggregator can concatenate files without transformation.
type ResultRecord struct {
	Params  []string  // grid column order
	Values  []float64 // one value per parameter
	Samples []float64
}

// Header returns the CSV header for the record.
func (r *ResultRecord) Header() []string {
	header := make([]string, 0, len(r.Params)+len(r.Samples))
	header = append(header, r.Params...)
	for i := range r.Samples {
		header = append(header, constants.SampleColumnPrefix+strconv.Itoa(i+1))
	}
	return header
}

// row returns the single data row of the record.
func (r *ResultRecord) row() []string {
	row := make([]string, 0, len(r.Values)+len(r.Samples))
	for _, v := range r.Values {
		row = append(row, grid.FormatValue(v))
	}
	for _, s := range r.Samples {
		row = append(row, grid.FormatValue(s))
	}
	return row
}

// ResultPath returns the per-job result filename for a 1-based job index,
// e.g. dir/results_7.csv. Embedding the index makes the name unique per job,
// which is what lets parallel array tasks write without coordination.
func ResultPath(dir string, index int) string {
	return filepath.Join(dir, constants.ResultFilePrefix+strconv.Itoa(index)+constants.ResultFileExt)
}

// Write serializes the record to the per-job result file for index under dir.
// It writes to a temp file and renames into place, so a retry of a failed or
// interrupted job overwrites cleanly and readers never observe a partial file.
func (r *ResultRecord) Write(dir string, index int) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	path := ResultPath(dir, index)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return "", fmt.Errorf("creating temp result file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(r.Header()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing result header: %w", err)
	}
	if err := w.Write(r.row()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing result row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("flushing result file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp result file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("renaming result file into place: %w", err)
	}
	return path, nil
}
