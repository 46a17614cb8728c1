// Package aggregate merges per-job result files into one combined table.
// It runs strictly after the batch array finishes; the all-tasks-complete
// barrier belongs to the external scheduler, not to this code. Running it
// early silently aggregates whatever subset exists.
package aggregate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mrparker909/gridsim/internal/constants"
)

// ErrSchemaMismatch reports result files whose column headers disagree.
// Aggregation aborts without writing any output.
var ErrSchemaMismatch = errors.New("result file schema mismatch")

// resultFile is one discovered per-job file with its embedded job index.
type resultFile struct {
	path  string
	index int
}

// Discover lists the per-job result files under dir, sorted ascending by the
// job index embedded in each filename. Files matching the naming pattern but
// without a parseable index are skipped with a warning: they are not this
// pipeline's artifacts. Zero matches is not an error.
func Discover(dir string, logger *slog.Logger) ([]string, error) {
	pattern := filepath.Join(dir, constants.ResultFilePrefix+"*"+constants.ResultFileExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}

	files := make([]resultFile, 0, len(matches))
	for _, path := range matches {
		base := filepath.Base(path)
		middle := strings.TrimSuffix(strings.TrimPrefix(base, constants.ResultFilePrefix), constants.ResultFileExt)
		index, err := strconv.Atoi(middle)
		if err != nil {
			logger.Warn("Skipping file without a job index.", "file", path)
			continue
		}
		files = append(files, resultFile{path: path, index: index})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// Concat reads every result file, verifies all share the first file's exact
// header, and writes header + concatenated data rows to outPath. The combined
// table is assembled in memory first, so a schema mismatch produces no
// partial output. Zero input files produce an empty output file.
func Concat(files []string, outPath string, logger *slog.Logger) error {
	if len(files) == 0 {
		logger.Warn("No result files found; writing empty output.", "output", outPath)
		if err := os.WriteFile(outPath, nil, 0644); err != nil {
			return fmt.Errorf("writing empty output: %w", err)
		}
		return nil
	}

	var header []string
	var rows [][]string
	for _, path := range files {
		fileHeader, fileRows, err := readResultFile(path)
		if err != nil {
			return err
		}
		if header == nil {
			header = fileHeader
		} else if !sameSchema(header, fileHeader) {
			return fmt.Errorf("%w: %s has columns %v, expected %v",
				ErrSchemaMismatch, path, fileHeader, header)
		}
		rows = append(rows, fileRows...)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing output header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing output rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}

	logger.Info("Aggregation complete.", "files", len(files), "rows", len(rows), "output", outPath)
	return nil
}

// Run discovers and concatenates in one step.
func Run(dir, outPath string, logger *slog.Logger) error {
	files, err := Discover(dir, logger)
	if err != nil {
		return err
	}
	return Concat(files, outPath, logger)
}

// readResultFile reads one per-job CSV into header and data rows.
func readResultFile(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening result file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading result file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("result file %s is empty", path)
	}
	return records[0], records[1:], nil
}

// sameSchema reports whether two headers have identical column names in
// identical order.
func sameSchema(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
