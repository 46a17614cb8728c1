package sim

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/mrparker909/gridsim/internal/grid"
)

// writeTestGrid persists the canonical 4-row sweep and returns its path.
func writeTestGrid(t *testing.T, dir string) string {
	t.Helper()
	table, err := grid.Expand(grid.ParameterSet{Parameters: []grid.Parameter{
		{Name: "N", Values: []float64{10, 20}},
		{Name: "p", Values: []float64{0.1, 0.5}},
		{Name: "n", Values: []float64{100}},
	}})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	path := filepath.Join(dir, "grid.csv")
	if err := table.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return records
}

func TestRunnerWritesResult(t *testing.T) {
	dir := t.TempDir()
	resultsDir := filepath.Join(dir, "results")
	r := &Runner{
		GridPath:   writeTestGrid(t, dir),
		ResultsDir: resultsDir,
		Seed:       42,
		Logger:     quietLogger(),
	}

	path, err := r.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run(2) error: %v", err)
	}
	if want := ResultPath(resultsDir, 2); path != want {
		t.Errorf("result path = %q, want %q", path, want)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("result file has %d rows, want header + 1 data row", len(records))
	}
	header, row := records[0], records[1]

	// Schema: N,p,n,sample_1..sample_100.
	if len(header) != 3+100 {
		t.Fatalf("header has %d columns, want 103", len(header))
	}
	if header[0] != "N" || header[1] != "p" || header[2] != "n" {
		t.Errorf("parameter columns = %v, want [N p n]", header[:3])
	}
	if header[3] != "sample_1" || header[102] != "sample_100" {
		t.Errorf("sample columns = %q..%q, want sample_1..sample_100", header[3], header[102])
	}

	// Row 2 of the canonical sweep is N=10, p=0.5, n=100.
	if row[0] != "10" || row[1] != "0.5" || row[2] != "100" {
		t.Errorf("parameter values = %v, want [10 0.5 100]", row[:3])
	}
	for i, cell := range row[3:] {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			t.Fatalf("sample %d = %q not numeric: %v", i+1, cell, err)
		}
		if v < 0 || v > 10 {
			t.Errorf("sample %d = %v outside [0, 10]", i+1, v)
		}
	}
}

func TestRunnerIndexOutOfRange(t *testing.T) {
	dir := t.TempDir()
	resultsDir := filepath.Join(dir, "results")
	r := &Runner{
		GridPath:   writeTestGrid(t, dir),
		ResultsDir: resultsDir,
		Logger:     quietLogger(),
	}

	for _, index := range []int{0, -3, 5, 1000} {
		if _, err := r.Run(context.Background(), index); !errors.Is(err, grid.ErrIndexOutOfRange) {
			t.Errorf("Run(%d) error = %v, want ErrIndexOutOfRange", index, err)
		}
	}

	// No result file, not even the results directory, may exist.
	if _, err := os.Stat(resultsDir); !os.IsNotExist(err) {
		t.Error("results directory created for out-of-range index")
	}
}

func TestRunnerInvalidParameter(t *testing.T) {
	dir := t.TempDir()
	table := &grid.Table{
		Params: []string{"N", "p", "n"},
		Rows:   [][]float64{{10, 1.5, 100}},
	}
	gridPath := filepath.Join(dir, "grid.csv")
	if err := table.Save(gridPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	resultsDir := filepath.Join(dir, "results")
	r := &Runner{GridPath: gridPath, ResultsDir: resultsDir, Logger: quietLogger()}

	if _, err := r.Run(context.Background(), 1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("Run(1) error = %v, want ErrInvalidParameter", err)
	}
	if _, err := os.Stat(resultsDir); !os.IsNotExist(err) {
		t.Error("results directory created for invalid parameters")
	}
}

func TestRunnerMissingGrid(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{
		GridPath:   filepath.Join(dir, "missing.csv"),
		ResultsDir: filepath.Join(dir, "results"),
		Logger:     quietLogger(),
	}
	if _, err := r.Run(context.Background(), 1); err == nil {
		t.Fatal("Run with missing grid succeeded, want error")
	}
}

func TestRunnerRetryOverwrites(t *testing.T) {
	dir := t.TempDir()
	resultsDir := filepath.Join(dir, "results")
	r := &Runner{
		GridPath:   writeTestGrid(t, dir),
		ResultsDir: resultsDir,
		Seed:       7,
		Logger:     quietLogger(),
	}

	first, err := r.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	second, err := r.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if first != second {
		t.Errorf("retry wrote %q, want same path %q", second, first)
	}

	// With a fixed base seed the retry reproduces the file exactly.
	a := readCSV(t, first)
	b := readCSV(t, second)
	if len(a) != len(b) || len(a[1]) != len(b[1]) {
		t.Fatal("retry produced a different shape")
	}
	for i := range a[1] {
		if a[1][i] != b[1][i] {
			t.Errorf("retry cell %d = %q, want %q", i, b[1][i], a[1][i])
		}
	}
}

type fakeRecorder struct {
	index   int
	samples int
	path    string
	err     error
	calls   int
}

func (f *fakeRecorder) Record(ctx context.Context, index int, params map[string]float64, samples int, resultPath string) error {
	f.calls++
	f.index = index
	f.samples = samples
	f.path = resultPath
	return f.err
}

func TestRunnerRecordsCompletion(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{}
	r := &Runner{
		GridPath:   writeTestGrid(t, dir),
		ResultsDir: filepath.Join(dir, "results"),
		Seed:       1,
		Logger:     quietLogger(),
		Recorder:   rec,
	}

	path, err := r.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if rec.calls != 1 || rec.index != 3 || rec.samples != 100 || rec.path != path {
		t.Errorf("recorder saw calls=%d index=%d samples=%d path=%q", rec.calls, rec.index, rec.samples, rec.path)
	}
}

func TestRunnerLedgerFailureDoesNotFailJob(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{err: errors.New("ledger unavailable")}
	r := &Runner{
		GridPath:   writeTestGrid(t, dir),
		ResultsDir: filepath.Join(dir, "results"),
		Seed:       1,
		Logger:     quietLogger(),
		Recorder:   rec,
	}
	if _, err := r.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run failed on ledger error: %v", err)
	}
}
