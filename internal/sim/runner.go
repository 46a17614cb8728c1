package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrparker909/gridsim/internal/grid"
	"github.com/mrparker909/gridsim/internal/logging"
)

// Recorder receives a completion record after a job's result file is written.
// The SQLite run ledger implements it; a nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, index int, params map[string]float64, samples int, resultPath string) error
}

// Runner executes one per-row simulation job: load the persisted grid, select
// the row for a 1-based job index, draw samples, and write the per-index
// result file. One Runner invocation is one batch-array task; the external
// scheduler provides parallelism and the all-tasks-complete barrier.
type Runner struct {
	GridPath   string
	ResultsDir string

	// Seed is the reproducibility base seed; 0 means time-derived.
	Seed uint64

	Logger   *slog.Logger
	Events   *logging.RunLogger // nil-safe, debug-gated
	Recorder Recorder           // optional run ledger
}

// Run executes the job for the given 1-based index and returns the path of
// the written result file. All validation happens before any file is
// created: an out-of-range index or invalid parameter writes nothing.
func (r *Runner) Run(ctx context.Context, index int) (string, error) {
	start := time.Now()
	r.Events.Log(map[string]any{"event": "start", "index": index, "grid": r.GridPath})

	table, err := grid.Load(r.GridPath)
	if err != nil {
		return "", fmt.Errorf("loading grid: %w", err)
	}
	r.Logger.Debug("Grid loaded.", "path", r.GridPath, "rows", table.NumRows(), "params", table.Params)

	row, err := table.Row(index)
	if err != nil {
		return "", err
	}
	values, err := table.RowValues(index)
	if err != nil {
		return "", err
	}

	params, err := ParamsFromRow(row)
	if err != nil {
		return "", err
	}

	seed := JobSeed(r.Seed, index)
	r.Logger.Log(ctx, logging.LevelTrace, "Seed derived.", "base", r.Seed, "index", index, "seed", seed)

	samples := Sample(params, seed)
	r.Events.Log(map[string]any{"event": "sampled", "index": index, "draws": len(samples)})

	record := &ResultRecord{
		Params:  table.Params,
		Values:  values,
		Samples: samples,
	}
	path, err := record.Write(r.ResultsDir, index)
	if err != nil {
		return "", err
	}
	r.Events.Log(map[string]any{"event": "written", "index": index, "path": path})

	if r.Recorder != nil {
		if err := r.Recorder.Record(ctx, index, row, len(samples), path); err != nil {
			// The result file is the artifact of record; a ledger failure
			// must not fail the job after the file landed.
			r.Logger.Warn("Run ledger record failed.", "index", index, "error", err)
		}
	}

	r.Logger.Info("Job complete.",
		"index", index,
		"N", params.Trials,
		"p", params.Prob,
		"n", params.Draws,
		"result", path,
		"elapsed", time.Since(start))
	return path, nil
}
