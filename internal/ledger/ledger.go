// Package ledger provides an optional SQLite record of completed jobs.
// The pipeline itself never needs it — per-index result files are the
// artifacts of record — but a ledger makes "how far along is my array?"
// answerable without listing the results directory. It is opt-in because it
// reintroduces a shared writer that the file-per-index design otherwise
// avoids; SQLite's WAL mode and a busy timeout serialize concurrent jobs.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Ledger records job completions in a SQLite database.
type Ledger struct {
	db *sql.DB
}

// Run is one recorded job completion.
type Run struct {
	Index       int
	Params      map[string]float64
	Samples     int
	ResultPath  string
	CompletedAt time.Time
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	// SQLite works best with a single writer per connection pool.
	db.SetMaxOpenConns(1)

	schema := `CREATE TABLE IF NOT EXISTS runs (
		job_index    INTEGER PRIMARY KEY,
		params       TEXT NOT NULL,
		samples      INTEGER NOT NULL,
		result_path  TEXT NOT NULL,
		completed_at TEXT NOT NULL
	)`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record upserts a completion row for a job index. Re-running a job (an
// external retry) replaces its previous record, matching the runner's
// overwrite-on-retry file semantics.
func (l *Ledger) Record(ctx context.Context, index int, params map[string]float64, samples int, resultPath string) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO runs (job_index, params, samples, result_path, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(job_index) DO UPDATE SET
			params = excluded.params,
			samples = excluded.samples,
			result_path = excluded.result_path,
			completed_at = excluded.completed_at`,
		index, string(paramsJSON), samples, resultPath, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording run %d: %w", index, err)
	}
	return nil
}

// Completed returns the recorded job indices in ascending order.
func (l *Ledger) Completed(ctx context.Context) ([]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT job_index FROM runs ORDER BY job_index`)
	if err != nil {
		return nil, fmt.Errorf("querying completed runs: %w", err)
	}
	defer rows.Close()

	var indices []int
	for rows.Next() {
		var index int
		if err := rows.Scan(&index); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		indices = append(indices, index)
	}
	return indices, rows.Err()
}

// Get returns the recorded run for a job index, or sql.ErrNoRows if absent.
func (l *Ledger) Get(ctx context.Context, index int) (Run, error) {
	var run Run
	var paramsJSON, completedAt string

	err := l.db.QueryRowContext(ctx, `
		SELECT job_index, params, samples, result_path, completed_at
		FROM runs WHERE job_index = ?`, index).
		Scan(&run.Index, &paramsJSON, &run.Samples, &run.ResultPath, &completedAt)
	if err != nil {
		return run, err
	}

	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return run, fmt.Errorf("decoding params for run %d: %w", index, err)
	}
	run.CompletedAt, err = time.Parse(time.RFC3339, completedAt)
	if err != nil {
		return run, fmt.Errorf("parsing completion time for run %d: %w", index, err)
	}
	return run, nil
}

// Summary describes array progress against an expected total.
type Summary struct {
	Completed int
	Total     int
	Missing   []int
}

// Summarize compares the recorded completions against 1..total.
func (l *Ledger) Summarize(ctx context.Context, total int) (Summary, error) {
	indices, err := l.Completed(ctx)
	if err != nil {
		return Summary{}, err
	}

	done := make(map[int]bool, len(indices))
	for _, i := range indices {
		done[i] = true
	}
	s := Summary{Completed: len(indices), Total: total}
	for i := 1; i <= total; i++ {
		if !done[i] {
			s.Missing = append(s.Missing, i)
		}
	}
	return s, nil
}
