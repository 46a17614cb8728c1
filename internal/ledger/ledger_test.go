package ledger

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "gridsim.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndGet(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	params := map[string]float64{"N": 10, "p": 0.5, "n": 100}
	if err := l.Record(ctx, 2, params, 100, "results/results_2.csv"); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	run, err := l.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if run.Index != 2 || run.Samples != 100 || run.ResultPath != "results/results_2.csv" {
		t.Errorf("Get() = %+v", run)
	}
	if run.Params["N"] != 10 || run.Params["p"] != 0.5 || run.Params["n"] != 100 {
		t.Errorf("params round-trip failed: %v", run.Params)
	}
	if run.CompletedAt.IsZero() {
		t.Error("completion time not recorded")
	}
}

func TestGetAbsent(t *testing.T) {
	l := openTestLedger(t)
	if _, err := l.Get(context.Background(), 99); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Get(99) error = %v, want sql.ErrNoRows", err)
	}
}

func TestRecordUpsert(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	params := map[string]float64{"N": 10, "p": 0.1, "n": 5}
	if err := l.Record(ctx, 1, params, 5, "results/results_1.csv"); err != nil {
		t.Fatalf("first Record() error: %v", err)
	}
	if err := l.Record(ctx, 1, params, 5, "elsewhere/results_1.csv"); err != nil {
		t.Fatalf("second Record() error: %v", err)
	}

	indices, err := l.Completed(ctx)
	if err != nil {
		t.Fatalf("Completed() error: %v", err)
	}
	if len(indices) != 1 {
		t.Fatalf("Completed() = %v, want one entry after upsert", indices)
	}

	run, err := l.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if run.ResultPath != "elsewhere/results_1.csv" {
		t.Errorf("upsert did not replace result path: %q", run.ResultPath)
	}
}

func TestCompletedOrdering(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	for _, i := range []int{3, 1, 10, 2} {
		if err := l.Record(ctx, i, map[string]float64{"N": 1, "p": 0.5, "n": 1}, 1, "x"); err != nil {
			t.Fatalf("Record(%d) error: %v", i, err)
		}
	}

	indices, err := l.Completed(ctx)
	if err != nil {
		t.Fatalf("Completed() error: %v", err)
	}
	want := []int{1, 2, 3, 10}
	if len(indices) != len(want) {
		t.Fatalf("Completed() = %v, want %v", indices, want)
	}
	for i := range want {
		if indices[i] != want[i] {
			t.Errorf("Completed()[%d] = %d, want %d", i, indices[i], want[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	for _, i := range []int{1, 3} {
		if err := l.Record(ctx, i, map[string]float64{"N": 1, "p": 0.5, "n": 1}, 1, "x"); err != nil {
			t.Fatalf("Record(%d) error: %v", i, err)
		}
	}

	s, err := l.Summarize(ctx, 4)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if s.Completed != 2 || s.Total != 4 {
		t.Errorf("Summarize() = %+v, want Completed=2 Total=4", s)
	}
	if len(s.Missing) != 2 || s.Missing[0] != 2 || s.Missing[1] != 4 {
		t.Errorf("Missing = %v, want [2 4]", s.Missing)
	}
}
