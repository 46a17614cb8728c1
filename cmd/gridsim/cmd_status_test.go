package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestStatusCmdNoRunsRecorded(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	gridPath := buildTestGrid(t, dir)

	stdout, err := execute(t, "status", "--grid", gridPath, "--ledger-path", filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if !strings.Contains(stdout, "0/4 jobs recorded complete") {
		t.Errorf("status output %q", stdout)
	}
}

func TestStatusCmdJSON(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	gridPath := buildTestGrid(t, dir)

	stdout, err := execute(t, "status", "--grid", gridPath, "--ledger-path", filepath.Join(dir, "runs.db"), "--json")
	if err != nil {
		t.Fatalf("status --json error: %v", err)
	}
	if !strings.Contains(stdout, `"total":4`) {
		t.Errorf("JSON output %q missing total", stdout)
	}
}

func TestStatusCmdMissingGrid(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if _, err := execute(t, "status", "--grid", filepath.Join(dir, "absent.csv")); err == nil {
		t.Fatal("status with missing grid succeeded, want error")
	}
}
