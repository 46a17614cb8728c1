// Package batch generates job-array submission scripts for external
// schedulers. The scheduler is a collaborator, not part of the pipeline: it
// launches one runner process per grid row and provides the
// all-tasks-complete barrier the aggregator relies on.
package batch

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/mrparker909/gridsim/internal/constants"
)

// Script describes one sbatch array submission sized to a grid.
type Script struct {
	// Rows is the grid row count; the array runs indices 1..Rows.
	Rows int

	// JobName is the sbatch --job-name directive.
	JobName string

	// WallTime is the sbatch --time directive, e.g. "00:30:00".
	WallTime string

	// MemPerCPU is the sbatch --mem-per-cpu directive, e.g. "1000M".
	MemPerCPU string

	// Account is the sbatch --account directive; empty omits the line.
	Account string

	// GridFile and ResultsDir are passed through to the runner invocation.
	GridFile   string
	ResultsDir string
}

var scriptTemplate = template.Must(template.New("sbatch").Parse(`#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --array=1-{{.Rows}}
#SBATCH --time={{.WallTime}}
#SBATCH --mem-per-cpu={{.MemPerCPU}}
{{- if .Account}}
#SBATCH --account={{.Account}}
{{- end}}

gridsim run "$SLURM_ARRAY_TASK_ID" --grid "{{.GridFile}}" --results "{{.ResultsDir}}"
`))

// Defaults fills empty fields with the conventional values.
func (s *Script) Defaults() {
	if s.JobName == "" {
		s.JobName = "gridsim"
	}
	if s.WallTime == "" {
		s.WallTime = constants.DefaultWallTime
	}
	if s.MemPerCPU == "" {
		s.MemPerCPU = constants.DefaultMemPerCPU
	}
	if s.GridFile == "" {
		s.GridFile = constants.DefaultGridFile
	}
	if s.ResultsDir == "" {
		s.ResultsDir = constants.DefaultResultsDir
	}
}

// Render returns the script text. Rows must be positive: submitting an
// empty array is a scheduler error better caught here.
func (s *Script) Render() (string, error) {
	if s.Rows < 1 {
		return "", fmt.Errorf("script needs at least one grid row, got %d", s.Rows)
	}
	s.Defaults()

	var buf strings.Builder
	if err := scriptTemplate.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("rendering submission script: %w", err)
	}
	return buf.String(), nil
}

// WriteFile renders the script and writes it to path, executable.
func (s *Script) WriteFile(path string) error {
	text, err := s.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0755); err != nil {
		return fmt.Errorf("writing submission script: %w", err)
	}
	return nil
}
