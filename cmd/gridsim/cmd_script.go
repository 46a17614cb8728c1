package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrparker909/gridsim/internal/batch"
	"github.com/mrparker909/gridsim/internal/constants"
	"github.com/mrparker909/gridsim/internal/grid"
)

// newScriptCmd creates the 'script' command.
// It emits the sbatch submission script sized to the persisted grid, so the
// array range can never drift from the table it indexes.
func newScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Generate an sbatch job-array submission script",
		Long: `Reads the persisted grid to size the job array (--array=1-<rows>) and
writes an sbatch script whose tasks each invoke 'gridsim run' with their
own $SLURM_ARRAY_TASK_ID.

Examples:
  gridsim script
  gridsim script --account def-someuser --time 01:00:00 -o submit.sh`,
		RunE: runScript,
	}

	cmd.Flags().String("grid", "", "Grid CSV path (default from config)")
	cmd.Flags().String("results", "", "Results directory for run invocations (default from config)")
	cmd.Flags().StringP("out", "o", constants.DefaultScriptFile, "Script output path")
	cmd.Flags().String("job-name", "gridsim", "sbatch --job-name")
	cmd.Flags().String("time", constants.DefaultWallTime, "sbatch --time wall limit")
	cmd.Flags().String("mem", constants.DefaultMemPerCPU, "sbatch --mem-per-cpu")
	cmd.Flags().String("account", "", "sbatch --account (omitted if empty)")

	return cmd
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	gridPath, _ := cmd.Flags().GetString("grid")
	if gridPath == "" {
		gridPath = cfg.Grid.File
	}
	resultsDir, _ := cmd.Flags().GetString("results")
	if resultsDir == "" {
		resultsDir = cfg.Results.Dir
	}

	table, err := grid.Load(gridPath)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	jobName, _ := cmd.Flags().GetString("job-name")
	wallTime, _ := cmd.Flags().GetString("time")
	mem, _ := cmd.Flags().GetString("mem")
	account, _ := cmd.Flags().GetString("account")

	script := &batch.Script{
		Rows:       table.NumRows(),
		JobName:    jobName,
		WallTime:   wallTime,
		MemPerCPU:  mem,
		Account:    account,
		GridFile:   gridPath,
		ResultsDir: resultsDir,
	}
	if err := script.WriteFile(outPath); err != nil {
		return err
	}
	logger.Info("Submission script written.", "path", outPath, "array", table.NumRows())

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"script": outPath,
			"tasks":  table.NumRows(),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s for a %d-task array\n", outPath, table.NumRows())
	return nil
}
