package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrparker909/gridsim/internal/grid"
	"github.com/mrparker909/gridsim/internal/ledger"
)

// newStatusCmd creates the 'status' command.
// It reads the run ledger, so it only knows about jobs that ran with the
// ledger enabled.
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize array progress from the run ledger",
		Long: `Compares the completions recorded in the run ledger against the row
count of the persisted grid and reports completed and missing indices.

Requires jobs to have run with the ledger enabled (--ledger or
ledger.enabled in gridsim.yaml).

Examples:
  gridsim status
  gridsim status --ledger-path runs.db --grid sweep_grid.csv`,
		RunE: runStatus,
	}

	cmd.Flags().String("grid", "", "Grid CSV path (default from config)")
	cmd.Flags().String("ledger-path", "", "Run ledger database path (default from config)")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gridPath, _ := cmd.Flags().GetString("grid")
	if gridPath == "" {
		gridPath = cfg.Grid.File
	}
	ledgerPath, _ := cmd.Flags().GetString("ledger-path")
	if ledgerPath == "" {
		ledgerPath = cfg.Ledger.Path
	}

	table, err := grid.Load(gridPath)
	if err != nil {
		return err
	}

	l, err := ledger.Open(ledgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	summary, err := l.Summarize(cmd.Context(), table.NumRows())
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"completed": summary.Completed,
			"total":     summary.Total,
			"missing":   summary.Missing,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d jobs recorded complete\n", summary.Completed, summary.Total)
	if len(summary.Missing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "missing indices: %v\n", summary.Missing)
	}
	return nil
}
