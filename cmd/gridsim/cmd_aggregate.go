package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrparker909/gridsim/internal/aggregate"
)

// newAggregateCmd creates the 'aggregate' command.
// Run it only after the whole job array has finished: the scheduler owns the
// completion barrier, and aggregating early silently combines a subset.
func newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Concatenate per-job result files into one table",
		Long: `Discovers every results_<index>.csv in the results directory, verifies
all files share one column schema, and writes header plus concatenated
rows to the aggregate file, sorted by job index.

Missing indices are not detected; whatever result files exist are
combined. Zero matching files produce an empty output file.

Examples:
  gridsim aggregate
  gridsim aggregate --results out --out combined.csv`,
		RunE: runAggregate,
	}

	cmd.Flags().String("results", "", "Results directory (default from config)")
	cmd.Flags().String("out", "", "Aggregate output path (default from config)")

	return cmd
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	resultsDir, _ := cmd.Flags().GetString("results")
	if resultsDir == "" {
		resultsDir = cfg.Results.Dir
	}
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = cfg.Results.AggregateFile
	}

	files, err := aggregate.Discover(resultsDir, logger)
	if err != nil {
		return err
	}
	if err := aggregate.Concat(files, outPath, logger); err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"files":  len(files),
			"output": outPath,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Aggregated %d result files into %s\n", len(files), outPath)
	return nil
}
