package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrparker909/gridsim/internal/config"
	"github.com/mrparker909/gridsim/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridsim",
		Short: "Parameter-sweep simulation pipeline for batch-array schedulers",
		Long: `gridsim runs parameter-sweep simulations as three file-separated stages:

  grid       expand a YAML parameter definition into a persisted
             combination table (one row per parameter combination)
  run        execute one simulation for one 1-based row index and write
             one per-index result file (invoked by each array task)
  aggregate  concatenate all per-index result files into one table

An external job-array scheduler (e.g. SLURM) launches the run stage once
per row and provides the all-tasks-complete barrier the aggregate stage
relies on. 'gridsim script' emits a matching sbatch submission script.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default gridsim.yaml if present)")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newGridCmd(),
		newRunCmd(),
		newAggregateCmd(),
		newScriptCmd(),
		newStatusCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "{\"version\":%q}\n", version)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "gridsim version %s\n", version)
			}
			return nil
		},
	}
}

// loadConfig resolves configuration for a command invocation: defaults,
// then the --config file (or gridsim.yaml if present), then GRIDSIM_* env.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger builds the operational logger for a command from the configured
// level, writing to stderr so stdout stays parseable.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}
