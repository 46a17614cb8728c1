package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrparker909/gridsim/internal/grid"
)

// newGridCmd creates the 'grid' command.
// It expands a YAML parameter definition into the full Cartesian product and
// persists it as the CSV table every array task will index into.
func newGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Build and persist the parameter combination table",
		Long: `Expands the parameter definition into the full Cartesian product and
writes it as a CSV table with one header row of parameter names.

Row ordering is deterministic: the last-listed parameter varies fastest,
so a job index always selects the same combination across runs and hosts.

Examples:
  gridsim grid
  gridsim grid --params sweep.yaml --out sweep_grid.csv
  gridsim grid --show`,
		RunE: runGrid,
	}

	cmd.Flags().String("params", "", "Parameter definition YAML (default from config)")
	cmd.Flags().String("out", "", "Output grid CSV path (default from config)")
	cmd.Flags().Bool("show", false, "Print the expanded table to stdout")

	return cmd
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	paramsPath, _ := cmd.Flags().GetString("params")
	if paramsPath == "" {
		paramsPath = cfg.Grid.Params
	}
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = cfg.Grid.File
	}

	ps, err := grid.LoadParams(paramsPath)
	if err != nil {
		return err
	}

	table, err := grid.Expand(ps)
	if err != nil {
		return err
	}
	logger.Debug("Grid expanded.", "params", table.Params, "rows", table.NumRows())

	if err := table.Save(outPath); err != nil {
		return err
	}
	logger.Info("Grid written.", "path", outPath, "rows", table.NumRows())

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"grid":    outPath,
			"columns": table.Params,
			"rows":    table.NumRows(),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d combinations of %d parameters to %s\n",
		table.NumRows(), len(table.Params), outPath)

	show, _ := cmd.Flags().GetBool("show")
	if show {
		printTable(cmd, table)
	}
	return nil
}

// printTable writes the table in index-prefixed rows, the way a job array
// will address it.
func printTable(cmd *cobra.Command, table *grid.Table) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, "index")
	for _, name := range table.Params {
		fmt.Fprintf(out, "\t%s", name)
	}
	fmt.Fprintln(out)
	for i := 1; i <= table.NumRows(); i++ {
		values, _ := table.RowValues(i)
		fmt.Fprintf(out, "%d", i)
		for _, v := range values {
			fmt.Fprintf(out, "\t%s", grid.FormatValue(v))
		}
		fmt.Fprintln(out)
	}
}
