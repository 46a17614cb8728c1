// Package constants provides named constants used throughout the gridsim codebase.
// This centralizes naming conventions so the grid builder, runner, and
// aggregator never drift apart on file layout.
package constants

// File naming conventions shared by all three pipeline stages.
const (
	// DefaultGridFile is the default path of the persisted combination table.
	DefaultGridFile = "grid.csv"

	// DefaultResultsDir is the default directory for per-job result files.
	DefaultResultsDir = "results"

	// ResultFilePrefix is the prefix of every per-job result file.
	// The full name is ResultFilePrefix + <job index> + ResultFileExt.
	ResultFilePrefix = "results_"

	// ResultFileExt is the extension of per-job and aggregated result files.
	ResultFileExt = ".csv"

	// DefaultAggregateFile is the default path of the combined result table.
	DefaultAggregateFile = "results_all.csv"

	// SampleColumnPrefix is the prefix of sample columns in result files,
	// producing headers like sample_1..sample_n.
	SampleColumnPrefix = "sample_"
)

// Reserved parameter names the per-row runner reads from the grid.
// A grid may carry additional parameters; these three must be present.
const (
	// TrialsParam is the binomial trial count column.
	TrialsParam = "N"

	// ProbParam is the binomial success probability column.
	ProbParam = "p"

	// DrawsParam is the number of samples drawn per job.
	DrawsParam = "n"
)

// Batch script defaults used when the submission script generator is not
// given explicit scheduler directives.
const (
	// DefaultScriptFile is the default output path for the sbatch script.
	DefaultScriptFile = "submit_gridsim.sh"

	// DefaultWallTime is the default sbatch --time directive.
	DefaultWallTime = "00:30:00"

	// DefaultMemPerCPU is the default sbatch --mem-per-cpu directive.
	DefaultMemPerCPU = "1000M"
)

// DefaultLedgerFile is the default path of the optional SQLite run ledger.
const DefaultLedgerFile = "gridsim.db"
