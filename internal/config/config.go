// Package config provides unified configuration loading for gridsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mrparker909/gridsim/internal/constants"
)

// DefaultFile is the config file looked up in the working directory when no
// --config flag is given.
const DefaultFile = "gridsim.yaml"

// Config contains all gridsim configuration settings.
type Config struct {
	// Grid contains settings for the combination table.
	Grid GridConfig `yaml:"grid"`

	// Results contains settings for per-job and aggregated result files.
	Results ResultsConfig `yaml:"results"`

	// Simulation contains settings for the stochastic draw.
	Simulation SimulationConfig `yaml:"simulation"`

	// Ledger contains settings for the optional run ledger.
	Ledger LedgerConfig `yaml:"ledger"`

	// Logging contains settings for operational and run-event logging.
	Logging LoggingConfig `yaml:"logging"`
}

// GridConfig locates the parameter definition and the persisted table.
type GridConfig struct {
	// Params is the YAML parameter definition file read by `gridsim grid`.
	Params string `yaml:"params"`

	// File is the persisted combination table shared by all pipeline stages.
	File string `yaml:"file"`
}

// ResultsConfig locates per-job result files and the combined table.
type ResultsConfig struct {
	// Dir is the directory per-job result files are written to and
	// discovered in.
	Dir string `yaml:"dir"`

	// AggregateFile is the combined output table path.
	AggregateFile string `yaml:"aggregate_file"`
}

// SimulationConfig configures the stochastic draw.
type SimulationConfig struct {
	// Seed is the reproducibility base seed. Each job mixes its index into
	// the base. 0 means time-derived (not reproducible).
	Seed uint64 `yaml:"seed"`
}

// LedgerConfig configures the optional SQLite run ledger.
// Disabled by default: the ledger is a shared writer the file-per-index
// pipeline otherwise does without.
type LedgerConfig struct {
	// Enabled turns completion recording on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// LoggingConfig configures gridsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run-event logging to runs.jsonl in the results dir.
	// "trace" additionally includes seed material.
	Level string `yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Params: "params.yaml",
			File:   constants.DefaultGridFile,
		},
		Results: ResultsConfig{
			Dir:           constants.DefaultResultsDir,
			AggregateFile: constants.DefaultAggregateFile,
		},
		Simulation: SimulationConfig{
			Seed: 0,
		},
		Ledger: LedgerConfig{
			Enabled: false,
			Path:    constants.DefaultLedgerFile,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration for the given path. An empty path means the
// default file in the working directory, which may be absent.
// Order: defaults -> file -> environment variables.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	if c.Grid.File == "" {
		return fmt.Errorf("grid.file cannot be empty")
	}
	if c.Results.Dir == "" {
		return fmt.Errorf("results.dir cannot be empty")
	}
	if c.Ledger.Enabled && c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path cannot be empty when the ledger is enabled")
	}
	return nil
}

// applyEnvOverrides applies GRIDSIM_* environment variable overrides.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("GRIDSIM_PARAMS_FILE"); v != "" {
		c.Grid.Params = v
	}
	if v := os.Getenv("GRIDSIM_GRID_FILE"); v != "" {
		c.Grid.File = v
	}
	if v := os.Getenv("GRIDSIM_RESULTS_DIR"); v != "" {
		c.Results.Dir = v
	}
	if v := os.Getenv("GRIDSIM_AGGREGATE_FILE"); v != "" {
		c.Results.AggregateFile = v
	}
	if v := os.Getenv("GRIDSIM_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Simulation.Seed = seed
		}
	}
	if v := os.Getenv("GRIDSIM_LEDGER"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Ledger.Enabled = enabled
		}
	}
	if v := os.Getenv("GRIDSIM_LEDGER_PATH"); v != "" {
		c.Ledger.Path = v
	}
	if v := os.Getenv("GRIDSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
