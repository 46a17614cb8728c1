// Package sim implements the per-row simulation runner: it selects one grid
// row by job index, draws binomial samples with that row's parameters, and
// writes a single per-index result file. Concurrent runner invocations never
// coordinate — unique result filenames per index are the concurrency strategy.
package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mrparker909/gridsim/internal/constants"
)

// ErrInvalidParameter reports a simulation parameter outside its domain.
// Violations are never clamped; the job fails before writing anything.
var ErrInvalidParameter = errors.New("invalid simulation parameter")

// Params are the binomial sweep parameters read from one grid row.
type Params struct {
	// Trials is the binomial trial count N. Must be a non-negative integer.
	Trials float64

	// Prob is the success probability p. Must lie in [0, 1].
	Prob float64

	// Draws is the number of independent samples n. Must be a positive integer.
	Draws int
}

// ParamsFromRow extracts and validates the reserved parameters N, p, and n
// from a grid row. Extra parameters in the row are ignored here; the result
// writer carries them through untouched.
func ParamsFromRow(row map[string]float64) (Params, error) {
	var p Params

	trials, ok := row[constants.TrialsParam]
	if !ok {
		return p, fmt.Errorf("%w: grid has no %s column", ErrInvalidParameter, constants.TrialsParam)
	}
	prob, ok := row[constants.ProbParam]
	if !ok {
		return p, fmt.Errorf("%w: grid has no %s column", ErrInvalidParameter, constants.ProbParam)
	}
	draws, ok := row[constants.DrawsParam]
	if !ok {
		return p, fmt.Errorf("%w: grid has no %s column", ErrInvalidParameter, constants.DrawsParam)
	}

	if trials < 0 || trials != math.Trunc(trials) {
		return p, fmt.Errorf("%w: %s=%v must be a non-negative integer", ErrInvalidParameter, constants.TrialsParam, trials)
	}
	if !(prob >= 0 && prob <= 1) {
		return p, fmt.Errorf("%w: %s=%v must lie in [0, 1]", ErrInvalidParameter, constants.ProbParam, prob)
	}
	if draws < 1 || draws != math.Trunc(draws) {
		return p, fmt.Errorf("%w: %s=%v must be a positive integer", ErrInvalidParameter, constants.DrawsParam, draws)
	}

	p.Trials = trials
	p.Prob = prob
	p.Draws = int(draws)
	return p, nil
}

// JobSeed derives a per-job random seed from a base seed and the job index.
// A splitmix64-style mix decorrelates sibling jobs even when base seeds or
// indices are adjacent. A base of 0 means "not reproducible": the current
// time is mixed in instead.
func JobSeed(base uint64, index int) uint64 {
	if base == 0 {
		base = uint64(time.Now().UnixNano())
	}
	z := base + uint64(index)*0x9E3779B97F4A7C15
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

// Sample draws p.Draws independent Binomial(p.Trials, p.Prob) samples using
// the given seed. Callers must have validated p (ParamsFromRow does).
func Sample(p Params, seed uint64) []float64 {
	dist := distuv.Binomial{
		N:   p.Trials,
		P:   p.Prob,
		Src: rand.NewSource(seed),
	}
	samples := make([]float64, p.Draws)
	for i := range samples {
		samples[i] = dist.Rand()
	}
	return samples
}
