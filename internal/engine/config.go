package engine

import "github.com/archer-sat/marco/internal/mapsolver"

// MaxSeedMode selects how MarcoEngine applies Map.MaximizeSeed before
// checking a seed (spec §4.5).
type MaxSeedMode int

const (
	// MaxSeedNever accepts the drawn seed as given.
	MaxSeedNever MaxSeedMode = iota
	// MaxSeedAlways always maximizes, then re-checks.
	MaxSeedAlways
	// MaxSeedHalf maximizes only when the seed is on the wrong side of
	// the bias (SAT with a MUS bias, or UNSAT with an MCS bias).
	MaxSeedHalf
	// MaxSeedSolver relies on a Cardinality Map already drawing extremal
	// seeds; MarcoEngine performs no maximize step of its own.
	MaxSeedSolver
)

// Config parametrizes MarcoEngine's per-seed decisions.
type Config struct {
	MaxSeedMode MaxSeedMode
	// Bias mirrors the Map's own bias: BiasHighMUS favors MUSes,
	// BiasLowMCS favors MCSes, BiasNone disables the half/always
	// maximize shortcuts (there's no preferred direction to walk).
	Bias mapsolver.Bias
	// SMUS additionally blocks down every emitted MUS and bounds the
	// Map to strictly smaller cardinality, for single-smallest-MUS mode.
	// Requires a mapsolver.CardinalityMap.
	SMUS bool
	// BlockBoth also blocks the opposite direction from the emitted
	// result, trading completeness for a higher duplicate-free yield.
	BlockBoth bool
	// Limit caps the number of results this engine emits; 0 means
	// unlimited.
	Limit int
}

func maximizeDirection(bias mapsolver.Bias) mapsolver.Direction {
	if bias == mapsolver.BiasLowMCS {
		return mapsolver.Down
	}
	return mapsolver.Up
}
