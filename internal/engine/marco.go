// Package engine implements MarcoEngine (spec §4.5) and McsOnlyEngine
// (spec §4.6): the seed → maximize → check → grow/shrink → emit →
// block state machines driving enumeration. Grounded on
// original_source/MarcoPolo.py (MarcoEngine) and
// original_source/MCSEnumerator.py (McsOnlyEngine), rebuilt over
// internal/mapsolver and internal/subsetsolver.
package engine

import (
	"context"

	"github.com/archer-sat/marco/internal/mapsolver"
	"github.com/archer-sat/marco/internal/result"
	"github.com/archer-sat/marco/internal/subsetsolver"
)

// SeedSource hands out (seed, knownOptimal) pairs until exhausted —
// satisfied by internal/seedmanager's SeedManager (component G).
// knownOptimal mirrors MarcoPolo's "maxseed config produced an
// already-extremal seed" signal: when true and the seed is SAT under a
// MUS bias (or UNSAT under an MCS bias), MarcoEngine skips grow (or
// shrink) entirely.
type SeedSource interface {
	Next() (seed []int, knownOptimal bool, ok bool)
}

// shrinkFunc abstracts over internal (subsetsolver.Shrink) and external
// (shrinker.Adapter) minimization; returning ErrPreempted signals a
// peer already claimed this region.
type shrinkFunc func(seed []int, hard map[int]bool) ([]int, error)

// Emit receives one tagged result as soon as MarcoEngine decides it.
type Emit func(result.Result)

// MarcoEngine is the main enumeration loop (component E).
type MarcoEngine struct {
	cfg    Config
	m      mapsolver.Map
	cardM  mapsolver.CardinalityMap // non-nil only when cfg.SMUS
	subset *subsetsolver.SubsetSolver
	seeds  SeedSource
	shrink shrinkFunc
	emit   Emit
	stats  result.SeedStats
}

// New builds a MarcoEngine. m must be a mapsolver.CardinalityMap when
// cfg.SMUS is set (SMUS mode bounds the Map's cardinality after each
// MUS). When externalShrink is non-nil it replaces subset.Shrink as
// the minimization strategy (spec §4.4's external-shrinker contract);
// otherwise subsetsolver's incremental SAT-based shrink is used.
func New(cfg Config, m mapsolver.Map, subset *subsetsolver.SubsetSolver, seeds SeedSource, emit Emit, externalShrink shrinkFunc) (*MarcoEngine, error) {
	e := &MarcoEngine{cfg: cfg, m: m, subset: subset, seeds: seeds, emit: emit}

	if cfg.SMUS {
		cardM, ok := m.(mapsolver.CardinalityMap)
		if !ok {
			return nil, errNeedsCardinalityMap
		}
		e.cardM = cardM
	}

	if externalShrink != nil {
		e.shrink = externalShrink
	} else {
		e.shrink = func(seed []int, hard map[int]bool) ([]int, error) {
			kept, ok := subset.Shrink(seed, hard, e.stillUnexplored)
			if !ok {
				return nil, ErrPreempted
			}
			return kept, nil
		}
	}
	return e, nil
}

func (e *MarcoEngine) stillUnexplored(seed []int) bool {
	return e.m.CheckSeed(seed)
}

// Stats returns the accumulated per-seed counters (SPEC_FULL.md's
// --stats supplement).
func (e *MarcoEngine) Stats() result.SeedStats { return e.stats }

// Run drives the loop until SeedSource is exhausted, the configured
// limit is reached, or ctx is cancelled at a seed boundary — the only
// point a worker's single-threaded solver loop may suspend (spec §5).
func (e *MarcoEngine) Run(ctx context.Context) error {
	emitted := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.cfg.Limit > 0 && emitted >= e.cfg.Limit {
			return nil
		}

		seed, knownOptimal, ok := e.seeds.Next()
		if !ok {
			return nil
		}
		e.stats.SeedsDrawn++

		seed, knownOptimal = e.applyMaxSeed(seed, knownOptimal)

		sat, improved := e.subset.CheckSubset(seed, true)

		if e.cfg.MaxSeedMode == MaxSeedHalf {
			wrongSide := (sat && e.cfg.Bias == mapsolver.BiasHighMUS) ||
				(!sat && e.cfg.Bias == mapsolver.BiasLowMCS)
			if wrongSide {
				seed = e.m.MaximizeSeed(improved, maximizeDirection(e.cfg.Bias))
				e.stats.MaximizeCalls++
				knownOptimal = true
				sat, improved = e.subset.CheckSubset(seed, true)
			}
		}

		if sat {
			if err := e.onSat(improved, knownOptimal); err != nil {
				return err
			}
		} else {
			stop, err := e.onUnsat(improved, knownOptimal)
			if err != nil {
				return err
			}
			if stop {
				continue
			}
		}
		emitted++
	}
}

// applyMaxSeed implements mode never/always/solver; half is handled
// after the first check_subset call since it needs to know SAT status.
func (e *MarcoEngine) applyMaxSeed(seed []int, knownOptimal bool) ([]int, bool) {
	switch e.cfg.MaxSeedMode {
	case MaxSeedAlways:
		maximized := e.m.MaximizeSeed(seed, maximizeDirection(e.cfg.Bias))
		e.stats.MaximizeCalls++
		return maximized, true
	case MaxSeedSolver:
		return seed, true
	default:
		return seed, knownOptimal
	}
}

func (e *MarcoEngine) onSat(seed []int, knownOptimal bool) error {
	var mss []int
	if knownOptimal && e.cfg.Bias == mapsolver.BiasHighMUS {
		mss = seed
	} else {
		mss = e.subset.Grow(seed)
		e.stats.GrowSteps++
	}
	e.stats.MSSCount++
	e.emit(result.Result{Kind: result.MSS, Set: mss})
	e.m.BlockDown(mss)
	if e.cfg.BlockBoth {
		e.m.BlockUp(mss)
	}
	return nil
}

// onUnsat returns stop=true when the seed was preempted by a peer and
// must be skipped without emitting.
func (e *MarcoEngine) onUnsat(seed []int, knownOptimal bool) (bool, error) {
	var mus []int
	if knownOptimal && e.cfg.Bias == mapsolver.BiasLowMCS {
		mus = seed
	} else {
		hard := e.subset.ImpliedHard()
		kept, err := e.shrink(seed, hard)
		if err != nil {
			if err == ErrPreempted {
				e.stats.PreemptedShrink++
				return true, nil
			}
			return false, err
		}
		mus = kept
		e.stats.ShrinkSteps++
	}
	e.stats.MUSCount++
	e.emit(result.Result{Kind: result.MUS, Set: mus})
	e.m.BlockUp(mus)
	if e.cfg.BlockBoth {
		e.m.BlockDown(mus)
	}
	if e.cfg.SMUS {
		e.m.BlockDown(mus)
		e.cardM.BlockAboveSize(len(mus) - 1)
	}
	return false, nil
}
