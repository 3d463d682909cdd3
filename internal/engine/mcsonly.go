package engine

import (
	"context"

	"github.com/archer-sat/marco/internal/cnf"
	"github.com/archer-sat/marco/internal/result"
	"github.com/archer-sat/marco/internal/subsetsolver"
)

// McsOnlyEngine is a dedicated CAMUS-style MCS-only enumerator
// (component F): bound the number of disabled groups (over all n ids)
// by k, enumerate every model at that bound, then advance k. Outputs
// only MSS results. Grounded on original_source/MCSEnumerator.py,
// rebuilt over subsetsolver.SubsetSolver instead of a bespoke selector
// encoding — see that file's setup_solver/block_down/block_up/
// add_atmost, whose selector variables play exactly the role of our
// relaxation variables.
type McsOnlyEngine struct {
	model *cnf.Model
	ids   []int
	emit  Emit
	stats result.SeedStats

	// blkDown/blkUp accumulate every MSS/MUS found so every freshly
	// rebuilt solver (outer termination check, or a new k's inner
	// solver) replays the same history MCSEnumerator.py's self.solver
	// and self.instrumented_solver share.
	blkDown [][]int
	blkUp   [][]int
}

// NewMcsOnlyEngine builds an enumerator over model's n soft groups.
func NewMcsOnlyEngine(model *cnf.Model, emit Emit) *McsOnlyEngine {
	ids := make([]int, model.N)
	for i := range ids {
		ids[i] = i + 1
	}
	return &McsOnlyEngine{model: model, ids: ids, emit: emit}
}

// Stats returns the accumulated counters.
func (e *McsOnlyEngine) Stats() result.SeedStats { return e.stats }

func (e *McsOnlyEngine) freshSolver() (*subsetsolver.SubsetSolver, error) {
	s, err := subsetsolver.New(e.model, nil)
	if err != nil {
		return nil, err
	}
	for _, seed := range e.blkDown {
		s.BlockDown(seed)
	}
	for _, seed := range e.blkUp {
		s.BlockUp(seed)
	}
	return s, nil
}

// outerSat tests whether any selector assignment remains consistent
// with the blocking history recorded so far — since the underlying
// hard/soft clauses are always trivially satisfiable by disabling every
// group, this reduces to "is the accumulated blocking history itself
// still satisfiable", exactly MCSEnumerator.py's `self.solver.solve()`.
func (e *McsOnlyEngine) outerSat() (bool, error) {
	s, err := e.freshSolver()
	if err != nil {
		return false, err
	}
	sat, _ := s.SolveFree()
	return sat, nil
}

// Run enumerates every MCS (via its complementary MSS) in increasing
// order of correction size, terminating when the blocking history
// exhausts the lattice.
func (e *McsOnlyEngine) Run(ctx context.Context) error {
	k := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		sat, err := e.outerSat()
		if err != nil {
			return err
		}
		if !sat {
			return nil
		}

		inner, err := e.freshSolver()
		if err != nil {
			return err
		}
		if err := inner.BoundDisabled(e.ids, k); err != nil {
			return err
		}

		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			sat, mss := inner.SolveFree()
			if !sat {
				break
			}
			e.stats.MSSCount++
			e.emit(result.Result{Kind: result.MSS, Set: mss})
			e.blkDown = append(e.blkDown, mss)
			inner.BlockDown(mss)
		}
		k++
	}
}
