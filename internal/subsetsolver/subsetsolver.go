// Package subsetsolver implements SubsetSolver (spec §4.3): checks
// satisfiability of an arbitrary subset of the soft groups and exposes
// shrink/grow minimization. Grounded on
// original_source/MinisatSubsetSolver.py, rebuilt over internal/facade.
package subsetsolver

import (
	"sort"

	"github.com/archer-sat/marco/internal/cnf"
	"github.com/archer-sat/marco/internal/facade"
)

// ImpliesSource is the read-only capability handle spec §9's "Cyclic
// coupling" note asks for: SubsetSolver pulls implied-hard ids from the
// Map without holding a back-pointer to it. Any mapsolver.Map satisfies
// this by construction.
type ImpliesSource interface {
	Implies() []int
}

// SubsetSolver wraps a frozen CNF model behind a facade.Facade.
type SubsetSolver struct {
	f       *facade.Facade
	n       int
	vars    []facade.Lit // original-variable facade lits, 1-based
	implies ImpliesSource
}

// New builds a SubsetSolver from a parsed CNF model: the hard group is
// asserted unconditionally, every soft group is instrumented with its
// own relaxation variable.
func New(model *cnf.Model, implies ImpliesSource) (*SubsetSolver, error) {
	f := facade.New()
	vars, err := f.NewVars(model.NVars)
	if err != nil {
		return nil, err
	}
	s := &SubsetSolver{f: f, n: model.N, vars: vars, implies: implies}

	for _, idx := range model.Groups[0] {
		if err := f.AddClause(s.translate(model.Clauses[idx])...); err != nil {
			return nil, err
		}
	}
	for group := 1; group <= model.N; group++ {
		for _, idx := range model.Groups[group] {
			if err := f.AddClauseInstrumented(s.translate(model.Clauses[idx]), group); err != nil {
				return nil, err
			}
		}
		// Groups with no clauses (degenerate, but legal) still need a
		// relaxation variable allocated so solve_subset's assumption set
		// is complete.
		f.RelaxationVar(group)
	}
	return s, nil
}

func (s *SubsetSolver) translate(c cnf.Clause) []facade.Lit {
	out := make([]facade.Lit, len(c))
	for i, l := range c {
		v := s.vars[l.Var()-1]
		if l < 0 {
			v = v.Not()
		}
		out[i] = v
	}
	return out
}

// N returns the number of soft groups.
func (s *SubsetSolver) N() int { return s.n }

// Seed reseeds the solver's own facade randomization source, paired
// with mapsolver.Map.Seed (spec §4.1 set_rnd_seed). The facade's SAT
// search does not draw from that source, so CheckSubset, Shrink and Grow
// give the same results whatever value is set.
func (s *SubsetSolver) Seed(seed uint64) {
	s.f.SetRndSeed(seed)
}

// Complement returns {1..n} \ seed.
func (s *SubsetSolver) Complement(seed []int) []int {
	in := make(map[int]bool, len(seed))
	for _, i := range seed {
		in[i] = true
	}
	out := make([]int, 0, s.n-len(seed))
	for i := 1; i <= s.n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

// CheckSubset checks SAT of the given subset. Per SPEC_FULL.md's
// resolution of spec §9's open question, CheckSubset always returns the
// seed appropriate to improve's setting: unchanged when improve is
// false, the solver's sat_subset/unsat_core when true.
func (s *SubsetSolver) CheckSubset(seed []int, improve bool) (bool, []int) {
	sat := s.f.SolveSubset(seed)
	if !improve {
		return sat, seed
	}
	if sat {
		return true, s.f.SatSubset()
	}
	return false, s.f.UnsatCore()
}

// ImpliedHard returns the soft ids the Map guarantees appear positively
// in every remaining model — spec §4.3's "implied-hard optimization":
// these are skipped during shrink since they're in every remaining MUS.
func (s *SubsetSolver) ImpliedHard() map[int]bool {
	hard := map[int]bool{}
	if s.implies == nil {
		return hard
	}
	for _, id := range s.implies.Implies() {
		hard[id] = true
	}
	return hard
}

// SolveFree checks satisfiability with no group assumed either way,
// letting the solver choose freely which relaxation variables to set —
// used by McsOnlyEngine (component F), whose at-most bound (BoundDisabled)
// does the real constraining; forcing every group's assumption the way
// CheckSubset does would defeat the bound. Grounded on
// MCSEnumerator.py's bare `solver.solve()` / `get_model_trues` pairing.
func (s *SubsetSolver) SolveFree() (bool, []int) {
	if !s.f.Solve() {
		return false, nil
	}
	return true, s.f.SatSubset()
}

// BlockDown adds ⋁_{i∉seed} rᵢ over this solver's own relaxation
// variables, excluding seed and all its subsets from future SolveFree
// calls. McsOnlyEngine reuses the instrumented solver itself as its
// tracking map, exactly as MCSEnumerator.py's block_down operates
// directly on the selector variables of the same solver used to check
// satisfiability.
func (s *SubsetSolver) BlockDown(seed []int) {
	comp := s.Complement(seed)
	if len(comp) == 0 {
		return
	}
	lits := make([]facade.Lit, len(comp))
	for i, id := range comp {
		lits[i] = s.f.RelaxationVar(id)
	}
	_ = s.f.AddClause(lits...)
}

// BlockUp adds ⋁_{i∈seed} ¬rᵢ, excluding seed and all its supersets.
func (s *SubsetSolver) BlockUp(seed []int) {
	if len(seed) == 0 {
		return
	}
	lits := make([]facade.Lit, len(seed))
	for i, id := range seed {
		lits[i] = s.f.RelaxationVar(id).Not()
	}
	_ = s.f.AddClause(lits...)
}

// BoundDisabled adds "at most k of ids are disabled" (at least
// len(ids)-k remain enabled), the cardinality bound McsOnlyEngine
// reapplies with a growing k each enumeration round (grounded on
// MCSEnumerator.py's add_atmost over negated selector variables).
func (s *SubsetSolver) BoundDisabled(ids []int, k int) error {
	lits := make([]facade.Lit, len(ids))
	for i, id := range ids {
		lits[i] = s.f.RelaxationVar(id).Not()
	}
	return s.f.AddAtMost(lits, k)
}

func sortedCopy(seed []int) []int {
	out := append([]int{}, seed...)
	sort.Ints(out)
	return out
}
