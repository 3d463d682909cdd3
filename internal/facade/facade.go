// Package facade implements SatSolverFacade (spec §4.1): a thin,
// instrumentable wrapper over a CDCL SAT solver with cardinality support.
// It is grounded on the teacher's resolver/solver package, which wraps
// the same underlying library (github.com/go-air/gini) behind a
// lit-allocating AIG (logic.C) that is flushed into the solver
// incrementally — the same discipline litMapping uses via ToCnf/CnfSince.
package facade

import (
	"math/rand"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

const (
	// Outcome codes mirror gini's Solve()/Test() convention, also used
	// verbatim by the teacher's solver package.
	Satisfiable   = 1
	Unsatisfiable = -1
	Unknown       = 0
)

// Lit aliases gini's literal type so callers outside this package rarely
// need to import z directly.
type Lit = z.Lit

// Facade wraps a gini instance plus the AIG used to allocate variables and
// assemble clauses before flushing them into the solver.
type Facade struct {
	g inter.S
	c *logic.C

	// flushed tracks, per logic.C node, whether it has already been
	// taught to g — the same "marks" idea as litMapping.CardinalityConstrainer,
	// generalized to every clause add so AddClause/AddClauseInstrumented
	// can be called incrementally rather than once at setup.
	flushed []int8

	// groupRelax maps a soft group id to its relaxation variable r_i
	// (spec §3: "clause body ∨ ¬rᵢ"), allocated lazily on first use.
	groupRelax map[int]z.Lit
	groupOrder []int

	finalized bool
	rnd       *rand.Rand
}

// New returns a Facade ready to accept variables and clauses.
func New() *Facade {
	return &Facade{
		g:          gini.New(),
		c:          logic.NewCCap(64),
		groupRelax: map[int]z.Lit{},
		rnd:        rand.New(rand.NewSource(1)),
	}
}

// NewVar allocates a fresh variable and returns its positive literal. The
// optional defaultPolarity is accepted and ignored: gini doesn't expose
// per-variable polarity hints through the AIG layer, and the facade
// neither records the hint nor passes it to the solver.
func (f *Facade) NewVar(defaultPolarity ...bool) (z.Lit, error) {
	if f.finalized {
		return z.LitNull, ErrInvalidState
	}
	m := f.c.Lit()
	f.growFlushed()
	return m, nil
}

// NewVars bulk-allocates k fresh variables.
func (f *Facade) NewVars(k int, defaultPolarity ...bool) ([]z.Lit, error) {
	out := make([]z.Lit, 0, k)
	for i := 0; i < k; i++ {
		m, err := f.NewVar(defaultPolarity...)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *Facade) growFlushed() {
	for len(f.flushed) < f.c.Len() {
		f.flushed = append(f.flushed, 0)
	}
}

// flush teaches every AIG node produced since the last flush to the
// underlying solver, mirroring litMapping's CnfSince discipline.
func (f *Facade) flush(root z.Lit) {
	f.growFlushed()
	f.flushed, _ = f.c.CnfSince(f.g.(inter.Adder), f.flushed, root)
}

// AddClause adds a permanent disjunction of literals.
func (f *Facade) AddClause(lits ...z.Lit) error {
	if f.finalized {
		return ErrInvalidState
	}
	if len(lits) == 0 {
		return errors.New("facade: empty clause")
	}
	m := lits[0]
	for _, l := range lits[1:] {
		m = f.c.Or(m, l)
	}
	f.flush(m)
	f.g.Add(m)
	f.g.Add(z.LitNull)
	return nil
}

// AddClauseInstrumented adds a clause extended with ¬r_groupID (spec
// §4.1), allocating the relaxation variable for groupID on first use.
func (f *Facade) AddClauseInstrumented(lits []z.Lit, groupID int) error {
	if f.finalized {
		return ErrInvalidState
	}
	r, ok := f.groupRelax[groupID]
	if !ok {
		r = f.c.Lit()
		f.growFlushed()
		f.groupRelax[groupID] = r
		f.groupOrder = append(f.groupOrder, groupID)
	}
	full := append(append([]z.Lit{}, lits...), r.Not())
	return f.AddClause(full...)
}

// RelaxationVar returns the relaxation variable for a soft group,
// allocating it if this is the first reference (so callers may assume a
// group is enabled before any of its clauses have been added).
func (f *Facade) RelaxationVar(groupID int) z.Lit {
	if r, ok := f.groupRelax[groupID]; ok {
		return r
	}
	r := f.c.Lit()
	f.growFlushed()
	f.groupRelax[groupID] = r
	f.groupOrder = append(f.groupOrder, groupID)
	return r
}

// AddAtMost adds a cardinality constraint: at most k of lits may be true.
// Built the same way as litMapping.CardinalityConstrainer — a sorting
// network (logic.C.CardSort) whose "at most k" output literal is asserted
// as a permanent unit clause.
func (f *Facade) AddAtMost(lits []z.Lit, k int) error {
	if f.finalized {
		return ErrInvalidState
	}
	if k < 0 {
		return errors.Errorf("facade: invalid cardinality bound %d", k)
	}
	cs := f.c.CardSort(lits)
	leq := cs.Leq(k)
	f.flush(leq)
	f.g.Add(leq)
	f.g.Add(z.LitNull)
	return nil
}

// Cardinality is a handle on a sorting network over a fixed set of
// literals, letting a caller assume different "at most k" / "at least k"
// bounds across repeated solves without rebuilding the network each time
// — the same CardSort-reuse idea as litMapping.CardinalityConstrainer,
// generalized to assumption-time bounds instead of one permanent bound.
type Cardinality struct {
	f  *Facade
	cs *logic.CardSort
}

// NewCardinality builds a sorting network over lits.
func (f *Facade) NewCardinality(lits []z.Lit) *Cardinality {
	return &Cardinality{f: f, cs: f.c.CardSort(lits)}
}

// N returns the number of literals the network sorts.
func (c *Cardinality) N() int { return c.cs.N() }

// Leq returns (and flushes into the solver) the literal that is true iff
// at most k of the network's literals are true.
func (c *Cardinality) Leq(k int) z.Lit {
	m := c.cs.Leq(k)
	c.f.flush(m)
	return m
}

// Geq returns (and flushes into the solver) the literal that is true iff
// at least k of the network's literals are true.
func (c *Cardinality) Geq(k int) z.Lit {
	m := c.cs.Geq(k)
	c.f.flush(m)
	return m
}

// Solve checks satisfiability under the given assumptions.
func (f *Facade) Solve(assumptions ...z.Lit) bool {
	if len(assumptions) > 0 {
		f.g.Assume(assumptions...)
	}
	return f.g.Solve() == Satisfiable
}

// SolveSubset is sugar for Solve assuming r_i for i in softIDs and ¬r_i
// for every other known soft group.
func (f *Facade) SolveSubset(softIDs []int) bool {
	return f.Solve(f.subsetAssumptions(softIDs)...)
}

func (f *Facade) subsetAssumptions(softIDs []int) []z.Lit {
	want := make(map[int]bool, len(softIDs))
	for _, id := range softIDs {
		want[id] = true
	}
	assumptions := make([]z.Lit, 0, len(f.groupOrder))
	for _, id := range f.groupOrder {
		r := f.groupRelax[id]
		if want[id] {
			assumptions = append(assumptions, r)
		} else {
			assumptions = append(assumptions, r.Not())
		}
	}
	return assumptions
}

// ModelTrues returns, in ascending order, every group id in ids whose
// relaxation variable is true in the last model.
func (f *Facade) ModelTrues(ids []int) []int {
	var out []int
	for _, id := range ids {
		if r, ok := f.groupRelax[id]; ok && f.g.Value(r) {
			out = append(out, id)
		}
	}
	return out
}

// UnsatCore returns the soft group ids whose relaxation assumptions were
// part of the conflict driving the last UNSAT result.
func (f *Facade) UnsatCore() []int {
	whys := f.g.(inter.Assumable).Why(nil)
	var out []int
	for _, m := range whys {
		for _, id := range f.groupOrder {
			if f.groupRelax[id] == m.Not() || f.groupRelax[id] == m {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// SatSubset returns every known soft group id true in the last SAT model
// (may exceed the ids that were assumed).
func (f *Facade) SatSubset() []int {
	return f.ModelTrues(f.groupOrder)
}

// Implies returns, among the known soft groups, those forced positive by
// unit propagation under the given assumptions (spec §4.1 `implies`) —
// implemented with gini's Test/Untest incremental push-pop, the same
// mechanism the teacher's solve.go uses to probe forced literals before
// committing to a branch.
func (f *Facade) Implies(assumptions ...z.Lit) []int {
	if len(assumptions) > 0 {
		f.g.Assume(assumptions...)
	}
	outcome, lits := f.g.Test(nil)
	defer f.g.Untest()
	if outcome == Unsatisfiable {
		return nil
	}
	set := make(map[z.Lit]bool, len(lits))
	for _, l := range lits {
		set[l] = true
	}
	var out []int
	for _, id := range f.groupOrder {
		if set[f.groupRelax[id]] {
			out = append(out, id)
		}
	}
	return out
}

// CheckComplete reports whether there is a model making every literal in
// positiveLits true, without otherwise constraining the search — used by
// the Map solver for dedup (spec §4.2 check_seed).
func (f *Facade) CheckComplete(positiveLits []z.Lit) bool {
	return f.Solve(positiveLits...)
}

// SetRndSeed replaces the facade's own random source (returned by Rand)
// with one seeded from seed. The underlying CDCL search does not draw
// from it.
func (f *Facade) SetRndSeed(seed uint64) {
	f.rnd = rand.New(rand.NewSource(int64(seed)))
}

// SetRndInitAct and SetRndPol are accepted for interface parity with
// spec §4.1's randomization controls; gini's AIG-level variable
// allocation has no per-variable activity/polarity hook exposed at this
// layer, so both are no-ops.
func (f *Facade) SetRndInitAct(bool) {}
func (f *Facade) SetRndPol(bool)     {}

// Rand exposes the facade's seeded random source.
func (f *Facade) Rand() *rand.Rand { return f.rnd }

// Underlying returns the wrapped solver for callers (mapsolver,
// subsetsolver) that need direct access to Assume/Test/Untest/Value for
// operations the facade doesn't itself generalize.
func (f *Facade) Underlying() inter.S { return f.g }

// Finalize marks the facade closed; subsequent operations fail with
// ErrInvalidState.
func (f *Facade) Finalize() { f.finalized = true }
