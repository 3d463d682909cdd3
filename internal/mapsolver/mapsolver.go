// Package mapsolver implements MapSolver (spec §4.2): tracks which
// subsets of {1..n} remain unexplored and hands out seeds. Grounded on
// original_source/mapsolvers.py's MapSolver base class and
// MinisatMapSolver/MinicardMapSolver subclasses, rebuilt over
// internal/facade instead of pyminisolvers.
package mapsolver

import (
	"fmt"
	"io"
	"sort"

	"github.com/archer-sat/marco/internal/facade"
)

// Bias selects which side of the lattice the Cardinality variant's
// next_seed favors, and which way MarcoEngine drives MaximizeSeed. The
// Basic variant's NextSeed does not consult it: its map variables carry
// no bias polarity, so it returns whatever model the solver finds.
type Bias int

const (
	// BiasNone draws seeds with no polarity preference.
	BiasNone Bias = iota
	// BiasHighMUS favors maximal (inclusion-high) seeds, appropriate when
	// the caller mostly wants MUSes.
	BiasHighMUS
	// BiasLowMCS favors minimal (inclusion-low) seeds, appropriate when
	// the caller mostly wants MCSes.
	BiasLowMCS
)

// Direction parametrizes MaximizeSeed.
type Direction int

const (
	Down Direction = iota
	Up
)

// Map is the polymorphic interface spec §9 asks for: operations shared by
// the Basic and Cardinality variants.
type Map interface {
	NextSeed() ([]int, bool)
	MaximizeSeed(seed []int, direction Direction) []int
	BlockDown(seed []int)
	BlockUp(seed []int)
	CheckSeed(seed []int) bool
	FindAbove(seed []int) ([]int, bool)
	Implies() []int
	Seed(seed uint64)
}

// CardinalityMap is the refinement interface for operations that only
// make sense with a native cardinality constraint behind next_seed (spec
// §9 "Cardinality-only ops").
type CardinalityMap interface {
	Map
	BlockAboveSize(k int)
	BlockBelowSize(k int)
}

// New constructs the Map variant requested by config: a Cardinality Map
// when useCardinality is set (needed for --smus, which bounds seed
// cardinality after every MUS, and for -M's extremal seeds), otherwise
// the cheaper Basic Map.
func New(n int, bias Bias, useCardinality bool, dump io.Writer) (Map, error) {
	if useCardinality {
		return NewCardinality(n, bias, dump)
	}
	return NewBasic(n, bias, dump)
}

// base holds the state and operations common to every Map variant —
// mirrors original_source/mapsolvers.py's MapSolver base class.
type base struct {
	n    int
	bias Bias
	f    *facade.Facade
	vars []facade.Lit // 1-based: vars[i-1] is the map variable m_i
	dump io.Writer
}

func newBase(n int, bias Bias, dump io.Writer) (*base, error) {
	f := facade.New()
	vars, err := f.NewVars(n)
	if err != nil {
		return nil, err
	}
	return &base{n: n, bias: bias, f: f, vars: vars, dump: dump}, nil
}

func (b *base) litOf(id int) facade.Lit {
	return b.vars[id-1]
}

func (b *base) complement(seed []int) []int {
	in := make(map[int]bool, len(seed))
	for _, i := range seed {
		in[i] = true
	}
	out := make([]int, 0, b.n-len(seed))
	for i := 1; i <= b.n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

func (b *base) seedFromModel() []int {
	var out []int
	for i := 1; i <= b.n; i++ {
		if b.f.Underlying().Value(b.litOf(i)) {
			out = append(out, i)
		}
	}
	return out
}

// BlockDown adds ⋁_{i∉S} mᵢ, removing S and all its subsets.
func (b *base) BlockDown(seed []int) {
	comp := b.complement(seed)
	b.addClause(comp, false)
}

// BlockUp adds ⋁_{i∈S} ¬mᵢ, removing S and all its supersets.
func (b *base) BlockUp(seed []int) {
	b.addClause(seed, true)
}

func (b *base) addClause(ids []int, negate bool) {
	lits := make([]facade.Lit, len(ids))
	for i, id := range ids {
		l := b.litOf(id)
		if negate {
			l = l.Not()
		}
		lits[i] = l
	}
	if len(lits) == 0 {
		// Empty clause: the Map's formula is now unsatisfiable, i.e. the
		// lattice is fully explored (e.g. blocking down the empty seed).
		// A clause over no variables can't be asserted through AddClause
		// (which requires >=1 literal), so fall back to an
		// always-unsatisfiable pair of unit clauses on the first map
		// variable when n>0.
		if b.n > 0 {
			v := b.vars[0]
			_ = b.f.AddClause(v)
			_ = b.f.AddClause(v.Not())
		}
		return
	}
	b.writeDump(lits)
	_ = b.f.AddClause(lits...)
}

// CheckSeed reports whether seed, read as the complete assignment with
// m_i true for i in seed and false for every other id, still satisfies
// the Map's formula — spec §4.2 check_seed, used by the coordinator for
// dedup.
func (b *base) CheckSeed(seed []int) bool {
	lits := make([]facade.Lit, 0, b.n)
	for _, id := range seed {
		lits = append(lits, b.litOf(id))
	}
	for _, id := range b.complement(seed) {
		lits = append(lits, b.litOf(id).Not())
	}
	return b.f.CheckComplete(lits)
}

// FindAbove looks for an unexplored strict superset of seed, using a
// guarded "at least one more id" clause retired after the solve, as in
// MaximizeSeed.
func (b *base) FindAbove(seed []int) ([]int, bool) {
	comp := b.complement(seed)
	guard, err := b.f.NewVar()
	if len(comp) == 0 || err != nil {
		return nil, false
	}
	lits := []facade.Lit{guard.Not()}
	for _, id := range comp {
		lits = append(lits, b.litOf(id))
	}
	_ = b.f.AddClause(lits...)
	assumptions := []facade.Lit{guard}
	for _, id := range seed {
		assumptions = append(assumptions, b.litOf(id))
	}
	found := b.f.Solve(assumptions...)
	_ = b.f.AddClause(guard.Not())
	if !found {
		return nil, false
	}
	return b.seedFromModel(), true
}

// Implies returns the ids whose map variables unit propagation forces
// true (spec §4.2, used to propagate Map-level hard constraints to the
// shrinker), through the same Test/Untest probe as facade.Implies.
func (b *base) Implies() []int {
	g := b.f.Underlying()
	outcome, lits := g.Test(nil)
	defer g.Untest()
	if outcome == facade.Unsatisfiable {
		return nil
	}
	var out []int
	for i := 1; i <= b.n; i++ {
		for _, l := range lits {
			if l == b.litOf(i) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// Seed reseeds the Map's own facade randomization source (spec §4.1's
// set_rnd_seed, threaded through per worker). The facade's SAT search
// does not draw from that source, so the seeds NextSeed returns are the
// same whatever value is set.
func (b *base) Seed(seed uint64) {
	b.f.SetRndSeed(seed)
}

// MaximizeSeed extends seed toward direction until no further model can
// add (Up) or remove (Down) a constraint, via a temporary "at least one
// more" clause — the same trick as mapsolvers.py's maximize_seed: a fresh
// guard variable gates a throwaway clause that is retracted by asserting
// its negation once the search terminates.
func (b *base) MaximizeSeed(seed []int, direction Direction) []int {
	current := append([]int{}, seed...)
	sort.Ints(current)
	for {
		comp := b.complement(current)
		guard, err := b.f.NewVar()
		if err != nil {
			return current
		}

		var haveNew bool
		if direction == Up {
			lits := make([]facade.Lit, 0, len(comp)+1)
			lits = append(lits, guard.Not())
			for _, id := range comp {
				lits = append(lits, b.litOf(id))
			}
			_ = b.f.AddClause(lits...)

			assumptions := make([]facade.Lit, 0, len(current)+1)
			assumptions = append(assumptions, guard)
			for _, id := range current {
				assumptions = append(assumptions, b.litOf(id))
			}
			haveNew = b.f.Solve(assumptions...)
		} else {
			lits := make([]facade.Lit, 0, len(current)+1)
			lits = append(lits, guard.Not())
			for _, id := range current {
				lits = append(lits, b.litOf(id).Not())
			}
			_ = b.f.AddClause(lits...)

			assumptions := make([]facade.Lit, 0, len(comp)+1)
			assumptions = append(assumptions, guard)
			for _, id := range comp {
				assumptions = append(assumptions, b.litOf(id).Not())
			}
			haveNew = b.f.Solve(assumptions...)
		}
		// Retire the guard permanently so the temporary clause never
		// fires again.
		_ = b.f.AddClause(guard.Not())

		if !haveNew {
			return current
		}
		current = b.seedFromModel()
	}
}

// writeDump appends a clause to the Map's dump sink, if one was supplied
// at construction (spec §6.5 --dump-map), grounded on mapsolvers.py's
// MapSolver.add_clause dump hook.
func (b *base) writeDump(lits []facade.Lit) {
	if b.dump == nil {
		return
	}
	for _, l := range lits {
		fmt.Fprintf(b.dump, "%d ", l.Dimacs())
	}
	fmt.Fprint(b.dump, "0\n")
}
