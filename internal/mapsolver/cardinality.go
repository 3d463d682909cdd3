package mapsolver

import (
	"io"

	"github.com/archer-sat/marco/internal/facade"
)

// Cardinality is the Map variant whose next_seed always returns a
// maximum- (HighMUS bias) or minimum- (LowMCS bias) cardinality model,
// walking a bound k toward the opposite pole on failure — grounded on
// original_source/mapsolvers.py's MinicardMapSolver, rebuilt over
// facade.Cardinality instead of Minicard's native AtMost assumption
// trick (spec §4.2: "solves with an assumption pattern that implements
// 'exactly k of n are chosen'; on failure, walks k toward the opposite
// pole until SAT or exhausted").
type Cardinality struct {
	*base
	card *facade.Cardinality
	k    int
}

var _ CardinalityMap = (*Cardinality)(nil)

// NewCardinality constructs a Cardinality Map over n soft groups. bias
// is normally BiasHighMUS or BiasLowMCS. BiasNone is not rejected: it
// starts the bound at 0 and walks it upward, exactly like BiasLowMCS.
func NewCardinality(n int, bias Bias, dump io.Writer) (*Cardinality, error) {
	b, err := newBase(n, bias, dump)
	if err != nil {
		return nil, err
	}
	card := b.f.NewCardinality(b.vars)
	k := 0
	if bias == BiasHighMUS {
		k = n
	}
	return &Cardinality{base: b, card: card, k: k}, nil
}

func (m *Cardinality) solveWithBound(k int) bool {
	return m.f.Solve(m.card.Leq(k), m.card.Geq(k))
}

// NextSeed returns the current-bound extremal model, walking the bound
// toward the opposite pole when the current one is unsatisfiable, the
// same loop as MinicardMapSolver.next_seed.
func (m *Cardinality) NextSeed() ([]int, bool) {
	if m.solveWithBound(m.k) {
		return m.seedFromModel(), true
	}

	// No model of any size left: the lattice is exhausted.
	if !m.f.Solve() {
		return nil, false
	}
	if m.bias == BiasHighMUS {
		m.k--
	} else {
		m.k++
	}

	for !m.solveWithBound(m.k) {
		if m.bias == BiasHighMUS {
			m.k--
		} else {
			m.k++
		}
	}
	return m.seedFromModel(), true
}

// BlockAboveSize forbids future models with more than k true map
// variables, tightening the bound if it would otherwise exceed k (used
// by SMUS mode after each UNSAT emission, spec §4.5).
func (m *Cardinality) BlockAboveSize(k int) {
	leq := m.card.Leq(k)
	_ = m.f.AddClause(leq)
	if m.k > k {
		m.k = k
	}
}

// BlockBelowSize forbids future models with fewer than k true map
// variables.
func (m *Cardinality) BlockBelowSize(k int) {
	geq := m.card.Geq(k)
	_ = m.f.AddClause(geq)
	if m.bias != BiasHighMUS && m.k < k {
		m.k = k
	}
}

// CheckSeed overrides base.CheckSeed: the cardinality variant's formula
// includes the bound-setting Leq/Geq assumptions baked into next_seed,
// so checking whether a seed is still unexplored must neutralize those
// auxiliary constraints first (spec §4.2: "must neutralize the internal
// bound by assuming the bound-setting auxiliary variables"). Since our
// bounds are applied as per-solve assumptions rather than permanent
// clauses (unlike MinicardMapSolver's bound-setting variables), the
// Map's *permanent* formula already excludes them — base.CheckSeed's
// plain CheckComplete is therefore already bound-free and needs no
// override in this port.
func (m *Cardinality) CheckSeed(seed []int) bool {
	return m.base.CheckSeed(seed)
}
