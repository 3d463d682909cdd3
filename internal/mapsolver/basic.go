package mapsolver

import "io"

// Basic is the Map variant whose next_seed is a plain SAT call with no
// assumptions — grounded on original_source/mapsolvers.py's
// MinisatMapSolver.
type Basic struct {
	*base
}

var _ Map = (*Basic)(nil)

// NewBasic constructs a Basic Map over n soft groups.
func NewBasic(n int, bias Bias, dump io.Writer) (*Basic, error) {
	b, err := newBase(n, bias, dump)
	if err != nil {
		return nil, err
	}
	return &Basic{base: b}, nil
}

// NextSeed solves with no assumptions and returns the set of true map
// variables, or (nil, false) once the Map's formula is unsatisfiable
// (the lattice is exhausted).
func (m *Basic) NextSeed() ([]int, bool) {
	if !m.f.Solve() {
		return nil, false
	}
	return m.seedFromModel(), true
}
