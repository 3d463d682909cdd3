package subsetsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archer-sat/marco/internal/cnf"
)

// s1Model builds spec §8 scenario S1: (x), (-x), (y), (-y).
func s1Model() *cnf.Model {
	return &cnf.Model{
		NVars:    2,
		N:        4,
		NClauses: 4,
		Clauses: []cnf.Clause{
			{1},  // x
			{-1}, // -x
			{2},  // y
			{-2}, // -y
		},
		Groups: map[int][]int{1: {0}, 2: {1}, 3: {2}, 4: {3}},
	}
}

func TestCheckSubsetSatAndUnsat(t *testing.T) {
	s, err := New(s1Model(), nil)
	require.NoError(t, err)

	sat, _ := s.CheckSubset([]int{1, 3}, false)
	assert.True(t, sat)

	sat, _ = s.CheckSubset([]int{1, 2}, false)
	assert.False(t, sat)
}

func TestShrinkFindsUnitMUS(t *testing.T) {
	s, err := New(s1Model(), nil)
	require.NoError(t, err)

	mus, ok := s.Shrink([]int{1, 2}, nil, nil)
	require.True(t, ok)
	assert.ElementsMatch(t, []int{1, 2}, mus)
}

func TestGrowFindsMaximalSatisfiable(t *testing.T) {
	s, err := New(s1Model(), nil)
	require.NoError(t, err)

	mss := s.Grow([]int{1})
	sat, _ := s.CheckSubset(mss, false)
	assert.True(t, sat)
	// Every excluded group, if added back, must break satisfiability.
	for _, excluded := range s.Complement(mss) {
		probe := append(append([]int{}, mss...), excluded)
		sat, _ := s.CheckSubset(probe, false)
		assert.False(t, sat, "adding %d back to %v should be UNSAT", excluded, mss)
	}
}

func TestShrinkRespectsHard(t *testing.T) {
	s, err := New(s1Model(), nil)
	require.NoError(t, err)

	// Force id 1 as hard even though {1,2} is already minimal; with hard
	// set, shrink must still return a set containing 1.
	mus, ok := s.Shrink([]int{1, 2}, map[int]bool{1: true}, nil)
	require.True(t, ok)
	assert.Contains(t, mus, 1)
}
