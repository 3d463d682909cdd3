package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveUnitClause(t *testing.T) {
	f := New()
	a, err := f.NewVar()
	require.NoError(t, err)

	require.NoError(t, f.AddClause(a))
	assert.True(t, f.Solve())
	assert.True(t, f.g.Value(a))
}

func TestSolveConflict(t *testing.T) {
	f := New()
	a, err := f.NewVar()
	require.NoError(t, err)

	require.NoError(t, f.AddClause(a))
	require.NoError(t, f.AddClause(a.Not()))
	assert.False(t, f.Solve())
}

func TestInstrumentedClauseToggle(t *testing.T) {
	f := New()
	x, err := f.NewVar()
	require.NoError(t, err)

	// group 1: (x)
	require.NoError(t, f.AddClauseInstrumented([]Lit{x}, 1))
	// group 2: (-x)
	require.NoError(t, f.AddClauseInstrumented([]Lit{x.Not()}, 2))

	// both disabled: trivially SAT.
	assert.True(t, f.SolveSubset(nil))
	// group 1 alone forces x true.
	assert.True(t, f.SolveSubset([]int{1}))
	assert.True(t, f.g.Value(x))
	// both enabled: contradiction.
	assert.False(t, f.SolveSubset([]int{1, 2}))
}

func TestAddAtMost(t *testing.T) {
	f := New()
	vars, err := f.NewVars(3)
	require.NoError(t, err)
	for i, v := range vars {
		require.NoError(t, f.AddClauseInstrumented([]Lit{v}, i+1))
	}

	require.NoError(t, f.AddAtMost(vars, 1))
	assert.True(t, f.SolveSubset([]int{1}))
	assert.False(t, f.SolveSubset([]int{1, 2}))
}

func TestImpliesFindsForcedGroups(t *testing.T) {
	f := New()
	x, err := f.NewVar()
	require.NoError(t, err)
	require.NoError(t, f.AddClauseInstrumented([]Lit{x}, 1))

	forced := f.Implies()
	assert.Contains(t, forced, 1)
}
