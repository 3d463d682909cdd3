package mapsolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainAll(t *testing.T, m Map) [][]int {
	t.Helper()
	var seeds [][]int
	for {
		seed, ok := m.NextSeed()
		if !ok {
			return seeds
		}
		seeds = append(seeds, seed)
		m.BlockDown(seed)
	}
}

func TestBasicNextSeedExhausts(t *testing.T) {
	m, err := NewBasic(2, BiasNone, nil)
	require.NoError(t, err)

	seeds := drainAll(t, m)
	// Every subset of {1,2} blocked down from {} covers the whole
	// lattice in one shot since BlockDown({}) blocks everything; this
	// test instead exercises that at least one seed is returned before
	// exhaustion, and that next_seed eventually reports none.
	assert.NotEmpty(t, seeds)

	_, ok := m.NextSeed()
	assert.False(t, ok)
}

func TestBlockUpRemovesSupersets(t *testing.T) {
	m, err := NewBasic(3, BiasNone, nil)
	require.NoError(t, err)

	m.BlockUp([]int{1})
	seed, ok := m.NextSeed()
	require.True(t, ok)
	assert.NotContains(t, seed, 1)
}

func TestCardinalityHighBiasPrefersMaximum(t *testing.T) {
	m, err := NewCardinality(3, BiasHighMUS, nil)
	require.NoError(t, err)

	seed, ok := m.NextSeed()
	require.True(t, ok)
	assert.Len(t, seed, 3)
}

func TestCardinalityLowBiasPrefersMinimum(t *testing.T) {
	m, err := NewCardinality(3, BiasLowMCS, nil)
	require.NoError(t, err)

	seed, ok := m.NextSeed()
	require.True(t, ok)
	assert.Len(t, seed, 0)
}

func TestCheckSeedReflectsBlocking(t *testing.T) {
	m, err := NewBasic(2, BiasNone, nil)
	require.NoError(t, err)

	assert.True(t, m.CheckSeed([]int{1}))
	m.BlockUp([]int{1})
	assert.False(t, m.CheckSeed([]int{1}))
}
