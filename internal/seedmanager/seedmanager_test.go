package seedmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archer-sat/marco/internal/mapsolver"
	"github.com/archer-sat/marco/internal/result"
)

func TestNextPrefersInjectedQueue(t *testing.T) {
	m, err := mapsolver.NewBasic(3, mapsolver.BiasNone, nil)
	require.NoError(t, err)

	sm := New(m, nil, false)
	sm.AddSeed([]int{1, 2}, true)

	seed, knownOptimal, ok := sm.Next()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, seed)
	assert.True(t, knownOptimal)
}

func TestNextFallsBackToMapAfterQueueDrains(t *testing.T) {
	m, err := mapsolver.NewBasic(2, mapsolver.BiasNone, nil)
	require.NoError(t, err)

	sm := New(m, nil, false)
	sm.AddSeed([]int{1}, true)

	_, _, ok := sm.Next()
	require.True(t, ok)

	seed, knownOptimal, ok := sm.Next()
	require.True(t, ok)
	assert.False(t, knownOptimal)
	assert.NotNil(t, seed)
}

func TestDrainPeersAppliesBlocking(t *testing.T) {
	m, err := mapsolver.NewBasic(2, mapsolver.BiasNone, nil)
	require.NoError(t, err)

	peers := make(chan result.Result, 1)
	peers <- result.Result{Kind: result.MUS, Set: []int{1}}

	sm := New(m, peers, false)
	assert.True(t, m.CheckSeed([]int{1}))

	_, _, ok := sm.Next()
	require.True(t, ok)

	// BlockUp({1}) removes {1} and its supersets from the Map.
	assert.False(t, m.CheckSeed([]int{1}))
}

func TestCommsIgnoreDrainsWithoutApplying(t *testing.T) {
	m, err := mapsolver.NewBasic(2, mapsolver.BiasNone, nil)
	require.NoError(t, err)

	peers := make(chan result.Result, 1)
	peers <- result.Result{Kind: result.MUS, Set: []int{1}}

	sm := New(m, peers, true)
	_, _, ok := sm.Next()
	require.True(t, ok)

	assert.True(t, m.CheckSeed([]int{1}))
}

func TestNextExhaustsWhenQueueAndMapAreEmpty(t *testing.T) {
	m, err := mapsolver.NewBasic(1, mapsolver.BiasNone, nil)
	require.NoError(t, err)

	sm := New(m, nil, false)
	for {
		seed, _, ok := sm.Next()
		if !ok {
			break
		}
		m.BlockDown(seed)
	}

	_, _, ok := sm.Next()
	assert.False(t, ok)
}
