package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archer-sat/marco/internal/cnf"
	"github.com/archer-sat/marco/internal/mapsolver"
	"github.com/archer-sat/marco/internal/result"
	"github.com/archer-sat/marco/internal/subsetsolver"
)

// s1Model is spec §8 scenario S1: (x), (-x), (y), (-y). Its MUSes are
// {1,2} and {3,4}; every 2-element subset picking one id from each pair
// is a maximal satisfiable subset.
func s1Model() *cnf.Model {
	return &cnf.Model{
		NVars:    2,
		N:        4,
		NClauses: 4,
		Clauses: []cnf.Clause{
			{1}, {-1}, {2}, {-2},
		},
		Groups: map[int][]int{1: {0}, 2: {1}, 3: {2}, 4: {3}},
	}
}

// mapSeedSource adapts a bare mapsolver.Map to the SeedSource interface
// MarcoEngine expects from SeedManager, for tests that don't need a
// peer-result queue.
type mapSeedSource struct{ m mapsolver.Map }

func (s mapSeedSource) Next() ([]int, bool, bool) {
	seed, ok := s.m.NextSeed()
	return seed, false, ok
}

// listSeedSource hands out a fixed sequence, for tests that need a
// deterministic seed regardless of what a live Map would draw next.
type listSeedSource struct {
	seeds [][]int
	i     int
}

func (s *listSeedSource) Next() ([]int, bool, bool) {
	if s.i >= len(s.seeds) {
		return nil, false, false
	}
	seed := s.seeds[s.i]
	s.i++
	return seed, false, true
}

func TestMarcoEngineEnumeratesValidMUSesAndMSSes(t *testing.T) {
	m, err := mapsolver.NewBasic(4, mapsolver.BiasNone, nil)
	require.NoError(t, err)
	subset, err := subsetsolver.New(s1Model(), m)
	require.NoError(t, err)

	var results []result.Result
	e, err := New(Config{MaxSeedMode: MaxSeedNever, Bias: mapsolver.BiasNone}, m, subset, mapSeedSource{m}, func(r result.Result) {
		results = append(results, r)
	}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))
	require.NotEmpty(t, results)

	checker, err := subsetsolver.New(s1Model(), nil)
	require.NoError(t, err)

	for _, r := range results {
		switch r.Kind {
		case result.MUS:
			sat, _ := checker.CheckSubset(r.Set, false)
			assert.False(t, sat, "MUS %v must be UNSAT", r.Set)
			for _, drop := range r.Set {
				reduced := make([]int, 0, len(r.Set)-1)
				for _, x := range r.Set {
					if x != drop {
						reduced = append(reduced, x)
					}
				}
				sat, _ := checker.CheckSubset(reduced, false)
				assert.True(t, sat, "MUS %v minus %d must be SAT", r.Set, drop)
			}
		case result.MSS:
			sat, _ := checker.CheckSubset(r.Set, false)
			assert.True(t, sat, "MSS %v must be SAT", r.Set)
			for _, add := range checker.Complement(r.Set) {
				probe := append(append([]int{}, r.Set...), add)
				sat, _ := checker.CheckSubset(probe, false)
				assert.False(t, sat, "MSS %v plus %d must be UNSAT", r.Set, add)
			}
		}
	}
}

func TestMarcoEngineRespectsLimit(t *testing.T) {
	m, err := mapsolver.NewBasic(4, mapsolver.BiasNone, nil)
	require.NoError(t, err)
	subset, err := subsetsolver.New(s1Model(), m)
	require.NoError(t, err)

	var results []result.Result
	e, err := New(Config{Limit: 1}, m, subset, mapSeedSource{m}, func(r result.Result) {
		results = append(results, r)
	}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))
	assert.Len(t, results, 1)
}

func TestMarcoEngineSmusRequiresCardinalityMap(t *testing.T) {
	m, err := mapsolver.NewBasic(4, mapsolver.BiasNone, nil)
	require.NoError(t, err)
	subset, err := subsetsolver.New(s1Model(), m)
	require.NoError(t, err)

	_, err = New(Config{SMUS: true}, m, subset, mapSeedSource{m}, func(result.Result) {}, nil)
	assert.Error(t, err)
}

func TestMarcoEngineSmusNonIncreasingCardinality(t *testing.T) {
	m, err := mapsolver.NewCardinality(4, mapsolver.BiasHighMUS, nil)
	require.NoError(t, err)
	subset, err := subsetsolver.New(s1Model(), m)
	require.NoError(t, err)

	var musSizes []int
	e, err := New(Config{MaxSeedMode: MaxSeedSolver, Bias: mapsolver.BiasHighMUS, SMUS: true}, m, subset, mapSeedSource{m}, func(r result.Result) {
		if r.Kind == result.MUS {
			musSizes = append(musSizes, len(r.Set))
		}
	}, nil)
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))
	for i := 1; i < len(musSizes); i++ {
		assert.LessOrEqual(t, musSizes[i], musSizes[i-1], "MUS sizes must be non-increasing in SMUS mode")
	}
}

func TestMarcoEnginePropagatesExternalShrinkerFailure(t *testing.T) {
	m, err := mapsolver.NewBasic(4, mapsolver.BiasNone, nil)
	require.NoError(t, err)
	subset, err := subsetsolver.New(s1Model(), m)
	require.NoError(t, err)

	boom := assert.AnError
	e, err := New(Config{}, m, subset, mapSeedSource{m}, func(result.Result) {}, func(seed []int, hard map[int]bool) ([]int, error) {
		return nil, boom
	})
	require.NoError(t, err)

	err = e.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestMarcoEngineSkipsPreemptedSeed(t *testing.T) {
	m, err := mapsolver.NewBasic(4, mapsolver.BiasNone, nil)
	require.NoError(t, err)
	subset, err := subsetsolver.New(s1Model(), m)
	require.NoError(t, err)

	// {1,2} is UNSAT (x and -x both enabled); the external shrink is
	// preempted on the only seed drawn, so no result should be emitted.
	seeds := &listSeedSource{seeds: [][]int{{1, 2}}}

	var results []result.Result
	e, err := New(Config{}, m, subset, seeds, func(r result.Result) {
		results = append(results, r)
	}, func(seed []int, hard map[int]bool) ([]int, error) {
		return nil, ErrPreempted
	})
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 1, e.Stats().PreemptedShrink)
	assert.Empty(t, results)
}
