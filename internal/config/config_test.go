package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archer-sat/marco/internal/engine"
	"github.com/archer-sat/marco/internal/mapsolver"
)

func TestParseBasicFlags(t *testing.T) {
	cfg, err := Parse([]string{"-b", "MUSes", "-l", "5", "-v", "--smus", "input.cnf"})
	require.NoError(t, err)

	assert.Equal(t, mapsolver.BiasHighMUS, cfg.Bias)
	assert.Equal(t, 5, cfg.Limit)
	assert.Equal(t, 1, cfg.Verbose)
	assert.True(t, cfg.SMUS)
	assert.Equal(t, "input.cnf", cfg.InFile)
}

func TestParseRejectsMissingInput(t *testing.T) {
	_, err := Parse([]string{"--stats"})
	assert.Error(t, err)
}

func TestParseRejectsUnknownBias(t *testing.T) {
	_, err := Parse([]string{"-b", "bogus", "input.cnf"})
	assert.Error(t, err)
}

func TestSmusWithMcsBiasIsRejected(t *testing.T) {
	_, err := Parse([]string{"--smus", "-b", "MCSes", "input.cnf"})
	assert.Error(t, err)
}

func TestParseParallelSpec(t *testing.T) {
	cfg, err := Parse([]string{"--parallel", "MUS,MUS,MCS", "input.cnf"})
	require.NoError(t, err)
	assert.Equal(t, []WorkerSpec{WorkerMUS, WorkerMUS, WorkerMCS}, cfg.Parallel)
}

func TestParseRejectsUnknownParallelEntry(t *testing.T) {
	_, err := Parse([]string{"--parallel", "bogus", "input.cnf"})
	assert.Error(t, err)
}

func TestMaxSeedModeFlags(t *testing.T) {
	cfg, err := Parse([]string{"-m", "always", "input.cnf"})
	require.NoError(t, err)
	assert.Equal(t, engine.MaxSeedAlways, cfg.MaxSeedMode)

	cfg, err = Parse([]string{"--nomax", "input.cnf"})
	require.NoError(t, err)
	assert.Equal(t, engine.MaxSeedNever, cfg.MaxSeedMode)

	cfg, err = Parse([]string{"-M", "input.cnf"})
	require.NoError(t, err)
	assert.Equal(t, engine.MaxSeedSolver, cfg.MaxSeedMode)
}

func TestDefaultParallelIncludesMCSWorkerAtFourOrMore(t *testing.T) {
	pool := DefaultParallel(4)
	require.Len(t, pool, 4)
	assert.Equal(t, WorkerMCS, pool[3])

	pool = DefaultParallel(2)
	require.Len(t, pool, 2)
	for _, w := range pool {
		assert.Equal(t, WorkerMUS, w)
	}
}
