package shrinker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archer-sat/marco/internal/cnf"
)

func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-shrinker")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func s1Model() *cnf.Model {
	return &cnf.Model{
		NVars:    2,
		N:        2,
		NClauses: 2,
		Clauses:  []cnf.Clause{{1}, {-1}},
		Groups:   map[int][]int{0: {}, 1: {0}, 2: {1}},
	}
}

func TestNewAdapterRejectsMissingBinary(t *testing.T) {
	_, err := NewAdapter("/nonexistent/path/to/binary")
	require.Error(t, err)
	var sf *ShrinkerFailure
	assert.ErrorAs(t, err, &sf)
}

func TestShrinkParsesCoreLine(t *testing.T) {
	bin := fakeBinary(t, "echo 'v 1 2 '\n")
	a, err := NewAdapter(bin)
	require.NoError(t, err)

	kept, err := a.Shrink(context.Background(), s1Model(), []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, kept)
}

func TestShrinkMapsIndicesBackToIds(t *testing.T) {
	// Only the second of the two written groups (soft id 2) is retained.
	bin := fakeBinary(t, "echo 'v 2 '\n")
	a, err := NewAdapter(bin)
	require.NoError(t, err)

	kept, err := a.Shrink(context.Background(), s1Model(), []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, kept)
}

func TestShrinkNonZeroExitIsFailure(t *testing.T) {
	bin := fakeBinary(t, "exit 1\n")
	a, err := NewAdapter(bin)
	require.NoError(t, err)

	_, err = a.Shrink(context.Background(), s1Model(), []int{1, 2})
	require.Error(t, err)
	var sf *ShrinkerFailure
	assert.ErrorAs(t, err, &sf)
}

func TestShrinkUnparseableOutputIsFailure(t *testing.T) {
	bin := fakeBinary(t, "echo 'garbage'\n")
	a, err := NewAdapter(bin)
	require.NoError(t, err)

	_, err = a.Shrink(context.Background(), s1Model(), []int{1, 2})
	require.Error(t, err)
	var sf *ShrinkerFailure
	assert.ErrorAs(t, err, &sf)
}

func TestShrinkKillsOnCancellation(t *testing.T) {
	bin := fakeBinary(t, "sleep 5 && echo 'v 1 '\n")
	a, err := NewAdapter(bin)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = a.Shrink(ctx, s1Model(), []int{1, 2})
	require.Error(t, err)
	var sf *ShrinkerFailure
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "killed on cancellation", sf.Reason)
}
