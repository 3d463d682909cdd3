package coordinator

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archer-sat/marco/internal/cnf"
	"github.com/archer-sat/marco/internal/config"
	"github.com/archer-sat/marco/internal/engine"
	"github.com/archer-sat/marco/internal/mapsolver"
)

// s1Model builds spec §8 scenario S1: (x), (¬x), (y), (¬y), each its own
// soft group over two original variables.
func s1Model() *cnf.Model {
	return &cnf.Model{
		NVars:    2,
		N:        4,
		NClauses: 4,
		Clauses: []cnf.Clause{
			{1}, {-1}, {2}, {-2},
		},
		Groups: map[int][]int{
			0: {},
			1: {0},
			2: {1},
			3: {2},
			4: {3},
		},
	}
}

func newTestConfig(workers int) *config.Config {
	pool := make([]config.WorkerSpec, workers)
	for i := range pool {
		pool[i] = config.WorkerMUS
	}
	return &config.Config{
		Bias:        mapsolver.BiasNone,
		Verbose:     1,
		Parallel:    pool,
		MaxSeedMode: engine.MaxSeedNever,
	}
}

func TestCoordinatorSingleWorkerS1(t *testing.T) {
	var out bytes.Buffer
	c, err := New(newTestConfig(1), s1Model(), &out, nil)
	require.NoError(t, err)

	require.NoError(t, c.Run(context.Background()))

	lines := splitLines(out.String())
	assert.ElementsMatch(t, []string{
		"U 1 2", "U 3 4",
		"S 1 3", "S 1 4", "S 2 3", "S 2 4",
	}, lines)
}

func TestCoordinatorTwoWorkersDedup(t *testing.T) {
	var out bytes.Buffer
	c, err := New(newTestConfig(2), s1Model(), &out, nil)
	require.NoError(t, err)

	require.NoError(t, c.Run(context.Background()))

	lines := splitLines(out.String())
	// P3 (uniqueness): the coordinator's master-Map dedup must collapse
	// whatever the two independent workers found down to exactly the
	// six distinct MUS/MSS sets S1 names, never fewer (P4 completeness)
	// and never more (no duplicate emitted twice).
	assert.ElementsMatch(t, []string{
		"U 1 2", "U 3 4",
		"S 1 3", "S 1 4", "S 2 3", "S 2 4",
	}, lines)
}

func TestCoordinatorLimitStopsEarly(t *testing.T) {
	var out bytes.Buffer
	cfg := newTestConfig(1)
	cfg.Limit = 3
	c, err := New(cfg, s1Model(), &out, nil)
	require.NoError(t, err)

	require.NoError(t, c.Run(context.Background()))

	lines := splitLines(out.String())
	assert.Len(t, lines, 3)
}

func TestCoordinatorPrintMCSes(t *testing.T) {
	var out bytes.Buffer
	cfg := newTestConfig(1)
	cfg.PrintMCSes = true
	c, err := New(cfg, s1Model(), &out, nil)
	require.NoError(t, err)

	require.NoError(t, c.Run(context.Background()))

	lines := splitLines(out.String())
	for _, l := range lines {
		if strings.HasPrefix(l, "U") {
			continue
		}
		assert.True(t, strings.HasPrefix(l, "C "), "expected C-tagged complement, got %q", l)
	}
}

func TestCoordinatorAllTimesPrefixesElapsedSeconds(t *testing.T) {
	var out bytes.Buffer
	cfg := newTestConfig(1)
	cfg.AllTimes = true
	c, err := New(cfg, s1Model(), &out, nil)
	require.NoError(t, err)

	require.NoError(t, c.Run(context.Background()))

	lines := splitLines(out.String())
	require.NotEmpty(t, lines)
	for _, l := range lines {
		fields := strings.Fields(l)
		require.GreaterOrEqual(t, len(fields), 2, "expected an elapsed-seconds prefix on %q", l)
		assert.Regexp(t, `^\d+\.\d{3}$`, fields[0])
		assert.Contains(t, []string{"U", "S"}, fields[1])
	}
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimSpace(s), "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}
