// Package shrinker implements ShrinkerAdapter (spec §4.4): an optional
// external minimizer invoked per UNSAT seed instead of the incremental
// SAT-based Shrink in internal/subsetsolver. Grounded on
// original_source/MUSerSubsetSolver.py's subprocess contract, rebuilt in
// the exec.Command/CommandContext style used by the teacher's
// cmd/operator-cli/bundle build step and test/e2e/skopeo.go.
package shrinker

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/archer-sat/marco/internal/cnf"
)

// corePattern matches the single output line the binary is contracted to
// print: "v" followed by one or more 1-based retained-group indices.
var corePattern = regexp.MustCompile(`(?m)^v\s+(?:\d+\s+)+$`)

// Adapter shells out to an external group-CNF minimizer.
type Adapter struct {
	path      string
	extraArgs []string
}

// NewAdapter resolves path and verifies it names an executable file,
// mirroring MUSerSubsetSolver's constructor-time check so a missing or
// non-executable binary fails fast instead of at the first seed.
func NewAdapter(path string, extraArgs ...string) (*Adapter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ShrinkerFailure{Path: path, Reason: "binary not found", Err: err}
	}
	if info.IsDir() || info.Mode()&0111 == 0 {
		return nil, &ShrinkerFailure{Path: path, Reason: "binary is not executable"}
	}
	return &Adapter{path: path, extraArgs: extraArgs}, nil
}

// Shrink serializes hard ∪ seed to a group-CNF temp file, invokes the
// external binary, and translates its "v ..." line of retained 1-based
// indices back into the original group ids. The child is killed if ctx
// is cancelled or its deadline (e.g. from --timeout) expires.
func (a *Adapter) Shrink(ctx context.Context, model *cnf.Model, seed []int) ([]int, error) {
	ordered := append([]int{}, seed...)
	sort.Ints(ordered)

	tmp, err := os.CreateTemp("", "marco-shrink-*.gcnf")
	if err != nil {
		return nil, errors.Wrap(err, "shrinker: creating temp file")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := cnf.WriteGCNF(tmp, model, ordered); err != nil {
		return nil, errors.Wrap(err, "shrinker: writing group-cnf")
	}
	if err := tmp.Sync(); err != nil {
		return nil, errors.Wrap(err, "shrinker: flushing temp file")
	}

	args := append(append([]string{}, a.extraArgs...), tmp.Name())
	cmd := exec.CommandContext(ctx, a.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, &ShrinkerFailure{Path: a.path, Reason: "killed on cancellation", Err: ctx.Err()}
		}
		return nil, &ShrinkerFailure{Path: a.path, Reason: "exited with error: " + stderr.String(), Err: err}
	}

	return a.parseCore(stdout.String(), ordered)
}

func (a *Adapter) parseCore(out string, ordered []int) ([]int, error) {
	match := corePattern.FindString(out)
	if match == "" {
		return nil, &ShrinkerFailure{Path: a.path, Reason: "output missing 'v ...' core line"}
	}
	fields := strings.Fields(match)[1:]
	kept := make([]int, 0, len(fields))
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil {
			return nil, &ShrinkerFailure{Path: a.path, Reason: "unparseable index " + f, Err: err}
		}
		if idx < 1 || idx > len(ordered) {
			return nil, &ShrinkerFailure{Path: a.path, Reason: "index out of range: " + f}
		}
		kept = append(kept, ordered[idx-1])
	}
	sort.Ints(kept)
	return kept, nil
}
