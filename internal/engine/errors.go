package engine

import "github.com/pkg/errors"

// ErrPreempted is returned internally when a peer has already explored
// a seed's region mid-shrink (spec §7 ParallelPreempt); the engine's
// Run loop recovers by skipping the seed, never by propagating it.
var ErrPreempted = errors.New("engine: seed preempted by a peer")

// errNeedsCardinalityMap is returned by New when cfg.SMUS is set but
// the supplied Map doesn't support the cardinality bound SMUS mode
// needs after every emitted MUS.
var errNeedsCardinalityMap = errors.New("engine: smus mode requires a cardinality Map")

