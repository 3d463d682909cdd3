package subsetsolver

// StillUnexplored is consulted mid-shrink in multi-worker mode to detect
// that a peer has already blocked this seed's region (spec §7
// ParallelPreempt); pass nil in single-worker mode.
type StillUnexplored func(seed []int) bool

// Shrink removes constraints from an UNSAT seed until every remaining
// removal would restore SAT, returning a MUS. hard names ids that must
// never be removed (spec §3 I6: singleton MCSes and Map-implied ids).
// It returns (nil, false) only when unexplored reports the seed has been
// preempted by a peer mid-shrink (spec §4.3).
//
// Grounded on MinisatSubsetSolver.shrink: remove one id at a time,
// re-check, and on UNSAT replace the working set with the solver's
// unsat_core — which commonly drops more than one id per step.
func (s *SubsetSolver) Shrink(seed []int, hard map[int]bool, unexplored StillUnexplored) ([]int, bool) {
	current := make(map[int]bool, len(seed))
	for _, i := range seed {
		current[i] = true
	}

	ordered := sortedCopy(seed)
	for _, i := range ordered {
		if !current[i] || hard[i] {
			continue
		}
		if unexplored != nil && !unexplored(setToSlice(current)) {
			return nil, false
		}

		delete(current, i)
		probe := setToSlice(current)
		sat, core := s.CheckSubset(probe, true)
		if sat {
			current[i] = true
		} else {
			current = sliceToSet(core)
		}
	}
	return setToSlice(current), true
}

func setToSlice(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	return sortedCopy(out)
}

func sliceToSet(s []int) map[int]bool {
	out := make(map[int]bool, len(s))
	for _, i := range s {
		out[i] = true
	}
	return out
}
