package subsetsolver

import "sort"

// Grow extends a SAT seed to a maximal satisfiable subset (MSS).
// Grounded on MinisatSubsetSolver.grow: iterate the complement in order,
// tentatively add each candidate, and on SAT replace the working set
// with the solver's sat_subset (often more than +1, since satisfying one
// assignment can also enable other groups); skip anything sat_subset
// already brought in via a sorted-membership bisect.
func (s *SubsetSolver) Grow(seed []int) []int {
	current := sortedCopy(seed)

	for _, x := range s.Complement(seed) {
		if memberSorted(current, x) {
			// Already brought in by an earlier sat_subset.
			continue
		}
		probe := insertSorted(current, x)
		sat, improved := s.CheckSubset(probe, true)
		if sat {
			current = sortedCopy(improved)
		}
	}
	return current
}

func memberSorted(sorted []int, x int) bool {
	i := sort.SearchInts(sorted, x)
	return i < len(sorted) && sorted[i] == x
}

func insertSorted(sorted []int, x int) []int {
	i := sort.SearchInts(sorted, x)
	out := make([]int, 0, len(sorted)+1)
	out = append(out, sorted[:i]...)
	out = append(out, x)
	out = append(out, sorted[i:]...)
	return out
}
