package obs

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats is marco's --stats registry (SPEC_FULL.md §2.5): the same
// prometheus.Counter/Histogram types the teacher's pkg/metrics
// declares and registers, wired here to be dumped to stderr at exit
// rather than served over promhttp — spec §6.4's --stats has no HTTP
// surface to expose.
type Stats struct {
	reg *prometheus.Registry

	SeedsDrawn    prometheus.Counter
	MUSes         prometheus.Counter
	MSSes         prometheus.Counter
	DedupHits     prometheus.Counter
	ShrinkSteps   prometheus.Counter
	GrowSteps     prometheus.Counter
	MaximizeCalls prometheus.Counter
	SolveDuration prometheus.Histogram
}

// NewStats builds a fresh, registered Stats instance. Each call gets
// its own prometheus.Registry so tests (and multiple Coordinator runs
// in one process) never collide on the global default registry.
func NewStats() *Stats {
	s := &Stats{
		reg: prometheus.NewRegistry(),
		SeedsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marco_seeds_drawn_total",
			Help: "Seeds drawn from a Map across all workers.",
		}),
		MUSes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marco_mus_total",
			Help: "Minimal unsatisfiable subsets emitted.",
		}),
		MSSes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marco_mss_total",
			Help: "Maximal satisfiable subsets emitted.",
		}),
		DedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marco_dedup_hits_total",
			Help: "Results dropped by the coordinator's master-Map dedup check.",
		}),
		ShrinkSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marco_shrink_steps_total",
			Help: "Shrink calls completed across all workers.",
		}),
		GrowSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marco_grow_steps_total",
			Help: "Grow calls completed across all workers.",
		}),
		MaximizeCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marco_maximize_seed_calls_total",
			Help: "MaximizeSeed calls made by MaxSeedMode always/half.",
		}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marco_seed_solve_seconds",
			Help:    "Per-seed check_subset latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	s.reg.MustRegister(s.SeedsDrawn, s.MUSes, s.MSSes, s.DedupHits, s.ShrinkSteps, s.GrowSteps, s.MaximizeCalls, s.SolveDuration)
	return s
}

// Dump writes a human-readable summary to w, the --stats destination
// (spec §6.4 has no machine-readable stats format to match).
func (s *Stats) Dump(w io.Writer) {
	mfs, err := s.reg.Gather()
	if err != nil {
		fmt.Fprintf(w, "stats: gather failed: %v\n", err)
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %.0f\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%.6f\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
