// Package coordinator implements Coordinator (spec §4.8): spawns
// workers, deduplicates results through a master Map, and fans
// blocking clauses out to every peer. Grounded on
// original_source/MarcoPolo.py's multiprocessing pool plus the
// teacher's pkg/lib/queueinformer goroutine/channel worker-pool idiom
// (SPEC_FULL.md §5's module layout note) — spec §5's "process-level
// parallelism across workers" is realized here as one goroutine per
// worker, each owning a fully independent facade.Facade/Map/Subset
// solver stack, which gives the same "independent address space"
// property the spec cares about (no shared mutable solver state)
// without actually forking OS processes.
package coordinator

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/archer-sat/marco/internal/cnf"
	"github.com/archer-sat/marco/internal/config"
	"github.com/archer-sat/marco/internal/mapsolver"
	"github.com/archer-sat/marco/internal/obs"
	"github.com/archer-sat/marco/internal/result"
)

// tagged is one worker's result wrapped with its origin, the internal
// shape fed into the coordinator's select loop.
type tagged struct {
	worker int
	res    result.Result
	done   bool // worker finished normally (spec §4.8 "done"/"complete")
	stats  result.SeedStats // valid only when done is true
	err    error
}

// peerSink is the per-worker inbound channel for results approved by
// the coordinator (fed to that worker's SeedManager).
type peerSink chan result.Result

// Coordinator runs one or more enumeration workers over a shared
// formula, deduplicating through a master Map and serializing output.
type Coordinator struct {
	cfg   *config.Config
	model *cnf.Model

	master mapsolver.Map
	stats  *obs.Stats

	out    io.Writer
	outMu  sync.Mutex
	onLine func(line string) // testing hook, defaults to writing to out

	start time.Time // set at Run entry; basis for --alltimes elapsed prefix
}

// New builds a Coordinator over a parsed formula. The master Map is
// initialized with n variables only (spec §4.8: "used solely for
// dedup and cross-peer blocking propagation").
func New(cfg *config.Config, model *cnf.Model, out io.Writer, stats *obs.Stats) (*Coordinator, error) {
	master, err := mapsolver.New(model.N, mapsolver.BiasNone, false, nil)
	if err != nil {
		return nil, err
	}
	return &Coordinator{cfg: cfg, model: model, master: master, stats: stats, out: out}, nil
}

// Run spawns the configured worker pool and drives the coordination
// loop until every worker has finished, ctx is cancelled, or the
// configured result limit is reached (spec §4.8, §5 Cancellation).
func (c *Coordinator) Run(ctx context.Context) error {
	c.start = time.Now()
	pool := c.cfg.Parallel
	if len(pool) == 0 {
		if c.cfg.McsOnly {
			pool = []config.WorkerSpec{config.WorkerMCSOnly}
		} else {
			pool = config.DefaultParallel(c.cfg.Threads)
		}
	}

	// runCtx is cancelled as soon as dispatch returns for any reason
	// (limit reached, parent cancellation, worker error), so every
	// worker notices at its next seed boundary instead of running on
	// unsupervised (spec §5 Cancellation).
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	n := len(pool)
	sinks := make([]peerSink, n)
	for i := range sinks {
		// Buffered so a worker's SeedManager drain never has to wait on
		// a slow peer (spec §5: "reading the peer channel blocks until
		// data or EOF", but producing to it must never block the
		// coordinator's own dispatch loop).
		sinks[i] = make(chan result.Result, 256)
	}

	events := make(chan tagged, n*4)
	var wg sync.WaitGroup

	for i, spec := range pool {
		wg.Add(1)
		w := &worker{
			id:     i,
			spec:   spec,
			cfg:    c.cfg,
			model:  c.model,
			peers:  sinks[i],
			events: events,
			seed:   c.workerSeed(i),
		}
		go func() {
			defer wg.Done()
			w.run(runCtx)
		}()
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	err := c.dispatch(runCtx, events, sinks, n)
	cancel()
	// Drain whatever workers still have in flight so a worker blocked
	// on a full events channel (e.g. it emitted once more before
	// noticing cancellation) is never stuck — the coordinator must
	// "release worker processes on abandonment" (spec §5) even when
	// dispatch itself has already decided the run is over.
	for range events {
	}
	return err
}

// workerSeed assigns each worker a distinct random seed (spec
// "DESIGN NOTES": "workers in a pool receive distinct seeds unless
// same-seeds is set. The first worker may optionally be unseeded").
func (c *Coordinator) workerSeed(i int) uint64 {
	if c.cfg.SameSeeds {
		return 1
	}
	if i == 0 && !c.cfg.AllRandomized {
		return 0 // 0 means "use the facade's own deterministic default"
	}
	return uint64(i+1)*2654435761 + uint64(c.cfg.RndInit)
}

// dispatch is the coordinator's readiness-based multiplexer (spec
// §4.8, §5: "no busy polling"): one select over every event, applying
// master-Map dedup, emitting to stdout, and fanning approved results
// out to every other worker.
func (c *Coordinator) dispatch(ctx context.Context, events <-chan tagged, sinks []peerSink, n int) error {
	remaining := n
	emitted := 0
	var firstErr error

	for remaining > 0 {
		select {
		case <-ctx.Done():
			c.closeSinks(sinks)
			return ctx.Err()
		case t, ok := <-events:
			if !ok {
				c.closeSinks(sinks)
				return firstErr
			}
			if t.done {
				c.foldStats(t.stats)
				remaining--
				continue
			}
			if t.err != nil {
				if firstErr == nil {
					firstErr = t.err
				}
				remaining--
				continue
			}

			if !c.master.CheckSeed(t.res.Set) {
				if c.stats != nil {
					c.stats.DedupHits.Inc()
				}
				obs.Log.WithFields(obs.WorkerFields(t.worker)).Debug("duplicate result dropped by master dedup")
				continue
			}

			switch t.res.Kind {
			case result.MUS:
				c.master.BlockUp(t.res.Set)
			case result.MSS:
				c.master.BlockDown(t.res.Set)
			}

			c.emit(t.res)
			emitted++
			if c.stats != nil {
				switch t.res.Kind {
				case result.MUS:
					c.stats.MUSes.Inc()
				case result.MSS:
					c.stats.MSSes.Inc()
				}
			}

			if !c.cfg.CommsDisable {
				for i, s := range sinks {
					if i == t.worker {
						continue
					}
					select {
					case s <- t.res:
					default:
						// A saturated peer sink means that worker is
						// behind; SeedManager.drainPeers never blocks on
						// an empty channel, and blocking the coordinator
						// here would violate its non-busy-polling
						// contract, so the send is best-effort.
					}
				}
			}

			if c.cfg.Limit > 0 && emitted >= c.cfg.Limit {
				c.closeSinks(sinks)
				return nil
			}
		}
	}
	return firstErr
}

// foldStats merges a finished worker's per-seed counters into the
// coordinator's --stats registry (SPEC_FULL.md §2.5's "seed improvement
// accounting" supplement) — otherwise SeedsDrawn/ShrinkSteps/GrowSteps/
// MaximizeCalls stay registered but permanently zero, since dispatch
// itself only ever sees MUS/MSS/dedup counts, never a worker's internal
// grow/shrink/maximize work.
func (c *Coordinator) foldStats(s result.SeedStats) {
	if c.stats == nil {
		return
	}
	c.stats.SeedsDrawn.Add(float64(s.SeedsDrawn))
	c.stats.ShrinkSteps.Add(float64(s.ShrinkSteps))
	c.stats.GrowSteps.Add(float64(s.GrowSteps))
	c.stats.MaximizeCalls.Add(float64(s.MaximizeCalls))
}

func (c *Coordinator) closeSinks(sinks []peerSink) {
	for _, s := range sinks {
		close(s)
	}
}

// emit writes one result line (spec §6.2): kind, ids if verbose,
// optional elapsed-time prefix, optional MCS-complement substitution.
func (c *Coordinator) emit(r result.Result) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	kind := r.Kind.String()
	set := r.Set
	if c.cfg.PrintMCSes && r.Kind == result.MSS {
		kind = "C"
		set = r.MCS(c.model.N)
	}

	line := kind
	if c.cfg.Verbose > 0 {
		line += " " + formatIDs(set)
	}
	if c.cfg.AllTimes {
		line = fmt.Sprintf("%.3f %s", time.Since(c.start).Seconds(), line)
	}
	if c.onLine != nil {
		c.onLine(line)
		return
	}
	fmt.Fprintln(c.out, line)
}

func formatIDs(ids []int) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%d", id)
	}
	return out
}
