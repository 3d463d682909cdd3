package coordinator

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/archer-sat/marco/internal/cnf"
	"github.com/archer-sat/marco/internal/config"
	"github.com/archer-sat/marco/internal/engine"
	"github.com/archer-sat/marco/internal/mapsolver"
	"github.com/archer-sat/marco/internal/obs"
	"github.com/archer-sat/marco/internal/result"
	"github.com/archer-sat/marco/internal/seedmanager"
	"github.com/archer-sat/marco/internal/shrinker"
	"github.com/archer-sat/marco/internal/subsetsolver"
)

// worker owns one fully independent (Map, SubsetSolver, engine) stack
// (component A,B,C[,D] + one of E/F, spec §4.8) and streams its
// results over events. It never touches another worker's solver state
// directly — only through the tagged results the coordinator relays.
type worker struct {
	id     int
	spec   config.WorkerSpec
	cfg    *config.Config
	model  *cnf.Model
	peers  peerSink
	events chan<- tagged
	seed   uint64
}

func (w *worker) run(ctx context.Context) {
	log := obs.Log.WithFields(obs.WorkerFields(w.id))

	stats, err := w.runEnumeration(ctx, log)
	if err != nil && ctx.Err() == nil {
		log.WithError(err).Warn("worker exited with error")
		w.events <- tagged{worker: w.id, err: err}
		return
	}
	w.events <- tagged{worker: w.id, done: true, stats: stats}
}

func (w *worker) runEnumeration(ctx context.Context, log *logrus.Entry) (result.SeedStats, error) {
	if w.spec == config.WorkerMCSOnly {
		return w.runMcsOnly(ctx)
	}
	return w.runMarco(ctx, log)
}

func (w *worker) emit(r result.Result) {
	w.events <- tagged{worker: w.id, res: r}
}

func (w *worker) runMcsOnly(ctx context.Context) (result.SeedStats, error) {
	e := engine.NewMcsOnlyEngine(w.model, w.emit)
	err := e.Run(ctx)
	return e.Stats(), err
}

// biasFor resolves the Map bias this worker draws seeds with: a
// --parallel pool entry of MUS/MCS overrides the global --bias so a
// mixed pool (e.g. "MUS,MUS,MCS") gets heterogeneous workers, the way
// default_parallel_config in the original assigns one bias per worker.
func (w *worker) biasFor() mapsolver.Bias {
	switch w.spec {
	case config.WorkerMCS:
		return mapsolver.BiasLowMCS
	case config.WorkerMUS:
		if w.cfg.Bias != mapsolver.BiasNone {
			return w.cfg.Bias
		}
		return mapsolver.BiasHighMUS
	default:
		return w.cfg.Bias
	}
}

func (w *worker) runMarco(ctx context.Context, log *logrus.Entry) (result.SeedStats, error) {
	bias := w.biasFor()
	useCardinality := w.cfg.SMUS || w.cfg.MaxSeedMode == engine.MaxSeedSolver

	var dump io.Writer
	if w.cfg.DumpMapPath != "" && w.id == 0 {
		f, err := os.OpenFile(w.cfg.DumpMapPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return result.SeedStats{}, err
		}
		dump = f
		defer f.Close()
	}

	m, err := mapsolver.New(w.model.N, bias, useCardinality, dump)
	if err != nil {
		return result.SeedStats{}, err
	}

	subset, err := subsetsolver.New(w.model, impliesAdapter{m, w.cfg.ImprovedImplies})
	if err != nil {
		return result.SeedStats{}, err
	}

	if w.seed != 0 {
		// Randomization is per-facade (spec §4.1's set_rnd_seed); the
		// Map and SubsetSolver each own their own facade.Facade, so
		// each gets reseeded independently rather than through one
		// shared handle.
		m.Seed(w.seed)
		subset.Seed(w.seed)
		log.WithField("rnd_seed", w.seed).Debug("worker randomization seed applied")
	}

	sm := seedmanager.New(m, w.peers, w.cfg.CommsIgnore)

	ecfg := engine.Config{
		MaxSeedMode: w.cfg.MaxSeedMode,
		Bias:        bias,
		SMUS:        w.cfg.SMUS,
		BlockBoth:   w.cfg.BlockBoth,
		Limit:       w.cfg.Limit,
	}

	var externalShrink func(seed []int, hard map[int]bool) ([]int, error)
	if w.cfg.ShrinkerPath != "" && !w.cfg.ForceMinisat {
		adapter, err := shrinker.NewAdapter(w.cfg.ShrinkerPath)
		if err != nil {
			return result.SeedStats{}, err
		}
		externalShrink = func(seed []int, hard map[int]bool) ([]int, error) {
			kept, err := adapter.Shrink(ctx, w.model, seed)
			if err != nil {
				return nil, err
			}
			for id := range hard {
				if !containsInt(kept, id) {
					kept = append(kept, id)
				}
			}
			return kept, nil
		}
	}

	eng, err := engine.New(ecfg, m, subset, sm, w.emit, externalShrink)
	if err != nil {
		return result.SeedStats{}, err
	}
	err = eng.Run(ctx)
	return eng.Stats(), err
}

// impliesAdapter exposes a mapsolver.Map as a subsetsolver.ImpliesSource,
// gated by --improved-implies: without that flag, SubsetSolver.ImpliedHard
// always returns empty, matching the original's default (conservative)
// shrink which doesn't consult Map.implies().
type impliesAdapter struct {
	m       mapsolver.Map
	enabled bool
}

func (a impliesAdapter) Implies() []int {
	if !a.enabled {
		return nil
	}
	return a.m.Implies()
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
