// Package config binds marco's CLI surface (spec §6.4) to flags with
// github.com/spf13/pflag, the same library the teacher's cmd/olm and
// cmd/catalog entrypoints use for flag-rich single-action binaries
// (SPEC_FULL.md §2.2). Config is the populated result a cmd/marco
// main() hands to internal/coordinator.
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/archer-sat/marco/internal/engine"
	"github.com/archer-sat/marco/internal/mapsolver"
)

// WorkerSpec names one entry of a --parallel pool (spec §6.4: "a
// comma-separated list from {MUS, MCS, MCSonly}").
type WorkerSpec int

const (
	WorkerMUS WorkerSpec = iota
	WorkerMCS
	WorkerMCSOnly
)

func (w WorkerSpec) String() string {
	switch w {
	case WorkerMUS:
		return "MUS"
	case WorkerMCS:
		return "MCS"
	case WorkerMCSOnly:
		return "MCSonly"
	default:
		return "?"
	}
}

// Config is the fully validated, ready-to-run configuration a CLI
// invocation produces from flags (spec §6.4).
type Config struct {
	InFile string
	// Format forces the parser: "cnf", "gcnf", or "smt". Empty means
	// infer from the file extension, as the original does.
	Format string

	Bias       mapsolver.Bias
	Limit      int
	Timeout    time.Duration
	Verbose    int
	AllTimes   bool
	Stats      bool
	PrintMCSes bool

	Threads  int
	Parallel []WorkerSpec

	MaxSeedMode engine.MaxSeedMode
	SMUS        bool
	BlockBoth   bool

	ForceMinisat    bool
	McsOnly         bool
	ImprovedImplies bool
	RndInit         int // 0 means not requested
	AllRandomized   bool
	SameSeeds       bool
	DumpMapPath     string
	CommsDisable    bool
	CommsIgnore     bool

	ShrinkerPath string
	ShrinkerArgs []string
}

// rawFlags holds the string-typed flag destinations that need
// post-parse translation into Config's richer types.
type rawFlags struct {
	bias     string
	parallel string
	maxSeed  string
	cnf      bool
	smt      bool
	nomax    bool
	solverM  bool
}

// Parse builds a pflag.FlagSet bound to args, parses it, and returns a
// validated Config. args excludes the program name (pflag convention).
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	raw := &rawFlags{}
	fs := pflag.NewFlagSet("marco", pflag.ContinueOnError)

	fs.StringVar(&cfg.Format, "format", "", "force input format: cnf, gcnf, or smt (default: infer from extension)")
	fs.BoolVar(&raw.cnf, "cnf", false, "treat input as DIMACS/GCNF (alias for --format=cnf)")
	fs.BoolVar(&raw.smt, "smt", false, "treat input as SMT2 (alias for --format=smt)")
	fs.StringVarP(&raw.bias, "bias", "b", "", "MUSes or MCSes")
	fs.IntVarP(&cfg.Limit, "limit", "l", 0, "stop after N results (0 = unlimited)")
	fs.DurationVarP(&cfg.Timeout, "timeout", "T", 0, "wall-clock timeout (0 = none)")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "increase verbosity (repeatable)")
	fs.BoolVarP(&cfg.AllTimes, "alltimes", "a", false, "prefix every result line with elapsed seconds")
	fs.BoolVarP(&cfg.Stats, "stats", "s", false, "dump counters to stderr at exit")
	fs.IntVar(&cfg.Threads, "threads", 0, "worker pool size (0 = max(1, cpu/2))")
	fs.StringVar(&raw.parallel, "parallel", "", "comma-separated worker pool spec from {MUS,MCS,MCSonly}")
	fs.BoolVar(&raw.nomax, "nomax", false, "never maximize a drawn seed before checking it")
	fs.StringVarP(&raw.maxSeed, "m", "m", "", "maximize-seed mode: always or half")
	fs.BoolVarP(&raw.solverM, "M", "M", false, "rely on the Map's native extremal-model search instead of an explicit maximize step")
	fs.BoolVar(&cfg.SMUS, "smus", false, "single-smallest-MUS mode")
	fs.BoolVar(&cfg.BlockBoth, "block-both", false, "also block the opposite direction from each result")
	fs.BoolVar(&cfg.McsOnly, "mcs-only", false, "use the dedicated CAMUS-style MCS enumerator")
	fs.BoolVar(&cfg.ForceMinisat, "force-minisat", false, "always use internal shrink, never an external shrinker binary")
	fs.BoolVar(&cfg.ImprovedImplies, "improved-implies", false, "query Map.Implies before shrink to skip always-hard ids")
	fs.BoolVar(&cfg.PrintMCSes, "print-mcses", false, "emit C <complement> instead of S <MSS>")
	fs.IntVar(&cfg.RndInit, "rnd-init", 0, "seed solver randomization (0 = unset; bare flag defaults to 1)")
	fs.StringVar(&cfg.DumpMapPath, "dump-map", "", "append the Map's blocking clauses to this path")
	fs.BoolVar(&cfg.CommsDisable, "comms-disable", false, "never forward results to peer workers")
	fs.BoolVar(&cfg.CommsIgnore, "comms-ignore", false, "drain but discard peer results (measures duplicate work)")
	fs.BoolVar(&cfg.AllRandomized, "all-randomized", false, "seed every worker's solver randomly, including the first")
	fs.BoolVar(&cfg.SameSeeds, "same-seeds", false, "give every worker the same random seed")
	fs.StringVar(&cfg.ShrinkerPath, "shrinker", "", "path to an external group-CNF minimizer binary (§4.4)")
	fs.SortFlags = false

	if lookup := fs.Lookup("rnd-init"); lookup != nil {
		lookup.NoOptDefVal = "1"
	}

	if err := fs.Parse(args); err != nil {
		return nil, newConfigError("%v", err)
	}

	rest := fs.Args()
	if len(rest) > 0 {
		cfg.InFile = rest[0]
	}

	if err := applyRaw(cfg, raw); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyRaw(cfg *Config, raw *rawFlags) error {
	switch strings.ToUpper(raw.bias) {
	case "":
		cfg.Bias = mapsolver.BiasNone
	case "MUSES":
		cfg.Bias = mapsolver.BiasHighMUS
	case "MCSES":
		cfg.Bias = mapsolver.BiasLowMCS
	default:
		return newConfigError("--bias must be MUSes or MCSes, got %q", raw.bias)
	}

	if raw.cnf && cfg.Format == "" {
		cfg.Format = "cnf"
	}
	if raw.smt && cfg.Format == "" {
		cfg.Format = "smt"
	}

	switch {
	case raw.nomax:
		cfg.MaxSeedMode = engine.MaxSeedNever
	case raw.solverM:
		cfg.MaxSeedMode = engine.MaxSeedSolver
	default:
		switch strings.ToLower(raw.maxSeed) {
		case "", "never":
			cfg.MaxSeedMode = engine.MaxSeedNever
		case "always":
			cfg.MaxSeedMode = engine.MaxSeedAlways
		case "half":
			cfg.MaxSeedMode = engine.MaxSeedHalf
		default:
			return newConfigError("-m must be always or half, got %q", raw.maxSeed)
		}
	}

	if raw.parallel != "" {
		for _, tok := range strings.Split(raw.parallel, ",") {
			switch strings.ToUpper(strings.TrimSpace(tok)) {
			case "MUS":
				cfg.Parallel = append(cfg.Parallel, WorkerMUS)
			case "MCS":
				cfg.Parallel = append(cfg.Parallel, WorkerMCS)
			case "MCSONLY":
				cfg.Parallel = append(cfg.Parallel, WorkerMCSOnly)
			default:
				return newConfigError("--parallel entries must be MUS, MCS, or MCSonly, got %q", tok)
			}
		}
	}
	return nil
}

// Validate checks cross-flag consistency (spec §7 ConfigError).
func (c *Config) Validate() error {
	if c.InFile == "" {
		return newConfigError("an input file is required")
	}
	if c.SMUS && c.Bias == mapsolver.BiasLowMCS {
		return newConfigError("--smus requires a cardinality Map biased toward MUSes, not MCSes")
	}
	if c.McsOnly && len(c.Parallel) > 0 {
		for _, w := range c.Parallel {
			if w != WorkerMCSOnly {
				return newConfigError("--mcs-only conflicts with a --parallel pool containing %s workers", w)
			}
		}
	}
	if c.ForceMinisat && c.ShrinkerPath != "" {
		return newConfigError("--force-minisat and --shrinker are mutually exclusive")
	}
	if c.Format == "smt" && c.InFile == "-" {
		return newConfigError("SMT2 input from stdin is not supported")
	}
	return nil
}

// DefaultParallel returns the default worker pool (spec §6.4: "default
// pool is max(1, cpu/2) MUS workers with one MCS worker if pool >= 4").
func DefaultParallel(threads int) []WorkerSpec {
	n := threads
	if n <= 0 {
		n = runtime.NumCPU() / 2
	}
	if n < 1 {
		n = 1
	}
	pool := make([]WorkerSpec, n)
	for i := range pool {
		pool[i] = WorkerMUS
	}
	if n >= 4 {
		pool[n-1] = WorkerMCS
	}
	return pool
}
