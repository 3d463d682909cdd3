// Command marco enumerates Minimal Unsatisfiable Subsets and Minimal
// Correction Subsets of an over-constrained constraint set (spec §1).
// It wraps a pflag.FlagSet with cobra for help/usage rendering (the
// teacher's cmd/* entrypoints favor a single flag-rich Run, see
// SPEC_FULL.md §2.2), builds a CNF model, and hands it to
// internal/coordinator.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archer-sat/marco/internal/cnf"
	"github.com/archer-sat/marco/internal/config"
	"github.com/archer-sat/marco/internal/coordinator"
	"github.com/archer-sat/marco/internal/obs"
	"github.com/archer-sat/marco/internal/signals"
)

var exitCode int

// newRootCmd builds the cobra.Command marco runs as. DisableFlagParsing
// is set because marco's flag surface (§6.4) is parsed by
// internal/config's own pflag.FlagSet rather than cobra's — cobra here
// supplies Use/Short/Execute and leaves config.Parse as the single
// source of truth for flag definitions, matching the "no subcommands"
// single-action shape of the teacher's cmd/validator and cmd/catalog
// entrypoints.
func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "marco [flags] infile",
		Short:              "Enumerate MUSes and MCSes of an over-constrained formula",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = run(args)
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// run contains the bulk of main's logic so exit codes (spec §6.4: 0
// normal/limit-reached, 1 input/config error, 128 signal) are explicit
// return values instead of scattered os.Exit calls.
func run(args []string) int {
	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	obs.SetVerbosity(cfg.Verbose)

	model, err := loadModel(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var stats *obs.Stats
	if cfg.Stats {
		stats = obs.NewStats()
	}

	coord, err := coordinator.New(cfg, model, os.Stdout, stats)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx := signals.Context()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	runErr := coord.Run(ctx)
	if stats != nil {
		stats.Dump(os.Stderr)
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return 128
		}
		fmt.Fprintln(os.Stderr, runErr)
		return 1
	}
	return 0
}

// loadModel dispatches on cfg.Format (or the input file's extension)
// to the right internal/cnf parser (spec §6.1).
func loadModel(cfg *config.Config) (*cnf.Model, error) {
	format := cfg.Format
	if format == "" {
		format = inferFormat(cfg.InFile)
	}

	switch format {
	case "cnf":
		// --cnf forces the DIMACS/GCNF family (spec §6.1); GCNF is
		// still distinguished by extension within that family, as the
		// original's type_group leaves CNF vs GCNF to the filename.
		if inferFormat(cfg.InFile) == "gcnf" {
			return cnf.ParseGCNFFile(cfg.InFile)
		}
		return cnf.ParseDimacsFile(cfg.InFile)
	case "gcnf":
		return cnf.ParseGCNFFile(cfg.InFile)
	case "smt":
		smt, err := cnf.ParseSMT2File(cfg.InFile)
		if err != nil {
			return nil, err
		}
		return &smt.Model, nil
	default:
		return nil, fmt.Errorf("marco: cannot determine input format of %q; pass --format", cfg.InFile)
	}
}

func inferFormat(path string) string {
	name := strings.TrimSuffix(path, ".gz")
	switch filepath.Ext(name) {
	case ".cnf":
		return "cnf"
	case ".gcnf":
		return "gcnf"
	case ".smt2":
		return "smt"
	default:
		return ""
	}
}
