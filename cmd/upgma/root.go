package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/phylokit/upgma"
)

// options collects the flag values for one invocation.
type options struct {
	out         string
	configFile  string
	rooted      bool
	subtreeOnly bool
	silent      bool
	precision   int
	workers     int
	strategy    string
	gzipOut     bool
	appendOut   bool
	rms         bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "upgma [matrix-file]",
		Short: "Build a UPGMA tree from a pairwise distance matrix",
		Long: `upgma reads a tabular distance matrix (PHYLIP square or
lower-triangular layout) and writes the UPGMA tree in Newick format.

With no file argument, or with "-", the matrix is read from stdin.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.out, "out", "o", "", "output file (default stdout; a .gz suffix implies --gzip)")
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML run-configuration file (flags override it)")
	flags.BoolVar(&opts.rooted, "rooted", false, "build a rooted tree (root degree 2 instead of 3)")
	flags.BoolVar(&opts.subtreeOnly, "subtree-only", false, "omit the terminating semicolon from the Newick output")
	flags.BoolVarP(&opts.silent, "silent", "q", false, "suppress progress reporting and notices")
	flags.IntVarP(&opts.precision, "precision", "p", 6, "significant digits for branch lengths")
	flags.IntVar(&opts.workers, "workers", 0, "goroutines for parallel row scans (0 = all CPUs)")
	flags.StringVar(&opts.strategy, "strategy", "auto", "row-minima scan strategy: auto, scalar or blocked")
	flags.BoolVarP(&opts.gzipOut, "gzip", "z", false, "gzip-compress the output")
	flags.BoolVarP(&opts.appendOut, "append", "a", false, "append to the output file instead of truncating")
	flags.BoolVar(&opts.rms, "rms", false, "report the RMS residual between tree and input distances on stderr")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	if opts.configFile != "" {
		if err := applyRunConfig(cmd, opts); err != nil {
			return err
		}
	}

	input := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	names, distances, err := upgma.ReadDistanceMatrix(input)
	if err != nil {
		return err
	}

	cfg := upgma.DefaultConfig()
	cfg.Rooted = opts.rooted
	cfg.SubtreeOnly = opts.subtreeOnly
	cfg.Silent = opts.silent
	cfg.Workers = opts.workers
	cfg.Strategy = upgma.Strategy(opts.strategy)
	if !opts.silent {
		cfg.Progress = &upgma.WriterProgress{W: cmd.ErrOrStderr()}
	}

	tree, err := upgma.BuildTree(names, distances, cfg)
	if err != nil {
		return err
	}

	if opts.rms {
		rms, err := tree.RMSOfTreeMinusMatrix(distances, len(names))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "RMS of tree minus input distances: %g\n", rms)
	}

	return writeTree(cmd, tree, opts)
}

// writeTree writes the Newick serialization to the configured destination,
// compressing when asked to (or when the file name says so).
func writeTree(cmd *cobra.Command, tree *upgma.Tree, opts *options) error {
	compress := opts.gzipOut || strings.HasSuffix(opts.out, ".gz")

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" && opts.out != "-" {
		mode := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if opts.appendOut {
			mode = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(opts.out, mode, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if compress {
		zw := gzip.NewWriter(w)
		if err := tree.WriteNewick(zw, opts.precision); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}
	return tree.WriteNewick(w, opts.precision)
}
