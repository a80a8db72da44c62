package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/unbound-force/typesafe/internal/annotation"
	"github.com/unbound-force/typesafe/internal/checker"
	"github.com/unbound-force/typesafe/internal/config"
	"github.com/unbound-force/typesafe/internal/report"
	"github.com/unbound-force/typesafe/internal/scaffold"
	"github.com/unbound-force/typesafe/internal/source"
	"github.com/unbound-force/typesafe/internal/suite"
	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	var debug bool

	root := &cobra.Command{
		Use:   "typesafe",
		Short: "typesafe: assert on pyright's view of your Python code",
		Long: `typesafe runs pyright on the files of a typesafety suite and checks
its diagnostics against inline annotations: "# E: <message>" for
expected errors and "# T: <type>" on reveal_type() lines for expected
revealed types.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newSchemaCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// runParams holds the parsed flags for the run command.
type runParams struct {
	paths       []string
	root        string
	dir         string
	format      string
	jobs        int
	failFast    bool
	verbose     bool
	interactive bool
	stdout      io.Writer
	stderr      io.Writer

	// runner replaces pyright when non-nil.
	runner checker.Runner
}

// runRun is the extracted, testable body of the run command.
func runRun(ctx context.Context, p runParams) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}

	cfg, err := loadConfig(p)
	if err != nil {
		return err
	}

	results, err := check(ctx, cfg, p)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		logger.Warn("no typesafety files found", "dir", cfg.Dir)
		return nil
	}

	if p.interactive {
		if err := runInteractive(results); err != nil {
			return err
		}
	} else if err := writeReport(p.stdout, p.format, p.verbose, results); err != nil {
		return err
	}

	if failed := suite.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d typesafety file(s) failed", failed, len(results))
	}
	return nil
}

// loadConfig reads .typesafe.yaml from the project root and applies
// the flags that were set.
func loadConfig(p runParams) (*config.Config, error) {
	cfg, err := config.Load(p.root)
	if err != nil {
		return nil, err
	}
	if p.dir != "" {
		cfg.Dir = p.dir
	}
	if p.jobs > 0 {
		cfg.Jobs = p.jobs
	}
	if p.failFast {
		cfg.FailFast = true
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// check collects and runs the suite.
func check(ctx context.Context, cfg *config.Config, p runParams) ([]*taxonomy.FileResult, error) {
	opts := suite.OptionsFromConfig(cfg)
	opts.Logger = logger
	if p.runner != nil {
		opts.Runner = p.runner
	}

	s, err := suite.New(p.root, opts)
	if err != nil {
		return nil, err
	}
	items, err := s.Collect(p.paths...)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	logger.Info("checking typesafety files", "files", len(items), "jobs", cfg.Jobs)
	results, err := suite.RunAll(ctx, items, cfg.Jobs)
	if err != nil {
		return nil, err
	}
	logger.Info("check complete", "failed", suite.Failed(results))
	return results, nil
}

// writeReport outputs the results in the requested format.
func writeReport(w io.Writer, format string, verbose bool, results []*taxonomy.FileResult) error {
	switch format {
	case "json":
		return report.WriteJSON(w, results, version)
	default:
		return report.WriteText(w, results, report.TextOptions{Verbose: verbose})
	}
}

func newRunCmd() *cobra.Command {
	var (
		dir         string
		format      string
		jobs        int
		failFast    bool
		verbose     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Check typesafety files against pyright",
		Long: `Collect every .py file below the typesafety directory (or below the
given paths), run pyright on each and report every annotation that
disagrees with pyright's diagnostics.

Exits non-zero when any file fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			return runRun(cmd.Context(), runParams{
				paths:       args,
				root:        root,
				dir:         dir,
				format:      format,
				jobs:        jobs,
				failFast:    failFast,
				verbose:     verbose,
				interactive: interactive,
				stdout:      os.Stdout,
				stderr:      os.Stderr,
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "",
		"directory prefix below which files are collected (default from .typesafe.yaml or \"typesafety\")")
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0,
		"files checked in parallel (default from .typesafe.yaml or 1)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false,
		"show only the first mismatch of each failing file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"list passing files too")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")

	return cmd
}

// parseParams holds the arguments of the parse command.
type parseParams struct {
	file   string
	stdout io.Writer
}

// runParse prints the annotations of one file as YAML.
func runParse(p parseParams) error {
	f, err := source.Open(p.file)
	if err != nil {
		return err
	}
	content, err := f.Content()
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(p.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(annotation.Parse(content)); err != nil {
		return fmt.Errorf("encoding annotations: %w", err)
	}
	return enc.Close()
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the annotations found in a file",
		Long: `Print the expected errors and revealed types parsed from a file,
keyed by line number, without running pyright.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(parseParams{file: args[0], stdout: cmd.OutOrStdout()})
		},
	}
}

func newInitCmd() *cobra.Command {
	var (
		force bool
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a typesafety suite in the current directory",
		Long: `Write an example typesafety file, its pyright configuration and a
.typesafe.yaml into the current directory. Existing files are left
alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := scaffold.Run(scaffold.Options{
				Dir:     dir,
				Force:   force,
				Version: version,
				Stdout:  cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	cmd.Flags().StringVar(&dir, "dir", config.DefaultDir, "collection directory to scaffold")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for typesafe report output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of typesafe run --format=json output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}
