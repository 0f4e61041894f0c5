// Package main provides the xhail command, which learns hypotheses from a problem file.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mailstepcz/induction"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xhail [problem]",
		Short: "Learn logic programs by abduction and induction",
		Long: `xhail searches for a minimal set of clauses which, together with a background theory,
explains positive and negative examples. Problems are read from YAML (.yaml, .yml)
or symbolic expression (.sexpr) files. Grounding and solving is delegated to gringo and clasp.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	flags := rootCmd.Flags()
	flags.String("config", "", "YAML configuration file")
	flags.String("gringo", "gringo", "grounder binary")
	flags.String("clasp", "clasp", "solver binary")
	flags.Bool("debug", false, "log debugging information and keep temporary files")
	flags.Bool("mute", false, "suppress grounder warnings")
	flags.Bool("full", false, "report the displayed facts of every answer")
	flags.Bool("output", false, "print statistics when done")
	flags.Bool("terminate", false, "stop at the first answer")
	flags.Bool("strict", false, "treat solver failures as errors")
	flags.Int("iterations", 1, "number of abduction rounds")
	flags.Duration("kill", 0, "time limit of the whole run, 0 means none")
	flags.Duration("budget", 0, "time limit of one solver call, 0 means none")
	flags.Duration("grace", induction.DefaultConfig().Grace, "time a stopped solver gets to flush its output")
	flags.String("temp-dir", "", "directory of the programs exchanged with the solver")
	flags.Int("prune", 0, "pruning threshold of generalised clauses")
	flags.Int("depth", 0, "saturation depth, 0 means unbounded")
	flags.Bool("prettify", false, "print the loaded problem and exit")
	flags.String("db-driver", "sqlite", "database driver for fact tables (sqlite, postgres)")
	flags.String("db-dsn", "", "database of fact tables")
	flags.String("metrics", "", "write metrics to this file in the text exposition format")
	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	problem, err := load(ctx, cmd, cfg, args[0])
	if err != nil {
		return err
	}
	loading := time.Since(start)
	if prettify, _ := cmd.Flags().GetBool("prettify"); prettify {
		return problem.Dump(cmd.OutOrStdout())
	}

	session, err := induction.NewSession(cfg, logger)
	if err != nil {
		return err
	}
	session.Stats.Loading = loading
	session.Metrics.RecordPhase("loading", loading)

	answers, runErr := induction.NewEngine(problem, session).Run(ctx)
	report(cmd.OutOrStdout(), answers)
	if cfg.Output {
		label := "complete"
		if errors.Is(runErr, induction.ErrInterrupted) {
			label = "interrupted"
		}
		if err := session.Stats.WriteCSV(cmd.ErrOrStderr(), label, answers.Len()); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("metrics"); path != "" {
		if err := session.Metrics.WriteToTextfile(path); err != nil {
			return err
		}
	}
	if errors.Is(runErr, induction.ErrInterrupted) {
		return nil
	}
	return runErr
}

func config(cmd *cobra.Command) (induction.Config, error) {
	cfg := induction.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = induction.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("gringo") {
		cfg.Gringo, _ = flags.GetString("gringo")
	}
	if flags.Changed("clasp") {
		cfg.Clasp, _ = flags.GetString("clasp")
	}
	for name, dst := range map[string]*bool{
		"debug":     &cfg.Debug,
		"mute":      &cfg.Mute,
		"full":      &cfg.Full,
		"output":    &cfg.Output,
		"terminate": &cfg.Terminate,
		"strict":    &cfg.Strict,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	for name, dst := range map[string]*int{
		"iterations": &cfg.Iterations,
		"prune":      &cfg.Prune,
		"depth":      &cfg.Depth,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	if flags.Changed("kill") {
		cfg.Kill, _ = flags.GetDuration("kill")
	}
	if flags.Changed("budget") {
		cfg.Budget, _ = flags.GetDuration("budget")
	}
	if flags.Changed("grace") {
		cfg.Grace, _ = flags.GetDuration("grace")
	}
	if flags.Changed("temp-dir") {
		cfg.TempDir, _ = flags.GetString("temp-dir")
	}
	return cfg, cfg.Validate()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func load(ctx context.Context, cmd *cobra.Command, cfg induction.Config, path string) (*induction.Problem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sexpr":
		code, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return induction.LoadProblemSexpr(string(code), cfg)
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		var db *sql.DB
		if dsn, _ := cmd.Flags().GetString("db-dsn"); dsn != "" {
			driver, _ := cmd.Flags().GetString("db-driver")
			if db, err = sql.Open(driver, dsn); err != nil {
				return nil, err
			}
			defer db.Close()
		}
		if db == nil {
			return induction.LoadProblemYAML(ctx, f, cfg, nil)
		}
		return induction.LoadProblemYAML(ctx, f, cfg, db)
	}
	return nil, fmt.Errorf("unknown problem format '%s'", path)
}

func report(w io.Writer, answers *induction.Answers) {
	for i, a := range answers.All() {
		fmt.Fprintf(w, "Answer %d:\n", i+1)
		if len(a.Model) > 0 {
			fmt.Fprintf(w, "  model: %s\n", joinAtoms(a.Model))
		}
		fmt.Fprintf(w, "  delta: %s\n", joinAtoms(a.Delta))
		fmt.Fprintf(w, "  entailed: %d of %d examples\n", len(a.Entailed), len(a.Covered)+len(a.Uncovered))
		for _, c := range a.Hypothesis {
			fmt.Fprintf(w, "  %s\n", c.Rule())
		}
		if len(a.Values) > 0 {
			fmt.Fprintf(w, "  values: %s\n", a.Values)
		}
	}
}

func joinAtoms(atoms []induction.Atom) string {
	s := make([]string, len(atoms))
	for i, a := range atoms {
		s[i] = a.String()
	}
	return strings.Join(s, " ")
}
