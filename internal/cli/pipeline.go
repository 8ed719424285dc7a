package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/grimdark-vtt/packforge/internal/config"
	"github.com/grimdark-vtt/packforge/internal/consolidate"
	apperrors "github.com/grimdark-vtt/packforge/internal/errors"
	"github.com/grimdark-vtt/packforge/internal/history"
	"github.com/grimdark-vtt/packforge/internal/loader"
	"github.com/grimdark-vtt/packforge/internal/migrate"
	"github.com/grimdark-vtt/packforge/internal/progress"
	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/report"
	"github.com/grimdark-vtt/packforge/internal/store"
	"github.com/grimdark-vtt/packforge/internal/tables"
	"github.com/grimdark-vtt/packforge/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// stages selects which pipeline stages a command runs, in this order.
type stages struct {
	migrate     bool
	consolidate bool
	validate    bool
}

// runFlags are the per-command flags. Only flags a command registers are
// read; the rest fall back to configuration.
type runFlags struct {
	dryRun    bool
	only      []string
	workers   int
	strict    bool
	maxErrors int
	format    string
}

func (a *app) addRunFlags(cmd *cobra.Command, f *runFlags, st stages) {
	flags := cmd.Flags()
	if st.migrate || st.consolidate {
		flags.BoolVar(&f.dryRun, "dry-run", false, "Report what would change without writing any file")
	}
	if st.migrate {
		flags.StringSliceVar(&f.only, "only", nil, "Restrict migration to a concern (repeatable)")
		flags.IntVar(&f.workers, "workers", 0, "Concurrent record migrations (0 = one per CPU)")
	}
	if st.consolidate {
		flags.BoolVar(&f.strict, "strict", false, "Exit 2 when a consolidated table is missing variants")
	}
	if st.validate {
		flags.IntVar(&f.maxErrors, "max-errors", validation.DefaultMaxErrors, "Validation errors to list (0 = all)")
	}
	flags.StringVar(&f.format, "format", "", "Output format: text, json or yaml")
}

// runEnv is everything a run needs once flags and configuration agree.
type runEnv struct {
	cfg         *config.Configuration
	dir         string
	format      report.Format
	concerns    []migrate.Concern
	tables      *tables.Tables
	metricsFile string
	display     *progress.ProgressDisplay
}

// prepare resolves configuration, flag overrides and inputs. Every failure
// here happens before any file is read.
func (a *app) prepare(cmd *cobra.Command, args []string, f *runFlags) (*runEnv, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, apperrors.ConfigParseError(err)
	}

	changed := cmd.Flags().Changed
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("strict") {
		cfg.Strict = f.strict
	}
	if changed("max-errors") {
		cfg.MaxErrors = f.maxErrors
	}
	if changed("format") {
		cfg.Format = f.format
	}
	if a.tablesPath != "" {
		cfg.TablesPath = a.tablesPath
	}
	if a.metricsFile != "" {
		cfg.MetricsFile = a.metricsFile
	}
	if f.workers < 0 || cfg.Workers < 0 {
		return nil, apperrors.NewArgumentError("--workers must not be negative")
	}
	if cfg.MaxErrors < 0 {
		return nil, apperrors.NewArgumentError("--max-errors must not be negative")
	}

	env := &runEnv{cfg: cfg, dir: cfg.ContentDir, metricsFile: cfg.MetricsFile}
	if len(args) > 0 {
		env.dir = args[0]
	}

	if env.format, err = report.ParseFormat(cfg.Format); err != nil {
		return nil, apperrors.UnknownFormat(cfg.Format)
	}

	for _, name := range f.only {
		c, err := migrate.ParseConcern(name)
		if err != nil {
			valid := make([]string, len(migrate.Concerns))
			for i, c := range migrate.Concerns {
				valid[i] = string(c)
			}
			return nil, apperrors.UnknownConcern(name, valid)
		}
		env.concerns = append(env.concerns, c)
	}

	if cfg.TablesPath != "" {
		env.tables, err = tables.Load(cfg.TablesPath)
	} else {
		env.tables, err = tables.Default()
	}
	if err != nil {
		return nil, apperrors.TablesLoadError(cfg.TablesPath, err)
	}

	info, err := os.Stat(env.dir)
	switch {
	case os.IsNotExist(err):
		return nil, apperrors.ContentDirNotFound(env.dir)
	case err != nil:
		return nil, apperrors.LoadFailed(env.dir, err)
	case !info.IsDir():
		return nil, apperrors.NotADirectory(env.dir)
	}

	if cfg.ShowProgress && env.format == report.FormatText {
		env.display = progress.NewProgressDisplay(progress.DetectTerminalCapabilities(os.Stderr), cmd.ErrOrStderr())
	}
	return env, nil
}

// stageTracker numbers the stages of one command for progress display.
type stageTracker struct {
	display *progress.ProgressDisplay
	names   []string
	current progress.StageInfo
}

func newStageTracker(display *progress.ProgressDisplay, names ...string) *stageTracker {
	return &stageTracker{display: display, names: names}
}

func (t *stageTracker) start(name string) {
	for i, n := range t.names {
		if n == name {
			t.current = progress.StageInfo{Name: name, Number: i + 1, TotalStages: len(t.names)}
		}
	}
	_ = t.display.StartStage(t.current)
}

func (t *stageTracker) done(detail string, args ...any) {
	t.display.CompleteStage(t.current, fmt.Sprintf(detail, args...))
}

func (t *stageTracker) fail(err error) {
	t.display.FailStage(t.current, err)
}

// execute runs the selected stages over the content directory, renders the
// summary and returns an exit error when the run did not pass.
func (a *app) execute(cmd *cobra.Command, args []string, command string, st stages, f *runFlags) error {
	env, err := a.prepare(cmd, args, f)
	if err != nil {
		return err
	}
	cfg := env.cfg
	log := a.log.With(zap.String("command", command))
	sum := report.New(command, env.dir, f.dryRun, cfg.Strict)
	started := time.Now()

	names := []string{"load"}
	if st.migrate {
		names = append(names, "migrate")
	}
	if st.consolidate {
		names = append(names, "consolidate")
	}
	if st.validate {
		names = append(names, "validate")
	}
	track := newStageTracker(env.display, names...)
	defer env.display.Stop()

	track.start("load")
	loaded, err := loader.Load(env.dir, loader.Options{Include: cfg.Include, Exclude: cfg.Exclude, Logger: log})
	if err != nil {
		track.fail(err)
		return apperrors.LoadFailed(env.dir, err)
	}
	sum.AddLoad(loaded)
	track.done("%d records, %d rejected", len(loaded.Records), len(loaded.Failures))
	recs := loaded.Records
	st0 := store.New(env.dir, log)

	if st.migrate {
		track.start("migrate")
		recs, err = a.runMigrate(cmd, env, st0, recs, sum, f.dryRun, log)
		if err != nil {
			track.fail(err)
			return err
		}
		track.done("%d modified, %d unchanged", sum.Modified, sum.Unchanged)
	}

	if st.consolidate {
		track.start("consolidate")
		recs = a.runConsolidate(cmd, env, st0, recs, sum, f.dryRun, log)
		track.done("%d groups, %d incomplete", sum.Consolidation.Groups, sum.Consolidation.Gaps)
	}

	if st.validate {
		track.start("validate")
		sets, err := validation.DefaultRuleSets(env.tables)
		if err != nil {
			track.fail(err)
			return apperrors.TablesLoadError(cfg.TablesPath, err)
		}
		rep := validation.New(sets, cfg.MaxErrors, log).Validate(recs)
		sum.AddValidation(rep)
		track.done("%d checked, %d errors", rep.Checked, rep.TotalErrors)
	}
	env.display.Stop()

	code := sum.Finish()
	if err := report.Render(cmd.OutOrStdout(), sum, env.format, a.verbose); err != nil {
		return apperrors.Wrap(err, apperrors.Runtime)
	}
	if env.metricsFile != "" {
		if err := report.WriteMetrics(env.metricsFile, sum); err != nil {
			log.Warn("metrics not written", zap.Error(err))
			fmt.Fprint(cmd.ErrOrStderr(), apperrors.FormatError(apperrors.MetricsWriteFailed(env.metricsFile, err)))
		}
	}
	if cfg.MaxHistory > 0 {
		history.NewWriter(cfg.StateDir, cfg.MaxHistory, log).Log(historyEntry(sum, time.Since(started)))
	}

	if code != shared.ExitSuccess {
		return shared.NewExitError(code)
	}
	return nil
}

func (a *app) runMigrate(cmd *cobra.Command, env *runEnv, st *store.Store, recs []*record.Record, sum *report.Summary, dryRun bool, log *zap.Logger) ([]*record.Record, error) {
	p, err := migrate.Build(env.tables, migrate.Options{Only: env.concerns, Workers: env.cfg.Workers, Logger: log})
	if err != nil {
		return nil, apperrors.TablesLoadError(env.cfg.TablesPath, err)
	}
	res, err := p.Run(cmd.Context(), recs)
	if err != nil {
		return nil, apperrors.Interrupted(err)
	}
	sum.AddMigration(res)
	stats := p.CacheStats()
	log.Debug("skill catalogue lookups", zap.Int("hits", stats.Hits), zap.Int("misses", stats.Misses))

	if !dryRun {
		written, err := st.WriteAll(res.Changed())
		sum.AddWritten(written)
		if err != nil {
			sum.AddWriteErrors(err)
			log.Error("records not written", zap.Error(err))
		}
	}
	return res.All(), nil
}

func (a *app) runConsolidate(cmd *cobra.Command, env *runEnv, st *store.Store, recs []*record.Record, sum *report.Summary, dryRun bool, log *zap.Logger) []*record.Record {
	engine := consolidate.New(env.tables.Consolidation, log)
	plan := engine.Plan(recs)
	out, err := engine.Apply(plan, st, dryRun)
	if err != nil {
		sum.AddWriteErrors(err)
		log.Error("consolidation not fully written", zap.Error(err))
	}
	sum.AddConsolidation(out, plan.Diag.Items())

	if env.format == report.FormatText && (dryRun || a.verbose) && len(plan.Groups) > 0 {
		if err := plan.Render(cmd.OutOrStdout()); err != nil {
			log.Warn("plan not rendered", zap.Error(err))
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return plan.Records(recs)
}

func historyEntry(s *report.Summary, elapsed time.Duration) history.Entry {
	e := history.Entry{
		ID:        s.RunID,
		Timestamp: s.StartedAt,
		Command:   s.Command,
		Directory: s.Directory,
		DryRun:    s.DryRun,
		Status:    s.Status(),
		ExitCode:  s.ExitCode,
		Duration:  elapsed.Round(time.Millisecond).String(),
		Counts: history.Counts{
			Loaded:   s.Loaded,
			Rejected: s.ParseFailures,
			Modified: s.Modified,
			Written:  s.Written,
		},
	}
	if s.Consolidation != nil {
		e.Counts.Groups = s.Consolidation.Groups
		e.Counts.Written += s.Consolidation.Written
	}
	if s.Validation != nil {
		e.Counts.Errors = s.Validation.TotalErrors
		e.Counts.Warnings = s.Validation.TotalWarnings
	}
	for _, n := range s.Counts {
		e.Counts.Diagnostics += n
	}
	return e
}
