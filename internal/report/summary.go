// Package report summarises a pipeline run and renders it for people, scripts
// and CI dashboards.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/grimdark-vtt/packforge/internal/consolidate"
	"github.com/grimdark-vtt/packforge/internal/diag"
	"github.com/grimdark-vtt/packforge/internal/loader"
	"github.com/grimdark-vtt/packforge/internal/migrate"
	"github.com/grimdark-vtt/packforge/internal/tables"
	"github.com/grimdark-vtt/packforge/internal/validation"
	"go.uber.org/multierr"
)

// Exit codes for a finished run.
const (
	ExitSuccess          = 0
	ExitValidationFailed = 1
	ExitIncomplete       = 2
	ExitInvalidArguments = 3
	ExitFatalIO          = 4
)

// Summary is everything one command did, in the order the stages ran.
type Summary struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Command   string    `json:"command" yaml:"command"`
	Directory string    `json:"directory" yaml:"directory"`
	DryRun    bool      `json:"dry_run" yaml:"dry_run"`
	Strict    bool      `json:"strict" yaml:"strict"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Duration  string    `json:"duration" yaml:"duration"`

	Loaded        int `json:"loaded" yaml:"loaded"`
	ParseFailures int `json:"parse_failures" yaml:"parse_failures"`
	Modified      int `json:"modified" yaml:"modified"`
	Unchanged     int `json:"unchanged" yaml:"unchanged"`
	Written       int `json:"written" yaml:"written"`
	Discarded     int `json:"discarded" yaml:"discarded"`
	WriteErrors   int `json:"write_errors" yaml:"write_errors"`

	Migrators     map[string]*migrate.MigratorStats `json:"migrators,omitempty" yaml:"migrators,omitempty"`
	Tallies       map[string]int                    `json:"classification,omitempty" yaml:"classification,omitempty"`
	Tiers         map[string]int                    `json:"tier,omitempty" yaml:"tier,omitempty"`
	Consolidation *consolidate.Outcome              `json:"consolidation,omitempty" yaml:"consolidation,omitempty"`
	Validation    *validation.Report                `json:"validation,omitempty" yaml:"validation,omitempty"`

	// Counts holds a count for every diagnostic category, zeros included.
	Counts   map[string]int `json:"diagnostics" yaml:"diagnostics"`
	ExitCode int            `json:"exit_code" yaml:"exit_code"`

	diag diag.Log
}

// New starts a summary for one command over dir.
func New(command, dir string, dryRun, strict bool) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		Command:   command,
		Directory: dir,
		DryRun:    dryRun,
		Strict:    strict,
		StartedAt: time.Now().UTC(),
	}
}

// AddLoad records what the loader read and rejected.
func (s *Summary) AddLoad(res *loader.Result) {
	s.Loaded += len(res.Records)
	s.ParseFailures += len(res.Failures)
	s.diag.Add(res.Failures...)
}

// AddMigration records per-record outcomes, migrator counts and the
// classification and tier tallies of a migration pass.
func (s *Summary) AddMigration(res *migrate.Result) {
	modified := len(res.Changed())
	s.Modified += modified
	s.Unchanged += len(res.Records) - modified
	s.Discarded += res.Violations
	if s.Migrators == nil {
		s.Migrators = map[string]*migrate.MigratorStats{}
	}
	for name, st := range res.Migrators {
		acc, ok := s.Migrators[name]
		if !ok {
			acc = &migrate.MigratorStats{}
			s.Migrators[name] = acc
		}
		acc.Applied += st.Applied
		acc.Flagged += st.Flagged
	}
	s.Tallies = addTallies(s.Tallies, res.Tallies, tables.SourceDirect, tables.SourceKeyword, tables.SourceUnresolved)
	s.Tiers = addTallies(s.Tiers, res.Tiers, tables.SourceDirect, tables.SourceKeyword, tables.SourceDefault)
	s.diag.Add(res.Diag.Items()...)
}

// addTallies adds from into acc. The first non-empty tally seeds every
// source in seed at zero so reports always show the full breakdown.
func addTallies(acc, from map[string]int, seed ...tables.Source) map[string]int {
	if len(from) == 0 {
		return acc
	}
	if acc == nil {
		acc = make(map[string]int, len(seed))
		for _, src := range seed {
			acc[string(src)] = 0
		}
	}
	for label, n := range from {
		acc[label] += n
	}
	return acc
}

// AddWritten counts records the store actually rewrote.
func (s *Summary) AddWritten(n int) {
	s.Written += n
}

// AddWriteErrors counts the failures combined in err.
func (s *Summary) AddWriteErrors(err error) {
	s.WriteErrors += len(multierr.Errors(err))
}

// AddConsolidation records the outcome and diagnostics of a consolidation pass.
func (s *Summary) AddConsolidation(out *consolidate.Outcome, diags []diag.Diagnostic) {
	s.Consolidation = out
	s.diag.Add(diags...)
}

// AddValidation records a validation report.
func (s *Summary) AddValidation(r *validation.Report) {
	s.Validation = r
	s.diag.Add(r.Diagnostics()...)
}

// Items returns every diagnostic raised during the run, in stage order.
func (s *Summary) Items() []diag.Diagnostic {
	return s.diag.Items()
}

// Finish computes the diagnostic counts, duration and exit code. Failed
// writes outrank a validation failure, which outranks an incomplete
// consolidation.
func (s *Summary) Finish() int {
	s.Duration = time.Since(s.StartedAt).Round(time.Millisecond).String()
	s.Counts = make(map[string]int, len(diag.Categories))
	for c, n := range s.diag.Counts() {
		s.Counts[c.String()] = n
	}

	switch {
	case s.WriteErrors > 0:
		s.ExitCode = ExitFatalIO
	case s.Validation != nil && !s.Validation.Passed:
		s.ExitCode = ExitValidationFailed
	case s.Strict && s.Consolidation != nil && s.Consolidation.Gaps > 0:
		s.ExitCode = ExitIncomplete
	default:
		s.ExitCode = ExitSuccess
	}
	return s.ExitCode
}

// Passed reports whether the run finished with exit code 0.
func (s *Summary) Passed() bool {
	return s.ExitCode == ExitSuccess
}

// Status is a one-word verdict for history and text output.
func (s *Summary) Status() string {
	switch s.ExitCode {
	case ExitSuccess:
		return "passed"
	case ExitValidationFailed:
		return "invalid"
	case ExitIncomplete:
		return "incomplete"
	case ExitFatalIO:
		return "write-failed"
	}
	return fmt.Sprintf("exit-%d", s.ExitCode)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
