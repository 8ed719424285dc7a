package migrate

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/diag"
	"github.com/grimdark-vtt/packforge/internal/lookup"
	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/tables"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stage names the pipeline in diagnostics it raises itself.
const Stage = "migrate"

// Options configure a pipeline.
type Options struct {
	// Only narrows the run to these concerns; empty means all.
	Only []Concern
	// Workers bounds concurrent record migrations; <= 0 means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// Pipeline applies the migrators, in declared order, to every record.
type Pipeline struct {
	migrators []Migrator
	cache     *lookup.SkillCache
	workers   int
	log       *zap.Logger
}

// Build creates a fresh migrator set for one run. The skill cache is scoped
// to the returned pipeline.
func Build(tb *tables.Tables, opts Options) (*Pipeline, error) {
	if tb == nil {
		return nil, fmt.Errorf("tables are required")
	}
	only := map[Concern]bool{}
	for _, c := range opts.Only {
		if _, err := ParseConcern(string(c)); err != nil {
			return nil, err
		}
		only[c] = true
	}
	want := func(c Concern) bool { return len(only) == 0 || only[c] }

	p := &Pipeline{
		cache:   lookup.NewSkillCache(tb.Skills),
		workers: opts.Workers,
		log:     opts.Logger,
	}
	if p.workers <= 0 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}

	add := func(c Concern, ms ...Migrator) {
		if want(c) {
			p.migrators = append(p.migrators, ms...)
		}
	}
	add(ConcernCoverage, newCoverageMigrator())
	add(ConcernRating, newRatingMigrator())
	for _, fam := range tb.FamiliesFor(tables.ConcernClassification) {
		add(ConcernClassification, newLookupMigrator(fam, ConcernClassification))
	}
	if want(ConcernDamage) {
		fam, ok := tb.Family("damage-type")
		if !ok {
			return nil, fmt.Errorf("tables define no damage-type family")
		}
		add(ConcernDamage, newDamageMigrator(fam))
	}
	for _, fam := range tb.FamiliesFor(tables.ConcernTier) {
		add(ConcernTier, newLookupMigrator(fam, ConcernTier))
	}
	add(ConcernSkill, newSkillMigrator(tb, p.cache))
	add(ConcernTrait, newTraitMigrator())
	add(ConcernQuality, newQualityMigrator())
	return p, nil
}

// Migrators returns the migrators in the order they run.
func (p *Pipeline) Migrators() []Migrator {
	return p.migrators
}

// CacheStats reports the skill cache's hit and miss counts for this run.
func (p *Pipeline) CacheStats() lookup.Stats {
	return p.cache.Stats()
}

// RecordResult is the outcome for one record.
type RecordResult struct {
	// Record is the migrated copy, or a copy of the original when the
	// migration was discarded.
	Record      *record.Record
	Applied     []string
	Changed     bool
	Violation   bool
	Diagnostics []diag.Diagnostic
	tallies     map[string]map[string]int
}

// MigratorStats counts what one migrator did across the corpus.
type MigratorStats struct {
	Applied int `json:"applied" yaml:"applied"`
	Flagged int `json:"flagged" yaml:"flagged"`
}

// Result is the outcome of a run, in input order.
type Result struct {
	Records   []RecordResult
	Migrators map[string]*MigratorStats
	// Tallies counts how classification labels resolved (direct, keyword,
	// unresolved); Tiers does the same for rarity and craftsmanship.
	Tallies    map[string]int
	Tiers      map[string]int
	Violations int
	Diag       diag.Log
}

// Changed returns the records whose encoding changed.
func (r *Result) Changed() []*record.Record {
	var out []*record.Record
	for _, rr := range r.Records {
		if rr.Changed {
			out = append(out, rr.Record)
		}
	}
	return out
}

// All returns every record after migration, in input order.
func (r *Result) All() []*record.Record {
	out := make([]*record.Record, len(r.Records))
	for i, rr := range r.Records {
		out[i] = rr.Record
	}
	return out
}

// Run migrates recs on a bounded worker pool. Each record is migrated on its
// own deep copy; results keep input order so the output matches a
// sequential run.
func (p *Pipeline) Run(ctx context.Context, recs []*record.Record) (*Result, error) {
	results := make([]RecordResult, len(recs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.migrateRecord(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("migration interrupted: %w", err)
	}

	res := &Result{
		Records:   results,
		Migrators: make(map[string]*MigratorStats, len(p.migrators)),
		Tallies:   map[string]int{},
		Tiers:     map[string]int{},
	}
	for _, m := range p.migrators {
		res.Migrators[m.Name()] = &MigratorStats{}
	}
	for _, rr := range results {
		for _, name := range rr.Applied {
			res.Migrators[name].Applied++
		}
		for _, d := range rr.Diagnostics {
			if s, ok := res.Migrators[d.Stage]; ok {
				s.Flagged++
			}
		}
		for stage, tallies := range rr.tallies {
			var into map[string]int
			switch lookupConcern(p.migrators, stage) {
			case ConcernClassification:
				into = res.Tallies
			case ConcernTier:
				into = res.Tiers
			default:
				continue
			}
			for label, n := range tallies {
				into[label] += n
			}
		}
		if rr.Violation {
			res.Violations++
		}
		res.Diag.Add(rr.Diagnostics...)
	}
	p.log.Info("migration finished",
		zap.Int("records", len(recs)),
		zap.Int("changed", len(res.Changed())),
		zap.Int("violations", res.Violations))
	return res, nil
}

// lookupConcern returns the concern of the label-lookup migrator named
// stage, or "" when stage is not a lookup migrator.
func lookupConcern(ms []Migrator, stage string) Concern {
	for _, m := range ms {
		if m.Name() == stage {
			if _, ok := m.(*lookupMigrator); ok {
				return m.Concern()
			}
			return ""
		}
	}
	return ""
}

func (p *Pipeline) migrateRecord(orig *record.Record) RecordResult {
	work := orig.Clone()
	rr := RecordResult{Record: work}
	removed := map[string]string{}

	for _, m := range p.migrators {
		if !m.Applies(work.Kind) || !m.Pending(work.Doc) {
			continue
		}
		before := map[string]bool{}
		for _, lp := range m.Legacy() {
			_, before[lp.String()] = lp.Lookup(work.Doc)
		}

		out := newOutcome(work, m.Name())
		m.Migrate(work.Doc, out)
		rr.Applied = append(rr.Applied, m.Name())
		rr.Diagnostics = append(rr.Diagnostics, out.diags...)
		if out.tallies != nil {
			if rr.tallies == nil {
				rr.tallies = map[string]map[string]int{}
			}
			rr.tallies[m.Name()] = out.tallies
		}

		if back := reintroduced(work.Doc, removed); len(back) > 0 {
			return p.discard(orig, m, back, removed)
		}
		for _, lp := range m.Legacy() {
			if _, still := lp.Lookup(work.Doc); before[lp.String()] && !still {
				removed[lp.String()] = m.Name()
			}
		}
	}

	rr.Changed = changed(orig, work)
	if rr.Changed {
		p.log.Debug("record migrated", zap.String("id", work.ID), zap.Strings("migrators", rr.Applied))
	}
	return rr
}

// reintroduced returns the removed paths that are present again.
func reintroduced(doc *record.Object, removed map[string]string) []string {
	var back []string
	for path := range removed {
		if _, ok := record.MustPath(path).Lookup(doc); ok {
			back = append(back, path)
		}
	}
	sort.Strings(back)
	return back
}

// discard abandons a record's migration after a rule reintroduced a field an
// earlier rule removed. The original is kept unchanged.
func (p *Pipeline) discard(orig *record.Record, m Migrator, back []string, removed map[string]string) RecordResult {
	by := make([]string, len(back))
	for i, path := range back {
		by[i] = removed[path]
	}
	d := diag.Diagnostic{
		Category: diag.MigrationAmbiguity,
		Stage:    Stage,
		RecordID: orig.ID,
		File:     orig.File,
		Path:     strings.Join(back, ", "),
		Message: fmt.Sprintf("%s reintroduced fields removed by %s; migration discarded",
			m.Name(), strings.Join(by, ", ")),
	}
	p.log.Warn("rule ordering violation", zap.String("id", orig.ID), zap.String("migrator", m.Name()), zap.Strings("paths", back))
	return RecordResult{Record: orig.Clone(), Violation: true, Diagnostics: []diag.Diagnostic{d}}
}

func changed(orig, work *record.Record) bool {
	a, errA := orig.Encode()
	b, errB := work.Encode()
	if errA != nil || errB != nil {
		return errA == nil || errB == nil
	}
	return !bytes.Equal(a, b)
}
