// Package migrate converts legacy record fields into the canonical schema.
//
// Each field family has one Migrator. A migrator's trigger is "legacy field
// present and canonical field absent", so running it again on its own output
// is a no-op. Migrators never fail: a value they cannot classify gets a
// documented safe default and a MigrationAmbiguity flag on the Outcome.
package migrate

import (
	"fmt"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/diag"
	"github.com/grimdark-vtt/packforge/internal/record"
)

// Concern groups migrators for the --only flag.
type Concern string

const (
	ConcernCoverage       Concern = "coverage"
	ConcernRating         Concern = "rating"
	ConcernClassification Concern = "classification"
	ConcernDamage         Concern = "damage"
	ConcernTier           Concern = "tier"
	ConcernSkill          Concern = "skill"
	ConcernTrait          Concern = "trait"
	ConcernQuality        Concern = "quality"
)

// Concerns lists every concern in pipeline order.
var Concerns = []Concern{
	ConcernCoverage,
	ConcernRating,
	ConcernClassification,
	ConcernDamage,
	ConcernTier,
	ConcernSkill,
	ConcernTrait,
	ConcernQuality,
}

// ParseConcern validates a concern name.
func ParseConcern(s string) (Concern, error) {
	for _, c := range Concerns {
		if string(c) == strings.ToLower(strings.TrimSpace(s)) {
			return c, nil
		}
	}
	names := make([]string, len(Concerns))
	for i, c := range Concerns {
		names[i] = string(c)
	}
	return "", fmt.Errorf("unknown concern %q (valid: %s)", s, strings.Join(names, ", "))
}

// Migrator is a pure transform of one legacy field family.
type Migrator interface {
	// Name identifies the migrator in reports and diagnostics.
	Name() string
	Concern() Concern
	// Applies reports whether records of kind carry this family.
	Applies(kind string) bool
	// Pending is the trigger: legacy shape present, canonical shape absent.
	Pending(doc *record.Object) bool
	// Migrate rewrites doc in place.
	Migrate(doc *record.Object, out *Outcome)
	// Legacy lists the fields the migrator removes once it has run.
	Legacy() []record.Path
}

// Outcome collects what one migrator observed on one record.
type Outcome struct {
	rec     *record.Record
	stage   string
	diags   []diag.Diagnostic
	tallies map[string]int
}

func newOutcome(rec *record.Record, stage string) *Outcome {
	return &Outcome{rec: rec, stage: stage}
}

// Name returns the record's display name.
func (o *Outcome) Name() string { return o.rec.Name }

// ID returns the record's id.
func (o *Outcome) ID() string { return o.rec.ID }

// Flag records a MigrationAmbiguity for the value found at path.
func (o *Outcome) Flag(path record.Path, value any, format string, args ...any) {
	d := diag.Diagnostic{
		Category: diag.MigrationAmbiguity,
		Stage:    o.stage,
		RecordID: o.rec.ID,
		File:     o.rec.File,
		Path:     path.String(),
		Message:  fmt.Sprintf(format, args...),
	}
	if value != nil {
		d.Value = record.Text(value)
	}
	o.diags = append(o.diags, d)
}

// Tally counts one occurrence of label (e.g. how a classification resolved).
func (o *Outcome) Tally(label string) {
	if o.tallies == nil {
		o.tallies = make(map[string]int)
	}
	o.tallies[label]++
}

// Diagnostics returns the flags raised so far.
func (o *Outcome) Diagnostics() []diag.Diagnostic { return o.diags }

// fieldPair implements the common trigger for a legacy -> canonical rename.
type fieldPair struct {
	legacy    record.Path
	canonical record.Path
}

func (f fieldPair) Pending(doc *record.Object) bool {
	_, hasLegacy := f.legacy.Lookup(doc)
	return hasLegacy && !f.canonical.Present(doc)
}

func (f fieldPair) Legacy() []record.Path {
	return []record.Path{f.legacy}
}

// kinds is a small set of record kinds.
type kinds []string

func (k kinds) Applies(kind string) bool {
	for _, s := range k {
		if s == kind {
			return true
		}
	}
	return false
}

var (
	notesPath         = record.MustPath("system.notes")
	notesFallbackPath = record.MustPath("system.migrationNotes")
)

// appendNote appends an annotation to system.notes. An annotation already
// present is not added twice. When notes holds something other than text the
// annotation goes to system.migrationNotes instead and is flagged.
func appendNote(doc *record.Object, text string, out *Outcome) {
	target := notesPath
	v, _ := notesPath.Lookup(doc)
	if v != nil {
		if _, isText := v.(string); !isText {
			out.Flag(notesPath, v, "notes is a %s; annotation written to %s", record.TypeName(v), notesFallbackPath)
			target = notesFallbackPath
			v, _ = target.Lookup(doc)
		}
	}
	existing, _ := v.(string)
	if strings.Contains(existing, text) {
		return
	}
	if strings.TrimSpace(existing) != "" {
		text = existing + " " + text
	}
	if err := target.Set(doc, text); err != nil {
		out.Flag(target, nil, "cannot store annotation %q: %v", text, err)
	}
}
