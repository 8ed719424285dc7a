package migrate

import (
	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/tables"
)

// lookupMigrator maps a legacy label to a canonical token through one table
// family. It serves both the classification and the tier concerns; they
// differ only in what happens to a label nothing resolves.
type lookupMigrator struct {
	fieldPair
	fam     *tables.Family
	concern Concern
}

func newLookupMigrator(fam *tables.Family, concern Concern) *lookupMigrator {
	return &lookupMigrator{
		fieldPair: fieldPair{legacy: fam.LegacyPath, canonical: fam.CanonicalPath},
		fam:       fam,
		concern:   concern,
	}
}

func (m *lookupMigrator) Name() string             { return m.fam.Name }
func (m *lookupMigrator) Concern() Concern         { return m.concern }
func (m *lookupMigrator) Applies(kind string) bool { return m.fam.AppliesTo(kind) }

func (m *lookupMigrator) Migrate(doc *record.Object, out *Outcome) {
	raw, _ := m.legacy.Lookup(doc)
	label, isText := raw.(string)
	if !isText && raw != nil {
		label = record.Text(raw)
	}

	token, src := m.fam.Resolve(label)
	if src == tables.SourceUnresolved && m.fam.Default != "" {
		out.Flag(m.legacy, raw, "unrecognised %s label; defaulted to %q", m.fam.Name, m.fam.Default)
		token, src = m.fam.Default, tables.SourceDefault
	}
	out.Tally(string(src))

	if src == tables.SourceUnresolved {
		out.Flag(m.legacy, raw, "unresolved %s label left in place", m.fam.Name)
		return
	}
	if err := m.legacy.Replace(doc, m.canonical, token); err != nil {
		out.Flag(m.canonical, nil, "cannot write %s: %v", m.fam.Name, err)
	}
}
