package migrate

import (
	"math"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/lookup"
	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/tables"
)

var (
	characteristicPath = record.MustPath("system.characteristic")
	advancePath        = record.MustPath("system.advance")
	trainedPath        = record.MustPath("system.trained")
	plus10Path         = record.MustPath("system.plus10")
	plus20Path         = record.MustPath("system.plus20")
	plus30Path         = record.MustPath("system.plus30")
	rollPath           = record.MustPath("system.roll")
)

// Advance flags in descending order of precedence.
var advanceFlags = []struct {
	path  record.Path
	value int
}{
	{plus30Path, 30},
	{plus20Path, 20},
	{plus10Path, 10},
}

type skillMigrator struct {
	kinds
	tables *tables.Tables
	cache  *lookup.SkillCache
}

func newSkillMigrator(tb *tables.Tables, cache *lookup.SkillCache) *skillMigrator {
	return &skillMigrator{kinds: kinds{"skill"}, tables: tb, cache: cache}
}

func (m *skillMigrator) Name() string     { return "skill" }
func (m *skillMigrator) Concern() Concern { return ConcernSkill }

func (m *skillMigrator) Legacy() []record.Path {
	return []record.Path{characteristicPath, advancePath, trainedPath, plus10Path, plus20Path, plus30Path}
}

func (m *skillMigrator) Pending(doc *record.Object) bool {
	if rollPath.Present(doc) {
		return false
	}
	for _, p := range m.Legacy() {
		if _, ok := p.Lookup(doc); ok {
			return true
		}
	}
	return false
}

func (m *skillMigrator) Migrate(doc *record.Object, out *Outcome) {
	base, spec := lookup.SplitName(out.Name())

	roll := record.NewObject()
	roll.Set("characteristic", m.characteristic(doc, base, spec, out))
	advance, trained := m.advance(doc, out)
	roll.Set("advance", record.Int(advance))
	roll.Set("trained", trained)
	if spec != "" {
		roll.Set("specialisation", spec)
	}

	if _, ok := characteristicPath.Lookup(doc); ok {
		if err := characteristicPath.Replace(doc, rollPath, roll); err != nil {
			out.Flag(rollPath, nil, "cannot write roll: %v", err)
		}
	} else if err := rollPath.Set(doc, roll); err != nil {
		out.Flag(rollPath, nil, "cannot write roll: %v", err)
	}
	for _, p := range m.Legacy()[1:] {
		p.Delete(doc)
	}
}

// characteristic resolves the governing characteristic: the record's own
// label through the characteristics table, then the skill catalogue, then
// the configured default.
func (m *skillMigrator) characteristic(doc *record.Object, base, spec string, out *Outcome) string {
	raw, hasLabel := characteristicPath.Lookup(doc)
	label := ""
	if raw != nil {
		label = record.Text(raw)
	}
	if tok, ok := m.tables.Characteristic(label); ok {
		out.Tally("table")
		return tok
	}
	if tok, ok := m.cache.Characteristic(lookup.Key{Name: base, Specialisation: spec}); ok {
		out.Tally("catalogue")
		if hasLabel && strings.TrimSpace(label) != "" {
			out.Flag(characteristicPath, raw, "unrecognised characteristic; took %q from the skill catalogue", tok)
		}
		return tok
	}
	out.Tally("default")
	out.Flag(characteristicPath, raw, "characteristic unknown for skill %q; defaulted to %q", out.Name(), m.tables.SkillDefault)
	return m.tables.SkillDefault
}

// advance reads a numeric advance or the legacy boolean ladder.
func (m *skillMigrator) advance(doc *record.Object, out *Outcome) (int, bool) {
	trained := false
	if v, ok := trainedPath.Lookup(doc); ok {
		trained = m.flag(trainedPath, v, out)
	}

	if v, ok := advancePath.Lookup(doc); ok && v != nil {
		n, isNum := record.AsFloat(v)
		if s, isText := v.(string); isText {
			n, isNum = record.ParseNumber(strings.TrimPrefix(strings.TrimSpace(s), "+"))
		}
		switch {
		case isNum && (n < math.MinInt32 || n > math.MaxInt32):
			out.Flag(advancePath, v, "advance is out of range; treated as 0")
		case isNum:
			if _, explicit := trainedPath.Lookup(doc); !explicit {
				trained = true
			}
			return int(n), trained
		default:
			out.Flag(advancePath, v, "advance is not a number; treated as 0")
		}
	}

	for _, f := range advanceFlags {
		if v, ok := f.path.Lookup(doc); ok && m.flag(f.path, v, out) {
			return f.value, true
		}
	}
	return 0, trained
}

func (m *skillMigrator) flag(p record.Path, v any, out *Outcome) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	}
	if n, ok := record.AsFloat(v); ok {
		return n != 0
	}
	out.Flag(p, v, "expected a boolean; treated as false")
	return false
}
