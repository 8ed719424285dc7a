package migrate

import (
	"strings"
	"unicode"

	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/tables"
)

var (
	damagePath     = record.MustPath("system.damage")
	damageTypePath = record.MustPath("system.damageType")
)

// damageMigrator folds a damage string such as "1d10+3 E" and a separate
// damageType field into system.damage {formula, type}.
type damageMigrator struct {
	kinds
	fam *tables.Family
}

func newDamageMigrator(fam *tables.Family) *damageMigrator {
	return &damageMigrator{kinds: kinds(fam.Kinds), fam: fam}
}

func (m *damageMigrator) Name() string     { return "damage" }
func (m *damageMigrator) Concern() Concern { return ConcernDamage }

func (m *damageMigrator) Legacy() []record.Path {
	return []record.Path{damageTypePath}
}

func (m *damageMigrator) Pending(doc *record.Object) bool {
	if _, ok := damageTypePath.Lookup(doc); ok {
		return true
	}
	v, ok := damagePath.Lookup(doc)
	if !ok {
		return false
	}
	_, isObj := record.AsObject(v)
	return !isObj
}

func (m *damageMigrator) Migrate(doc *record.Object, out *Outcome) {
	obj := record.NewObject()
	var formula, suffix string

	raw, hasDamage := damagePath.Lookup(doc)
	switch v := raw.(type) {
	case *record.Object:
		obj = v
	case string:
		formula, suffix = m.splitFormula(v)
	case nil:
	default:
		if record.IsNumber(v) {
			formula = record.Text(v)
		} else {
			out.Flag(damagePath, raw, "damage is a %s; formula left empty", record.TypeName(raw))
		}
	}
	if !obj.Has("formula") {
		if formula == "" {
			out.Flag(damagePath, raw, "missing damage formula")
		}
		obj.Set("formula", formula)
	}

	label := suffix
	if dt, ok := damageTypePath.Lookup(doc); ok && dt != nil {
		explicit := record.Text(dt)
		if label != "" && !strings.EqualFold(resolved(m.fam, label), resolved(m.fam, explicit)) {
			out.Flag(damageTypePath, dt, "damage type %q disagrees with formula suffix %q; using the field", explicit, label)
		}
		label = explicit
	}
	if existing, ok := obj.Get("type"); ok && label == "" {
		label = record.Text(existing)
	}

	token, src := m.fam.Resolve(label)
	if src == tables.SourceUnresolved {
		token, src = m.fam.Default, tables.SourceDefault
		if label == "" {
			out.Flag(damagePath, nil, "no damage type; defaulted to %q", token)
		} else {
			out.Flag(damageTypePath, label, "unrecognised damage type; defaulted to %q", token)
		}
	}
	out.Tally(string(src))
	obj.Set("type", token)

	if hasDamage {
		damagePath.Set(doc, obj)
		damageTypePath.Delete(doc)
		return
	}
	if err := damageTypePath.Replace(doc, damagePath, obj); err != nil {
		out.Flag(damagePath, nil, "cannot write damage: %v", err)
	}
}

// splitFormula separates a trailing damage type from a dice formula:
// "1d10+3 E" and "2d10R" both carry one, "5" does not.
func (m *damageMigrator) splitFormula(s string) (formula, label string) {
	s = strings.TrimSpace(s)
	if fields := strings.Fields(s); len(fields) > 1 {
		last := strings.Trim(fields[len(fields)-1], ".,()[]")
		if tok, src := m.fam.Resolve(last); tok != "" && src == tables.SourceDirect {
			return strings.Join(fields[:len(fields)-1], " "), last
		}
	}
	runes := []rune(s)
	if n := len(runes); n >= 2 {
		last, prev := runes[n-1], runes[n-2]
		if unicode.IsLetter(last) && (unicode.IsDigit(prev) || prev == ')') {
			if _, src := m.fam.Resolve(string(last)); src == tables.SourceDirect {
				return string(runes[:n-1]), string(last)
			}
		}
	}
	return s, ""
}

// resolved returns the token label maps to in fam, or the normalised label
// itself when nothing matches.
func resolved(fam *tables.Family, label string) string {
	if tok, _ := fam.Resolve(label); tok != "" {
		return tok
	}
	return tables.Normalize(label)
}
