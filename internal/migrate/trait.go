package migrate

import (
	"regexp"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/record"
)

var (
	traitLevelPath  = record.MustPath("system.level")
	traitRatingPath = record.MustPath("system.rating")
)

var multiplierLevel = regexp.MustCompile(`^[x×](\d+(?:\.\d+)?)$`)

type traitMigrator struct {
	kinds
	fieldPair
}

func newTraitMigrator() *traitMigrator {
	return &traitMigrator{
		kinds:     kinds{"trait"},
		fieldPair: fieldPair{legacy: traitLevelPath, canonical: traitRatingPath},
	}
}

func (m *traitMigrator) Name() string     { return "trait" }
func (m *traitMigrator) Concern() Concern { return ConcernTrait }

func (m *traitMigrator) Migrate(doc *record.Object, out *Outcome) {
	raw, _ := m.legacy.Lookup(doc)
	value, text, variable := traitLevel(raw)
	if _, isText := raw.(string); !isText && value == nil && raw != nil {
		out.Flag(m.legacy, raw, "trait level is a %s; kept as text", record.TypeName(raw))
		text = record.Text(raw)
	}

	rating := record.NewObject()
	rating.Set("value", value)
	rating.Set("text", text)
	rating.Set("variable", variable)
	if err := m.legacy.Replace(doc, m.canonical, rating); err != nil {
		out.Flag(m.canonical, nil, "cannot write trait rating: %v", err)
	}
}

// traitLevel splits a legacy level into a numeric value (or nil), its display
// text and whether the level is the variable "(X)".
func traitLevel(raw any) (any, string, bool) {
	if n, ok := record.AsFloat(raw); ok {
		return record.Number(n), record.Text(raw), false
	}
	s, ok := raw.(string)
	if !ok {
		return nil, "", false
	}
	inner := strings.TrimSpace(s)
	if strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")") {
		inner = strings.TrimSpace(inner[1 : len(inner)-1])
	}
	switch {
	case inner == "":
		return nil, "", false
	case strings.EqualFold(inner, "x"):
		return nil, "X", true
	}
	if n, ok := record.ParseNumber(inner); ok {
		return record.Number(n), inner, false
	}
	if m := multiplierLevel.FindStringSubmatch(strings.ToLower(inner)); m != nil {
		if n, ok := record.ParseNumber(m[1]); ok {
			return record.Number(n), inner, false
		}
	}
	return nil, inner, false
}
