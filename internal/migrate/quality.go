package migrate

import (
	"strings"

	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/slug"
)

var (
	identifierPath    = record.MustPath("system.identifier")
	qualityRatingPath = record.MustPath("system.rating")
	qualityLevelPath  = record.MustPath("system.level")
	hasLevelPath      = record.MustPath("system.hasLevel")
	modifiersPath     = record.MustPath("system.modifiers")
)

// qualityMigrator treats a quality as migrated once it has an identifier and
// no legacy rating or modifiers.
type qualityMigrator struct {
	kinds
}

func newQualityMigrator() *qualityMigrator {
	return &qualityMigrator{kinds: kinds{"quality"}}
}

func (m *qualityMigrator) Name() string     { return "quality" }
func (m *qualityMigrator) Concern() Concern { return ConcernQuality }

func (m *qualityMigrator) Legacy() []record.Path {
	return []record.Path{qualityRatingPath, modifiersPath}
}

func (m *qualityMigrator) Pending(doc *record.Object) bool {
	if !identifierPath.Present(doc) {
		return true
	}
	for _, p := range m.Legacy() {
		if _, ok := p.Lookup(doc); ok {
			return true
		}
	}
	return false
}

func (m *qualityMigrator) Migrate(doc *record.Object, out *Outcome) {
	if !identifierPath.Present(doc) {
		id := slug.Make(out.Name())
		if id == "" {
			id = strings.ToLower(out.ID())
			out.Flag(identifierPath, out.Name(), "name yields an empty slug; identifier taken from the id")
		}
		if err := identifierPath.Set(doc, id); err != nil {
			out.Flag(identifierPath, nil, "cannot write identifier: %v", err)
			return
		}
	}

	if raw, ok := qualityRatingPath.Lookup(doc); ok {
		level, hasLevel := m.level(doc, raw, out)
		if err := qualityRatingPath.Replace(doc, qualityLevelPath, level); err != nil {
			out.Flag(qualityLevelPath, nil, "cannot write level: %v", err)
		}
		hasLevelPath.Set(doc, hasLevel)
	}

	if raw, ok := modifiersPath.Lookup(doc); ok {
		if note := modifiersNote(raw); note != "" {
			if _, isObj := record.AsObject(raw); !isObj {
				out.Flag(modifiersPath, raw, "modifiers is a %s; kept as text in notes", record.TypeName(raw))
			}
			appendNote(doc, note, out)
		}
		modifiersPath.Delete(doc)
	}
}

// level converts a legacy rating into a numeric level and hasLevel.
func (m *qualityMigrator) level(doc *record.Object, raw any, out *Outcome) (any, bool) {
	if n, ok := record.AsFloat(raw); ok {
		return record.Number(n), true
	}
	s, ok := raw.(string)
	if !ok {
		if raw != nil {
			out.Flag(qualityRatingPath, raw, "rating is a %s; kept in notes", record.TypeName(raw))
			appendNote(doc, "[Rating: "+record.Text(raw)+"]", out)
			return nil, true
		}
		return nil, false
	}
	inner := strings.Trim(strings.TrimSpace(s), "()")
	switch {
	case inner == "":
		return nil, false
	case strings.EqualFold(inner, "x"):
		return nil, true
	}
	if n, ok := record.ParseNumber(inner); ok {
		return record.Number(n), true
	}
	out.Flag(qualityRatingPath, raw, "non-numeric rating kept in notes")
	appendNote(doc, "[Rating: "+s+"]", out)
	return nil, true
}

// modifiersNote compresses per-field modifiers into one annotation, e.g.
// "[Modifiers: damage +1, penetration +2]". Keys keep document order.
func modifiersNote(raw any) string {
	obj, ok := record.AsObject(raw)
	if !ok {
		if raw == nil {
			return ""
		}
		return "[Modifiers: " + record.Text(raw) + "]"
	}
	parts := make([]string, 0, obj.Len())
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		if n, isNum := record.AsFloat(v); isNum {
			if n == 0 {
				continue
			}
			sign := ""
			if n > 0 {
				sign = "+"
			}
			parts = append(parts, k+" "+sign+record.Text(v))
			continue
		}
		parts = append(parts, k+": "+record.Text(v))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[Modifiers: " + strings.Join(parts, ", ") + "]"
}

