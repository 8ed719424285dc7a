// Package consolidate folds single-variant records that share a category and
// subcategory into one record holding a variant map, and checks each group's
// variant keys against the declared domain.
//
// Planning needs the whole corpus: a group is only complete once every member
// has been seen, so Plan takes the full record set and nothing is folded
// incrementally.
package consolidate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/diag"
	"github.com/grimdark-vtt/packforge/internal/record"
	"github.com/grimdark-vtt/packforge/internal/tables"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage names the engine in diagnostics.
const Stage = "consolidate"

const defaultNameTemplate = "{category} - {subcategory}"

var (
	systemPath      = record.MustPath("system")
	variantsPath    = record.MustPath("system.variants")
	categoryPath    = record.MustPath("system.category")
	subcategoryPath = record.MustPath("system.subcategory")
)

// Key identifies a group. Both parts are trimmed and lowercased.
type Key struct {
	Category    string
	Subcategory string
}

func (k Key) String() string {
	return k.Category + "/" + k.Subcategory
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Group is one planned consolidation.
type Group struct {
	Spec *tables.GroupSpec
	Key  Key
	ID   string
	Name string
	// Members are folded into the record and removed on a live run, ordered
	// by file path.
	Members []*record.Record
	// Base is the existing consolidated record with this id, if any.
	Base *record.Record
	// Record is the synthesized consolidated record.
	Record *record.Record
	// Variants lists the variant keys in output order.
	Variants []string
	// Missing lists domain keys no member supplies.
	Missing []string
	// Extra lists keys outside the declared domain.
	Extra []string
	// Duplicates are members whose variant key another member already
	// supplied. They are left in place.
	Duplicates []*record.Record
	// Checked is false when no domain is declared for the group.
	Checked bool
}

// Complete reports whether the group's variant keys cover its domain.
func (g *Group) Complete() bool {
	return len(g.Missing) == 0
}

// Plan is the result of grouping a corpus.
type Plan struct {
	Groups []*Group
	Diag   diag.Log
}

// Gaps counts groups with missing variant keys.
func (p *Plan) Gaps() int {
	n := 0
	for _, g := range p.Groups {
		if !g.Complete() {
			n++
		}
	}
	return n
}

// Members counts the records folded across all groups.
func (p *Plan) Members() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Members)
	}
	return n
}

// Engine plans and applies consolidation for the kinds in its specs.
type Engine struct {
	specs []*tables.GroupSpec
	title cases.Caser
	log   *zap.Logger
}

// New returns an engine for the given group specs.
func New(specs []*tables.GroupSpec, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{specs: specs, title: cases.Title(language.English), log: log}
}

// Plan groups recs. Input records are not modified.
func (e *Engine) Plan(recs []*record.Record) *Plan {
	plan := &Plan{}
	for _, spec := range e.specs {
		e.planKind(spec, recs, plan)
	}
	return plan
}

func (e *Engine) planKind(spec *tables.GroupSpec, recs []*record.Record, plan *Plan) {
	bases := map[string]*record.Record{}
	members := map[Key][]*record.Record{}

	for _, rec := range recs {
		if rec.Kind != spec.Kind {
			continue
		}
		if v, ok := variantsPath.Lookup(rec.Doc); ok {
			if _, isObj := record.AsObject(v); isObj {
				if prev, dup := bases[rec.ID]; dup {
					plan.Diag.Add(e.flag(rec, "", "", "consolidated record id already used by %s; ignored", prev.File))
					continue
				}
				bases[rec.ID] = rec
				continue
			}
		}
		if !spec.VariantPath.Present(rec.Doc) {
			continue
		}
		cat, catOK := text(rec.Doc, spec.CategoryPath)
		sub, subOK := text(rec.Doc, spec.SubcategoryPath)
		if !catOK || !subOK {
			plan.Diag.Add(e.flag(rec, spec.Category+", "+spec.Subcategory, "",
				"variant record lacks a category or subcategory; not consolidated"))
			continue
		}
		key := Key{Category: normalizeKey(cat), Subcategory: normalizeKey(sub)}
		members[key] = append(members[key], rec)
	}

	groups := map[string]*Group{}
	for key, ms := range members {
		id := GroupID(spec.Kind, key.Category, key.Subcategory)
		sort.SliceStable(ms, func(i, j int) bool {
			if ms[i].File != ms[j].File {
				return ms[i].File < ms[j].File
			}
			return ms[i].ID < ms[j].ID
		})
		groups[id] = &Group{Spec: spec, Key: key, ID: id, Members: ms, Base: bases[id]}
	}
	// Consolidated records with no members left are rechecked for completeness.
	for id, base := range bases {
		if _, ok := groups[id]; ok {
			continue
		}
		cat, _ := text(base.Doc, categoryPath)
		sub, _ := text(base.Doc, subcategoryPath)
		key := Key{Category: normalizeKey(cat), Subcategory: normalizeKey(sub)}
		groups[id] = &Group{Spec: spec, Key: key, ID: id, Base: base}
	}

	ordered := make([]*Group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Key != ordered[j].Key {
			if ordered[i].Key.Category != ordered[j].Key.Category {
				return ordered[i].Key.Category < ordered[j].Key.Category
			}
			return ordered[i].Key.Subcategory < ordered[j].Key.Subcategory
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, g := range ordered {
		e.build(g, plan)
		plan.Groups = append(plan.Groups, g)
	}
}

// build synthesizes the group's record and runs the completeness check.
func (e *Engine) build(g *Group, plan *Plan) {
	spec := g.Spec
	g.Name = e.name(spec, g.Key)

	variants := map[string]any{}
	source := map[string]*record.Record{}
	if g.Base != nil {
		v, _ := variantsPath.Lookup(g.Base.Doc)
		obj, _ := record.AsObject(v)
		obj = obj.Clone()
		for _, k := range obj.Keys() {
			variants[k], _ = obj.Get(k)
		}
	}

	var kept []*record.Record
	for _, m := range g.Members {
		raw, _ := spec.VariantPath.Lookup(m.Doc)
		key := strings.TrimSpace(record.Text(raw))
		if prev, dup := source[key]; dup {
			g.Duplicates = append(g.Duplicates, m)
			plan.Diag.Add(e.flag(m, spec.Variant, key, "duplicate variant key; %s wins and this record is left in place", prev.File))
			continue
		}
		if _, inBase := variants[key]; inBase {
			plan.Diag.Add(e.flag(m, spec.Variant, key, "replaces variant already stored in %s", g.ID))
		}
		source[key] = m
		variants[key] = e.payload(spec, m)
		kept = append(kept, m)
	}
	g.Members = kept

	domain, checked := spec.DomainFor(g.Key.Category)
	g.Checked = checked
	g.Variants, g.Extra = orderKeys(variants, domain, checked)
	if checked {
		for _, k := range domain {
			if _, ok := variants[k]; !ok {
				g.Missing = append(g.Missing, k)
			}
		}
		for _, k := range g.Extra {
			rec := g.Base
			if src, ok := source[k]; ok {
				rec = src
			}
			plan.Diag.Add(e.flag(rec, spec.Variant, k, "variant key outside the expected domain for %s; kept", g.Key))
		}
	} else {
		e.log.Debug("no variant domain declared", zap.String("kind", spec.Kind), zap.String("group", g.Key.String()))
	}
	if len(g.Missing) > 0 {
		plan.Diag.Add(diag.Diagnostic{
			Category: diag.ConsolidationGap,
			Stage:    Stage,
			RecordID: g.ID,
			Path:     variantsPath.String(),
			Value:    strings.Join(g.Missing, ", "),
			Message:  fmt.Sprintf("%s group %s is missing variant keys %s", spec.Kind, g.Key, strings.Join(g.Missing, ", ")),
		})
	}

	g.Record = e.synthesize(g, variants)
}

// payload is a member's system block without the grouping fields, led by the
// member's name.
func (e *Engine) payload(spec *tables.GroupSpec, m *record.Record) *record.Object {
	out := record.NewObject()
	out.Set(record.KeyName, m.Name)
	v, _ := systemPath.Lookup(m.Doc)
	sys, ok := record.AsObject(v)
	if !ok {
		return out
	}
	sys = sys.Clone()
	for _, p := range []record.Path{spec.CategoryPath, spec.SubcategoryPath, spec.VariantPath} {
		if rel, under := p.Relative(systemPath); under {
			rel.Delete(sys)
		}
	}
	for _, k := range sys.Keys() {
		if k == record.KeyName {
			continue
		}
		val, _ := sys.Get(k)
		out.Set(k, val)
	}
	return out
}

func (e *Engine) synthesize(g *Group, variants map[string]any) *record.Record {
	vars := record.NewObject()
	for _, k := range g.Variants {
		vars.Set(k, variants[k])
	}

	var rec *record.Record
	if g.Base != nil {
		rec = g.Base.Clone()
	} else {
		doc := record.NewObject()
		doc.Set(record.KeyID, g.ID)
		doc.Set(record.KeyName, "")
		doc.Set(record.KeyKind, g.Spec.Kind)
		rec = &record.Record{ID: g.ID, Kind: g.Spec.Kind, Doc: doc}
	}
	rec.Doc.Set(record.KeyName, g.Name)
	rec.Name = g.Name
	categoryPath.Set(rec.Doc, g.Key.Category)
	subcategoryPath.Set(rec.Doc, g.Key.Subcategory)
	variantsPath.Set(rec.Doc, vars)
	return rec
}

func (e *Engine) name(spec *tables.GroupSpec, key Key) string {
	tmpl := spec.Name
	if tmpl == "" {
		tmpl = defaultNameTemplate
	}
	r := strings.NewReplacer(
		"{category}", e.title.String(key.Category),
		"{subcategory}", e.title.String(key.Subcategory),
	)
	return r.Replace(tmpl)
}

func (e *Engine) flag(rec *record.Record, path, value, format string, args ...any) diag.Diagnostic {
	d := diag.Diagnostic{
		Category: diag.MigrationAmbiguity,
		Stage:    Stage,
		Path:     path,
		Value:    value,
		Message:  fmt.Sprintf(format, args...),
	}
	if rec != nil {
		d.RecordID = rec.ID
		d.File = rec.File
	}
	return d
}

// orderKeys puts domain keys first in declared order, then the remaining
// keys in natural order. The remaining keys are returned as extras when a
// domain was checked.
func orderKeys(variants map[string]any, domain []string, checked bool) ([]string, []string) {
	inDomain := make(map[string]bool, len(domain))
	var out []string
	for _, k := range domain {
		inDomain[k] = true
		if _, ok := variants[k]; ok {
			out = append(out, k)
		}
	}
	var rest []string
	for k := range variants {
		if !inDomain[k] {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return naturalLess(rest[i], rest[j]) })
	out = append(out, rest...)
	if !checked {
		return out, nil
	}
	return out, rest
}

// naturalLess orders numeric keys by value and before other keys.
func naturalLess(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// text reads a scalar at p as trimmed text.
func text(doc *record.Object, p record.Path) (string, bool) {
	v, ok := p.Lookup(doc)
	if !ok || v == nil {
		return "", false
	}
	if _, isObj := record.AsObject(v); isObj {
		return "", false
	}
	if _, isList := v.([]any); isList {
		return "", false
	}
	s := strings.TrimSpace(record.Text(v))
	return s, s != ""
}
