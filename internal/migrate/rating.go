package migrate

import (
	"strings"

	"github.com/grimdark-vtt/packforge/internal/record"
)

var (
	apPath           = record.MustPath("system.ap")
	armourPointsPath = record.MustPath("system.armourPoints")
)

// Ratings that stand for a mechanic no flat number can express.
var ratingSentinels = map[string]bool{
	"special": true, "*": true, "varies": true, "variable": true, "see notes": true,
	"see text": true, "see description": true, "n/a": true, "-": true, "?": true,
}

type ratingMigrator struct {
	kinds
	fieldPair
}

func newRatingMigrator() *ratingMigrator {
	return &ratingMigrator{
		kinds:     kinds{"armour"},
		fieldPair: fieldPair{legacy: apPath, canonical: armourPointsPath},
	}
}

func (m *ratingMigrator) Name() string     { return "rating" }
func (m *ratingMigrator) Concern() Concern { return ConcernRating }

func (m *ratingMigrator) Migrate(doc *record.Object, out *Outcome) {
	raw, _ := m.legacy.Lookup(doc)
	zones := make(map[string]float64, len(Zones))

	switch v := raw.(type) {
	case string:
		m.fromString(doc, v, zones, out)
	case []any:
		nums, ok := numbers(v)
		if !ok || !tuple(nums, zones) {
			m.special(doc, raw, zones, out, true)
		}
	case *record.Object:
		m.adopt(doc, v, zones, out)
	default:
		if n, ok := record.AsFloat(v); ok {
			m.broadcast(doc, n, zones)
			break
		}
		m.special(doc, raw, zones, out, true)
	}

	obj := record.NewObject()
	for _, z := range Zones {
		obj.Set(z, record.Number(zones[z]))
	}
	if err := m.legacy.Replace(doc, m.canonical, obj); err != nil {
		out.Flag(m.canonical, nil, "cannot write armour points: %v", err)
	}
}

func (m *ratingMigrator) fromString(doc *record.Object, s string, zones map[string]float64, out *Outcome) {
	trimmed := strings.TrimSpace(s)
	if n, ok := record.ParseNumber(trimmed); ok {
		m.broadcast(doc, n, zones)
		return
	}
	if strings.HasSuffix(trimmed, "%") || ratingSentinels[strings.ToLower(trimmed)] {
		m.special(doc, s, zones, out, false)
		return
	}
	if strings.Contains(trimmed, "/") {
		parts := strings.Split(trimmed, "/")
		nums := make([]float64, 0, len(parts))
		for _, p := range parts {
			n, ok := record.ParseNumber(p)
			if !ok {
				m.special(doc, s, zones, out, true)
				return
			}
			nums = append(nums, n)
		}
		if tuple(nums, zones) {
			return
		}
	}
	m.special(doc, s, zones, out, true)
}

// broadcast gives n to every covered zone.
func (m *ratingMigrator) broadcast(doc *record.Object, n float64, zones map[string]float64) {
	cov := coveredZones(doc)
	for _, z := range Zones {
		if cov.Covers(z) {
			zones[z] = n
		}
	}
}

// special zeroes every zone and keeps the raw value in an annotation. A
// recognised special case (percentage, sentinel) is still flagged so that it
// shows in the report, but worded as preserved rather than ambiguous.
func (m *ratingMigrator) special(doc *record.Object, raw any, zones map[string]float64, out *Outcome, unknown bool) {
	for _, z := range Zones {
		zones[z] = 0
	}
	text := record.Text(raw)
	appendNote(doc, "[AP: "+text+"]", out)
	if unknown {
		out.Flag(m.legacy, raw, "unrecognised armour rating; zones set to 0, raw value kept in notes")
		return
	}
	out.Flag(m.legacy, raw, "special armour rating preserved in notes; zones set to 0")
}

// adopt takes over a partially migrated object of zone numbers.
func (m *ratingMigrator) adopt(doc *record.Object, obj *record.Object, zones map[string]float64, out *Outcome) {
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		n, ok := record.AsFloat(v)
		if !ok {
			out.Flag(m.legacy.Child(k), v, "non-numeric zone rating; zone set to 0")
			appendNote(doc, "[AP "+k+": "+record.Text(v)+"]", out)
			continue
		}
		switch k {
		case "arms":
			zones[ZoneLeftArm], zones[ZoneRightArm] = n, n
		case "legs":
			zones[ZoneLeftLeg], zones[ZoneRightLeg] = n, n
		default:
			if !isZone(k) {
				out.Flag(m.legacy.Child(k), v, "unknown zone %q dropped", k)
				appendNote(doc, "[AP "+k+": "+record.Text(v)+"]", out)
				continue
			}
			zones[k] = n
		}
	}
}

// tuple maps a 4-tuple (head/body/arms/legs) or a 6-tuple (one per zone).
func tuple(nums []float64, zones map[string]float64) bool {
	switch len(nums) {
	case 4:
		zones[ZoneHead] = nums[0]
		zones[ZoneBody] = nums[1]
		zones[ZoneLeftArm], zones[ZoneRightArm] = nums[2], nums[2]
		zones[ZoneLeftLeg], zones[ZoneRightLeg] = nums[3], nums[3]
		return true
	case 6:
		for i, z := range Zones {
			zones[z] = nums[i]
		}
		return true
	}
	return false
}

func numbers(items []any) ([]float64, bool) {
	out := make([]float64, 0, len(items))
	for _, item := range items {
		n, ok := record.AsFloat(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func isZone(k string) bool {
	for _, z := range Zones {
		if z == k {
			return true
		}
	}
	return false
}

// coveredZones reads canonical coverage, then the legacy phrase. A record
// with neither is treated as fully covered.
func coveredZones(doc *record.Object) Coverage {
	if v, ok := coveragePath.Lookup(doc); ok {
		if items, isList := v.([]any); isList {
			var cov Coverage
			for _, item := range items {
				if s, isText := item.(string); isText {
					cov.Zones = append(cov.Zones, s)
				}
			}
			if len(cov.Zones) > 0 {
				return cov
			}
		}
	}
	if v, ok := locationsPath.Lookup(doc); ok {
		if cov, parsed := coverageFromValue(v); parsed && len(cov.Zones) > 0 {
			return cov
		}
	}
	return Coverage{Zones: []string{ZoneAll}}
}
