package migrate

import (
	"regexp"
	"strings"

	"github.com/grimdark-vtt/packforge/internal/record"
)

// Body zone tokens in canonical order.
const (
	ZoneHead     = "head"
	ZoneBody     = "body"
	ZoneLeftArm  = "leftArm"
	ZoneRightArm = "rightArm"
	ZoneLeftLeg  = "leftLeg"
	ZoneRightLeg = "rightLeg"
	// ZoneAll is the wildcard token for full coverage.
	ZoneAll = "all"
)

// Zones lists the six body zones in canonical order.
var Zones = []string{ZoneHead, ZoneBody, ZoneLeftArm, ZoneRightArm, ZoneLeftLeg, ZoneRightLeg}

var (
	locationsPath = record.MustPath("system.locations")
	coveragePath  = record.MustPath("system.coverage")
)

var (
	phraseSplit = regexp.MustCompile(`\s*(?:[,/&+;]|\band\b)\s*`)
	fillerWords = map[string]bool{"the": true, "both": true, "of": true}
)

var wildcardPhrases = map[string]bool{
	"all": true, "full": true, "whole": true, "whole body": true, "entire": true,
	"entire body": true, "full body": true, "everything": true, "all over": true,
	"complete": true, "total": true,
}

var zoneSynonyms = map[string][]string{
	"head": {ZoneHead}, "helm": {ZoneHead}, "helmet": {ZoneHead}, "face": {ZoneHead},
	"skull": {ZoneHead}, "hood": {ZoneHead}, "mask": {ZoneHead},

	"body": {ZoneBody}, "chest": {ZoneBody}, "torso": {ZoneBody}, "abdomen": {ZoneBody},
	"back": {ZoneBody}, "trunk": {ZoneBody}, "stomach": {ZoneBody}, "breastplate": {ZoneBody},

	"arm": {ZoneLeftArm, ZoneRightArm}, "arms": {ZoneLeftArm, ZoneRightArm},
	"hand": {ZoneLeftArm, ZoneRightArm}, "hands": {ZoneLeftArm, ZoneRightArm},
	"gauntlets": {ZoneLeftArm, ZoneRightArm}, "bracers": {ZoneLeftArm, ZoneRightArm},
	"left arm": {ZoneLeftArm}, "l arm": {ZoneLeftArm}, "la": {ZoneLeftArm},
	"right arm": {ZoneRightArm}, "r arm": {ZoneRightArm}, "ra": {ZoneRightArm},

	"leg": {ZoneLeftLeg, ZoneRightLeg}, "legs": {ZoneLeftLeg, ZoneRightLeg},
	"foot": {ZoneLeftLeg, ZoneRightLeg}, "feet": {ZoneLeftLeg, ZoneRightLeg},
	"boots": {ZoneLeftLeg, ZoneRightLeg}, "greaves": {ZoneLeftLeg, ZoneRightLeg},
	"left leg": {ZoneLeftLeg}, "l leg": {ZoneLeftLeg}, "ll": {ZoneLeftLeg},
	"right leg": {ZoneRightLeg}, "r leg": {ZoneRightLeg}, "rl": {ZoneRightLeg},
}

// Coverage is the parsed form of a location phrase.
type Coverage struct {
	// Zones holds canonical tokens in zone order, or just ZoneAll.
	Zones []string
	// Unmatched holds the phrase pieces no synonym recognised.
	Unmatched []string
}

// Wildcard reports full coverage.
func (c Coverage) Wildcard() bool {
	return len(c.Zones) == 1 && c.Zones[0] == ZoneAll
}

// Covers reports whether zone is covered.
func (c Coverage) Covers(zone string) bool {
	for _, z := range c.Zones {
		if z == zone || z == ZoneAll {
			return true
		}
	}
	return false
}

// ParseCoverage maps free text to zone tokens. Pieces are split on , / & + ;
// and "and". Any wildcard piece makes the whole result ["all"].
func ParseCoverage(text string) Coverage {
	var out Coverage
	set := map[string]bool{}
	wildcard := false

	for _, piece := range phraseSplit.Split(strings.ToLower(text), -1) {
		words := pieceWords(piece)
		if len(words) == 0 {
			continue
		}
		phrase := strings.Join(words, " ")
		if wildcardPhrases[phrase] {
			wildcard = true
			continue
		}
		if zones, ok := zoneSynonyms[phrase]; ok {
			for _, z := range zones {
				set[z] = true
			}
			continue
		}
		matched := false
		for _, w := range words {
			if wildcardPhrases[w] {
				wildcard = true
				matched = true
				continue
			}
			if zones, ok := zoneSynonyms[w]; ok {
				for _, z := range zones {
					set[z] = true
				}
				matched = true
			}
		}
		if !matched {
			out.Unmatched = append(out.Unmatched, strings.TrimSpace(piece))
		}
	}

	if wildcard {
		out.Zones = []string{ZoneAll}
		return out
	}
	for _, z := range Zones {
		if set[z] {
			out.Zones = append(out.Zones, z)
		}
	}
	// Six zones named one by one is full coverage.
	if len(out.Zones) == len(Zones) {
		out.Zones = []string{ZoneAll}
	}
	return out
}

func pieceWords(piece string) []string {
	fields := strings.FieldsFunc(piece, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	words := fields[:0]
	for _, f := range fields {
		if !fillerWords[f] {
			words = append(words, f)
		}
	}
	return words
}

// coverageFromValue parses a legacy locations value: a phrase or an array of
// phrases. ok is false when the value is neither.
func coverageFromValue(v any) (Coverage, bool) {
	switch t := v.(type) {
	case string:
		return ParseCoverage(t), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, isText := item.(string)
			if !isText {
				return Coverage{}, false
			}
			parts = append(parts, s)
		}
		return ParseCoverage(strings.Join(parts, ", ")), true
	}
	return Coverage{}, false
}

type coverageMigrator struct {
	kinds
	fieldPair
}

func newCoverageMigrator() *coverageMigrator {
	return &coverageMigrator{
		kinds:     kinds{"armour"},
		fieldPair: fieldPair{legacy: locationsPath, canonical: coveragePath},
	}
}

func (m *coverageMigrator) Name() string     { return "coverage" }
func (m *coverageMigrator) Concern() Concern { return ConcernCoverage }

func (m *coverageMigrator) Migrate(doc *record.Object, out *Outcome) {
	raw, _ := m.legacy.Lookup(doc)
	cov, ok := coverageFromValue(raw)
	switch {
	case !ok:
		out.Flag(m.legacy, raw, "locations is a %s; defaulted coverage to [%s]", record.TypeName(raw), ZoneBody)
		cov = Coverage{Zones: []string{ZoneBody}}
	case len(cov.Zones) == 0:
		out.Flag(m.legacy, raw, "no body zone recognised; defaulted coverage to [%s]", ZoneBody)
		cov.Zones = []string{ZoneBody}
	case len(cov.Unmatched) > 0:
		out.Flag(m.legacy, raw, "ignored unrecognised location text %q", strings.Join(cov.Unmatched, ", "))
	}

	zones := make([]any, len(cov.Zones))
	for i, z := range cov.Zones {
		zones[i] = z
	}
	if err := m.legacy.Replace(doc, m.canonical, zones); err != nil {
		out.Flag(m.canonical, nil, "cannot write coverage: %v", err)
	}
}
