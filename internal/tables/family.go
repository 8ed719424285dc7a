package tables

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/grimdark-vtt/packforge/internal/record"
)

// Source says how a label was resolved.
type Source string

const (
	SourceDirect     Source = "direct"
	SourceKeyword    Source = "keyword"
	SourceDefault    Source = "default"
	SourceUnresolved Source = "unresolved"
)

// Family maps the legacy labels of one field to canonical tokens.
type Family struct {
	Name      string            `yaml:"name" validate:"required"`
	Concern   string            `yaml:"concern" validate:"required,oneof=classification tier damage"`
	Kinds     []string          `yaml:"kinds" validate:"required,min=1"`
	Legacy    string            `yaml:"legacy" validate:"required"`
	Canonical string            `yaml:"canonical" validate:"required"`
	Labels    map[string]string `yaml:"labels"`
	Rules     []Rule            `yaml:"rules" validate:"dive"`
	// Default is applied, and flagged, when a label resolves to nothing.
	// Families without a default leave unresolved labels in place.
	Default string `yaml:"default"`

	LegacyPath    record.Path `yaml:"-"`
	CanonicalPath record.Path `yaml:"-"`

	labels     map[string]string
	predicates []predicate
}

// Rule is a keyword predicate. It matches when any of Words appears as a
// whole word sequence in the label, or any of Contains appears as a substring.
type Rule struct {
	Token    string   `yaml:"token" validate:"required"`
	Words    []string `yaml:"words"`
	Contains []string `yaml:"contains"`
}

type predicate struct {
	match func(words []string, flat string) bool
	token string
}

func (f *Family) compile() error {
	var err error
	if f.LegacyPath, err = record.ParsePath(f.Legacy); err != nil {
		return fmt.Errorf("legacy: %w", err)
	}
	if f.CanonicalPath, err = record.ParsePath(f.Canonical); err != nil {
		return fmt.Errorf("canonical: %w", err)
	}
	f.labels = make(map[string]string, len(f.Labels))
	for label, token := range f.Labels {
		f.labels[Normalize(label)] = token
	}
	f.predicates = f.predicates[:0]
	for i, r := range f.Rules {
		if len(r.Words) == 0 && len(r.Contains) == 0 {
			return fmt.Errorf("rule %d (%s) has no words or contains", i, r.Token)
		}
		f.predicates = append(f.predicates, compileRule(r))
	}
	return nil
}

func compileRule(r Rule) predicate {
	phrases := make([][]string, 0, len(r.Words))
	for _, w := range r.Words {
		phrases = append(phrases, Words(w))
	}
	subs := make([]string, 0, len(r.Contains))
	for _, c := range r.Contains {
		subs = append(subs, strings.ToLower(c))
	}
	return predicate{
		token: r.Token,
		match: func(words []string, flat string) bool {
			for _, p := range phrases {
				if containsPhrase(words, p) {
					return true
				}
			}
			for _, s := range subs {
				if strings.Contains(flat, s) {
					return true
				}
			}
			return false
		},
	}
}

// AppliesTo reports whether records of kind carry this family's field.
func (f *Family) AppliesTo(kind string) bool {
	for _, k := range f.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Tokens returns the canonical tokens the family can produce.
func (f *Family) Tokens() []string {
	seen := map[string]bool{}
	var out []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range f.Labels {
		add(t)
	}
	for _, r := range f.Rules {
		add(r.Token)
	}
	add(f.Default)
	sort.Strings(out)
	return out
}

// Resolve maps a legacy label to a canonical token: direct table first, then
// the keyword rules in priority order. The default is not applied here.
func (f *Family) Resolve(label string) (string, Source) {
	norm := Normalize(label)
	if norm == "" {
		return "", SourceUnresolved
	}
	if tok, ok := f.labels[norm]; ok {
		return tok, SourceDirect
	}
	words := Words(norm)
	flat := strings.Join(words, " ")
	for _, p := range f.predicates {
		if p.match(words, flat) {
			return p.token, SourceKeyword
		}
	}
	return "", SourceUnresolved
}

// Normalize lowercases a label and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Words splits a label into lowercase alphanumeric words.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
