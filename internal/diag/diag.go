// Package diag defines the problem taxonomy shared by every pipeline stage.
//
// Per-record problems are collected as Diagnostics and never abort a run.
// Only directory-level I/O failures travel as Go errors.
package diag

import (
	"fmt"
	"sort"
)

// Category classifies a diagnostic.
type Category int

const (
	// ParseError: a file is not a usable record and was excluded.
	ParseError Category = iota
	// MigrationAmbiguity: a legacy value matched no known pattern; a safe default was applied.
	MigrationAmbiguity
	// ConsolidationGap: an expected variant slot is missing after folding.
	ConsolidationGap
	// ValidationError: a canonical record breaks a declared rule.
	ValidationError
	// ValidationWarning: legacy residue remains next to its canonical field.
	ValidationWarning
)

// Categories lists every category in report order.
var Categories = []Category{ParseError, MigrationAmbiguity, ConsolidationGap, ValidationError, ValidationWarning}

func (c Category) String() string {
	switch c {
	case ParseError:
		return "parse-error"
	case MigrationAmbiguity:
		return "migration-ambiguity"
	case ConsolidationGap:
		return "consolidation-gap"
	case ValidationError:
		return "validation-error"
	case ValidationWarning:
		return "validation-warning"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// MarshalText lets categories key JSON and YAML maps by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Diagnostic is one recorded problem.
type Diagnostic struct {
	Category Category `json:"category" yaml:"category"`
	// Stage names the component that raised it (loader, a migrator name, consolidate, validate).
	Stage    string `json:"stage" yaml:"stage"`
	RecordID string `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	loc := d.File
	if d.RecordID != "" {
		if loc != "" {
			loc += " "
		}
		loc += "[" + d.RecordID + "]"
	}
	s := fmt.Sprintf("%s: %s", d.Category, d.Stage)
	if loc != "" {
		s += " " + loc
	}
	if d.Path != "" {
		s += " " + d.Path
	}
	s += ": " + d.Message
	if d.Value != "" {
		s += fmt.Sprintf(" (value %q)", d.Value)
	}
	return s
}

// Log collects diagnostics in the order they were raised. It is not safe for
// concurrent use; parallel stages collect per record and merge in input order.
type Log struct {
	items []Diagnostic
}

// Add appends diagnostics.
func (l *Log) Add(ds ...Diagnostic) {
	l.items = append(l.items, ds...)
}

// Items returns every diagnostic in order.
func (l *Log) Items() []Diagnostic {
	return l.items
}

// Len returns the number of diagnostics.
func (l *Log) Len() int {
	return len(l.items)
}

// Filter returns the diagnostics of one category.
func (l *Log) Filter(c Category) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// Count returns how many diagnostics of category c were raised.
func (l *Log) Count(c Category) int {
	n := 0
	for _, d := range l.items {
		if d.Category == c {
			n++
		}
	}
	return n
}

// Counts returns a count for every category, zeros included.
func (l *Log) Counts() map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		out[c] = 0
	}
	for _, d := range l.items {
		out[d.Category]++
	}
	return out
}

// Stages returns the distinct stages that raised diagnostics of category c, sorted.
func (l *Log) Stages(c Category) []string {
	seen := map[string]bool{}
	for _, d := range l.items {
		if d.Category == c {
			seen[d.Stage] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
