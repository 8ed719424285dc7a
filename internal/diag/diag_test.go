// Related: internal/diag/diag.go
// Tags: diagnostics, taxonomy, counts
package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryString(t *testing.T) {
	tests := map[string]struct {
		category Category
		expected string
	}{
		"parse":     {category: ParseError, expected: "parse-error"},
		"ambiguity": {category: MigrationAmbiguity, expected: "migration-ambiguity"},
		"gap":       {category: ConsolidationGap, expected: "consolidation-gap"},
		"error":     {category: ValidationError, expected: "validation-error"},
		"warning":   {category: ValidationWarning, expected: "validation-warning"},
		"unknown":   {category: Category(42), expected: "category(42)"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.category.String())
		})
	}
}

func TestLogCounts(t *testing.T) {
	t.Parallel()

	var l Log
	l.Add(
		Diagnostic{Category: ParseError, Stage: "loader", File: "a.json", Message: "bad"},
		Diagnostic{Category: MigrationAmbiguity, Stage: "coverage", RecordID: "x"},
		Diagnostic{Category: MigrationAmbiguity, Stage: "rating", RecordID: "y"},
	)

	counts := l.Counts()
	assert.Equal(t, 1, counts[ParseError])
	assert.Equal(t, 2, counts[MigrationAmbiguity])
	assert.Equal(t, 0, counts[ValidationError])
	assert.Len(t, counts, len(Categories))
	assert.Equal(t, []string{"coverage", "rating"}, l.Stages(MigrationAmbiguity))
	assert.Len(t, l.Filter(ParseError), 1)
}

func TestDiagnosticString(t *testing.T) {
	t.Parallel()

	d := Diagnostic{
		Category: MigrationAmbiguity,
		Stage:    "coverage",
		File:     "flak.json",
		RecordID: "abc",
		Path:     "system.locations",
		Value:    "Tail",
		Message:  "unrecognised location, defaulted to body",
	}
	assert.Equal(t,
		`migration-ambiguity: coverage flak.json [abc] system.locations: unrecognised location, defaulted to body (value "Tail")`,
		d.String())
}
