// Package errors_test tests CLI error categories, constructors and wrapping.
// Related: internal/errors/errors.go, internal/errors/messages.go
// Tags: errors, cli-errors, categories, wrapping, remediation
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testError struct{}

func (e *testError) Error() string { return "test error" }

func TestErrorCategoryString(t *testing.T) {
	tests := map[string]struct {
		category ErrorCategory
		expected string
	}{
		"Argument":      {category: Argument, expected: "Argument Error"},
		"Configuration": {category: Configuration, expected: "Configuration Error"},
		"Prerequisite":  {category: Prerequisite, expected: "Prerequisite Error"},
		"Runtime":       {category: Runtime, expected: "Runtime Error"},
		"Unknown":       {category: ErrorCategory(99), expected: "Error"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.category.String())
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := map[string]struct {
		err      *CLIError
		category ErrorCategory
		steps    int
	}{
		"argument":       {err: NewArgumentError("missing", "a", "b"), category: Argument, steps: 2},
		"argument usage": {err: NewArgumentErrorWithUsage("bad", "cmd <arg>", "a"), category: Argument, steps: 1},
		"config":         {err: NewConfigError("config"), category: Configuration},
		"prerequisite":   {err: NewPrerequisiteError("missing", "create it"), category: Prerequisite, steps: 1},
		"runtime":        {err: NewRuntimeError("failed"), category: Runtime},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.category, tc.err.Category)
			assert.Len(t, tc.err.Remediation, tc.steps)
			assert.Equal(t, tc.err.Message, tc.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, Runtime))
	assert.Nil(t, WrapWithMessage(nil, Runtime, "outer"))

	inner := &testError{}
	wrapped := Wrap(inner, Runtime, "fix it")
	assert.Equal(t, Runtime, wrapped.Category)
	assert.Equal(t, "test error", wrapped.Message)
	assert.Equal(t, []string{"fix it"}, wrapped.Remediation)
	assert.ErrorIs(t, wrapped, inner)

	outer := WrapWithMessage(inner, Configuration, "outer")
	assert.Equal(t, "outer: test error", outer.Message)
	assert.ErrorIs(t, outer, inner)
}

func TestAsCLIError(t *testing.T) {
	t.Parallel()

	original := NewArgumentError("test")
	assert.Same(t, original, AsCLIError(original))
	assert.True(t, IsCLIError(original))

	chained := fmt.Errorf("running: %w", original)
	assert.Same(t, original, AsCLIError(chained))

	assert.Nil(t, AsCLIError(&testError{}))
	assert.False(t, IsCLIError(errors.New("plain")))
}

func TestMessages(t *testing.T) {
	cause := &testError{}
	tests := map[string]struct {
		err      *CLIError
		category ErrorCategory
		contains string
	}{
		"content dir":     {err: ContentDirNotFound("/packs/core"), category: Prerequisite, contains: "/packs/core"},
		"not a dir":       {err: NotADirectory("/packs/core.json"), category: Argument, contains: "/packs/core.json"},
		"unknown concern": {err: UnknownConcern("colour", []string{"coverage", "rating"}), category: Argument, contains: "colour"},
		"unknown format":  {err: UnknownFormat("xml"), category: Argument, contains: "xml"},
		"flags":           {err: InvalidFlagCombination("--dry-run --metrics-file", "nope"), category: Argument, contains: "--dry-run"},
		"config":          {err: ConfigParseError(cause), category: Configuration, contains: "test error"},
		"tables":          {err: TablesLoadError("", cause), category: Configuration, contains: "built-in tables"},
		"load":            {err: LoadFailed("/packs", cause), category: Runtime, contains: "/packs"},
		"write":           {err: WriteFailed(cause), category: Runtime, contains: "writing records"},
		"metrics":         {err: MetricsWriteFailed("/x/m.prom", cause), category: Runtime, contains: "/x/m.prom"},
		"interrupted":     {err: Interrupted(cause), category: Runtime, contains: "interrupted"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.category, tc.err.Category)
			assert.Contains(t, tc.err.Message, tc.contains)
			assert.NotEmpty(t, tc.err.Remediation)
		})
	}

	assert.Contains(t, UnknownConcern("x", []string{"coverage", "rating"}).Remediation[0], "coverage, rating")
}
