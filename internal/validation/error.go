package validation

import (
	"fmt"
	"strings"
)

// ValidationError is one rule violation found on one record.
type ValidationError struct {
	RecordID string   `json:"record_id" yaml:"record_id"`                   // Record id
	File     string   `json:"file,omitempty" yaml:"file,omitempty"`         // File the record was read from
	Kind     string   `json:"kind" yaml:"kind"`                             // Record kind
	Path     string   `json:"path" yaml:"path"`                             // Dotted field path, with [i] for array elements
	Rule     RuleKind `json:"rule" yaml:"rule"`                             // Rule that failed
	Message  string   `json:"message" yaml:"message"`                       // Human-readable description
	Expected string   `json:"expected,omitempty" yaml:"expected,omitempty"` // What was expected
	Actual   string   `json:"actual,omitempty" yaml:"actual,omitempty"`     // What was found
	Hint     string   `json:"hint,omitempty" yaml:"hint,omitempty"`         // Suggestion for fixing the record
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.RecordID != "" {
		sb.WriteString(fmt.Sprintf("[%s] ", e.RecordID))
	}
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf("%s: ", e.Path))
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// FormatFull returns a detailed multi-line description.
func (e *ValidationError) FormatFull() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("  File: %s\n", e.File))
	}
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf("  Path: %s\n", e.Path))
	}
	sb.WriteString(fmt.Sprintf("  Error: %s\n", e.Message))
	if e.Expected != "" {
		sb.WriteString(fmt.Sprintf("  Expected: %s\n", e.Expected))
	}
	if e.Actual != "" {
		sb.WriteString(fmt.Sprintf("  Got: %s\n", e.Actual))
	}
	if e.Hint != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", e.Hint))
	}

	return sb.String()
}
