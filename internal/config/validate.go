package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Formats lists the accepted values of the format setting.
var Formats = []string{"text", "json", "yaml"}

// ValidationError represents a configuration validation error with context
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ValidateYAMLSyntax checks that a lookup-table file is well-formed YAML.
// Returns nil if valid, or a ValidationError with line/column information if invalid.
func ValidateYAMLSyntax(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &ValidationError{
				FilePath: filePath,
				Message:  "file does not exist",
			}
		}
		if os.IsPermission(err) {
			return &ValidationError{
				FilePath: filePath,
				Message:  "permission denied",
			}
		}
		return &ValidationError{
			FilePath: filePath,
			Message:  err.Error(),
		}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return &ValidationError{
			FilePath: filePath,
			Message:  "file is empty",
		}
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		var typeError *yaml.TypeError
		if errors.As(err, &typeError) {
			return &ValidationError{
				FilePath: filePath,
				Message:  strings.Join(typeError.Errors, "; "),
			}
		}

		line, column := extractLineColumn(err.Error())
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  cleanYAMLError(err.Error()),
		}
	}

	return nil
}

// ValidateConfigValues validates configuration values against expected types and constraints.
// Returns nil if valid, or a ValidationError with field information if invalid.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	if cfg.ContentDir == "" {
		return &ValidationError{
			FilePath: filePath,
			Field:    "content_dir",
			Message:  "is required",
		}
	}
	if cfg.StateDir == "" {
		return &ValidationError{
			FilePath: filePath,
			Field:    "state_dir",
			Message:  "is required",
		}
	}

	if cfg.Workers < 0 || cfg.Workers > 256 {
		return &ValidationError{
			FilePath: filePath,
			Field:    "workers",
			Message:  "must be between 0 and 256 (0 uses one worker per CPU)",
		}
	}
	if cfg.MaxErrors < 0 {
		return &ValidationError{
			FilePath: filePath,
			Field:    "max_errors",
			Message:  "must not be negative (0 keeps every error)",
		}
	}
	if cfg.MaxHistory < 0 {
		return &ValidationError{
			FilePath: filePath,
			Field:    "max_history",
			Message:  "must not be negative",
		}
	}

	if !validFormat(cfg.Format) {
		return &ValidationError{
			FilePath: filePath,
			Field:    "format",
			Message:  "must be one of: " + strings.Join(Formats, ", "),
		}
	}

	for _, set := range []struct {
		field    string
		patterns []string
	}{{"include", cfg.Include}, {"exclude", cfg.Exclude}} {
		for _, p := range set.patterns {
			if !doublestar.ValidatePattern(p) {
				return &ValidationError{
					FilePath: filePath,
					Field:    set.field,
					Message:  fmt.Sprintf("invalid glob pattern %q", p),
				}
			}
		}
	}

	if cfg.TablesPath != "" {
		if err := ValidateYAMLSyntax(cfg.TablesPath); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) && verr.Line == 0 {
				verr.Field = "tables_path"
			}
			return err
		}
	}

	return nil
}

func validFormat(f string) bool {
	for _, v := range Formats {
		if f == v {
			return true
		}
	}
	return false
}

// extractLineColumn attempts to extract line and column numbers from a YAML error message.
// Returns 0, 0 if unable to extract.
func extractLineColumn(errMsg string) (line, column int) {
	// yaml.v3 errors look like: "yaml: line 5: could not find expected ':'"
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// cleanYAMLError removes the "yaml: line X:" prefix from error messages for cleaner output.
func cleanYAMLError(errMsg string) string {
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 {
		if strings.HasPrefix(errMsg, "yaml:") {
			return errMsg[idx+2:]
		}
	}
	return errMsg
}
