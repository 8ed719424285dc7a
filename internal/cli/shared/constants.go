// Package shared provides constants and types used across CLI subpackages.
// This package has no dependencies on other CLI packages to avoid circular imports.
package shared

import (
	"errors"
	"fmt"

	apperrors "github.com/grimdark-vtt/packforge/internal/errors"
	"github.com/grimdark-vtt/packforge/internal/report"
)

// Command group IDs for organizing help output
const (
	GroupPipeline = "pipeline"
	GroupInfo     = "info"
)

// Exit codes for CLI commands
const (
	ExitSuccess          = report.ExitSuccess
	ExitValidationFailed = report.ExitValidationFailed
	ExitIncomplete       = report.ExitIncomplete
	ExitInvalidArguments = report.ExitInvalidArguments
	ExitFatalIO          = report.ExitFatalIO
)

// exitError carries a non-zero exit code for a run that finished and has
// already reported its outcome.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// NewExitError creates a new exit error with the given code.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// IsExitError reports whether err only carries an exit code.
func IsExitError(err error) bool {
	var e *exitError
	return errors.As(err, &e)
}

// ExitCode maps an error to the process exit code. CLI errors map by
// category: argument and configuration problems exit 3, missing inputs and
// runtime failures exit 4.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if cliErr := apperrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case apperrors.Argument, apperrors.Configuration:
			return ExitInvalidArguments
		}
		return ExitFatalIO
	}
	return ExitInvalidArguments
}
