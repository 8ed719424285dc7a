// Package progress shows which pipeline stage is running. On a terminal it
// animates a spinner; elsewhere it prints one line per stage. Output goes to
// stderr so reports on stdout stay machine-readable.
package progress

import apperrors "github.com/grimdark-vtt/packforge/internal/errors"

// StageInfo describes one stage of a command for progress display
type StageInfo struct {
	// Name is the stage name (e.g., "load", "migrate", "consolidate", "validate")
	Name string
	// Number is the current stage number (1-based index)
	Number int
	// TotalStages is the number of stages the command runs
	TotalStages int
}

// Validate checks that all StageInfo fields meet validation requirements
func (p StageInfo) Validate() error {
	if p.Name == "" {
		return apperrors.NewArgumentError("stage name cannot be empty")
	}
	if p.Number <= 0 {
		return apperrors.NewArgumentError("stage number must be > 0")
	}
	if p.TotalStages <= 0 {
		return apperrors.NewArgumentError("total stages must be > 0")
	}
	if p.Number > p.TotalStages {
		return apperrors.NewArgumentError("stage number cannot exceed total stages")
	}
	return nil
}

// TerminalCapabilities encapsulates detected terminal features
type TerminalCapabilities struct {
	// IsTTY indicates whether the progress stream is a terminal
	IsTTY bool
	// SupportsColor indicates whether terminal supports ANSI color codes
	SupportsColor bool
	// SupportsUnicode indicates whether terminal supports Unicode characters
	SupportsUnicode bool
	// Width is the terminal width in columns (0 if unknown/pipe)
	Width int
}

// ProgressSymbols defines the character set for visual indicators
type ProgressSymbols struct {
	Checkmark string
	Failure   string
	// SpinnerSet is the index into spinner.CharSets
	SpinnerSet int
}
