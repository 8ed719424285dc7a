package errors

import (
	"fmt"
	"strings"
)

// ContentDirNotFound reports a content directory that does not exist.
func ContentDirNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("content directory not found: %s", path),
		"Check the path passed as the first argument",
		"Or set content_dir in .packforge/config.json",
	)
}

// NotADirectory reports a content path that is a file.
func NotADirectory(path string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("not a directory: %s", path),
		"packforge <command> [content-dir]",
		"Pass the directory holding the record files, not a single file",
	)
}

// UnknownConcern reports an --only value that names no migrator group.
func UnknownConcern(name string, valid []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown concern %q", name),
		"packforge migrate --only <concern> [--only <concern>...]",
		"Valid concerns: "+strings.Join(valid, ", "),
	)
}

// UnknownFormat reports an unsupported output format.
func UnknownFormat(name string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("unknown output format %q", name),
		"Use --format text, --format json or --format yaml",
	)
}

// InvalidFlagCombination reports flags that cannot be used together.
func InvalidFlagCombination(flags, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination %s: %s", flags, reason),
		"Run the command with --help to see valid flags",
	)
}

// ConfigParseError reports a config file or environment that cannot be read.
func ConfigParseError(err error) *CLIError {
	return WrapWithMessage(err, Configuration, "invalid configuration",
		"Check .packforge/config.json and ~/.packforge/config.json for typos",
		"Check PACKFORGE_* environment variables",
	)
}

// TablesLoadError reports lookup tables that cannot be loaded.
func TablesLoadError(path string, err error) *CLIError {
	if path == "" {
		path = "built-in tables"
	}
	return WrapWithMessage(err, Configuration, fmt.Sprintf("loading lookup tables from %s", path),
		"Fix the tables file, or drop --tables to use the built-in tables",
	)
}

// LoadFailed reports a content directory that could not be enumerated.
func LoadFailed(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime, fmt.Sprintf("reading %s", path),
		"Check that the directory is readable",
	)
}

// WriteFailed reports records that could not be written or removed.
func WriteFailed(err error) *CLIError {
	return WrapWithMessage(err, Runtime, "writing records",
		"Check permissions on the content directory",
		"Re-run the command; unchanged records are skipped",
	)
}

// MetricsWriteFailed reports a metrics file that could not be written.
func MetricsWriteFailed(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime, fmt.Sprintf("writing metrics to %s", path),
		"Check that the directory of --metrics-file exists and is writable",
	)
}

// Interrupted reports a run cancelled before it finished.
func Interrupted(err error) *CLIError {
	return WrapWithMessage(err, Runtime, "run interrupted",
		"No records were written; re-run the command",
	)
}
