package util

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/grimdark-vtt/packforge/internal/config"
	apperrors "github.com/grimdark-vtt/packforge/internal/errors"
	"github.com/grimdark-vtt/packforge/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "View past packforge runs",
		Long:  `View a log of packforge runs with timestamp, run id, status, command, directory, exit code and duration. Newest first.`,
		Example: `  packforge history
  packforge history --command run -n 5
  packforge history --clear`,
		Args:    cobra.NoArgs,
		GroupID: shared.GroupInfo,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return apperrors.ConfigParseError(err)
			}
			return runHistoryWithStateDir(cmd, cfg.StateDir)
		},
	}
	cmd.Flags().IntP("limit", "n", 0, "Limit to the last N entries")
	cmd.Flags().String("command", "", "Filter by command (migrate, consolidate, validate, run)")
	cmd.Flags().Bool("clear", false, "Clear all history")
	return cmd
}

// runHistoryWithStateDir runs the history command against stateDir.
func runHistoryWithStateDir(cmd *cobra.Command, stateDir string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	command, _ := cmd.Flags().GetString("command")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return apperrors.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", limit))
	}

	if clearFlag {
		if err := history.Clear(stateDir); err != nil {
			return apperrors.WrapWithMessage(err, apperrors.Runtime, "clearing history")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	}

	f, err := history.Load(stateDir)
	if err != nil {
		return apperrors.WrapWithMessage(err, apperrors.Runtime, "loading history")
	}

	entries := f.Filter(command, limit)
	if len(entries) == 0 {
		if command != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No matching entries for command '%s'.\n", command)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
		}
		return nil
	}

	displayEntries(cmd, entries)
	return nil
}

// displayEntries formats and displays history entries.
func displayEntries(cmd *cobra.Command, entries []history.Entry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Timestamp.Local().Format("2006-01-02 15:04:05")

		exitCode := fmt.Sprintf("%d", entry.ExitCode)
		if entry.ExitCode == 0 {
			exitCode = green(exitCode)
		} else {
			exitCode = red(exitCode)
		}

		command := entry.Command
		if entry.DryRun {
			command += "*"
		}

		fmt.Fprintf(out, "%s  %s  %s  %-12s  %-30s  exit=%s  %s\n",
			cyan(timestamp),
			formatID(entry.ID),
			formatStatus(entry.Status, green, yellow, red),
			command,
			entry.Directory,
			exitCode,
			entry.Duration,
		)
	}
}

// formatStatus returns a color-coded status string.
func formatStatus(status string, green, yellow, red func(a ...interface{}) string) string {
	padded := fmt.Sprintf("%-12s", status)
	switch status {
	case "passed":
		return green(padded)
	case "incomplete":
		return yellow(padded)
	case "":
		return fmt.Sprintf("%-12s", "-")
	}
	return red(padded)
}

// formatID shortens a run id to its first block.
func formatID(id string) string {
	if id == "" {
		return fmt.Sprintf("%-8s", "-")
	}
	if len(id) > 8 {
		return id[:8]
	}
	return fmt.Sprintf("%-8s", id)
}
