package util

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/grimdark-vtt/packforge/internal/build"
	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/grimdark-vtt/packforge"

func newVersionCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for packforge",
		Example: `  # Show version info
  packforge version

  # Plain output (for scripts)
  packforge version --plain`,
		Args:    cobra.NoArgs,
		GroupID: shared.GroupInfo,
		Run: func(cmd *cobra.Command, args []string) {
			if plain {
				printPlainVersion(cmd.OutOrStdout())
			} else {
				printPrettyVersion(cmd.OutOrStdout())
			}
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain output without formatting")
	return cmd
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer) {
	fmt.Fprintf(w, "packforge %s\n", build.Version)
	fmt.Fprintf(w, "commit: %s\n", build.Commit)
	fmt.Fprintf(w, "built: %s\n", build.BuildDate)
	fmt.Fprintf(w, "go: %s\n", runtime.Version())
	fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printPrettyVersion prints the version info in a box sized to the terminal.
func printPrettyVersion(w io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()

	info := []struct {
		label string
		value string
	}{
		{"Version", build.Version},
		{"Commit", truncateCommit(build.Commit)},
		{"Built", build.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}

	boxWidth := 44
	if width := terminalWidth(); width < 50 {
		boxWidth = max(width-6, 24)
	}
	contentWidth := boxWidth - 4

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+cyan("packforge")+" "+dim("game content pack migration"))
	fmt.Fprintln(w, "  +"+strings.Repeat("-", boxWidth-2)+"+")
	for _, item := range info {
		value := item.value
		if room := contentWidth - 10; len(value) > room && room > 3 {
			value = value[:room-3] + "..."
		}
		line := fmt.Sprintf("%-10s%s", item.label, value)
		pad := contentWidth - len(line)
		if pad < 0 {
			pad = 0
		}
		fmt.Fprintf(w, "  | %s%s%s |\n", dim(fmt.Sprintf("%-10s", item.label)), white(value), strings.Repeat(" ", pad))
	}
	fmt.Fprintln(w, "  +"+strings.Repeat("-", boxWidth-2)+"+")
	fmt.Fprintln(w, "  "+dim(SourceURL))
	fmt.Fprintln(w)
}

// terminalWidth returns the terminal width, defaulting to 80 if unavailable.
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// truncateCommit shortens a commit hash to 8 characters.
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
