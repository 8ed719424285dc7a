package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format selects how a summary is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat validates a format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Render writes the summary in format f. verbose adds every diagnostic and
// the full detail of each validation error to text output.
func Render(w io.Writer, s *Summary, f Format, verbose bool) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		_, err := io.WriteString(w, renderText(s, verbose))
		return err
	}
	return fmt.Errorf("unknown output format %q", f)
}

func renderText(s *Summary, verbose bool) string {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	var b strings.Builder
	header := fmt.Sprintf("packforge %s %s", s.Command, s.Directory)
	if s.DryRun {
		header += " (dry run)"
	}
	fmt.Fprintf(&b, "%s\n", cyan(header))
	fmt.Fprintf(&b, "%s\n", dim(fmt.Sprintf("run %s, %s", s.RunID, s.Duration)))

	fmt.Fprintf(&b, "\nrecords\n")
	fmt.Fprintf(&b, "  loaded     %d\n", s.Loaded)
	if s.ParseFailures > 0 {
		fmt.Fprintf(&b, "  rejected   %s\n", yellow(s.ParseFailures))
	}
	if s.Migrators != nil {
		fmt.Fprintf(&b, "  modified   %d\n", s.Modified)
		fmt.Fprintf(&b, "  unchanged  %d\n", s.Unchanged)
		if s.DryRun {
			fmt.Fprintf(&b, "  written    %s\n", dim("none (dry run)"))
		} else {
			fmt.Fprintf(&b, "  written    %d\n", s.Written)
		}
		if s.Discarded > 0 {
			fmt.Fprintf(&b, "  discarded  %s\n", red(s.Discarded))
		}
	}
	if s.WriteErrors > 0 {
		fmt.Fprintf(&b, "  failed     %s\n", red(s.WriteErrors))
	}

	if len(s.Migrators) > 0 {
		fmt.Fprintf(&b, "\nmigrators\n")
		for _, name := range sortedKeys(s.Migrators) {
			st := s.Migrators[name]
			flagged := fmt.Sprint(st.Flagged)
			if st.Flagged > 0 {
				flagged = yellow(flagged)
			}
			fmt.Fprintf(&b, "  %-28s applied %-5d flagged %s\n", name, st.Applied, flagged)
		}
	}

	if len(s.Tallies) > 0 {
		fmt.Fprintf(&b, "\nclassification\n")
		for _, label := range sortedKeys(s.Tallies) {
			fmt.Fprintf(&b, "  %-11s %d\n", label, s.Tallies[label])
		}
	}

	if len(s.Tiers) > 0 {
		fmt.Fprintf(&b, "\ntier\n")
		for _, label := range sortedKeys(s.Tiers) {
			fmt.Fprintf(&b, "  %-11s %d\n", label, s.Tiers[label])
		}
	}

	if c := s.Consolidation; c != nil {
		fmt.Fprintf(&b, "\nconsolidation\n")
		fmt.Fprintf(&b, "  groups     %d\n", c.Groups)
		fmt.Fprintf(&b, "  members    %d\n", c.Members)
		incomplete := fmt.Sprint(c.Gaps)
		if c.Gaps > 0 {
			incomplete = yellow(incomplete)
		}
		fmt.Fprintf(&b, "  incomplete %s\n", incomplete)
		if !c.DryRun {
			fmt.Fprintf(&b, "  written    %d\n", c.Written)
			fmt.Fprintf(&b, "  removed    %d\n", c.Removed)
		}
	}

	if v := s.Validation; v != nil {
		fmt.Fprintf(&b, "\nvalidation\n")
		fmt.Fprintf(&b, "  checked    %d (valid %d, invalid %d, unchecked %d)\n", v.Checked, v.Valid, v.Invalid, v.Unchecked)
		errs := fmt.Sprint(v.TotalErrors)
		if v.TotalErrors > 0 {
			errs = red(errs)
		}
		fmt.Fprintf(&b, "  errors     %s\n", errs)
		fmt.Fprintf(&b, "  warnings   %d\n", v.TotalWarnings)
		for _, e := range v.Errors {
			fmt.Fprintf(&b, "  %s %s\n", red("x"), e.Error())
			if verbose {
				b.WriteString(indent(e.FormatFull(), "    "))
			}
		}
		if v.Truncated {
			fmt.Fprintf(&b, "  %s\n", dim(fmt.Sprintf("... %d more errors not shown", v.TotalErrors-len(v.Errors))))
		}
		for _, key := range sortedKeys(v.Warnings) {
			fmt.Fprintf(&b, "  %s %s (%d)\n", yellow("!"), key, v.Warnings[key])
		}
	}

	if verbose && len(s.Items()) > 0 {
		fmt.Fprintf(&b, "\ndiagnostics\n")
		for _, d := range s.Items() {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}

	var counts []string
	for _, name := range sortedKeys(s.Counts) {
		if n := s.Counts[name]; n > 0 {
			counts = append(counts, fmt.Sprintf("%s %d", name, n))
		}
	}
	if len(counts) > 0 {
		fmt.Fprintf(&b, "\n%s\n", dim(strings.Join(counts, ", ")))
	}

	verdict := green(s.Status())
	if !s.Passed() {
		verdict = red(s.Status())
	}
	fmt.Fprintf(&b, "\nresult: %s (exit %d)\n", verdict, s.ExitCode)
	return b.String()
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
