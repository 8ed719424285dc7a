package cli

import (
	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/spf13/cobra"
)

func (a *app) newValidateCmd() *cobra.Command {
	var f runFlags
	st := stages{validate: true}
	cmd := &cobra.Command{
		Use:   "validate [content-dir]",
		Short: "Check records against the rules for their kind",
		Long: `Validate every record of a content directory. Files are never modified.
Exits 1 when any record has a validation error; legacy residue only warns.`,
		Example: `  # Validate and list every error
  packforge validate ./packs/core --max-errors 0

  # Machine-readable report
  packforge validate ./packs/core --format json`,
		Args:    cobra.MaximumNArgs(1),
		GroupID: shared.GroupPipeline,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, args, "validate", st, &f)
		},
	}
	a.addRunFlags(cmd, &f, st)
	return cmd
}
