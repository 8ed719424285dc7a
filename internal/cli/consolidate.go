package cli

import (
	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/spf13/cobra"
)

func (a *app) newConsolidateCmd() *cobra.Command {
	var f runFlags
	st := stages{consolidate: true}
	cmd := &cobra.Command{
		Use:   "consolidate [content-dir]",
		Short: "Fold per-variant records into consolidated tables",
		Long: `Group per-variant records by kind, category and subcategory, write one
consolidated record per group and remove the members it replaces.

With --dry-run the plan is printed and nothing is written.`,
		Example: `  # Show the consolidation plan
  packforge consolidate ./packs/core --dry-run

  # Fail when a table is missing variants
  packforge consolidate ./packs/core --strict`,
		Args:    cobra.MaximumNArgs(1),
		GroupID: shared.GroupPipeline,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, args, "consolidate", st, &f)
		},
	}
	a.addRunFlags(cmd, &f, st)
	return cmd
}
