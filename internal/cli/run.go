package cli

import (
	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/spf13/cobra"
)

func (a *app) newRunCmd() *cobra.Command {
	var f runFlags
	st := stages{migrate: true, consolidate: true, validate: true}
	cmd := &cobra.Command{
		Use:   "run [content-dir]",
		Short: "Migrate, consolidate and validate in one pass",
		Long: `Run the full pipeline: migrate every record, consolidate per-variant
records into tables, then validate the result.

With --dry-run validation sees the records as they would be written.`,
		Example: `  packforge run ./packs/core
  packforge run ./packs/core --dry-run --verbose
  packforge run ./packs/core --strict --format json --metrics-file packforge.prom`,
		Args:    cobra.MaximumNArgs(1),
		GroupID: shared.GroupPipeline,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, args, "run", st, &f)
		},
	}
	a.addRunFlags(cmd, &f, st)
	return cmd
}
