package cli

import (
	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/spf13/cobra"
)

func (a *app) newMigrateCmd() *cobra.Command {
	var f runFlags
	st := stages{migrate: true}
	cmd := &cobra.Command{
		Use:   "migrate [content-dir]",
		Short: "Rewrite legacy record fields into their canonical shape",
		Long: `Run every migrator over the records of a content directory and write back
the records that changed. Records a migrator cannot migrate cleanly are
discarded unchanged and reported.`,
		Example: `  # Preview changes
  packforge migrate ./packs/core --dry-run

  # Only the skill and trait concerns, eight workers
  packforge migrate ./packs/core --only skill --only trait --workers 8`,
		Args:    cobra.MaximumNArgs(1),
		GroupID: shared.GroupPipeline,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, args, "migrate", st, &f)
		},
	}
	a.addRunFlags(cmd, &f, st)
	return cmd
}
