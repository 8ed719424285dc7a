// Package cli provides the Cobra commands of packforge: the pipeline stages
// (migrate, consolidate, validate, run) and the utility commands (history,
// version).
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/grimdark-vtt/packforge/internal/cli/shared"
	"github.com/grimdark-vtt/packforge/internal/cli/util"
	apperrors "github.com/grimdark-vtt/packforge/internal/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the persistent flags and the logger shared by every command.
type app struct {
	configPath  string
	tablesPath  string
	metricsFile string
	verbose     bool
	debug       bool

	log *zap.Logger
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "packforge",
		Short: "Migrate, consolidate and validate game content packs",
		Long: `packforge brings a directory of JSON content records up to the current schema.

It rewrites legacy fields into their canonical shape, folds per-variant
records into consolidated tables, and validates the result against the
declared rules for each record kind.`,
		Example: `  # Preview every change without touching files
  packforge run ./packs/core --dry-run

  # Only normalize weapon and armour classification
  packforge migrate ./packs/core --only classification

  # Gate CI on a valid corpus and a complete set of critical tables
  packforge run ./packs/core --strict --format json`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(a.verbose, a.debug)
			if err != nil {
				return apperrors.NewConfigError(fmt.Sprintf("failed to initialize logger: %v", err))
			}
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	rootCmd.AddGroup(&cobra.Group{ID: shared.GroupPipeline, Title: "Pipeline:"})
	rootCmd.AddGroup(&cobra.Group{ID: shared.GroupInfo, Title: "Information:"})
	rootCmd.SetHelpCommandGroupID(shared.GroupInfo)
	rootCmd.SetCompletionCommandGroupID(shared.GroupInfo)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to config file (default .packforge/config.json)")
	flags.StringVar(&a.tablesPath, "tables", "", "Path to a lookup tables YAML file (default built-in)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus text-format metrics to this file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Show every diagnostic and info logging")
	flags.BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(
		a.newMigrateCmd(),
		a.newConsolidateCmd(),
		a.newValidateCmd(),
		a.newRunCmd(),
	)
	util.Register(rootCmd)
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCmd(), os.Args[1:])
}

func execute(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !shared.IsExitError(err) {
		fmt.Fprint(rootCmd.ErrOrStderr(), apperrors.FormatSimpleError(err, apperrors.Argument))
	}
	return shared.ExitCode(err)
}

// newLogger builds the production logger, writing to stderr. The level is
// warn by default, info with --verbose and debug with --debug.
func newLogger(verbose, debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = !debug

	level := zapcore.WarnLevel
	switch {
	case debug:
		level = zapcore.DebugLevel
	case verbose:
		level = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)
	return config.Build()
}
