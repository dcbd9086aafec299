package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/dbcomments/internal/cli/output"
	"github.com/leapstack-labs/dbcomments/internal/migrate"
	"github.com/spf13/cobra"
)

// MigrateResult is the per-module outcome of a migrate run.
type MigrateResult struct {
	Module  string `json:"module"`
	Version int64  `json:"version"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [module...]",
		Short: "Apply module migrations, then synchronize comments",
		Long: `Apply pending goose migrations for each module that declares a migrations
directory, then send the post-migrate signal for every module. The comment
synchronizer is connected to the signal, so eligible modules receive their
column and table comments once the schema is up to date.`,
		Example: `  # Migrate every module on the default database
  dbcomments migrate

  # Migrate a single module on another database
  dbcomments migrate tests -d reporting`,
		ValidArgsFunction: completeModules,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Cfg.ValidateDatabase(cmdCtx.Cfg.DefaultDatabase); err != nil {
				return err
			}

			results, err := migrateModules(cmd.Context(), cmdCtx, args)
			if err != nil {
				return err
			}
			return renderMigrateResults(cmdCtx.Renderer, results, cmdCtx.Cfg.Verbosity)
		},
	}
}

// migrateModules runs the migrations of the named modules (all when labels is
// empty) with the comment synchronizer connected to the post-migrate signal.
func migrateModules(ctx context.Context, cmdCtx *CommandContext, labels []string) ([]MigrateResult, error) {
	modules, err := cmdCtx.Modules(labels)
	if err != nil {
		return nil, err
	}

	signal := &migrate.Signal{}
	signal.Connect(migrate.CommentsReceiverID, migrate.CommentsReceiver(cmdCtx.Synchronizer))
	runner := migrate.NewRunner(cmdCtx.Conns, cmdCtx.Schema.Registry, signal, cmdCtx.Logger)

	using := cmdCtx.Cfg.DefaultDatabase
	if err := runner.Migrate(ctx, modules, migrate.Options{
		Using:       using,
		Verbosity:   cmdCtx.Cfg.Verbosity,
		Interactive: cmdCtx.Cfg.Interactive,
	}); err != nil {
		return nil, err
	}

	var results []MigrateResult
	for _, mod := range modules {
		if mod.MigrationsDir == "" {
			continue
		}
		version, err := runner.Version(ctx, mod, using)
		if err != nil {
			return nil, err
		}
		results = append(results, MigrateResult{Module: mod.Label, Version: version})
	}
	return results, nil
}

func renderMigrateResults(r *output.Renderer, results []MigrateResult, verbosity int) error {
	if r.EffectiveMode() == output.ModeJSON {
		if results == nil {
			results = []MigrateResult{}
		}
		return r.JSON(results)
	}
	if verbosity < 1 {
		return nil
	}
	if len(results) == 0 {
		r.Println(r.Muted("No modules with migrations."))
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{res.Module, strconv.FormatInt(res.Version, 10)})
	}
	r.Table([]string{"Module", "Version"}, rows)
	r.Success(fmt.Sprintf("Migrated %d modules", len(results)))
	return nil
}
