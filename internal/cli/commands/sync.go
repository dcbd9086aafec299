package commands

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/dbcomments/internal/cli/output"
	"github.com/spf13/cobra"
)

// SyncResult is the per-module outcome of a sync run. Processed marks
// modules an earlier call in the same process already handled.
type SyncResult struct {
	Module    string `json:"module"`
	Database  string `json:"database"`
	Engine    string `json:"engine"`
	Eligible  bool   `json:"eligible"`
	Processed bool   `json:"already_processed"`
	Columns   int    `json:"columns"`
	Tables    int    `json:"tables"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [module...]",
		Short: "Write model help text into database comments",
		Long: `Copy field display names and help text into column comments, and model
display names into table comments, for every eligible module.

A module is eligible when it defines models, the target database runs a
PostgreSQL-family engine, and the database's apps list (if any) includes it.
Ineligible modules are skipped without error.

Without arguments every module in the schema is synchronized.`,
		Example: `  # Synchronize every module on the default database
  dbcomments sync

  # Synchronize two modules on the reporting database
  dbcomments sync auth billing -d reporting

  # Print each comment as it is written
  dbcomments sync -v 2`,
		ValidArgsFunction: completeModules,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, args)
		},
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cmdCtx.Cfg.ValidateDatabase(cmdCtx.Cfg.DefaultDatabase); err != nil {
		return err
	}

	results, err := syncModules(cmd.Context(), cmdCtx, args)
	if err != nil {
		return err
	}
	return renderSyncResults(cmdCtx.Renderer, results, cmdCtx.Cfg.Verbosity)
}

// syncModules synchronizes the named modules (all when labels is empty) and
// reports what each one received.
func syncModules(ctx context.Context, cmdCtx *CommandContext, labels []string) ([]SyncResult, error) {
	modules, err := cmdCtx.Modules(labels)
	if err != nil {
		return nil, err
	}

	opts := cmdCtx.Options()
	syncer := cmdCtx.Synchronizer
	engine := cmdCtx.Conns.Engine(opts.Using)

	results := make([]SyncResult, 0, len(modules))
	for _, mod := range modules {
		res := SyncResult{
			Module:    mod.Label,
			Database:  opts.Using,
			Engine:    engine,
			Eligible:  syncer.IsEligible(mod, opts.Using),
			Processed: syncer.Processed().Contains(mod.Label),
		}
		if res.Eligible && !res.Processed {
			columns, tables := syncer.Plan(mod)
			res.Columns, res.Tables = columns.Len(), len(tables)
		}

		if err := syncer.SynchronizeModuleComments(ctx, mod, opts); err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func renderSyncResults(r *output.Renderer, results []SyncResult, verbosity int) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(results)
	}
	if verbosity < 1 {
		return nil
	}

	for _, res := range results {
		if res.Processed {
			r.Println(r.Muted(fmt.Sprintf("Skipped %s: already processed", res.Module)))
			continue
		}
		if !res.Eligible {
			r.Println(r.Muted(fmt.Sprintf("Skipped %s: not eligible on %s (%s)", res.Module, res.Database, engineLabel(res.Engine))))
			continue
		}
		r.Success(fmt.Sprintf("Synchronized %s: %d column comments, %d table comments", res.Module, res.Columns, res.Tables))
	}
	return nil
}

func engineLabel(engine string) string {
	if engine == "" {
		return "unconfigured"
	}
	return engine
}
