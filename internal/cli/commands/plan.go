package commands

import (
	"fmt"

	"github.com/leapstack-labs/dbcomments/internal/cli/output"
	"github.com/leapstack-labs/dbcomments/pkg/comments"
	"github.com/spf13/cobra"
)

// PlanOutput is the JSON form of the plan command.
type PlanOutput struct {
	Database string       `json:"database"`
	Engine   string       `json:"engine"`
	Modules  []ModulePlan `json:"modules"`
}

// ModulePlan lists the comments one module would receive.
type ModulePlan struct {
	Module   string       `json:"module"`
	Eligible bool         `json:"eligible"`
	Columns  []ColumnPlan `json:"columns"`
	Tables   []TablePlan  `json:"tables"`
}

// ColumnPlan is one planned column comment.
type ColumnPlan struct {
	Table   string `json:"table"`
	Column  string `json:"column"`
	Comment string `json:"comment"`
}

// TablePlan is one planned table comment.
type TablePlan struct {
	Table   string `json:"table"`
	Comment string `json:"comment"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [module...]",
		Short: "Show the comments sync would write",
		Long: `Compute column and table comments from the schema without touching the
database, and report whether each module is eligible on the target database.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format (-o json)`,
		Example: `  # Preview every module
  dbcomments plan

  # Preview one module as JSON
  dbcomments plan tests -o json`,
		ValidArgsFunction: completeModules,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			plan, err := buildPlan(cmdCtx, args)
			if err != nil {
				return err
			}
			return renderPlan(cmdCtx.Renderer, plan)
		},
	}
}

func buildPlan(cmdCtx *CommandContext, labels []string) (*PlanOutput, error) {
	modules, err := cmdCtx.Modules(labels)
	if err != nil {
		return nil, err
	}

	using := cmdCtx.Cfg.DefaultDatabase
	syncer := cmdCtx.Synchronizer
	plan := &PlanOutput{
		Database: using,
		Engine:   cmdCtx.Conns.Engine(using),
		Modules:  make([]ModulePlan, 0, len(modules)),
	}

	for _, mod := range modules {
		columns, tables := syncer.Plan(mod)
		mp := ModulePlan{
			Module:   mod.Label,
			Eligible: syncer.IsEligible(mod, using),
			Columns:  columnPlans(columns),
			Tables:   tablePlans(tables),
		}
		plan.Modules = append(plan.Modules, mp)
	}
	return plan, nil
}

func columnPlans(cm comments.CommentMap) []ColumnPlan {
	out := make([]ColumnPlan, 0, cm.Len())
	for _, t := range cm {
		for _, c := range t.Columns {
			out = append(out, ColumnPlan{Table: t.Table, Column: c.Column, Comment: c.Comment})
		}
	}
	return out
}

func tablePlans(tm comments.TableCommentMap) []TablePlan {
	out := make([]TablePlan, 0, len(tm))
	for _, t := range tm {
		out = append(out, TablePlan{Table: t.Table, Comment: t.Comment})
	}
	return out
}

func renderPlan(r *output.Renderer, plan *PlanOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(plan)
	}

	r.Header(1, fmt.Sprintf("Comment plan for %s (%s)", plan.Database, engineLabel(plan.Engine)))
	for _, mp := range plan.Modules {
		status := "eligible"
		if !mp.Eligible {
			status = "not eligible, will be skipped"
		}
		r.Header(2, fmt.Sprintf("%s (%s)", mp.Module, status))

		if len(mp.Columns) == 0 && len(mp.Tables) == 0 {
			r.Println(r.Muted("No comments."))
			r.Println("")
			continue
		}

		rows := make([][]string, 0, len(mp.Tables)+len(mp.Columns))
		for _, t := range mp.Tables {
			rows = append(rows, []string{t.Table, "", t.Comment})
		}
		for _, c := range mp.Columns {
			rows = append(rows, []string{c.Table, c.Column, c.Comment})
		}
		r.Table([]string{"Table", "Column", "Comment"}, rows)
		r.Println("")
	}
	return nil
}
