package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dbcomments/internal/cli/config"
	"github.com/leapstack-labs/dbcomments/internal/cli/output"
	"github.com/leapstack-labs/dbcomments/internal/connection"
	"github.com/leapstack-labs/dbcomments/internal/schema"
	"github.com/leapstack-labs/dbcomments/pkg/comments"
	"github.com/leapstack-labs/dbcomments/pkg/model"
	"github.com/spf13/cobra"
)

// errNoConfig is returned when a command runs without a loaded config.
var errNoConfig = errors.New("configuration not loaded")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg          *config.Config
	Logger       *slog.Logger
	Renderer     *output.Renderer
	Schema       *schema.Schema
	Conns        *connection.Manager
	Synchronizer *comments.Synchronizer
}

// NewCommandContext loads the schema and wires connections and the
// synchronizer. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return nil, nil, errNoConfig
	}
	logger := config.GetLogger(cmd.Context())

	if err := cfg.ValidateSchemaFiles(); err != nil {
		return nil, nil, err
	}
	sch, err := schema.Load(cfg.Tag(), cfg.Schema...)
	if err != nil {
		return nil, nil, err
	}

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	// Progress lines would corrupt JSON output.
	var progress io.Writer = cmd.OutOrStdout()
	if r.EffectiveMode() == output.ModeJSON {
		progress = io.Discard
	}

	conns := connection.NewManager(cfg.Databases, logger)
	syncer := comments.NewSynchronizer(conns,
		comments.WithRouter(connection.NewAppRouter(cfg.Databases)),
		comments.WithOutput(progress),
		comments.WithLogger(logger),
	)

	cleanup := func() {
		if err := conns.Close(); err != nil {
			logger.Warn("failed to close connections", slog.String("error", err.Error()))
		}
	}

	return &CommandContext{
		Cfg:          cfg,
		Logger:       logger,
		Renderer:     r,
		Schema:       sch,
		Conns:        conns,
		Synchronizer: syncer,
	}, cleanup, nil
}

// NewCommandContextWithoutSchema creates a CommandContext with only config,
// logger and renderer. Useful for commands that don't read models.
func NewCommandContextWithoutSchema(cmd *cobra.Command) *CommandContext {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		cfg = &config.Config{OutputFormat: config.DefaultOutput}
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// Modules returns the named modules in argument order, or every module when
// labels is empty.
func (c *CommandContext) Modules(labels []string) ([]*model.Module, error) {
	reg := c.Schema.Registry
	if len(labels) == 0 {
		return reg.Modules(), nil
	}

	mods := make([]*model.Module, 0, len(labels))
	for _, label := range labels {
		mod, ok := reg.Module(label)
		if !ok {
			return nil, &UnknownModuleError{Label: label, Available: moduleLabels(reg)}
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// Options returns synchronizer options from the loaded config.
func (c *CommandContext) Options() comments.Options {
	return comments.Options{
		Verbosity:   c.Cfg.Verbosity,
		Interactive: c.Cfg.Interactive,
		Using:       c.Cfg.DefaultDatabase,
		Apps:        c.Schema.Registry,
	}
}

// UnknownModuleError is returned when a module label is not in the schema.
type UnknownModuleError struct {
	Label     string
	Available []string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module %q\nAvailable modules: %s\nHint: Check the schema files listed under schema: in dbcomments.yaml",
		e.Label, strings.Join(e.Available, ", "))
}

func moduleLabels(reg model.Introspector) []string {
	mods := reg.Modules()
	labels := make([]string, 0, len(mods))
	for _, mod := range mods {
		labels = append(labels, mod.Label)
	}
	return labels
}

// completeModules offers module labels from the schema for shell completion.
func completeModules(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	sch, err := schema.Load(cfg.Tag(), cfg.Schema...)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return moduleLabels(sch.Registry), cobra.ShellCompDirectiveNoFileComp
}
