package comments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/leapstack-labs/dbcomments/pkg/model"
)

// DefaultDatabase is the connection alias used when none is given.
const DefaultDatabase = "default"

// DefaultVerbosity prints one line per written comment.
const DefaultVerbosity = 2

// allowedEngines are the engines that understand COMMENT ON.
var allowedEngines = []string{
	"postgresql",
	"postgis",
	"postgresql_psycopg2",
	"psqlextra",
}

// AllowedEngines returns the engines comments are written for.
func AllowedEngines() []string {
	return slices.Clone(allowedEngines)
}

// IsAllowedEngine reports whether engine supports comment statements.
func IsAllowedEngine(engine string) bool {
	return slices.Contains(allowedEngines, engine)
}

// Router decides whether a module's schema may be migrated on a connection.
type Router interface {
	AllowMigrate(alias, moduleLabel string) bool
}

// AllowAll is a Router that permits every module on every connection.
type AllowAll struct{}

// AllowMigrate always returns true.
func (AllowAll) AllowMigrate(string, string) bool { return true }

// Options controls one synchronization pass.
type Options struct {
	// Verbosity >= 2 prints every comment that is added
	Verbosity int
	// Interactive is accepted for signal compatibility and ignored
	Interactive bool
	// Using is the connection alias (default: "default")
	Using string
	// Apps is the model registry the signal was sent with (informational)
	Apps model.Introspector
}

// DefaultOptions returns the options a post-migrate signal uses by default.
func DefaultOptions() Options {
	return Options{Verbosity: DefaultVerbosity, Interactive: true, Using: DefaultDatabase}
}

// Synchronizer copies model documentation into database comments.
// A module is handled at most once per Synchronizer, even if it turns out
// ineligible or its write fails.
type Synchronizer struct {
	conns     Connections
	router    Router
	writer    Writer
	processed *ProcessedSet
	out       io.Writer
	logger    *slog.Logger
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithRouter sets the migration router (default: AllowAll).
func WithRouter(r Router) Option {
	return func(s *Synchronizer) { s.router = r }
}

// WithWriter replaces the SQL writer.
func WithWriter(w Writer) Option {
	return func(s *Synchronizer) { s.writer = w }
}

// WithOutput sets where verbose lines go (default: io.Discard).
func WithOutput(w io.Writer) Option {
	return func(s *Synchronizer) { s.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithProcessedSet shares a processed set between synchronizers.
func WithProcessedSet(p *ProcessedSet) Option {
	return func(s *Synchronizer) { s.processed = p }
}

// NewSynchronizer creates a synchronizer writing through conns.
func NewSynchronizer(conns Connections, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		conns:  conns,
		router: AllowAll{},
		out:    io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.processed == nil {
		s.processed = NewProcessedSet()
	}
	if s.writer == nil {
		s.writer = NewSQLWriter(conns, s.logger)
	}
	return s
}

// Processed exposes the set of modules already handled.
func (s *Synchronizer) Processed() *ProcessedSet {
	return s.processed
}

// IsEligible reports whether comments for module may be written on alias:
// the module has models, the engine supports comments, and the router
// permits migrating the module there.
func (s *Synchronizer) IsEligible(module *model.Module, alias string) bool {
	if !module.HasModels() {
		return false
	}
	if !IsAllowedEngine(s.conns.Engine(alias)) {
		return false
	}
	return s.router.AllowMigrate(alias, module.Label)
}

// Plan computes the comments for module without writing anything.
func (s *Synchronizer) Plan(module *model.Module) (CommentMap, TableCommentMap) {
	return BuildComments(ConcreteModels(module.Models))
}

// SynchronizeModuleComments writes the comments of module once per process.
// Ineligible modules are skipped without error. Write errors are returned
// and the module stays marked as processed.
func (s *Synchronizer) SynchronizeModuleComments(ctx context.Context, module *model.Module, opts Options) error {
	if opts.Using == "" {
		opts.Using = DefaultDatabase
	}

	if !s.processed.ShouldProcess(module.Label) {
		return nil
	}
	if !s.IsEligible(module, opts.Using) {
		return nil
	}

	logger := s.logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("module", module.Label),
		slog.String("database", opts.Using),
	)

	columns, tables := s.Plan(module)

	if len(columns) > 0 {
		if err := s.writer.WriteColumnComments(ctx, columns, opts.Using); err != nil {
			return fmt.Errorf("failed to write column comments for %s: %w", module.Label, err)
		}
	}
	if len(tables) > 0 {
		if err := s.writer.WriteTableComments(ctx, tables, opts.Using); err != nil {
			return fmt.Errorf("failed to write table comments for %s: %w", module.Label, err)
		}
	}

	logger.Info("comments synchronized",
		slog.Int("columns", columns.Len()),
		slog.Int("tables", len(tables)))

	if opts.Verbosity >= 2 {
		s.report(columns, tables)
	}
	return nil
}

func (s *Synchronizer) report(columns CommentMap, tables TableCommentMap) {
	for _, t := range columns {
		for _, c := range t.Columns {
			_, _ = fmt.Fprintf(s.out, "Adding comment in %s for %s = '%s'\n", t.Table, c.Column, c.Comment)
		}
	}
	for _, t := range tables {
		_, _ = fmt.Fprintf(s.out, "Adding comment to %s = '%s'\n", t.Table, t.Comment)
	}
}
