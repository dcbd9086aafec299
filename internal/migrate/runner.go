package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/dbcomments/pkg/model"
	"github.com/pressly/goose/v3"
)

// gooseMu serializes access to goose's package-level configuration.
var gooseMu sync.Mutex

// Connections resolves handles and dialects by alias.
type Connections interface {
	DB(ctx context.Context, alias string) (*sql.DB, error)
	Dialect(alias string) (string, error)
}

// Options controls a migrate run.
type Options struct {
	// Using is the connection alias
	Using string
	// Verbosity is forwarded to post-migrate receivers
	Verbosity int
	// Interactive is forwarded to post-migrate receivers
	Interactive bool
}

// Runner applies migrations and sends the post-migrate signal.
type Runner struct {
	conns  Connections
	apps   model.Introspector
	signal *Signal
	logger *slog.Logger
}

// NewRunner creates a runner. If logger is nil, a discard logger is used.
func NewRunner(conns Connections, apps model.Introspector, signal *Signal, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if signal == nil {
		signal = &Signal{}
	}
	return &Runner{conns: conns, apps: apps, signal: signal, logger: logger}
}

// Signal returns the post-migrate signal.
func (r *Runner) Signal() *Signal {
	return r.signal
}

// Migrate applies pending migrations for modules (all modules when empty),
// then sends one post-migrate event per module in order.
func (r *Runner) Migrate(ctx context.Context, modules []*model.Module, opts Options) error {
	if len(modules) == 0 {
		modules = r.apps.Modules()
	}

	for _, mod := range modules {
		if mod.MigrationsDir == "" {
			continue
		}
		if err := r.up(ctx, mod, opts.Using); err != nil {
			return err
		}
	}

	for _, mod := range modules {
		if err := r.signal.Send(ctx, Event{
			Module:      mod,
			Verbosity:   opts.Verbosity,
			Interactive: opts.Interactive,
			Using:       opts.Using,
			Apps:        r.apps,
		}); err != nil {
			return err
		}
	}
	return nil
}

// VersionTable returns the goose version table used for a module.
func VersionTable(label string) string {
	return "goose_db_version_" + label
}

func (r *Runner) up(ctx context.Context, mod *model.Module, using string) error {
	db, err := r.conns.DB(ctx, using)
	if err != nil {
		return err
	}
	dialect, err := r.conns.Dialect(using)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := r.configure(mod.Label, dialect); err != nil {
		return err
	}
	defer goose.SetLogger(discardLogger)

	r.logger.Info("applying migrations", slog.String("module", mod.Label), slog.String("dir", mod.MigrationsDir))
	if err := goose.UpContext(ctx, db, mod.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations for %s: %w", mod.Label, err)
	}
	return nil
}

// Version returns the current migration version of a module.
func (r *Runner) Version(ctx context.Context, mod *model.Module, using string) (int64, error) {
	db, err := r.conns.DB(ctx, using)
	if err != nil {
		return 0, err
	}
	dialect, err := r.conns.Dialect(using)
	if err != nil {
		return 0, err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := r.configure(mod.Label, dialect); err != nil {
		return 0, err
	}
	defer goose.SetLogger(discardLogger)

	return goose.GetDBVersionContext(ctx, db)
}

// configure points goose at the module's version table. Callers hold gooseMu.
func (r *Runner) configure(label, dialect string) error {
	goose.SetBaseFS(nil)
	goose.SetLogger(&gooseLogger{logger: r.logger.With(slog.String("module", label))})
	goose.SetTableName(VersionTable(label))
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

var discardLogger = &gooseLogger{logger: slog.New(slog.DiscardHandler)}

// gooseLogger forwards goose output to slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
