package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Manager opens and caches database handles by alias.
type Manager struct {
	mu      sync.Mutex
	configs map[string]Config
	dbs     map[string]*sql.DB
	logger  *slog.Logger
}

// NewManager creates a manager for the given alias configurations.
// If logger is nil, a discard logger is used.
func NewManager(configs map[string]Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{
		configs: make(map[string]Config, len(configs)),
		dbs:     make(map[string]*sql.DB),
		logger:  logger,
	}
	for alias, cfg := range configs {
		m.configs[alias] = cfg
	}
	return m
}

// Aliases returns the configured aliases (sorted).
func (m *Manager) Aliases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	aliases := make([]string, 0, len(m.configs))
	for alias := range m.configs {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// Config returns the configuration of alias.
func (m *Manager) Config(alias string) (Config, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[alias]
	return cfg, ok
}

// Engine returns the engine configured for alias, or "" if the alias is unknown.
func (m *Manager) Engine(alias string) string {
	cfg, _ := m.Config(alias)
	return cfg.Engine
}

// Attach registers an already open handle under alias. The manager takes
// ownership and closes it in Close.
func (m *Manager) Attach(alias, engine string, db *sql.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := m.configs[alias]
	cfg.Engine = engine
	m.configs[alias] = cfg
	m.dbs[alias] = db
}

// Dialect returns the migration dialect of alias's engine.
func (m *Manager) Dialect(alias string) (string, error) {
	cfg, ok := m.Config(alias)
	if !ok {
		return "", &UnknownAliasError{Alias: alias}
	}
	e, ok := Lookup(cfg.Engine)
	if !ok {
		return "", &UnknownEngineError{Engine: cfg.Engine, Available: ListEngines()}
	}
	return e.Dialect, nil
}

// DB returns the handle for alias, opening it on first use.
func (m *Manager) DB(ctx context.Context, alias string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.dbs[alias]; ok {
		return db, nil
	}

	cfg, ok := m.configs[alias]
	if !ok {
		return nil, &UnknownAliasError{Alias: alias}
	}
	e, ok := Lookup(cfg.Engine)
	if !ok {
		return nil, &UnknownEngineError{Engine: cfg.Engine, Available: ListEngines()}
	}

	m.logger.Debug("opening database connection",
		slog.String("alias", alias),
		slog.String("engine", cfg.Engine),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Name))

	db, err := sql.Open(e.Driver, e.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection %q: %w", cfg.Engine, alias, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s connection %q: %w", cfg.Engine, alias, err)
	}

	m.dbs[alias] = db
	return db, nil
}

// Close closes every open handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for alias, db := range m.dbs {
		m.logger.Debug("closing database connection", slog.String("alias", alias))
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %q: %w", alias, err))
		}
		delete(m.dbs, alias)
	}
	return errors.Join(errs...)
}
