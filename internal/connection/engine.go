// Package connection manages database connections by alias.
//
// Each alias is configured with an engine name. Engines are registered with a
// database/sql driver, a migration dialect and a DSN builder; handles are
// opened on first use and closed together.
package connection

import (
	"fmt"
	"sort"
	"sync"
)

// Config describes one configured connection.
type Config struct {
	// Engine selects the registered engine (e.g., "postgresql", "sqlite3")
	Engine string `koanf:"engine"`
	// Name is the database name, or the file path for file-based engines
	Name string `koanf:"name"`
	// Host is the hostname for network databases
	Host string `koanf:"host"`
	// Port is the port for network databases
	Port int `koanf:"port"`
	// User for authentication
	User string `koanf:"user"`
	// Password for authentication
	Password string `koanf:"password"`
	// Options contains additional driver-specific options
	Options map[string]string `koanf:"options"`
	// Apps restricts which modules may be migrated on this connection (empty: all)
	Apps []string `koanf:"apps"`
}

// Engine is a registered database engine.
type Engine struct {
	// Driver is the database/sql driver name
	Driver string
	// Dialect is the goose dialect used for migrations
	Dialect string
	// DSN builds the driver connection string
	DSN func(Config) string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Engine)
)

// Register adds an engine to the registry.
// Called by engine implementations in their init() functions.
func Register(name string, e Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = e
}

// Lookup retrieves a registered engine.
func Lookup(name string) (Engine, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[name]
	return e, ok
}

// ListEngines returns all registered engine names (sorted).
func ListEngines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownEngineError is returned when a connection names an unregistered engine.
type UnknownEngineError struct {
	Engine    string
	Available []string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown engine %q\nAvailable engines: %v\nHint: Check databases.<alias>.engine in dbcomments.yaml", e.Engine, e.Available)
}

// UnknownAliasError is returned for an alias with no configuration.
type UnknownAliasError struct {
	Alias string
}

func (e *UnknownAliasError) Error() string {
	return fmt.Sprintf("database alias %q is not configured", e.Alias)
}
