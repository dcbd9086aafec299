package config

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/dbcomments/internal/connection"
	"golang.org/x/text/language"
)

// validOutputs lists the accepted output formats.
var validOutputs = map[string]bool{
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Schema) == 0 {
		return fmt.Errorf("schema is required")
	}
	if c.DefaultDatabase == "" {
		return fmt.Errorf("default_database is required")
	}
	if c.Verbosity < 0 || c.Verbosity > 3 {
		return fmt.Errorf("verbosity must be between 0 and 3, got %d", c.Verbosity)
	}
	if !validOutputs[c.OutputFormat] {
		return fmt.Errorf("unknown output format %q (valid: auto, text, markdown, json)", c.OutputFormat)
	}
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("invalid language %q: %w", c.Language, err)
	}

	for alias, db := range c.Databases {
		if db.Engine == "" {
			return fmt.Errorf("database %q: engine is required", alias)
		}
		if _, ok := connection.Lookup(db.Engine); !ok {
			return fmt.Errorf("database %q: %w", alias, &connection.UnknownEngineError{Engine: db.Engine, Available: connection.ListEngines()})
		}
	}
	return nil
}

// ValidateDatabase checks that alias is configured. Commands that touch a
// database call this before opening connections.
func (c *Config) ValidateDatabase(alias string) error {
	if _, ok := c.Databases[alias]; !ok {
		return fmt.Errorf("database alias %q is not configured\nHint: add it under databases: in dbcomments.yaml", alias)
	}
	return nil
}

// ValidateSchemaFiles checks that every schema file exists.
func (c *Config) ValidateSchemaFiles() error {
	for _, p := range c.Schema {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("schema file does not exist: %s\nHint: create it or use --schema to specify a different path", p)
		}
	}
	return nil
}

// Tag returns the configured language tag.
func (c *Config) Tag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

func isFileEngine(engine string) bool {
	e, ok := connection.Lookup(engine)
	return ok && e.Dialect == "sqlite3"
}
