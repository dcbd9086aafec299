// Package config provides configuration management for the dbcomments CLI.
//
// Configuration is layered with koanf: built-in defaults, then
// dbcomments.yaml, then DBCOMMENTS_* environment variables, then flags.
package config

import (
	"github.com/leapstack-labs/dbcomments/internal/connection"
	"github.com/leapstack-labs/dbcomments/pkg/comments"
)

// DatabaseConfig is an alias for the connection configuration of one alias.
type DatabaseConfig = connection.Config

// Config holds all CLI configuration options.
type Config struct {
	Schema          []string                  `koanf:"schema"`
	DefaultDatabase string                    `koanf:"default_database"`
	Verbosity       int                       `koanf:"verbosity"`
	Interactive     bool                      `koanf:"interactive"`
	Language        string                    `koanf:"language"`
	OutputFormat    string                    `koanf:"output"`
	Databases       map[string]DatabaseConfig `koanf:"databases"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultSchemaFile = "models.yaml"
	DefaultDatabase   = comments.DefaultDatabase
	DefaultVerbosity  = 1
	DefaultLanguage   = "en"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	EnvPrefix         = "DBCOMMENTS_"
)

// configFileNames are searched in order.
var configFileNames = []string{"dbcomments.yaml", "dbcomments.yml"}

