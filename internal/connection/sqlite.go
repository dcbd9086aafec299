package connection

import (
	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

func init() {
	Register("sqlite3", Engine{Driver: "sqlite", Dialect: "sqlite3", DSN: buildSQLiteDSN})
}

// buildSQLiteDSN uses the database name as the file path.
func buildSQLiteDSN(cfg Config) string {
	if cfg.Name == "" {
		return ":memory:"
	}
	return cfg.Name
}
