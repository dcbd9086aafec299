package connection

import (
	"fmt"
	"strings"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// postgresEngines all speak the PostgreSQL protocol through pgx.
var postgresEngines = []string{"postgresql", "postgis", "postgresql_psycopg2", "psqlextra"}

func init() {
	for _, name := range postgresEngines {
		Register(name, Engine{Driver: "pgx", Dialect: "postgres", DSN: buildPostgresDSN})
	}
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
// Statements use the simple protocol so that utility statements such as
// COMMENT ON accept their bound argument.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s default_query_exec_mode=simple_protocol",
		dsnValue(host), port, dsnValue(cfg.Name), dsnValue(sslmode))

	if cfg.User != "" {
		dsn += " user=" + dsnValue(cfg.User)
	}
	if cfg.Password != "" {
		dsn += " password=" + dsnValue(cfg.Password)
	}

	return dsn
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// dsnValue single-quotes v when it is empty or holds whitespace, quotes or
// backslashes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n\r'\\") {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}
