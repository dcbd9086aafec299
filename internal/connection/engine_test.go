package connection

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEngines(t *testing.T) {
	for _, name := range []string{"postgresql", "postgis", "postgresql_psycopg2", "psqlextra"} {
		e, ok := Lookup(name)
		require.True(t, ok, "%s should be registered", name)
		assert.Equal(t, "pgx", e.Driver)
		assert.Equal(t, "postgres", e.Dialect)
	}

	e, ok := Lookup("sqlite3")
	require.True(t, ok)
	assert.Equal(t, "sqlite", e.Driver)
	assert.Equal(t, "sqlite3", e.Dialect)

	_, ok = Lookup("mysql")
	assert.False(t, ok)
}

func TestRegister(t *testing.T) {
	Register("test_engine_internal", Engine{Driver: "none", DSN: func(Config) string { return "" }})
	_, ok := Lookup("test_engine_internal")
	assert.True(t, ok)
	assert.Contains(t, ListEngines(), "test_engine_internal")
}

func TestUnknownEngineError_Error(t *testing.T) {
	err := &UnknownEngineError{Engine: "oracle", Available: []string{"postgresql", "sqlite3"}}
	msg := err.Error()
	assert.Contains(t, msg, "oracle")
	assert.Contains(t, msg, "postgresql")
	assert.Contains(t, msg, "dbcomments.yaml")
}

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name: "basic connection",
			config: Config{
				Host:     "localhost",
				Port:     5432,
				Name:     "testdb",
				User:     "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable default_query_exec_mode=simple_protocol user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: Config{
				Host:    "prod.example.com",
				Port:    5432,
				Name:    "proddb",
				User:    "admin",
				Options: map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require default_query_exec_mode=simple_protocol user=admin",
		},
		{
			name:     "defaults",
			config:   Config{Name: "mydb"},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable default_query_exec_mode=simple_protocol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestBuildPostgresDSN_QuotedValues(t *testing.T) {
	cfg := Config{
		Host:     "db.internal",
		Name:     "my db",
		User:     "o'brien",
		Password: `p@ss word's\x`,
	}

	dsn := buildPostgresDSN(cfg)
	assert.Contains(t, dsn, `dbname='my db'`)
	assert.Contains(t, dsn, `user='o\'brien'`)

	parsed, err := pgx.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", parsed.Host)
	assert.Equal(t, "my db", parsed.Database)
	assert.Equal(t, "o'brien", parsed.User)
	assert.Equal(t, `p@ss word's\x`, parsed.Password)
	assert.Equal(t, pgx.QueryExecModeSimpleProtocol, parsed.DefaultQueryExecMode)
}

func TestDSNValue(t *testing.T) {
	assert.Equal(t, "plain", dsnValue("plain"))
	assert.Equal(t, "''", dsnValue(""))
	assert.Equal(t, `'a b'`, dsnValue("a b"))
	assert.Equal(t, `'it\'s'`, dsnValue("it's"))
	assert.Equal(t, `'c:\\x'`, dsnValue(`c:\x`))
}

func TestBuildSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", buildSQLiteDSN(Config{}))
	assert.Equal(t, "/tmp/app.db", buildSQLiteDSN(Config{Name: "/tmp/app.db"}))
}
