// Package main provides tests for the dbcomments CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/dbcomments/internal/cli"
	"github.com/leapstack-labs/dbcomments/internal/cli/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "..", "..", "testdata")
}

// run executes the root command with the testdata config and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(testdataDir(t), "dbcomments.yaml")}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

// localDB points the sqlite alias at a fresh file.
func localDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.db")
	t.Setenv("DBCOMMENTS_DATABASES__LOCAL__NAME", path)
	return path
}

func findModule(t *testing.T, plan commands.PlanOutput, label string) commands.ModulePlan {
	t.Helper()
	for _, mp := range plan.Modules {
		if mp.Module == label {
			return mp
		}
	}
	t.Fatalf("module %q not in plan", label)
	return commands.ModulePlan{}
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "dbcomments") {
		t.Errorf("version output should contain 'dbcomments', got: %s", output)
	}
}

func TestPlanCommand_JSON(t *testing.T) {
	out, err := run(t, "plan", "-o", "json")
	require.NoError(t, err)

	var plan commands.PlanOutput
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "default", plan.Database)
	assert.Equal(t, "postgresql", plan.Engine)
	require.Len(t, plan.Modules, 3)

	tests := findModule(t, plan, "tests")
	assert.True(t, tests.Eligible)
	assert.Equal(t, []commands.ColumnPlan{{Table: "tests_examplemodel", Column: "created_at", Comment: "model creation time"}}, tests.Columns)
	assert.Equal(t, []commands.TablePlan{{Table: "tests_examplemodel", Comment: "This Is An Example For Table Comment"}}, tests.Tables)

	auth := findModule(t, plan, "auth")
	assert.Equal(t, []commands.ColumnPlan{{
		Table:   "auth_user",
		Column:  "is_superuser",
		Comment: "superuser status | Designates that this user has all permissions without explicitly assigning them.",
	}}, auth.Columns)
	assert.Equal(t, []commands.TablePlan{{Table: "auth_user", Comment: "User"}}, auth.Tables)

	empty := findModule(t, plan, "empty")
	assert.False(t, empty.Eligible, "modules without models are never eligible")
	assert.Empty(t, empty.Columns)
}

func TestPlanCommand_Language(t *testing.T) {
	out, err := run(t, "plan", "auth", "-o", "json", "--language", "fr")
	require.NoError(t, err)

	var plan commands.PlanOutput
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan.Modules, 1)
	assert.Equal(t,
		"statut super-utilisateur | Designates that this user has all permissions without explicitly assigning them.",
		plan.Modules[0].Columns[0].Comment)
}

func TestPlanCommand_Markdown(t *testing.T) {
	out, err := run(t, "plan", "tests", "-d", "local")
	require.NoError(t, err)

	assert.Contains(t, out, "# Comment plan for local (sqlite3)")
	assert.Contains(t, out, "## tests (not eligible, will be skipped)")
	assert.Contains(t, out, "| tests_examplemodel | created_at | model creation time |")
}

func TestSyncCommand_IneligibleEngine(t *testing.T) {
	localDB(t)

	out, err := run(t, "sync", "-d", "local", "-o", "json")
	require.NoError(t, err)

	var results []commands.SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	for _, res := range results {
		assert.False(t, res.Eligible, res.Module)
		assert.Equal(t, "sqlite3", res.Engine)
	}
}

func TestSyncCommand_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{
			name:      "unknown module",
			args:      []string{"sync", "nope", "-d", "local"},
			errSubstr: `unknown module "nope"`,
		},
		{
			name:      "unconfigured alias",
			args:      []string{"sync", "-d", "replica"},
			errSubstr: `database alias "replica" is not configured`,
		},
		{
			name:      "missing schema",
			args:      []string{"sync", "--schema", "does-not-exist.yaml"},
			errSubstr: "schema file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			localDB(t)
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestMigrateCommand_SQLite(t *testing.T) {
	path := localDB(t)

	out, err := run(t, "migrate", "-d", "local", "-o", "json")
	require.NoError(t, err)

	var results []commands.MigrateResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Equal(t, []commands.MigrateResult{{Module: "tests", Version: 1}}, results)

	_, err = os.Stat(path)
	assert.NoError(t, err, "migrations ran against the configured file")

	// A second run is a no-op.
	out, err = run(t, "migrate", "-d", "local", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Equal(t, []commands.MigrateResult{{Module: "tests", Version: 1}}, results)
}

func TestCompletionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"completion", "bash"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "dbcomments")
}
