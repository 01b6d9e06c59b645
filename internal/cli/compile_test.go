package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tasksSchema = "../schema/testdata/tasks"

// runRoot executes the root command with args and returns stdout and the
// command error.
func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompile_Text(t *testing.T) {
	out, err := runRoot(t, "",
		"--now", "2026-01-15T10:00:00Z",
		"compile", "--schema", tasksSchema, "--table", "Tasks", "--where", "(Due,eq,today)")
	require.NoError(t, err)

	assert.Equal(t, "SQL:  \"due\" = ?\nArgs: [2026-01-15]\n", out)
}

func TestCompile_JSON(t *testing.T) {
	out, err := runRoot(t, "",
		"--format", "json", "--now", "2026-01-15T10:00:00Z", "--timezone", "America/Los_Angeles",
		"compile", "--schema", tasksSchema, "--table", "tasks", "--where", "(Due,eq,today)")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompileOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Tasks", resp.Data.Table)
	assert.Equal(t, "sqlite", resp.Data.Dialect)
	assert.Equal(t, `"due" = ?`, resp.Data.SQL)
	// 10:00 UTC is 02:00 the same day in Los Angeles.
	assert.Equal(t, []any{"2026-01-15"}, resp.Data.Args)
	assert.NotEmpty(t, resp.Data.Evaluation)
}

func TestCompile_NoFilter(t *testing.T) {
	out, err := runRoot(t, "", "compile", "--schema", tasksSchema, "--table", "Tasks")
	require.NoError(t, err)
	assert.Equal(t, "(no filter)\n", out)
}

func TestCompile_FilterRowsFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "filters.json")
	yamlPath := filepath.Join(dir, "filters.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"field":"Due","comparison_op":"blank"}]`), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("- field: Due\n  comparison_op: notblank\n"), 0o644))

	tests := []struct {
		name  string
		stdin string
		path  string
		want  string
	}{
		{"json file", "", jsonPath, `"due" IS NULL`},
		{"yaml file", "", yamlPath, `"due" IS NOT NULL`},
		{"stdin", `[{"field":"Due","comparison_op":"blank"}]`, "-", `"due" IS NULL`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, tt.stdin, "compile", "--schema", tasksSchema, "--table", "Tasks", "--filters", tt.path)
			require.NoError(t, err)
			assert.Contains(t, out, "SQL:  "+tt.want)
		})
	}
}

func TestCompile_FilterErrors(t *testing.T) {
	tests := []struct {
		name     string
		where    string
		wantCode string
		status   int
	}{
		{"malformed exact date", "(Due,eq,exactDate,someday)", "INVALID_FILTER_VALUE", 400},
		{"window with eq", "(Due,eq,pastWeek)", "UNSUPPORTED_OPERATOR_FOR_TYPE", 400},
		{"unknown field", "(Deadline,eq,today)", "UNKNOWN_FIELD", 400},
		{"syntax", "(Due,eq,today", "INVALID_FILTER_SYNTAX", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, "", "--format", "json",
				"compile", "--schema", tasksSchema, "--table", "Tasks", "--where", tt.where)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.status, resp.Error.Status)
		})
	}
}

func TestCompile_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"missing schema dir", []string{"--schema", "/does/not/exist", "--table", "Tasks"}, ErrCodeNotFound},
		{"no schema", []string{"--table", "Tasks"}, ErrCodeNotFound},
		{"unknown table", []string{"--schema", tasksSchema, "--table", "Projects"}, ErrCodeUnknownTable},
		{"table required", []string{"--schema", tasksSchema}, ErrCodeUnknownTable},
		{"where and filters", []string{"--schema", tasksSchema, "--table", "Tasks", "--where", "(Due,blank)", "--filters", "-"}, ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, "", append([]string{"--format", "json", "compile"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestCompile_SchemaErrorHasPosition(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte("table: T: {\n\tcolumns: {\n\t\tId: uidt: \"Bogus\"\n\t}\n}\n"), 0o644))

	out, err := runRoot(t, "", "compile", "--schema", dir, "--table", "T")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
	assert.Contains(t, out, "bad.cue:3:")
}
