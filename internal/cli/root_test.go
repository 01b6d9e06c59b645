package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "nocofilter", cmd.Use)
	assert.Contains(t, cmd.Long, "WHERE clauses")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, cmdName := range []string{"compile", "query", "test"} {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "dialect", "timezone", "now"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, name)
	}
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	dbFlag := queryCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	whereFlag := queryCmd.Flags().Lookup("where")
	require.NotNil(t, whereFlag)
	assert.Equal(t, "w", whereFlag.Shorthand)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "compile"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGlobalFlagErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown dialect", []string{"--dialect", "oracle"}, "oracle"},
		{"unknown timezone", []string{"--timezone", "Mars/Olympus"}, "unknown timezone"},
		{"bad now", []string{"--now", "tomorrow"}, "invalid --now"},
		{"missing config file", []string{"--config", "/does/not/exist.yaml"}, "read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append(tt.args, "compile", "--schema", tasksSchema, "--table", "Tasks", "--where", "(Due,blank)"))

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestConfigFileSetsDialect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nocofilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: postgres\nschema: "+tasksSchema+"\n"), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "--now", "2026-01-15", "compile", "--table", "Tasks", "--where", "(Score,gt,3)"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"score" > $1`)
}

func TestVerboseLogsToStderr(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"-v", "--now", "2026-01-15T10:00:00Z", "compile", "--schema", tasksSchema, "--table", "Tasks", "--where", "(Due,eq,today)"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `SQL:  "due" = ?`)
	assert.Contains(t, errOut.String(), "filter compiled")
	assert.Contains(t, errOut.String(), "Compiling filter for table Tasks")
}
