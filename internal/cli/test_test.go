package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessTestdata = "../harness/testdata"

// copyScenario copies a harness scenario and its schema into a temp
// directory so golden files can be written next to it.
func copyScenario(t *testing.T, name string) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"schema", "scenarios"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	cue, err := os.ReadFile(filepath.Join(harnessTestdata, "schema", "tables.cue"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "schema", "tables.cue"), cue, 0o644))

	scenario, err := os.ReadFile(filepath.Join(harnessTestdata, "scenarios", name+".yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "scenarios", name+".yaml"), scenario, 0o644))

	return filepath.Join(root, "scenarios")
}

func TestTestCommandMissingArgs(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"/nonexistent/scenarios"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{t.TempDir()})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{t.TempDir()})

	require.NoError(t, cmd.Execute())

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := runRoot(t, "", "test", filepath.Join(harnessTestdata, "scenarios"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ kolkata_today")
	assert.Contains(t, out, "✓ duckdb_native_dates")
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := runRoot(t, "", "--format", "json", "test", filepath.Join(harnessTestdata, "scenarios"), "--filter", "kolkata*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, ScenarioResult{Name: "kolkata_today", Pass: true, Cases: 5}, resp.Data.Scenarios[0])
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := copyScenario(t, "kolkata_today")
	path := filepath.Join(dir, "kolkata_today.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.Replace(data, []byte("expect_ids: [2]\n"), []byte("expect_ids: [3]\n"), 1)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := runRoot(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ kolkata_today")
	assert.Contains(t, out, "Expected: rows [3]")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0o644))

	out, err := runRoot(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "load error")
}

func TestTestCommandGolden(t *testing.T) {
	dir := copyScenario(t, "kolkata_today")

	out, err := runRoot(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ kolkata_today (golden updated)")

	written, err := os.ReadFile(filepath.Join(dir, "golden", "kolkata_today.golden"))
	require.NoError(t, err)
	expected, err := os.ReadFile(filepath.Join(harnessTestdata, "golden", "kolkata_today.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(written))

	_, err = runRoot(t, "", "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "kolkata_today.golden"), []byte("stale\n"), 0o644))
	out, err = runRoot(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "golden file mismatch")
}

func TestTestHelpText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "--update")
	assert.Contains(t, output, "--filter")
	assert.Contains(t, output, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "golden"), 0o755))

	for _, name := range []string{"today.yaml", "past-week.yml", "past-month.yaml", "ignore.txt", "golden/today.golden"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(""), 0o644))
	}

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(tmpDir, "past-*")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "past-month.yaml"),
		filepath.Join(tmpDir, "past-week.yml"),
	}, files)

	_, err = findScenarioFiles(tmpDir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input))
	}
}
