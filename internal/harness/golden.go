package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a scenario result as stable text: the compiled SQL,
// bound arguments and matching ids of every case.
func Snapshot(scenario *Scenario, result *Result) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "scenario: %s\n", scenario.Name)
	fmt.Fprintf(&buf, "now: %s\n", scenario.Now)
	if scenario.Timezone != "" {
		fmt.Fprintf(&buf, "timezone: %s\n", scenario.Timezone)
	}

	for _, c := range result.Cases {
		fmt.Fprintf(&buf, "\ncase: %s\n", c.Name)
		if c.ErrorCode != "" {
			fmt.Fprintf(&buf, "error: %s\n", c.ErrorCode)
			continue
		}
		fmt.Fprintf(&buf, "sql: %s\n", c.SQL)
		fmt.Fprintf(&buf, "args: %v\n", c.Args)
		fmt.Fprintf(&buf, "ids: %v\n", normalizeIDs(c.IDs))
	}

	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(scenario, result))

	return result, nil
}
