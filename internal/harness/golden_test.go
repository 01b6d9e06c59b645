package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, path := range []string{
		"testdata/scenarios/kolkata_today.yaml",
		"testdata/scenarios/datetime_boundaries.yaml",
	} {
		s, err := LoadScenario(path)
		require.NoError(t, err)

		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_OmitsEmptyTimezone(t *testing.T) {
	s := &Scenario{Name: "plain", Now: "2026-01-01T00:00:00Z"}
	r := NewResult()
	r.Cases = append(r.Cases, CaseResult{Name: "c", SQL: "1 = 1"})

	assert.Equal(t, "scenario: plain\nnow: 2026-01-01T00:00:00Z\n\ncase: c\nsql: 1 = 1\nargs: []\nids: []\n", string(Snapshot(s, r)))
}
