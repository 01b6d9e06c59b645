package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when a case does not meet its expectation.
// It includes the compiled filter to help debug the failure.
type AssertionError struct {
	Case     string
	Expected string
	Actual   string
	SQL      string
	Args     []any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Case failed: %s\n", e.Case)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "  SQL: %s\n", e.SQL)
		fmt.Fprintf(&buf, "  Args: %v\n", e.Args)
	}

	return buf.String()
}

// checkCase compares a case outcome with its expectation. It returns nil
// when the case passes.
func checkCase(c Case, got CaseResult) *AssertionError {
	fail := func(expected, actual string) *AssertionError {
		return &AssertionError{
			Case:     c.Name,
			Expected: expected,
			Actual:   actual,
			SQL:      got.SQL,
			Args:     got.Args,
		}
	}

	if c.ExpectError != "" {
		if got.ErrorCode == c.ExpectError {
			return nil
		}
		if got.ErrorCode == "" {
			return fail("error "+c.ExpectError, "rows "+formatIDs(got.IDs))
		}
		return fail("error "+c.ExpectError, "error "+got.ErrorCode)
	}

	if got.ErrorCode != "" {
		return fail("rows "+formatIDs(c.ExpectIDs), "error "+got.ErrorCode)
	}
	if !slices.Equal(normalizeIDs(c.ExpectIDs), normalizeIDs(got.IDs)) {
		return fail("rows "+formatIDs(c.ExpectIDs), "rows "+formatIDs(got.IDs))
	}
	return nil
}

func normalizeIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func formatIDs(ids []int64) string {
	return fmt.Sprintf("%v", normalizeIDs(ids))
}
