package filtererr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageIncludesContext(t *testing.T) {
	err := InvalidFilterValue("Date", "eq", "exactDate", "not-a-date", "cannot parse %q as YYYY-MM-DD", "not-a-date")

	msg := err.Error()
	assert.Contains(t, msg, "INVALID_FILTER_VALUE")
	assert.Contains(t, msg, "field=Date")
	assert.Contains(t, msg, "op=eq")
	assert.Contains(t, msg, "sub_op=exactDate")
	assert.NotContains(t, msg, "pos=")
}

func TestError_SyntaxErrorIncludesPosition(t *testing.T) {
	err := InvalidSyntax(7, "expected %q", ")")
	assert.Equal(t, `INVALID_FILTER_SYNTAX: expected ")" (pos=7)`, err.Error())
}

func TestError_WrappedClassification(t *testing.T) {
	base := UnsupportedOperator("Date", "Date", "like", "")
	wrapped := fmt.Errorf("compile filter: %w", base)

	assert.True(t, IsUnsupportedOperator(wrapped))
	assert.False(t, IsInvalidFilterValue(wrapped))
	assert.Equal(t, CodeUnsupportedOperator, CodeOf(wrapped))

	var fe *Error
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "like", fe.Operator)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Code: CodeInvalidFilterValue, Message: "bad", Err: cause, Pos: -1}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), ": boom")
}

func TestHTTPStatus(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid filter value", InvalidFilterValue("d", "eq", "daysAgo", "x", "bad"), http.StatusBadRequest},
		{"invalid value for field", InvalidValueForField("Date", "Date", "x"), http.StatusUnprocessableEntity},
		{"unsupported", UnsupportedOperator("Date", "Date", "like", ""), http.StatusBadRequest},
		{"syntax", InvalidSyntax(0, "bad"), http.StatusBadRequest},
		{"unknown field", UnknownField("Nope"), http.StatusBadRequest},
		{"plain error", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestUnsupportedOperator_MessageMentionsSubOperator(t *testing.T) {
	err := UnsupportedOperator("Due", "Date", "isWithin", "today")
	assert.Contains(t, err.Message, `sub-operator "today"`)
}

func TestAnnotate(t *testing.T) {
	err := InvalidFilterValue("", "", "daysAgo", "x", "not a number")
	got := Annotate(fmt.Errorf("compute: %w", err), "Due", "Date", "eq")

	var fe *Error
	require.True(t, errors.As(got, &fe))
	assert.Equal(t, "Due", fe.Field)
	assert.Equal(t, "eq", fe.Operator)
	assert.Equal(t, "daysAgo", fe.SubOperator)

	plain := errors.New("plain")
	assert.Same(t, plain, Annotate(plain, "Due", "Date", "eq"))
}
