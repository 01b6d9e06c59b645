// Package filtererr defines the typed errors raised while parsing, binding
// and compiling filters, and while validating user input for a column.
//
// Errors are raised synchronously at the point of detection and are never
// retried by this layer. A single failing leaf fails the whole filter.
package filtererr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code categorizes filter errors.
type Code string

const (
	// CodeInvalidFilterValue indicates a malformed operand or sub-operator
	// argument (non-numeric days, unparseable exactDate, missing
	// sub-operator).
	CodeInvalidFilterValue Code = "INVALID_FILTER_VALUE"

	// CodeInvalidValueForField indicates user input that cannot be coerced
	// to the column's declared type.
	CodeInvalidValueForField Code = "INVALID_VALUE_FOR_FIELD"

	// CodeUnsupportedOperator indicates a handler was asked for an
	// operator or sub-operator it does not implement.
	CodeUnsupportedOperator Code = "UNSUPPORTED_OPERATOR_FOR_TYPE"

	// CodeInvalidSyntax indicates the filter text could not be parsed.
	CodeInvalidSyntax Code = "INVALID_FILTER_SYNTAX"

	// CodeUnknownField indicates a filter references a column the table
	// does not have.
	CodeUnknownField Code = "UNKNOWN_FIELD"
)

// Error is a filter error with structured context for diagnostics.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Field is the column title the error relates to (if any).
	Field string

	// ColumnType is the logical type of Field.
	ColumnType string

	// Operator and SubOperator identify the offending comparison.
	Operator    string
	SubOperator string

	// Value is the offending input.
	Value any

	// Pos is the byte offset in the filter text (syntax errors), or -1.
	Pos int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)

	var ctx []string
	if e.Field != "" {
		ctx = append(ctx, "field="+e.Field)
	}
	if e.ColumnType != "" {
		ctx = append(ctx, "type="+e.ColumnType)
	}
	if e.Operator != "" {
		ctx = append(ctx, "op="+e.Operator)
	}
	if e.SubOperator != "" {
		ctx = append(ctx, "sub_op="+e.SubOperator)
	}
	if e.Code == CodeInvalidSyntax && e.Pos >= 0 {
		ctx = append(ctx, fmt.Sprintf("pos=%d", e.Pos))
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error onto the validation status the REST layer
// reports. Every filter error is a client error.
func (e *Error) HTTPStatus() int {
	if e.Code == CodeInvalidValueForField {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// InvalidFilterValue creates an error for a malformed filter operand.
func InvalidFilterValue(field, op, subOp string, value any, format string, args ...any) *Error {
	return &Error{
		Code:        CodeInvalidFilterValue,
		Message:     fmt.Sprintf(format, args...),
		Field:       field,
		Operator:    op,
		SubOperator: subOp,
		Value:       value,
		Pos:         -1,
	}
}

// InvalidValueForField creates an error for input that does not fit the
// column's type.
func InvalidValueForField(field, columnType string, value any) *Error {
	return &Error{
		Code:       CodeInvalidValueForField,
		Message:    fmt.Sprintf("invalid value %v for field", value),
		Field:      field,
		ColumnType: columnType,
		Value:      value,
		Pos:        -1,
	}
}

// UnsupportedOperator creates an error for an operator the column type
// does not implement.
func UnsupportedOperator(field, columnType, op, subOp string) *Error {
	msg := fmt.Sprintf("operator %q is not supported", op)
	if subOp != "" {
		msg = fmt.Sprintf("operator %q with sub-operator %q is not supported", op, subOp)
	}
	return &Error{
		Code:        CodeUnsupportedOperator,
		Message:     msg,
		Field:       field,
		ColumnType:  columnType,
		Operator:    op,
		SubOperator: subOp,
		Pos:         -1,
	}
}

// InvalidSyntax creates a parse error at the given position.
func InvalidSyntax(pos int, format string, args ...any) *Error {
	return &Error{
		Code:    CodeInvalidSyntax,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// UnknownField creates an error for a filter referencing a missing column.
func UnknownField(field string) *Error {
	return &Error{
		Code:    CodeUnknownField,
		Message: "field not found",
		Field:   field,
		Pos:     -1,
	}
}

// Annotate fills the empty context fields of a filter error raised below
// the comparison level. Other errors are returned unchanged.
func Annotate(err error, field, columnType, op string) error {
	var fe *Error
	if !errors.As(err, &fe) {
		return err
	}
	if fe.Field == "" {
		fe.Field = field
	}
	if fe.ColumnType == "" {
		fe.ColumnType = columnType
	}
	if fe.Operator == "" {
		fe.Operator = op
	}
	return err
}

// CodeOf returns the code of a (possibly wrapped) filter error, or "".
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsInvalidFilterValue returns true if err is an INVALID_FILTER_VALUE error.
func IsInvalidFilterValue(err error) bool {
	return CodeOf(err) == CodeInvalidFilterValue
}

// IsInvalidValueForField returns true if err is an INVALID_VALUE_FOR_FIELD error.
func IsInvalidValueForField(err error) bool {
	return CodeOf(err) == CodeInvalidValueForField
}

// IsUnsupportedOperator returns true if err is an
// UNSUPPORTED_OPERATOR_FOR_TYPE error.
func IsUnsupportedOperator(err error) bool {
	return CodeOf(err) == CodeUnsupportedOperator
}

// IsInvalidSyntax returns true if err is an INVALID_FILTER_SYNTAX error.
func IsInvalidSyntax(err error) bool {
	return CodeOf(err) == CodeInvalidSyntax
}

// IsUnknownField returns true if err is an UNKNOWN_FIELD error.
func IsUnknownField(err error) bool {
	return CodeOf(err) == CodeUnknownField
}

// HTTPStatus returns the status for err: the filter error's status, or
// 500 for anything else.
func HTTPStatus(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.HTTPStatus()
	}
	return http.StatusInternalServerError
}
