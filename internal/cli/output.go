package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/changsongyang/nocodb/internal/filtererr"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected filter or failed scenarios
	ExitCommandError = 2 // Command error (bad flags, missing schema, database unreachable)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // filter error code or E0xx
	Message string `json:"message"`           // human-readable message
	Status  int    `json:"status,omitempty"`  // HTTP status a REST layer would answer with
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. Text
// output prints data with its String method or %v.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	return f.emitError(&CLIError{Code: code, Message: message, Details: details})
}

// FilterError reports a rejected filter and returns the matching exit
// error. Errors that are not filter errors are reported as command errors.
func (f *OutputFormatter) FilterError(err error) error {
	var fe *filtererr.Error
	if !errors.As(err, &fe) {
		if outErr := f.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "command failed", err)
	}

	details := map[string]any{}
	if fe.Field != "" {
		details["field"] = fe.Field
	}
	if fe.ColumnType != "" {
		details["column_type"] = fe.ColumnType
	}
	if fe.Operator != "" {
		details["operator"] = fe.Operator
	}
	if fe.SubOperator != "" {
		details["sub_operator"] = fe.SubOperator
	}
	if len(details) == 0 {
		details = nil
	}

	if outErr := f.emitError(&CLIError{
		Code:    string(fe.Code),
		Message: err.Error(),
		Status:  fe.HTTPStatus(),
		Details: details,
	}); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, "filter rejected", err)
}

func (f *OutputFormatter) emitError(e *CLIError) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "error", Error: e})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
	if f.Verbose && e.Details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", e.Details)
	}
	return nil
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
