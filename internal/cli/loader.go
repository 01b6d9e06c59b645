package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/filterparse"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/schema"
)

// LoadError represents an error that occurred while loading a schema or
// filter file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadTable loads the CUE schema in dir and returns the named table.
func LoadTable(dir, name string) (*model.Table, error) {
	if dir == "" {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "schema directory is required (--schema or config schema)"}
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := schema.FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	tables, err := schema.LoadDir(dir)
	if err != nil {
		return nil, convertCompileError(err)
	}

	if name == "" {
		if len(tables) == 1 {
			return tables[0], nil
		}
		return nil, &LoadError{Code: ErrCodeUnknownTable, Message: fmt.Sprintf("--table is required: schema declares %d tables", len(tables))}
	}
	table, ok := schema.Find(tables, name)
	if !ok {
		return nil, &LoadError{Code: ErrCodeUnknownTable, Message: fmt.Sprintf("table %q not found in %s", name, dir)}
	}
	return table, nil
}

// convertCompileError converts a schema error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *schema.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeSchema,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeSchema, Message: err.Error()}
}

// LoadFilter returns the filter tree given either filter text or a file of
// stored filter rows. A path of "-" reads JSON rows from in.
func LoadFilter(where, rowsPath string, in io.Reader) (filterir.Node, error) {
	switch {
	case where != "" && rowsPath != "":
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "--where and --filters are mutually exclusive"}
	case rowsPath != "":
		return loadFilterRows(rowsPath, in)
	case where != "":
		return filterparse.Parse(where)
	default:
		return nil, nil
	}
}

func loadFilterRows(path string, in io.Reader) (filterir.Node, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading filters: %v", err)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var rows []filterparse.Row
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("parsing %s: %v", path, err)}
		}
		return filterparse.FromRows(rows)
	default:
		return filterparse.FromJSON(data)
	}
}

// Error code constants for failures that are not filter errors. Filter
// errors report their own codes (INVALID_FILTER_VALUE, ...).
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No CUE files found
	ErrCodeSchema       = "E004" // CUE schema invalid
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeUnknownTable = "E006" // Table not in schema
	ErrCodeDatabase     = "E007" // Database open or query failed
	ErrCodeWriteFailed  = "E008" // File write error
)
