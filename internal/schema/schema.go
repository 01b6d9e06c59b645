// Package schema compiles CUE table definitions into model tables.
//
// A schema file declares tables under the top-level "table" field:
//
//	table: Tasks: {
//		table_name: "tasks"
//		timezone:   "Asia/Kolkata"
//		columns: {
//			Id:  uidt: "ID"
//			Due: {uidt: "Date", meta: date_format: "YYYY/MM/DD"}
//			"Created At": {uidt: "CreatedTime", column_name: "created_at"}
//		}
//	}
//
// Columns keep their declaration order. Missing ids are derived from the
// table and column titles, so they are stable across loads.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/google/uuid"

	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/timezone"
)

// idNamespace seeds the derived table and column ids.
var idNamespace = uuid.MustParse("3f0c2b9e-7d51-4c8a-9e0b-5a6f1d2c4b7e")

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir compiles every .cue file under dir and returns the tables they
// declare, sorted by title.
func LoadDir(dir string) ([]*model.Table, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema directory: not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan schema directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		v := ctx.CompileBytes(src, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		if i == 0 {
			value = v
		} else {
			value = value.Unify(v)
		}
	}
	return Tables(value)
}

// CompileString compiles CUE source text; filename is used in positions.
func CompileString(filename, src string) ([]*model.Table, error) {
	v := cuecontext.New().CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Tables(v)
}

// Tables compiles every entry of the "table" struct of v.
func Tables(v cue.Value) ([]*model.Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{Field: "table", Message: "no tables declared", Pos: v.Pos()}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tables []*model.Table
	for iter.Next() {
		t, err := CompileTable(iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Title < tables[j].Title })
	return tables, nil
}

// CompileTable parses one table definition. The table title is the
// struct label.
func CompileTable(v cue.Value) (*model.Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &model.Table{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		t.Title = label(sels[len(sels)-1])
	}
	if t.Title == "" {
		return nil, &CompileError{Field: "table", Message: "table title is required", Pos: v.Pos()}
	}

	var err error
	if t.ID, err = optionalString(v, "id"); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = deriveID(t.Title)
	}
	if t.TableName, err = optionalString(v, "table_name"); err != nil {
		return nil, err
	}
	if t.Timezone, err = timezoneField(v, "timezone"); err != nil {
		return nil, err
	}

	if t.Columns, err = parseColumns(v, t.Title); err != nil {
		return nil, err
	}
	return t, nil
}

func parseColumns(v cue.Value, tableTitle string) ([]*model.Column, error) {
	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{Field: "columns", Message: "at least one column is required", Pos: v.Pos()}
	}

	iter, err := colsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cols []*model.Column
	names := make(map[string]bool)
	for iter.Next() {
		col, err := parseColumn(iter.Value(), tableTitle, label(iter.Selector()))
		if err != nil {
			return nil, err
		}
		if names[col.Name()] {
			return nil, &CompileError{
				Field:   "column_name",
				Message: fmt.Sprintf("duplicate column name %q", col.Name()),
				Pos:     iter.Value().Pos(),
			}
		}
		names[col.Name()] = true
		cols = append(cols, col)
	}

	if len(cols) == 0 {
		return nil, &CompileError{Field: "columns", Message: "at least one column is required", Pos: colsVal.Pos()}
	}
	return cols, nil
}

func parseColumn(v cue.Value, tableTitle, title string) (*model.Column, error) {
	col := &model.Column{Title: title}

	uidtVal := v.LookupPath(cue.ParsePath("uidt"))
	if !uidtVal.Exists() {
		return nil, &CompileError{Field: "uidt", Message: fmt.Sprintf("column %q: uidt is required", title), Pos: v.Pos()}
	}
	s, err := uidtVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	uidt, ok := model.ParseUIType(s)
	if !ok {
		return nil, &CompileError{Field: "uidt", Message: fmt.Sprintf("column %q: unknown uidt %q", title, s), Pos: uidtVal.Pos()}
	}
	col.UIDT = uidt

	if col.ID, err = optionalString(v, "id"); err != nil {
		return nil, err
	}
	if col.ID == "" {
		col.ID = deriveID(tableTitle + "/" + title)
	}
	if col.ColumnName, err = optionalString(v, "column_name"); err != nil {
		return nil, err
	}

	if meta := v.LookupPath(cue.ParsePath("meta")); meta.Exists() {
		if col.Meta.DateFormat, err = optionalString(meta, "date_format"); err != nil {
			return nil, err
		}
		if col.Meta.TimeFormat, err = optionalString(meta, "time_format"); err != nil {
			return nil, err
		}
		if col.Meta.Timezone, err = timezoneField(meta, "timezone"); err != nil {
			return nil, err
		}
	}
	return col, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func timezoneField(v cue.Value, path string) (string, error) {
	tz, err := optionalString(v, path)
	if err != nil || tz == "" {
		return tz, err
	}
	if !timezone.Valid(tz) {
		return "", &CompileError{
			Field:   path,
			Message: fmt.Sprintf("unknown timezone %q", tz),
			Pos:     v.LookupPath(cue.ParsePath(path)).Pos(),
		}
	}
	return tz, nil
}

func label(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func deriveID(name string) string {
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

// Find returns the table with the given title or table name.
func Find(tables []*model.Table, name string) (*model.Table, bool) {
	for _, t := range tables {
		if t.Title == name {
			return t, true
		}
	}
	for _, t := range tables {
		if t.TableName != "" && t.TableName == name {
			return t, true
		}
	}
	return nil, false
}
