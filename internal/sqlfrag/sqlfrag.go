// Package sqlfrag emits parameterized WHERE-clause fragments.
//
// A Builder is created per filter evaluation. Each emitter returns an
// expression in go-sqlbuilder's "$n" argument syntax and records its
// values on the shared Cond. Build compiles the final expression for the
// dialect's placeholder style.
//
// CRITICAL: values are never interpolated into SQL text. Every comparand
// goes through Cond.Var.
package sqlfrag

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/changsongyang/nocodb/internal/dialect"
)

// Fragment is a composable WHERE-clause piece plus its bound values.
type Fragment struct {
	SQL  string
	Args []any
}

// Empty reports whether the fragment restricts nothing.
func (f Fragment) Empty() bool {
	return f.SQL == ""
}

// Kind tells the emitter how to bind a comparand.
type Kind int

const (
	// Plain values bind as-is.
	Plain Kind = iota

	// Date values are YYYY-MM-DD strings.
	Date

	// Timestamp values are "YYYY-MM-DD HH:MM:SS[.ffffff]" UTC strings.
	Timestamp
)

// Value is a comparand.
type Value struct {
	V    any
	Kind Kind
}

// PlainValue wraps a literal bound without conversion.
func PlainValue(v any) Value { return Value{V: v, Kind: Plain} }

// DateValue wraps a canonical YYYY-MM-DD date.
func DateValue(s string) Value { return Value{V: s, Kind: Date} }

// TimestampValue wraps a canonical UTC timestamp.
func TimestampValue(s string) Value { return Value{V: s, Kind: Timestamp} }

// Cmp is a SQL comparison operator.
type Cmp string

const (
	Eq  Cmp = "="
	Ne  Cmp = "<>"
	Gt  Cmp = ">"
	Gte Cmp = ">="
	Lt  Cmp = "<"
	Lte Cmp = "<="
)

// Builder accumulates the arguments of one WHERE clause.
//
// Not safe for concurrent use; create one per evaluation.
type Builder struct {
	cond    *sqlbuilder.Cond
	dialect dialect.Dialect
}

// NewBuilder creates a builder for the dialect.
func NewBuilder(d dialect.Dialect) *Builder {
	return &Builder{cond: sqlbuilder.NewCond(), dialect: d}
}

// Dialect returns the builder's dialect.
func (b *Builder) Dialect() dialect.Dialect {
	return b.dialect
}

// Field quotes a column name for the dialect.
func (b *Builder) Field(name string) string {
	// "$" is go-sqlbuilder's argument marker
	return strings.ReplaceAll(b.dialect.Quote(name), "$", "$$")
}

// Var binds a comparand and returns its placeholder. Date and Timestamp
// values are cast on engines with native date types.
func (b *Builder) Var(v Value) string {
	ph := b.cond.Var(v.V)
	if !b.dialect.NativeDates {
		return ph
	}
	switch v.Kind {
	case Date:
		return "CAST(" + ph + " AS DATE)"
	case Timestamp:
		return "CAST(" + ph + " AS TIMESTAMP)"
	}
	return ph
}

// Compare emits "field op value". Ne also matches NULL rows:
// "(field <> value OR field IS NULL)".
func (b *Builder) Compare(field string, cmp Cmp, v Value) string {
	f := b.Field(field)
	if cmp == Ne {
		return fmt.Sprintf("(%s <> %s OR %s IS NULL)", f, b.Var(v), f)
	}
	return fmt.Sprintf("%s %s %s", f, cmp, b.Var(v))
}

// Between emits an inclusive range check.
func (b *Builder) Between(field string, lo, hi Value) string {
	return fmt.Sprintf("%s BETWEEN %s AND %s", b.Field(field), b.Var(lo), b.Var(hi))
}

// NotBetween emits the negated inclusive range check. NULL rows do not
// match.
func (b *Builder) NotBetween(field string, lo, hi Value) string {
	return fmt.Sprintf("%s NOT BETWEEN %s AND %s", b.Field(field), b.Var(lo), b.Var(hi))
}

// IsNull emits "field IS NULL".
func (b *Builder) IsNull(field string) string {
	return b.Field(field) + " IS NULL"
}

// IsNotNull emits "field IS NOT NULL".
func (b *Builder) IsNotNull(field string) string {
	return b.Field(field) + " IS NOT NULL"
}

// IsBlank matches NULL or the empty string.
func (b *Builder) IsBlank(field string) string {
	f := b.Field(field)
	return fmt.Sprintf("(%s IS NULL OR %s = %s)", f, f, b.Var(PlainValue("")))
}

// IsNotBlank matches non-NULL, non-empty values.
func (b *Builder) IsNotBlank(field string) string {
	f := b.Field(field)
	return fmt.Sprintf("(%s IS NOT NULL AND %s <> %s)", f, f, b.Var(PlainValue("")))
}

// Like emits a LIKE match. A negated match also accepts NULL rows.
func (b *Builder) Like(field, pattern string, negate bool) string {
	f := b.Field(field)
	if negate {
		return fmt.Sprintf("(%s NOT LIKE %s OR %s IS NULL)", f, b.Var(PlainValue(pattern)), f)
	}
	return fmt.Sprintf("%s LIKE %s", f, b.Var(PlainValue(pattern)))
}

// In emits "field IN (v1, v2, ...)".
func (b *Builder) In(field string, values ...Value) string {
	if len(values) == 0 {
		return "1 = 0"
	}
	phs := make([]string, len(values))
	for i, v := range values {
		phs[i] = b.Var(v)
	}
	return fmt.Sprintf("%s IN (%s)", b.Field(field), strings.Join(phs, ", "))
}

// Raw binds values into a hand-written expression: the i-th "?" in expr
// becomes the placeholder of values[i]. Column names in expr must already
// be quoted with Field. Extra "?" marks are left as written.
func (b *Builder) Raw(expr string, values ...Value) string {
	var out strings.Builder
	for _, v := range values {
		i := strings.IndexByte(expr, '?')
		if i < 0 {
			break
		}
		out.WriteString(expr[:i])
		out.WriteString(b.Var(v))
		expr = expr[i+1:]
	}
	out.WriteString(expr)
	return out.String()
}

// And joins expressions with AND. Empty expressions are skipped; with
// nothing left the result is the vacuous "1 = 1".
func (b *Builder) And(exprs ...string) string {
	return join(" AND ", exprs)
}

// Or joins expressions with OR, skipping empty ones.
func (b *Builder) Or(exprs ...string) string {
	return join(" OR ", exprs)
}

// Not negates an expression.
func (b *Builder) Not(expr string) string {
	if expr == "" {
		expr = "1 = 1"
	}
	return "NOT (" + expr + ")"
}

func join(sep string, exprs []string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e != "" {
			parts = append(parts, e)
		}
	}
	switch len(parts) {
	case 0:
		return "1 = 1"
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Build compiles an expression into a fragment with dialect placeholders.
func (b *Builder) Build(expr string) Fragment {
	if expr == "" {
		return Fragment{}
	}
	sql, args := b.cond.Args.CompileWithFlavor(expr, b.dialect.Flavor)
	return Fragment{SQL: sql, Args: args}
}
