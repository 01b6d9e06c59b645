package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/fieldhandler"
	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/filterparse"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
	"github.com/changsongyang/nocodb/internal/timezone"
)

// Evaluator compiles filter trees into WHERE-clause fragments for one
// dialect.
//
// Thread-safety: an Evaluator holds no per-evaluation state and is safe
// for concurrent use. Each call gets its own builder and "now".
//
// INVARIANTS:
//   - the clock is read exactly once per evaluation
//   - a failing comparison fails the whole evaluation; no partial fragment
//     is ever returned
//   - values are bound as parameters, never interpolated
type Evaluator struct {
	dialect dialect.Dialect
	clock   Clock
	ids     IDGenerator
	zones   timezone.Options
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock sets the clock "now" is sampled from.
func WithClock(c Clock) Option {
	return func(e *Evaluator) {
		e.clock = c
	}
}

// WithIDGenerator sets the generator of evaluation ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Evaluator) {
		e.ids = g
	}
}

// WithTimezones sets the view and base timezone defaults. A table's own
// timezone replaces the base default.
func WithTimezones(opts timezone.Options) Option {
	return func(e *Evaluator) {
		e.zones = opts
	}
}

// New creates an Evaluator for the dialect.
func New(d dialect.Dialect, opts ...Option) *Evaluator {
	e := &Evaluator{
		dialect: d,
		clock:   WallClock{},
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the evaluator's dialect.
func (e *Evaluator) Dialect() dialect.Dialect {
	return e.dialect
}

// Evaluation is the result of compiling one filter.
type Evaluation struct {
	// ID correlates log lines of this evaluation.
	ID string

	// Now is the instant relative dates were resolved against.
	Now time.Time

	// Filter is the bound filter tree (nil when there is no filter).
	Filter filterir.Node

	// Fragment is the compiled WHERE clause; empty for no filter.
	Fragment sqlfrag.Fragment
}

// Evaluate binds, validates and compiles a filter tree against a table.
func (e *Evaluator) Evaluate(table *model.Table, n filterir.Node) (*Evaluation, error) {
	if table == nil {
		return nil, fmt.Errorf("evaluate filter: nil table")
	}

	ev := &Evaluation{ID: e.ids.Generate(), Now: e.clock.Now()}
	if n == nil {
		return ev, nil
	}

	bound, err := filterir.Bind(n, table)
	if err != nil {
		return nil, err
	}
	if err := filterir.Validate(bound); err != nil {
		return nil, err
	}

	b := sqlfrag.NewBuilder(e.dialect)
	scope := &fieldhandler.Scope{
		Builder: b,
		Now:     ev.Now,
		Zones:   e.zonesFor(table),
	}

	expr, err := e.compileNode(scope, bound)
	if err != nil {
		slog.Debug("filter rejected",
			"evaluation", ev.ID,
			"table", table.Title,
			"error", err)
		return nil, err
	}

	ev.Filter = bound
	ev.Fragment = b.Build(expr)

	slog.Debug("filter compiled",
		"evaluation", ev.ID,
		"table", table.Title,
		"dialect", e.dialect.String(),
		"now", ev.Now.Format(time.RFC3339),
		"sql", ev.Fragment.SQL,
		"args", len(ev.Fragment.Args))
	return ev, nil
}

// Compile returns the WHERE-clause fragment for a filter tree.
func (e *Evaluator) Compile(table *model.Table, n filterir.Node) (sqlfrag.Fragment, error) {
	ev, err := e.Evaluate(table, n)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	return ev.Fragment, nil
}

// CompileWhere parses filter text and compiles it.
func (e *Evaluator) CompileWhere(table *model.Table, where string) (sqlfrag.Fragment, error) {
	n, err := filterparse.Parse(where)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	return e.Compile(table, n)
}

// CompileRows converts stored filter rows and compiles them.
func (e *Evaluator) CompileRows(table *model.Table, rows []filterparse.Row) (sqlfrag.Fragment, error) {
	n, err := filterparse.FromRows(rows)
	if err != nil {
		return sqlfrag.Fragment{}, err
	}
	return e.Compile(table, n)
}

func (e *Evaluator) zonesFor(table *model.Table) timezone.Options {
	zones := e.zones
	if table.Timezone != "" {
		zones.BaseTimezone = table.Timezone
	}
	return zones
}

// compileNode walks the bound tree, dispatching each comparison to the
// handler of its column type.
func (e *Evaluator) compileNode(s *fieldhandler.Scope, n filterir.Node) (string, error) {
	b := s.Builder

	switch node := n.(type) {
	case *filterir.Comparison:
		h, err := fieldhandler.For(node.Column.UIDT)
		if err != nil {
			return "", err
		}
		return h.Filter(s, node)

	case *filterir.Group:
		parts := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			part, err := e.compileNode(s, child)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		if node.Logical == filterir.LogicalOr {
			return b.Or(parts...), nil
		}
		return b.And(parts...), nil

	case *filterir.Not:
		child, err := e.compileNode(s, node.Child)
		if err != nil {
			return "", err
		}
		return b.Not(child), nil
	}

	return "", fmt.Errorf("unsupported filter node type: %T", n)
}
