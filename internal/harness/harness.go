package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/engine"
	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/schema"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
	"github.com/changsongyang/nocodb/internal/store"
	"github.com/changsongyang/nocodb/internal/testutil"
	"github.com/changsongyang/nocodb/internal/timezone"
)

// Harness is the scenario execution environment.
// It runs cases with a fixed clock against a private database.
type Harness struct {
	store     *store.Store
	evaluator *engine.Evaluator
	table     *model.Table
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Load the CUE schema and pick the table
// 2. Create the table and insert the scenario rows
// 3. Compile and run every case
// 4. Compare each outcome with its expectation
//
// Run returns an error only when the scenario cannot be set up; failing
// cases are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with a caller-provided logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	ctx := context.Background()

	tables, err := schema.LoadDir(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	table, ok := schema.Find(tables, scenario.Table)
	if !ok {
		return nil, fmt.Errorf("table %q not found in %s", scenario.Table, scenario.Schema)
	}

	d, err := dialect.Parse(scenario.Dialect)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, d, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.CreateTable(ctx, table); err != nil {
		return nil, err
	}
	rows := make([]store.Record, len(scenario.Rows))
	for i, r := range scenario.Rows {
		rows[i] = store.Record(r)
	}
	if _, err := st.Insert(ctx, table, rows); err != nil {
		return nil, fmt.Errorf("failed to seed rows: %w", err)
	}

	h := &Harness{
		store: st,
		evaluator: engine.New(d,
			engine.WithClock(testutil.NewFixedClock(scenario.NowTime())),
			engine.WithIDGenerator(engine.NewFixedGenerator(scenario.Name)),
			engine.WithTimezones(timezone.Options{ViewTimezone: scenario.Timezone}),
		),
		table:  table,
		logger: logger,
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		got, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}
		if failure := checkCase(c, got); failure != nil {
			got.Pass = false
			result.AddError(failure.Error())
		} else {
			got.Pass = true
		}
		result.Cases = append(result.Cases, got)
	}

	return result, nil
}

// runCase compiles and executes one case. Filter errors are part of the
// case outcome; database errors are returned.
func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, error) {
	out := CaseResult{Name: c.Name}

	var (
		frag sqlfrag.Fragment
		err  error
	)
	if len(c.Filters) > 0 {
		frag, err = h.evaluator.CompileRows(h.table, c.Filters)
	} else {
		frag, err = h.evaluator.CompileWhere(h.table, c.Where)
	}
	if err != nil {
		code := filtererr.CodeOf(err)
		if code == "" {
			return out, err
		}
		h.logger.Debug("case rejected", "case", c.Name, "code", code, "error", err)
		out.ErrorCode = string(code)
		return out, nil
	}

	out.SQL = frag.SQL
	out.Args = frag.Args
	out.IDs, err = h.store.FindIDs(ctx, h.table, frag)
	if err != nil {
		return out, err
	}
	h.logger.Debug("case executed", "case", c.Name, "sql", frag.SQL, "rows", len(out.IDs))
	return out, nil
}
