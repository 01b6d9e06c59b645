package store

import (
	"context"
	"os"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/engine"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/testutil"
	"github.com/changsongyang/nocodb/internal/timezone"
)

// createTestStore opens a fresh in-memory store. PostgreSQL stores need
// NOCOFILTER_TEST_POSTGRES_DSN and are skipped otherwise.
func createTestStore(t *testing.T, kind dialect.Kind) *Store {
	t.Helper()
	dsn := ""
	if kind == dialect.Postgres {
		dsn = os.Getenv("NOCOFILTER_TEST_POSTGRES_DSN")
		if dsn == "" {
			t.Skip("NOCOFILTER_TEST_POSTGRES_DSN not set")
		}
	}
	s, err := Open(context.Background(), dialect.MustParse(string(kind)), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seedTasks creates the tasks table and inserts rows, returning their ids.
func seedTasks(t *testing.T, s *Store, rows ...Record) (*model.Table, []int64) {
	t.Helper()
	ctx := context.Background()
	table := testutil.TasksTable()
	_, err := s.DB().ExecContext(ctx, "DROP TABLE IF EXISTS "+s.Dialect().Quote(table.Name()))
	require.NoError(t, err)
	require.NoError(t, s.CreateTable(ctx, table))
	ids, err := s.Insert(ctx, table, rows)
	require.NoError(t, err)
	return table, ids
}

// kolkataEvaluator resolves relative dates in Asia/Kolkata at
// 2026-01-14T20:00Z, which is 01:30 on 2026-01-15 there.
func kolkataEvaluator(s *Store) *engine.Evaluator {
	return engine.New(s.Dialect(),
		engine.WithClock(testutil.MustParseClock("2026-01-14T20:00:00Z")),
		engine.WithTimezones(timezone.Options{ViewTimezone: "Asia/Kolkata"}),
	)
}

// where compiles and runs a filter, returning matching ids.
func where(t *testing.T, s *Store, e *engine.Evaluator, table *model.Table, expr string) []int64 {
	t.Helper()
	f, err := e.CompileWhere(table, expr)
	require.NoError(t, err)
	ids, err := s.FindIDs(context.Background(), table, f)
	require.NoError(t, err)
	return ids
}
