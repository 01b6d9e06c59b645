package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
	"github.com/changsongyang/nocodb/internal/testutil"
)

func TestInsert_ReturnsIDsInOrder(t *testing.T) {
	s := createTestStore(t, dialect.SQLite)

	_, ids := seedTasks(t, s,
		Record{"Title": "a"},
		Record{"Title": "b"},
		Record{},
	)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestInsert_CanonicalValues(t *testing.T) {
	s := createTestStore(t, dialect.SQLite)
	ctx := context.Background()

	table, _ := seedTasks(t, s, Record{
		"Title":   "write report",
		"Due":     "2026-01-15T10:00:00Z",
		"Created": "2026-01-14 18:30:00",
		"Score":   "4.5",
		"Done":    "true",
		"Tags":    []string{"work", "urgent"},
	}, Record{
		"Title": "blank dates",
		"Due":   "",
	})

	records, err := s.Find(ctx, table, sqlfrag.Fragment{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Record{
		"Id":      int64(1),
		"Title":   "write report",
		"Due":     "2026-01-15",
		"Created": "2026-01-14 18:30:00",
		"Score":   4.5,
		"Done":    true,
		"Tags":    "work,urgent",
	}, records[0])

	assert.Nil(t, records[1]["Due"])
	assert.Nil(t, records[1]["Created"])
}

func TestInsert_InvalidValueFailsBatch(t *testing.T) {
	s := createTestStore(t, dialect.SQLite)
	ctx := context.Background()
	table := testutil.TasksTable()
	require.NoError(t, s.CreateTable(ctx, table))

	_, err := s.Insert(ctx, table, []Record{
		{"Due": "2026-01-15"},
		{"Due": "not a date"},
	})
	require.Error(t, err)
	assert.True(t, filtererr.IsInvalidValueForField(err))

	records, err := s.Find(ctx, table, sqlfrag.Fragment{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInsert_UnknownField(t *testing.T) {
	s := createTestStore(t, dialect.SQLite)
	ctx := context.Background()
	table := testutil.TasksTable()
	require.NoError(t, s.CreateTable(ctx, table))

	_, err := s.Insert(ctx, table, []Record{{"Nope": 1}})
	assert.True(t, filtererr.IsUnknownField(err))
}
