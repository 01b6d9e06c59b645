package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasksTable_FreshCopies(t *testing.T) {
	a := TasksTable()
	b := TasksTable()
	a.Columns[1].Title = "Renamed"

	assert.Equal(t, "Title", b.Columns[1].Title)
	require.NotNil(t, a.PrimaryKey())
	assert.Equal(t, "id", a.PrimaryKey().Name())
}

func TestDatesTable(t *testing.T) {
	col, ok := DatesTable().ColumnByTitle("date")
	require.True(t, ok)
	assert.True(t, col.UIDT.IsDateLike())
}
