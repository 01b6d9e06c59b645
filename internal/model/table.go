package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ColumnMeta holds the user-configured presentation settings of a column.
type ColumnMeta struct {
	// DateFormat is the display format (dayjs tokens, e.g. "YYYY/MM/DD").
	// It governs parsing of user input only, never SQL comparison.
	DateFormat string `json:"date_format,omitempty"`

	// TimeFormat is the display format of the time part ("HH:mm").
	TimeFormat string `json:"time_format,omitempty"`

	// Timezone is an optional IANA zone configured on the column.
	Timezone string `json:"timezone,omitempty"`
}

// Column identifies a field of a table.
type Column struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	ColumnName string     `json:"column_name"`
	UIDT       UIType     `json:"uidt"`
	Meta       ColumnMeta `json:"meta"`
}

// Name returns the physical column name, falling back to the title.
func (c *Column) Name() string {
	if c.ColumnName != "" {
		return c.ColumnName
	}
	return c.Title
}

// Table is a spreadsheet-like table: an ordered list of columns.
type Table struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	TableName string    `json:"table_name"`
	Timezone  string    `json:"timezone,omitempty"` // base/view default zone
	Columns   []*Column `json:"columns"`
}

// Name returns the physical table name, falling back to the title.
func (t *Table) Name() string {
	if t.TableName != "" {
		return t.TableName
	}
	return t.Title
}

// PrimaryKey returns the first ID column, or nil if the table has none.
func (t *Table) PrimaryKey() *Column {
	for _, c := range t.Columns {
		if c.UIDT == UITypeID {
			return c
		}
	}
	return nil
}

// ColumnByID returns the column with the given id.
func (t *Table) ColumnByID(id string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// ColumnByTitle looks a column up by title.
//
// Titles are compared in NFC form; an exact match wins over a
// case-insensitive one. Physical column names are accepted as a
// last resort.
func (t *Table) ColumnByTitle(title string) (*Column, bool) {
	want := norm.NFC.String(strings.TrimSpace(title))

	for _, c := range t.Columns {
		if norm.NFC.String(c.Title) == want {
			return c, true
		}
	}
	for _, c := range t.Columns {
		if strings.EqualFold(norm.NFC.String(c.Title), want) {
			return c, true
		}
	}
	for _, c := range t.Columns {
		if c.ColumnName != "" && c.ColumnName == want {
			return c, true
		}
	}
	return nil, false
}
