package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"

	"github.com/changsongyang/nocodb/internal/daterange"
	"github.com/changsongyang/nocodb/internal/fieldhandler"
	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
)

// Find returns the rows matching the fragment, ordered by primary key.
// An empty fragment returns every row.
//
// The fragment must have been compiled for the store's dialect.
//
// Returns empty slice (not nil) if no rows match.
func (s *Store) Find(ctx context.Context, table *model.Table, where sqlfrag.Fragment) ([]Record, error) {
	pk := table.PrimaryKey()
	if pk == nil {
		return nil, fmt.Errorf("find in %q: no ID column", table.Title)
	}

	query := "SELECT * FROM " + s.dialect.Quote(table.Name())
	if !where.Empty() {
		query += " WHERE " + where.SQL
	}
	query += " ORDER BY " + s.dialect.Quote(pk.Name()) + " ASC"

	rows, err := s.db.QueryxContext(ctx, query, where.Args...)
	if err != nil {
		return nil, fmt.Errorf("find in %q: %w", table.Title, err)
	}
	defer rows.Close()

	byName := make(map[string]*model.Column, len(table.Columns))
	for _, col := range table.Columns {
		byName[col.Name()] = col
	}

	records := []Record{}
	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("find in %q: scan: %w", table.Title, err)
		}

		rec := make(Record, len(raw))
		for name, v := range raw {
			col, ok := byName[name]
			if !ok {
				rec[name] = plain(v)
				continue
			}
			rec[col.Title] = normalize(col, v)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find in %q: iterate: %w", table.Title, err)
	}
	return records, nil
}

// FindIDs returns the primary keys of the matching rows, in order.
func (s *Store) FindIDs(ctx context.Context, table *model.Table, where sqlfrag.Fragment) ([]int64, error) {
	records, err := s.Find(ctx, table, where)
	if err != nil {
		return nil, err
	}
	pk := table.PrimaryKey()
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, cast.ToInt64(rec[pk.Title]))
	}
	return ids, nil
}

func plain(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// normalize converts a scanned cell into the form Insert accepts, so
// results read the same on every engine.
func normalize(col *model.Column, v any) any {
	v = plain(v)
	if v == nil {
		return nil
	}

	switch {
	case col.UIDT == model.UITypeDate:
		if t, ok := v.(time.Time); ok {
			return daterange.FormatDate(t)
		}
		return cast.ToString(v)
	case col.UIDT.IsDateLike():
		if t, ok := v.(time.Time); ok {
			return t.UTC().Format(fieldhandler.StorageTimestampLayout)
		}
		return cast.ToString(v)
	case col.UIDT == model.UITypeCheckbox:
		return cast.ToBool(v)
	case col.UIDT == model.UITypeID:
		return cast.ToInt64(v)
	case col.UIDT.IsNumeric():
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return v
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	}
	return v
}
