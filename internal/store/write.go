package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/fieldhandler"
	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/model"
)

// Record is one table row keyed by column title.
type Record map[string]any

// CreateTable creates the physical table if it does not exist.
//
// The table must have an ID column; it becomes the auto-incrementing
// primary key.
func (s *Store) CreateTable(ctx context.Context, table *model.Table) error {
	pk := table.PrimaryKey()
	if pk == nil {
		return fmt.Errorf("create table %q: no ID column", table.Title)
	}

	d := s.dialect
	var stmts []string
	defs := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		if col == pk {
			def, seq := primaryKeyDef(d, table, pk)
			if seq != "" {
				stmts = append(stmts, seq)
			}
			defs = append(defs, def)
			continue
		}
		defs = append(defs, d.Quote(col.Name())+" "+columnType(d, col.UIDT))
	}
	stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		d.Quote(table.Name()), strings.Join(defs, ", ")))

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table %q: %w", table.Title, err)
		}
	}
	return nil
}

// primaryKeyDef returns the key column definition and, for engines that
// need one, the statement creating its sequence.
func primaryKeyDef(d dialect.Dialect, table *model.Table, pk *model.Column) (def, seq string) {
	name := d.Quote(pk.Name())
	switch d.Kind {
	case dialect.Postgres:
		return name + " BIGSERIAL PRIMARY KEY", ""
	case dialect.DuckDB:
		seqName := table.Name() + "_" + pk.Name() + "_seq"
		return fmt.Sprintf("%s BIGINT PRIMARY KEY DEFAULT nextval('%s')", name, strings.ReplaceAll(seqName, "'", "''")),
			"CREATE SEQUENCE IF NOT EXISTS " + d.Quote(seqName)
	case dialect.MySQL:
		return name + " BIGINT AUTO_INCREMENT PRIMARY KEY", ""
	}
	return name + " INTEGER PRIMARY KEY", ""
}

// columnType maps a logical column type onto a SQL type for the engine.
func columnType(d dialect.Dialect, uidt model.UIType) string {
	switch {
	case uidt == model.UITypeDate:
		return d.DateType()
	case uidt.IsDateLike():
		return d.TimestampType()
	case uidt == model.UITypeCheckbox:
		return "BOOLEAN"
	case uidt.IsNumeric():
		switch d.Kind {
		case dialect.Postgres:
			return "DOUBLE PRECISION"
		case dialect.SQLite:
			return "REAL"
		}
		return "DOUBLE"
	}
	return "TEXT"
}

// Insert validates rows and writes them in one transaction, returning
// the generated primary keys in row order.
//
// Every value goes through the column handler's ParseUserInput, so an
// invalid cell fails the whole batch with InvalidValueForField. An empty
// string in a date-like column is stored as NULL.
func (s *Store) Insert(ctx context.Context, table *model.Table, rows []Record) ([]int64, error) {
	pk := table.PrimaryKey()
	if pk == nil {
		return nil, fmt.Errorf("insert into %q: no ID column", table.Title)
	}

	prepared := make([]preparedRow, len(rows))
	for i, row := range rows {
		p, err := prepareRow(table, row)
		if err != nil {
			return nil, fmt.Errorf("insert into %q: row %d: %w", table.Title, i, err)
		}
		prepared[i] = p
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert into %q: begin: %w", table.Title, err)
	}
	defer tx.Rollback()

	d := s.dialect
	ids := make([]int64, 0, len(prepared))
	for i, p := range prepared {
		var query string
		if len(p.columns) == 0 {
			query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
				d.Quote(table.Name()), d.Quote(pk.Name()))
		} else {
			quoted := make([]string, len(p.columns))
			for j, c := range p.columns {
				quoted[j] = d.Quote(c)
			}
			query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
				d.Quote(table.Name()),
				strings.Join(quoted, ", "),
				strings.TrimSuffix(strings.Repeat("?, ", len(p.columns)), ", "),
				d.Quote(pk.Name()))
		}

		var id int64
		if err := tx.QueryRowxContext(ctx, tx.Rebind(query), p.values...).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert into %q: row %d: %w", table.Title, i, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert into %q: commit: %w", table.Title, err)
	}
	return ids, nil
}

type preparedRow struct {
	columns []string
	values  []any
}

// prepareRow converts a record into physical column names and canonical
// values, in table column order.
func prepareRow(table *model.Table, row Record) (preparedRow, error) {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	byColumn := make(map[*model.Column]any, len(row))
	for _, k := range keys {
		col, ok := table.ColumnByTitle(k)
		if !ok {
			return preparedRow{}, filtererr.UnknownField(k)
		}
		byColumn[col] = row[k]
	}

	var p preparedRow
	for _, col := range table.Columns {
		raw, ok := byColumn[col]
		if !ok {
			continue
		}
		h, err := fieldhandler.For(col.UIDT)
		if err != nil {
			return preparedRow{}, err
		}
		v, err := h.ParseUserInput(raw, col)
		if err != nil {
			return preparedRow{}, err
		}
		if s, isString := v.(string); isString && s == "" && col.UIDT.IsDateLike() {
			v = nil
		}
		p.columns = append(p.columns, col.Name())
		p.values = append(p.values, v)
	}
	return p, nil
}
