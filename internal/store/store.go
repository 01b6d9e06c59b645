package store

import (
	"context"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/changsongyang/nocodb/internal/dialect"
)

// Store runs filtered queries against one database.
type Store struct {
	db      *sqlx.DB
	dialect dialect.Dialect
}

// Open connects to the database described by dsn.
//
// An empty dsn opens a private in-memory database for SQLite and DuckDB.
// PostgreSQL requires a dsn. MySQL has no registered driver; its
// fragments can be compiled but not executed here.
func Open(ctx context.Context, d dialect.Dialect, dsn string) (*Store, error) {
	switch d.Kind {
	case dialect.SQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
	case dialect.Postgres:
		if dsn == "" {
			return nil, fmt.Errorf("open %s: dsn is required", d)
		}
	case dialect.MySQL:
		return nil, fmt.Errorf("open %s: no driver available", d)
	}

	db, err := sqlx.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d.Kind == dialect.SQLite || d.Kind == dialect.DuckDB {
		// embedded engines: one connection, so in-memory databases are
		// visible to every query
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if d.Kind == dialect.SQLite {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	return &Store{db: db, dialect: d}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect returns the store's dialect.
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.Get(&value, "PRAGMA "+name); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
