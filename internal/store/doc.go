// Package store keeps table rows in a SQL database and runs compiled
// filters against them.
//
// The store is the hand-off point of a filter: the engine produces a
// WHERE-clause fragment, Find embeds it in a SELECT.
//
// # Critical Patterns
//
// Deterministic results:
//   - Find always orders by the primary key (ORDER BY pk ASC)
//   - equal filters over equal rows return identical row lists
//
// Canonical values:
//   - Insert passes every value through the column's field handler, so
//     Date cells are stored as YYYY-MM-DD and DateTime cells as UTC
//     "YYYY-MM-DD HH:MM:SS"
//   - on SQLite dates are TEXT and compare lexically; DuckDB and
//     PostgreSQL use native DATE/TIMESTAMP columns
//
// # Database Configuration (SQLite)
//
//   - single connection, so ":memory:" databases are shared
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
package store
