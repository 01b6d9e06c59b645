// Package model holds the schema metadata the filter compiler consumes:
// tables, columns and the closed set of logical column types.
//
// Columns are owned by the schema metadata store and are treated as
// immutable for the duration of a filter evaluation. Nothing in this
// package performs I/O.
package model
