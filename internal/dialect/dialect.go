// Package dialect describes the SQL engines filters compile for.
//
// A Dialect is read-only and shared by every emitter of one query. It
// decides placeholder style (through the go-sqlbuilder flavor), identifier
// quoting and whether date comparands are cast to native date types.
package dialect

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"
)

// Kind names a supported engine.
type Kind string

const (
	SQLite   Kind = "sqlite"
	Postgres Kind = "postgres"
	MySQL    Kind = "mysql"
	DuckDB   Kind = "duckdb"
)

// Dialect is the source/engine descriptor.
type Dialect struct {
	Kind Kind

	// Flavor controls placeholder syntax when fragments are compiled.
	Flavor sqlbuilder.Flavor

	// DriverName is the database/sql driver registered for the engine.
	DriverName string

	// NativeDates is true when the engine stores DATE/TIMESTAMP natively
	// and comparands must be cast; false when dates compare as text.
	NativeDates bool
}

var dialects = map[Kind]Dialect{
	SQLite:   {Kind: SQLite, Flavor: sqlbuilder.SQLite, DriverName: "sqlite3"},
	Postgres: {Kind: Postgres, Flavor: sqlbuilder.PostgreSQL, DriverName: "postgres", NativeDates: true},
	MySQL:    {Kind: MySQL, Flavor: sqlbuilder.MySQL, DriverName: "mysql"},
	// DuckDB accepts "?" placeholders, so it shares the SQLite flavor.
	DuckDB: {Kind: DuckDB, Flavor: sqlbuilder.SQLite, DriverName: "duckdb", NativeDates: true},
}

var aliases = map[string]Kind{
	"sqlite3":    SQLite,
	"pg":         Postgres,
	"postgresql": Postgres,
	"pq":         Postgres,
	"mariadb":    MySQL,
	"duck":       DuckDB,
}

// Parse returns the dialect for a name such as "sqlite" or "postgres".
func Parse(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return dialects[SQLite], nil
	}
	if d, ok := dialects[Kind(key)]; ok {
		return d, nil
	}
	if k, ok := aliases[key]; ok {
		return dialects[k], nil
	}
	return Dialect{}, fmt.Errorf("unknown dialect %q (want sqlite, postgres, mysql or duckdb)", name)
}

// MustParse is Parse for names known at compile time.
func MustParse(name string) Dialect {
	d, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Kinds lists the supported engines.
func Kinds() []Kind {
	return []Kind{SQLite, Postgres, MySQL, DuckDB}
}

// String implements fmt.Stringer.
func (d Dialect) String() string {
	return string(d.Kind)
}

// Quote quotes an identifier for the engine.
func (d Dialect) Quote(ident string) string {
	if d.Kind == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(ident)
}

// DateType is the column type used to store Date values.
func (d Dialect) DateType() string {
	if d.NativeDates || d.Kind == MySQL {
		return "DATE"
	}
	return "TEXT"
}

// TimestampType is the column type used to store DateTime values.
func (d Dialect) TimestampType() string {
	switch {
	case d.Kind == MySQL:
		return "DATETIME(6)"
	case d.NativeDates:
		return "TIMESTAMP"
	}
	return "TEXT"
}
