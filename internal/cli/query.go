package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/changsongyang/nocodb/internal/model"
	"github.com/changsongyang/nocodb/internal/sqlfrag"
	"github.com/changsongyang/nocodb/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	CompileOptions
	DB string // data source name
}

// QueryOutput is a compiled filter and the rows it matched.
type QueryOutput struct {
	CompileOutput
	Rows []store.Record `json:"rows"`

	columns []*model.Column
}

// String renders the rows as an aligned table in column order.
func (o QueryOutput) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	titles := make([]string, len(o.columns))
	for i, c := range o.columns {
		titles[i] = c.Title
	}
	fmt.Fprintln(w, strings.Join(titles, "\t"))

	for _, row := range o.Rows {
		cells := make([]string, len(o.columns))
		for i, c := range o.columns {
			if v := row[c.Title]; v != nil {
				cells[i] = cast.ToString(v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()

	fmt.Fprintf(&b, "(%d rows)", len(o.Rows))
	return b.String()
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{CompileOptions: CompileOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a filter against a database",
		Long: `Compile a view filter and return the matching rows of a table, in
primary key order.

The database is opened with the configured dialect. For sqlite and
duckdb --db is a file path; for postgres it is a connection string.

Exit codes:
  0 - Query ran
  1 - Filter rejected
  2 - Command error (schema not found, database unreachable)

Examples:
  nocofilter query --db tasks.db --schema ./schema --table Tasks --where "(Due,lt,today)"
  nocofilter query --dialect duckdb --db tasks.duckdb --schema ./schema --table Tasks --where "(Done,checked)"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database DSN (default: config dsn)")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema directory (default: config schema)")
	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "table title or name")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter text, e.g. (Due,eq,today)")
	cmd.Flags().StringVar(&opts.Filters, "filters", "", "file of stored filter rows")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ev, d, err := opts.evaluator(cmd)
	if err != nil {
		return err
	}
	schemaDir, dsn := opts.Schema, opts.DB
	if schemaDir == "" {
		schemaDir = opts.cfg.Schema
	}
	if dsn == "" {
		dsn = opts.cfg.DSN
	}
	if dsn == "" {
		_ = formatter.Error(ErrCodeDatabase, "--db is required", nil)
		return NewExitError(ExitCommandError, "--db is required")
	}

	table, filter, err := loadInputs(schemaDir, opts.Table, opts.Where, opts.Filters, cmd)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	compiled, err := compileFilter(ev, table, filter)
	if err != nil {
		return formatter.FilterError(err)
	}
	formatter.VerboseLog("WHERE %s %v", compiled.SQL, compiled.Args)

	ctx := cmd.Context()
	st, err := store.Open(ctx, d, dsn)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	rows, err := st.Find(ctx, table, sqlfrag.Fragment{SQL: compiled.SQL, Args: compiled.Args})
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "query failed", err)
	}

	return formatter.Success(QueryOutput{
		CompileOutput: compiled,
		Rows:          rows,
		columns:       table.Columns,
	})
}
