package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/changsongyang/nocodb/internal/engine"
	"github.com/changsongyang/nocodb/internal/filterir"
	"github.com/changsongyang/nocodb/internal/model"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Schema  string // CUE schema directory
	Table   string // table title or physical name
	Where   string // filter text
	Filters string // file of stored filter rows ("-" for stdin)
}

// CompileOutput is the compiled filter of one table.
type CompileOutput struct {
	Table      string    `json:"table"`
	Dialect    string    `json:"dialect"`
	Now        time.Time `json:"now"`
	Evaluation string    `json:"evaluation"`
	SQL        string    `json:"sql"`
	Args       []any     `json:"args"`
}

// String renders the fragment for text output.
func (o CompileOutput) String() string {
	if o.SQL == "" {
		return "(no filter)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SQL:  %s\n", o.SQL)
	fmt.Fprintf(&b, "Args: %v", o.Args)
	return b.String()
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a filter to a SQL WHERE clause",
		Long: `Compile a view filter against a table from a CUE schema and print the
parameterized WHERE clause and its arguments.

The filter is given either as text with --where or as a file of stored
filter rows with --filters (JSON or YAML; "-" reads JSON from stdin).

Exit codes:
  0 - Filter compiled
  1 - Filter rejected (the error code names the reason)
  2 - Command error (schema not found, bad flags)

Examples:
  nocofilter compile --schema ./schema --table Tasks --where "(Due,eq,today)"
  nocofilter compile --schema ./schema --table Tasks --where "(Due,isWithin,pastWeek)" --dialect postgres
  nocofilter compile --schema ./schema --table Tasks --filters filters.json --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema directory (default: config schema)")
	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "table title or name")
	cmd.Flags().StringVarP(&opts.Where, "where", "w", "", "filter text, e.g. (Due,eq,today)")
	cmd.Flags().StringVar(&opts.Filters, "filters", "", "file of stored filter rows")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ev, _, err := opts.evaluator(cmd)
	if err != nil {
		return err
	}
	schemaDir := opts.Schema
	if schemaDir == "" {
		schemaDir = opts.cfg.Schema
	}

	table, filter, err := loadInputs(schemaDir, opts.Table, opts.Where, opts.Filters, cmd)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Compiling filter for table %s (%d columns)", table.Title, len(table.Columns))

	out, err := compileFilter(ev, table, filter)
	if err != nil {
		return formatter.FilterError(err)
	}
	formatter.VerboseLog("Evaluation %s at %s", out.Evaluation, out.Now.Format(time.RFC3339))

	return formatter.Success(out)
}

// loadInputs loads the table and the filter shared by compile and query.
func loadInputs(schemaDir, tableName, where, rowsPath string, cmd *cobra.Command) (*model.Table, filterir.Node, error) {
	table, err := LoadTable(schemaDir, tableName)
	if err != nil {
		return nil, nil, err
	}
	filter, err := LoadFilter(where, rowsPath, cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}
	return table, filter, nil
}

func compileFilter(ev *engine.Evaluator, table *model.Table, filter filterir.Node) (CompileOutput, error) {
	evaluation, err := ev.Evaluate(table, filter)
	if err != nil {
		return CompileOutput{}, err
	}
	args := evaluation.Fragment.Args
	if args == nil {
		args = []any{}
	}
	return CompileOutput{
		Table:      table.Title,
		Dialect:    ev.Dialect().String(),
		Now:        evaluation.Now,
		Evaluation: evaluation.ID,
		SQL:        evaluation.Fragment.SQL,
		Args:       args,
	}, nil
}

// reportLoadError prints a load failure. Filter syntax errors raised while
// reading the filter keep their filter error code.
func reportLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return formatter.FilterError(err)
	}
	var details any
	if loadErr.Pos.IsValid() {
		details = map[string]any{
			"file":   loadErr.Pos.Filename(),
			"line":   loadErr.Pos.Line(),
			"column": loadErr.Pos.Column(),
		}
	}
	if outErr := formatter.Error(loadErr.Code, loadErr.Error(), details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "load failed", err)
}
