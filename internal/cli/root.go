package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/changsongyang/nocodb/internal/config"
	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/engine"
	"github.com/changsongyang/nocodb/internal/timezone"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Dialect    string // overrides config
	Timezone   string // view timezone
	Now        string // RFC 3339 instant or YYYY-MM-DD; empty means wall clock

	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the nocofilter CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "nocofilter",
		Short: "Compile and run table view filters",
		Long: `nocofilter compiles view filters such as (Due,eq,today) into
parameterized SQL WHERE clauses for SQLite, PostgreSQL, MySQL and DuckDB.

Relative dates resolve against one instant per evaluation, in the
timezone of the filter, the column, the view or the base.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect (sqlite|postgres|mysql|duckdb)")
	cmd.PersistentFlags().StringVar(&opts.Timezone, "timezone", "", "view timezone, e.g. Asia/Kolkata")
	cmd.PersistentFlags().StringVar(&opts.Now, "now", "", "evaluate relative dates at this instant (RFC 3339)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads configuration, applies flag overrides and installs the
// process logger. Commands built without the root call it lazily.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	if o.Dialect != "" {
		cfg.Dialect = o.Dialect
	}
	if o.Timezone != "" && !timezone.Valid(o.Timezone) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown timezone %q", o.Timezone))
	}
	if err := cfg.Validate(); err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	level, _ := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	o.cfg = cfg
	return nil
}

func (o *RootOptions) config(cmd *cobra.Command) (*config.Config, error) {
	if o.cfg == nil {
		if err := o.setup(cmd); err != nil {
			return nil, err
		}
	}
	return o.cfg, nil
}

// clock returns the --now instant, or the wall clock when unset.
func (o *RootOptions) clock() (engine.Clock, error) {
	if o.Now == "" {
		return engine.WallClock{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, o.Now); err == nil {
			return engine.ClockFunc(func() time.Time { return t }), nil
		}
	}
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --now %q: want RFC 3339 or YYYY-MM-DD", o.Now))
}

// evaluator builds an Evaluator from config and global flags.
func (o *RootOptions) evaluator(cmd *cobra.Command) (*engine.Evaluator, dialect.Dialect, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, dialect.Dialect{}, err
	}
	clock, err := o.clock()
	if err != nil {
		return nil, dialect.Dialect{}, err
	}

	d := cfg.DialectValue()
	ev := engine.New(d,
		engine.WithClock(clock),
		engine.WithTimezones(timezone.Options{
			ViewTimezone: o.Timezone,
			BaseTimezone: cfg.DefaultTimezone,
		}),
	)
	return ev, d, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
