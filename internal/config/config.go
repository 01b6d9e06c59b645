// Package config loads nocofilter settings.
//
// Precedence, lowest first: built-in defaults, the YAML file, NOCOFILTER_*
// environment variables, command-line flags (applied by the CLI).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/timezone"
)

// EnvPrefix prefixes every environment override, e.g. NOCOFILTER_DIALECT.
const EnvPrefix = "NOCOFILTER"

// Config holds the settings shared by all commands.
type Config struct {
	// Dialect is the SQL engine filters compile for.
	Dialect string `yaml:"dialect"`

	// DSN locates the database for commands that execute queries.
	DSN string `yaml:"dsn"`

	// Schema is the directory of CUE table definitions.
	Schema string `yaml:"schema"`

	// DefaultTimezone is the base timezone used when neither the filter,
	// the column, the view nor the table sets one.
	DefaultTimezone string `yaml:"default_timezone" split_words:"true"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" split_words:"true"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Dialect:         string(dialect.SQLite),
		DefaultTimezone: timezone.Default,
		LogLevel:        "warn",
	}
}

// Load reads the optional YAML file at path, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects unknown keys so typos surface instead of being ignored.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if _, err := dialect.Parse(c.Dialect); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.DefaultTimezone != "" && !timezone.Valid(c.DefaultTimezone) {
		return fmt.Errorf("config: unknown default_timezone %q", c.DefaultTimezone)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// DialectValue returns the parsed dialect. Call after Validate.
func (c *Config) DialectValue() dialect.Dialect {
	d, err := dialect.Parse(c.Dialect)
	if err != nil {
		return dialect.MustParse(string(dialect.SQLite))
	}
	return d
}

// Level returns the slog level named by LogLevel; empty means warn.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return lvl, nil
}
