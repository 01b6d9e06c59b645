package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/changsongyang/nocodb/internal/dialect"
	"github.com/changsongyang/nocodb/internal/filtererr"
	"github.com/changsongyang/nocodb/internal/filterparse"
)

// Scenario defines a filter conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the directory of CUE table definitions, relative to the
	// scenario file.
	Schema string `yaml:"schema"`

	// Table is the title (or physical name) of the table under test.
	Table string `yaml:"table"`

	// Dialect is the engine to run on; defaults to sqlite.
	Dialect string `yaml:"dialect,omitempty"`

	// Now is the RFC 3339 instant relative dates resolve against.
	Now string `yaml:"now"`

	// Timezone is the view timezone.
	Timezone string `yaml:"timezone,omitempty"`

	// Rows seed the table, keyed by column title.
	Rows []map[string]any `yaml:"rows"`

	// Cases are the filters to run.
	Cases []Case `yaml:"cases"`
}

// Case is one filter and its expected outcome.
type Case struct {
	Name string `yaml:"name"`

	// Where is filter text; Filters are stored filter rows. Exactly one
	// is set.
	Where   string            `yaml:"where,omitempty"`
	Filters []filterparse.Row `yaml:"filters,omitempty"`

	// ExpectIDs lists the matching row ids in order. Ignored when
	// ExpectError is set.
	ExpectIDs []int64 `yaml:"expect_ids,omitempty"`

	// ExpectError is the error code the filter must fail with, e.g.
	// INVALID_FILTER_VALUE.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// NowTime returns the parsed Now. Call after validation.
func (s *Scenario) NowTime() time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s.Now)
	return t
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the schema path relative to the scenario BEFORE validation
	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

var knownCodes = map[string]bool{
	string(filtererr.CodeInvalidFilterValue):   true,
	string(filtererr.CodeInvalidValueForField): true,
	string(filtererr.CodeUnsupportedOperator):  true,
	string(filtererr.CodeInvalidSyntax):        true,
	string(filtererr.CodeUnknownField):         true,
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if info, err := os.Stat(s.Schema); err != nil || !info.IsDir() {
		return fmt.Errorf("schema directory not found: %s", s.Schema)
	}

	if s.Table == "" {
		return fmt.Errorf("table is required")
	}

	if _, err := dialect.Parse(s.Dialect); err != nil {
		return err
	}

	if s.Now == "" {
		return fmt.Errorf("now is required")
	}
	if _, err := time.Parse(time.RFC3339Nano, s.Now); err != nil {
		return fmt.Errorf("now: %w", err)
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		names[c.Name] = true

		if (c.Where == "") == (len(c.Filters) == 0) {
			return fmt.Errorf("cases[%d]: exactly one of where or filters is required", i)
		}
		if c.ExpectError != "" {
			if !knownCodes[c.ExpectError] {
				return fmt.Errorf("cases[%d]: unknown error code %q", i, c.ExpectError)
			}
			if len(c.ExpectIDs) > 0 {
				return fmt.Errorf("cases[%d]: expect_ids and expect_error are exclusive", i)
			}
		}
	}

	return nil
}
