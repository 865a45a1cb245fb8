package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stridefix/internal/fixture"
	"github.com/roach88/stridefix/internal/transform"
)

// Scenario describes one fixture and the expected result of each family.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the fixture document as inline JSON.
	Fixture string `yaml:"fixture,omitempty"`

	// FixtureFile is a path to the fixture document, relative to the
	// scenario file. Exactly one of Fixture and FixtureFile is set.
	FixtureFile string `yaml:"fixture_file,omitempty"`

	// Expect lists per-family expectations.
	Expect []Expectation `yaml:"expect"`
}

// Expectation states what one family should produce.
type Expectation struct {
	// Family is the transform family (e.g. "offsets").
	Family string `yaml:"family"`

	// Declined requires the family to produce no output.
	Declined bool `yaml:"declined,omitempty"`

	// Output is the complete expected document as JSON. Layout is ignored;
	// key order and values are not.
	Output string `yaml:"output,omitempty"`

	// Fields are expected top-level field values.
	// This is a subset match - unlisted fields are not checked.
	Fields map[string]any `yaml:"fields,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// A relative FixtureFile is resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.FixtureFile != "" && !filepath.IsAbs(scenario.FixtureFile) {
		scenario.FixtureFile = filepath.Join(filepath.Dir(path), scenario.FixtureFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Record returns the scenario's fixture. Inline fixtures are named after
// the scenario.
func (s *Scenario) Record() (fixture.Record, error) {
	if s.FixtureFile != "" {
		return fixture.ReadRecord(s.FixtureFile)
	}
	obj, err := fixture.DecodeObject([]byte(s.Fixture))
	if err != nil {
		return fixture.Record{}, fmt.Errorf("parse inline fixture: %w", err)
	}
	return fixture.Record{Name: s.Name + fixtureExt, Fields: obj}, nil
}

const fixtureExt = ".json"

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}

	if s.Description == "" {
		return errors.New("description is required")
	}

	switch {
	case s.Fixture == "" && s.FixtureFile == "":
		return errors.New("one of fixture or fixture_file is required")
	case s.Fixture != "" && s.FixtureFile != "":
		return errors.New("fixture and fixture_file are mutually exclusive")
	}

	if s.FixtureFile != "" {
		if _, err := os.Stat(s.FixtureFile); os.IsNotExist(err) {
			return fmt.Errorf("fixture file not found: %s", s.FixtureFile)
		}
	}

	if len(s.Expect) == 0 {
		return errors.New("expect list is required and must be non-empty")
	}

	for i, exp := range s.Expect {
		if err := validateExpectation(i, &exp); err != nil {
			return err
		}
	}

	return nil
}

// validateExpectation validates a single expectation.
func validateExpectation(index int, e *Expectation) error {
	if e.Family == "" {
		return fmt.Errorf("expect[%d]: family is required", index)
	}
	if _, err := transform.Select([]string{e.Family}); err != nil {
		return fmt.Errorf("expect[%d]: %w", index, err)
	}

	hasContent := e.Output != "" || len(e.Fields) > 0
	if e.Declined && hasContent {
		return fmt.Errorf("expect[%d]: declined cannot be combined with output or fields", index)
	}
	if !e.Declined && !hasContent {
		return fmt.Errorf("expect[%d]: one of declined, output or fields is required", index)
	}

	return nil
}
