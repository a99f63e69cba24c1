package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a store conformance scenario: records to start from,
// operations to run, and what the final contents must look like.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed loads the default development fixtures before setup.
	Seed bool `yaml:"seed,omitempty"`

	// Fixtures lists fixture files (YAML, JSON or CUE) to load before
	// setup. Relative paths resolve against the scenario file.
	Fixtures []string `yaml:"fixtures,omitempty"`

	// Setup maps collection names to records inserted before the steps.
	// Setup is not traced and must succeed.
	Setup map[string][]map[string]any `yaml:"setup,omitempty"`

	// Steps are the traced operations, run in order.
	Steps []Step `yaml:"steps"`

	// Assertions check the store after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one store operation. Which fields apply depends on Op.
type Step struct {
	Op         string           `yaml:"op"`
	Collection string           `yaml:"collection"`
	Filter     map[string]any   `yaml:"filter,omitempty"`
	Update     map[string]any   `yaml:"update,omitempty"`
	Upsert     bool             `yaml:"upsert,omitempty"`
	Sort       *SortKey         `yaml:"sort,omitempty"`
	Skip       int64            `yaml:"skip,omitempty"`
	Limit      int64            `yaml:"limit,omitempty"`
	Pipeline   []map[string]any `yaml:"pipeline,omitempty"`
	Field      string           `yaml:"field,omitempty"`
	Record     map[string]any   `yaml:"record,omitempty"`
	Records    []map[string]any `yaml:"records,omitempty"`

	// Expect checks the step's outcome. If nil, the step must not fail.
	Expect *Expect `yaml:"expect,omitempty"`
}

// SortKey orders find results. Dir is 1 (default) or -1.
type SortKey struct {
	Field string `yaml:"field"`
	Dir   int    `yaml:"dir,omitempty"`
}

// Expect specifies a step's expected outcome.
type Expect struct {
	// Error is the expected error kind (see ErrorKind). Empty means the
	// step must succeed.
	Error string `yaml:"error,omitempty"`

	// Output is matched against the step's output as a subset: only the
	// fields given are compared. Arrays must have the same length.
	Output map[string]any `yaml:"output,omitempty"`
}

// Assertion validates the final contents of a collection.
type Assertion struct {
	// Type is "count" or "exists".
	Type string `yaml:"type"`

	// Collection is the collection to query.
	Collection string `yaml:"collection"`

	// Filter selects records. Empty matches all.
	Filter map[string]any `yaml:"filter,omitempty"`

	// Count is the expected number of matches (count).
	Count int64 `yaml:"count,omitempty"`

	// Expect is matched as a subset against the single match (exists).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Step operations.
const (
	OpInsertOne  = "insert_one"
	OpInsertMany = "insert_many"
	OpFindOne    = "find_one"
	OpFind       = "find"
	OpCount      = "count"
	OpDistinct   = "distinct"
	OpUpdateOne  = "update_one"
	OpDeleteOne  = "delete_one"
	OpAggregate  = "aggregate"
)

// Assertion type constants.
const (
	AssertCount  = "count"
	AssertExists = "exists"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Fixtures {
		if !filepath.IsAbs(p) {
			scenario.Fixtures[i] = filepath.Join(base, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, p := range s.Fixtures {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("fixture file not found: %s", p)
		}
	}

	for name := range s.Setup {
		if name == "" {
			return fmt.Errorf("setup: collection name must be non-empty")
		}
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	if s.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if s.Collection == "" {
		return fmt.Errorf("steps[%d]: collection is required", index)
	}

	switch s.Op {
	case OpFindOne, OpFind, OpCount, OpDeleteOne:
	case OpInsertOne:
		if s.Record == nil {
			return fmt.Errorf("steps[%d]: record is required for insert_one", index)
		}
	case OpInsertMany:
		if len(s.Records) == 0 {
			return fmt.Errorf("steps[%d]: records is required for insert_many", index)
		}
	case OpDistinct:
		if s.Field == "" {
			return fmt.Errorf("steps[%d]: field is required for distinct", index)
		}
	case OpUpdateOne:
		if s.Update == nil {
			return fmt.Errorf("steps[%d]: update is required for update_one", index)
		}
	case OpAggregate:
		if s.Pipeline == nil {
			return fmt.Errorf("steps[%d]: pipeline is required for aggregate (use [] for none)", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	if s.Sort != nil {
		if s.Op != OpFind {
			return fmt.Errorf("steps[%d]: sort only applies to find", index)
		}
		if s.Sort.Field == "" {
			return fmt.Errorf("steps[%d]: sort.field is required", index)
		}
		if s.Sort.Dir < -1 || s.Sort.Dir > 1 {
			return fmt.Errorf("steps[%d]: sort.dir must be 1 or -1", index)
		}
	}
	if s.Skip < 0 || s.Limit < 0 {
		return fmt.Errorf("steps[%d]: skip and limit must be non-negative", index)
	}

	if s.Expect != nil && s.Expect.Error != "" {
		if !isErrorKind(s.Expect.Error) {
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, s.Expect.Error)
		}
		if s.Expect.Output != nil {
			return fmt.Errorf("steps[%d].expect: error and output are mutually exclusive", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Collection == "" {
		return fmt.Errorf("assertions[%d]: collection is required", index)
	}

	switch a.Type {
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertExists:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
