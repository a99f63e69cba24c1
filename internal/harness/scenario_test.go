package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/meals_crud.yaml")
	require.NoError(t, err)

	assert.Equal(t, "meals_crud", s.Name)
	assert.False(t, s.Seed)
	require.Len(t, s.Steps, 11)

	find := s.Steps[4]
	assert.Equal(t, OpFind, find.Op)
	assert.Equal(t, &SortKey{Field: "calories", Dir: -1}, find.Sort)
	assert.Equal(t, int64(1), find.Limit)

	upsert := s.Steps[6]
	assert.True(t, upsert.Upsert)
	assert.Contains(t, upsert.Update, "$setOnInsert")

	assert.Equal(t, "duplicate_identity", s.Steps[3].Expect.Error)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, AssertCount, s.Assertions[0].Type)
}

func TestLoadScenarioResolvesFixtures(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/body_tracking.yaml")
	require.NoError(t, err)

	require.Len(t, s.Fixtures, 1)
	assert.Equal(t, filepath.Join("testdata", "fixtures", "weights.yaml"), s.Fixtures[0])
	assert.Len(t, s.Setup["body_goals"], 1)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: misspelled field
step:
  - op: count
    collection: meals
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateScenario(t *testing.T) {
	valid := func() Scenario {
		return Scenario{
			Name:        "valid",
			Description: "a valid scenario",
			Steps:       []Step{{Op: OpCount, Collection: "meals"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Scenario)
		wantErr string
	}{
		{"valid", func(s *Scenario) {}, ""},
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"no steps", func(s *Scenario) { s.Steps = nil }, "steps list is required"},
		{"missing fixture", func(s *Scenario) { s.Fixtures = []string{"/nonexistent/fixture.yaml"} }, "fixture file not found"},
		{"missing op", func(s *Scenario) { s.Steps[0].Op = "" }, "steps[0]: op is required"},
		{"missing collection", func(s *Scenario) { s.Steps[0].Collection = "" }, "steps[0]: collection is required"},
		{"unknown op", func(s *Scenario) { s.Steps[0].Op = "replace_one" }, `unknown op "replace_one"`},
		{"insert without record", func(s *Scenario) { s.Steps[0].Op = OpInsertOne }, "record is required"},
		{"insert_many without records", func(s *Scenario) { s.Steps[0].Op = OpInsertMany }, "records is required"},
		{"distinct without field", func(s *Scenario) { s.Steps[0].Op = OpDistinct }, "field is required"},
		{"update without update", func(s *Scenario) { s.Steps[0].Op = OpUpdateOne }, "update is required"},
		{"aggregate without pipeline", func(s *Scenario) { s.Steps[0].Op = OpAggregate }, "pipeline is required"},
		{"sort on count", func(s *Scenario) { s.Steps[0].Sort = &SortKey{Field: "name"} }, "sort only applies to find"},
		{"bad sort dir", func(s *Scenario) {
			s.Steps[0].Op = OpFind
			s.Steps[0].Sort = &SortKey{Field: "name", Dir: 2}
		}, "sort.dir must be 1 or -1"},
		{"negative limit", func(s *Scenario) { s.Steps[0].Limit = -1 }, "must be non-negative"},
		{"unknown error kind", func(s *Scenario) { s.Steps[0].Expect = &Expect{Error: "boom"} }, `unknown error kind "boom"`},
		{"error with output", func(s *Scenario) {
			s.Steps[0].Expect = &Expect{Error: ErrKindNotFound, Output: map[string]any{"count": 1}}
		}, "mutually exclusive"},
		{"assertion without type", func(s *Scenario) {
			s.Assertions = []Assertion{{Collection: "meals"}}
		}, "assertions[0]: type is required"},
		{"assertion without collection", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertCount}}
		}, "assertions[0]: collection is required"},
		{"unknown assertion", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: "final_state", Collection: "meals"}}
		}, `unknown assertion type "final_state"`},
		{"negative count", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertCount, Collection: "meals", Count: -1}}
		}, "count must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := validateScenario(&s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
