package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/sweatz/internal/document"
)

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Steps: []Step{
			{Op: OpInsertOne, Collection: "reminders", Record: map[string]any{"title": "Stretch"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 1)

	event := result.Trace[0]
	assert.Equal(t, 1, event.Step)
	assert.Equal(t, OpInsertOne, event.Op)
	assert.Equal(t, document.MustObjectID("681338100000000000000001"), event.Output["inserted_id"])
}

func TestRun_SetupAndSeed(t *testing.T) {
	scenario := &Scenario{
		Name:        "setup",
		Description: "setup records join the seed",
		Seed:        true,
		Setup: map[string][]map[string]any{
			"meals": {{"name": "Oats"}, {"name": "Eggs"}},
		},
		Steps: []Step{
			{Op: OpCount, Collection: "meals"},
			{Op: OpCount, Collection: "users"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, document.Int(2), result.Trace[0].Output["count"])
	assert.Equal(t, document.Int(2), result.Trace[1].Output["count"])
}

func TestRun_IsolatedStores(t *testing.T) {
	scenario := &Scenario{
		Name:        "isolated",
		Description: "each run starts empty",
		Steps: []Step{
			{Op: OpInsertOne, Collection: "meals", Record: map[string]any{"_id": "fixed"}},
		},
	}

	for range 2 {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, result.Errors)
	}
}

func TestRun_UnexpectedError(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "a failing step without expect fails the scenario",
		Steps: []Step{
			{Op: OpFindOne, Collection: "meals", Filter: map[string]any{"name": "missing"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 1 (find_one meals): unexpected error")
	assert.Equal(t, document.Object{"error": document.String(ErrKindNotFound)}, result.Trace[0].Output)
}

func TestRun_WrongErrorKind(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_kind",
		Description: "the error kind must match",
		Steps: []Step{
			{
				Op:         OpFindOne,
				Collection: "meals",
				Expect:     &Expect{Error: ErrKindUnsupported},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected error "unsupported", got "not_found"`)
}

func TestRun_ExpectedErrorButSucceeded(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_error",
		Description: "an expected error that never happens fails",
		Steps: []Step{
			{Op: OpCount, Collection: "meals", Expect: &Expect{Error: ErrKindNotFound}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `expected error "not_found", got success`)
}

func TestRun_OutputMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "output is compared as a subset",
		Setup: map[string][]map[string]any{
			"meals": {{"name": "Oats", "calories": 300}},
		},
		Steps: []Step{
			{
				Op:         OpFind,
				Collection: "meals",
				Expect: &Expect{Output: map[string]any{
					"records": []any{map[string]any{"calories": 310}},
				}},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "output.records[0].calories: expected 310, got 300")
}

func TestRun_FailedAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertion",
		Description: "assertions run after the steps",
		Steps: []Step{
			{Op: OpInsertOne, Collection: "meals", Record: map[string]any{"name": "Oats"}},
		},
		Assertions: []Assertion{
			{Type: AssertCount, Collection: "meals", Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: count")
}

func TestRun_SetupFailureIsAnError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "duplicate identities in setup abort the run",
		Setup: map[string][]map[string]any{
			"meals": {{"_id": "x"}, {"_id": "x"}},
		},
		Steps: []Step{{Op: OpCount, Collection: "meals"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute setup")
}

func TestRun_BadValueIsAnError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_value",
		Description: "a malformed $oid cannot be converted",
		Steps: []Step{
			{Op: OpFindOne, Collection: "meals", Filter: map[string]any{"_id": map[string]any{"$oid": "nope"}}},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1: filter")
}

func TestRun_FindModifiers(t *testing.T) {
	scenario := &Scenario{
		Name:        "modifiers",
		Description: "sort, skip and limit apply in that order",
		Setup: map[string][]map[string]any{
			"meals": {
				{"name": "A", "calories": 100},
				{"name": "B", "calories": 300},
				{"name": "C", "calories": 200},
				{"name": "D", "calories": 300},
			},
		},
		Steps: []Step{
			{Op: OpFind, Collection: "meals", Sort: &SortKey{Field: "calories", Dir: -1}, Skip: 1, Limit: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	records := result.Trace[0].Output["records"].(document.Array)
	require.Len(t, records, 2)
	assert.Equal(t, document.String("D"), records[0].(document.Object)["name"])
	assert.Equal(t, document.String("C"), records[1].(document.Object)["name"])
}

func TestRun_LogsSteps(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	scenario := &Scenario{
		Name:        "logged",
		Description: "steps are logged at debug",
		Steps:       []Step{{Op: OpCount, Collection: "meals"}},
	}

	_, err := Run(scenario, WithLogger(zap.New(core)))
	require.NoError(t, err)

	entries := logs.FilterMessage("scenario step completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "count", entries[0].ContextMap()["op"])
}

func TestErrorKind(t *testing.T) {
	s := &Scenario{
		Name:        "kinds",
		Description: "error classification",
		Setup: map[string][]map[string]any{
			"meals": {{"_id": "x", "name": "Oats"}},
		},
		Steps: []Step{
			{Op: OpUpdateOne, Collection: "meals", Update: map[string]any{"$set": map[string]any{"a": 1}, "b": 2}, Expect: &Expect{Error: ErrKindInvalidFilter}},
			{Op: OpAggregate, Collection: "meals", Pipeline: []map[string]any{{"$limit": "ten"}}, Expect: &Expect{Error: ErrKindInvalidPipeline}},
			{Op: OpInsertOne, Collection: "meals", Record: map[string]any{"_id": "x"}, Expect: &Expect{Error: ErrKindDuplicateIdentity}},
			{Op: OpUpdateOne, Collection: "meals", Filter: map[string]any{"_id": "x"}, Update: map[string]any{"_id": "y"}, Expect: &Expect{Error: ErrKindImmutableIdentity}},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}
