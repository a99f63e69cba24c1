package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/fixtures"
	"github.com/roach88/sweatz/internal/pipeline"
	"github.com/roach88/sweatz/internal/query"
	"github.com/roach88/sweatz/internal/store"
	"github.com/roach88/sweatz/internal/testutil"
)

// ScenarioDatabase is the database name scenarios run against.
const ScenarioDatabase = "sweatz_test"

// ClockStep is how far the scenario clock advances per reading.
const ClockStep = time.Second

// Harness is the scenario execution engine. It runs scenarios against a
// fresh store with a deterministic clock and identity generator.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	logger *zap.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes store and harness logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh store for isolation.
//
// Execution flow:
//  1. Create a store with sequential ObjectIDs and a deterministic clock
//  2. Load the default seed (if requested), fixture files and setup records
//  3. Execute steps, tracing each output and checking expect clauses
//  4. Evaluate assertions against the final contents
//
// An error is returned only when the scenario cannot be executed at all
// (bad setup, unconvertible values); failed expectations are reported in
// the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewDeterministicClock(time.Time{}, ClockStep),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.store = store.New(
		store.WithName(ScenarioDatabase),
		store.WithLogger(h.logger),
		store.WithIDGenerator(testutil.NewSequentialIDGenerator(time.Time{})),
	)

	ctx := context.Background()

	if err := h.executeSetup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range EvaluateAssertions(ctx, h.store, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeSetup loads the seed, fixture files and setup records, in that
// order. Setup collections are inserted in sorted name order.
func (h *Harness) executeSetup(ctx context.Context, scenario *Scenario) error {
	set := fixtures.Set{}
	if scenario.Seed {
		set = fixtures.Default(h.clock)
	}

	if len(scenario.Fixtures) > 0 {
		loaded, err := fixtures.LoadFiles(scenario.Fixtures...)
		if err != nil {
			return err
		}
		set.Merge(loaded)
	}

	for name, raw := range scenario.Setup {
		records := make([]document.Object, 0, len(raw))
		for i, r := range raw {
			rec, err := toObject(r)
			if err != nil {
				return fmt.Errorf("setup %s[%d]: %w", name, i, err)
			}
			records = append(records, rec)
		}
		set[name] = append(set[name], records...)
	}

	n, err := fixtures.Apply(ctx, h.store, set)
	if err != nil {
		return err
	}
	h.logger.Debug("scenario setup loaded", zap.Int("records", n))
	return nil
}

// executeSteps runs every step, tracing outputs and checking expectations.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		event := TraceEvent{Step: i + 1, Op: step.Op, Collection: step.Collection}

		output, opErr, err := h.execute(ctx, step)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		if opErr != nil {
			kind := ErrorKind(opErr)
			event.Output = document.Object{"error": document.String(kind)}
			switch {
			case step.Expect == nil || step.Expect.Error == "":
				result.AddError(fmt.Sprintf("step %d (%s %s): unexpected error: %v", i+1, step.Op, step.Collection, opErr))
			case step.Expect.Error != kind:
				result.AddError(fmt.Sprintf("step %d (%s %s): expected error %q, got %q: %v", i+1, step.Op, step.Collection, step.Expect.Error, kind, opErr))
			}
		} else {
			event.Output = output
			if step.Expect != nil {
				if err := checkExpect(step.Expect, output); err != nil {
					result.AddError(fmt.Sprintf("step %d (%s %s): %v", i+1, step.Op, step.Collection, err))
				}
			}
		}

		result.AddTrace(event)
		h.logger.Debug("scenario step completed",
			zap.Int("step", i+1),
			zap.String("op", step.Op),
			zap.String("collection", step.Collection),
			zap.Bool("failed", opErr != nil),
		)
	}
	return nil
}

func checkExpect(expect *Expect, output document.Object) error {
	if expect.Error != "" {
		return fmt.Errorf("expected error %q, got success", expect.Error)
	}
	if expect.Output == nil {
		return nil
	}
	want, err := toObject(expect.Output)
	if err != nil {
		return fmt.Errorf("expect.output: %w", err)
	}
	return matchSubset("output", want, output)
}

// execute runs one step. opErr is the operation's own failure, which the
// scenario may expect; err means the step could not be run.
func (h *Harness) execute(ctx context.Context, step Step) (output document.Object, opErr error, err error) {
	coll := h.store.Collection(step.Collection)

	filter, err := toObject(step.Filter)
	if err != nil {
		return nil, nil, fmt.Errorf("filter: %w", err)
	}

	switch step.Op {
	case OpInsertOne:
		rec, err := toObject(step.Record)
		if err != nil {
			return nil, nil, fmt.Errorf("record: %w", err)
		}
		res, opErr := coll.InsertOne(ctx, rec)
		if opErr != nil {
			return nil, opErr, nil
		}
		return document.Object{"inserted_id": res.InsertedID}, nil, nil

	case OpInsertMany:
		records := make([]document.Object, len(step.Records))
		for i, r := range step.Records {
			if records[i], err = toObject(r); err != nil {
				return nil, nil, fmt.Errorf("records[%d]: %w", i, err)
			}
		}
		res, opErr := coll.InsertMany(ctx, records)
		if opErr != nil {
			return nil, opErr, nil
		}
		return document.Object{"inserted_ids": document.Array(res.InsertedIDs)}, nil, nil

	case OpFindOne:
		rec, opErr := coll.FindOne(ctx, filter)
		if opErr != nil {
			return nil, opErr, nil
		}
		return document.Object{"record": rec}, nil, nil

	case OpFind:
		cur, opErr := coll.Find(ctx, filter)
		if opErr != nil {
			return nil, opErr, nil
		}
		if step.Sort != nil {
			dir := step.Sort.Dir
			if dir == 0 {
				dir = 1
			}
			cur = cur.Sort(step.Sort.Field, dir)
		}
		records, opErr := cur.Skip(step.Skip).Limit(step.Limit).All(ctx)
		if opErr != nil {
			return nil, opErr, nil
		}
		return recordsOutput(records), nil, nil

	case OpCount:
		n, opErr := coll.CountDocuments(ctx, filter)
		if opErr != nil {
			return nil, opErr, nil
		}
		return document.Object{"count": document.Int(n)}, nil, nil

	case OpDistinct:
		values, opErr := coll.Distinct(ctx, step.Field, filter)
		if opErr != nil {
			return nil, opErr, nil
		}
		return document.Object{"values": document.Array(values)}, nil, nil

	case OpUpdateOne:
		update, err := toObject(step.Update)
		if err != nil {
			return nil, nil, fmt.Errorf("update: %w", err)
		}
		res, opErr := coll.UpdateOne(ctx, filter, update, store.Upsert(step.Upsert))
		if opErr != nil {
			return nil, opErr, nil
		}
		out := document.Object{
			"matched":  document.Int(res.MatchedCount),
			"modified": document.Int(res.ModifiedCount),
		}
		if res.UpsertedID != nil {
			out["upserted_id"] = res.UpsertedID
		}
		return out, nil, nil

	case OpDeleteOne:
		res, opErr := coll.DeleteOne(ctx, filter)
		if opErr != nil {
			return nil, opErr, nil
		}
		return document.Object{"deleted": document.Int(res.DeletedCount)}, nil, nil

	case OpAggregate:
		stages := make([]document.Object, len(step.Pipeline))
		for i, s := range step.Pipeline {
			if stages[i], err = toObject(s); err != nil {
				return nil, nil, fmt.Errorf("pipeline[%d]: %w", i, err)
			}
		}
		records, opErr := coll.Aggregate(ctx, stages)
		if opErr != nil {
			return nil, opErr, nil
		}
		return recordsOutput(records), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func recordsOutput(records []document.Object) document.Object {
	arr := make(document.Array, len(records))
	for i, rec := range records {
		arr[i] = rec
	}
	return document.Object{"count": document.Int(len(records)), "records": arr}
}

// Error kinds reported in traces and matched by expect.error.
const (
	ErrKindNotFound          = "not_found"
	ErrKindDuplicateIdentity = "duplicate_identity"
	ErrKindImmutableIdentity = "immutable_identity"
	ErrKindUnsupported       = "unsupported"
	ErrKindInvalidFilter     = "invalid_filter"
	ErrKindInvalidPipeline   = "invalid_pipeline"
	ErrKindOther             = "error"
)

var errorKinds = map[string]bool{
	ErrKindNotFound:          true,
	ErrKindDuplicateIdentity: true,
	ErrKindImmutableIdentity: true,
	ErrKindUnsupported:       true,
	ErrKindInvalidFilter:     true,
	ErrKindInvalidPipeline:   true,
	ErrKindOther:             true,
}

func isErrorKind(kind string) bool {
	return errorKinds[kind]
}

// ErrorKind classifies a store error.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateIdentity):
		return ErrKindDuplicateIdentity
	case errors.Is(err, store.ErrImmutableIdentity):
		return ErrKindImmutableIdentity
	case errors.Is(err, document.ErrUnsupportedOperation):
		return ErrKindUnsupported
	case errors.Is(err, query.ErrInvalidFilter):
		return ErrKindInvalidFilter
	case errors.Is(err, pipeline.ErrInvalidPipeline):
		return ErrKindInvalidPipeline
	case store.IsNotFound(err):
		return ErrKindNotFound
	default:
		return ErrKindOther
	}
}

// toObject converts YAML-decoded data to a record, decoding extended JSON
// wrappers such as {"$oid": ...} and {"$date": ...}. A nil map is a nil
// Object.
func toObject(m map[string]any) (document.Object, error) {
	if m == nil {
		return nil, nil
	}
	v, err := document.FromExtended(m)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(document.Object)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", document.KindOf(v))
	}
	return obj, nil
}
