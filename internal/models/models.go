// Package models implements the fitness application's data access on top
// of store.Database: nutrition, body metrics, reminders, workouts, users and
// the admin dashboard.
//
// Identifiers cross this API as hex strings. A string that is not a valid
// identifier fails with store.ErrInvalidIdentity, which store.IsNotFound
// treats as not found.
package models

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/sweatz/internal/clock"
	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/store"
)

// Collection names.
const (
	Users             = "users"
	Meals             = "meals"
	WaterIntake       = "water_intake"
	NutritionGoals    = "nutrition_goals"
	WeightLogs        = "weight_logs"
	BodyMeasurements  = "body_measurements"
	BodyGoals         = "body_goals"
	Exercises         = "exercises"
	WorkoutRoutines   = "workout_routines"
	CompletedWorkouts = "completed_workouts"
	Reminders         = "reminders"
	Settings          = "settings"
)

// Models groups the application's data access operations.
type Models struct {
	db    store.Database
	clock clock.Clock
}

// New returns Models backed by db. A nil clk uses the system clock.
func New(db store.Database, clk clock.Clock) *Models {
	if clk == nil {
		clk = clock.System{}
	}
	return &Models{db: db, clock: clk}
}

func (m *Models) now() document.Time {
	return document.NewTime(m.clock.Now())
}

// orNow returns t, or the current time when t is zero.
func (m *Models) orNow(t time.Time) document.Time {
	if t.IsZero() {
		return m.now()
	}
	return document.NewTime(t)
}

// parseID converts a hex identifier string.
func parseID(id string) (document.Value, error) {
	return document.CoerceIdentity(document.String(id))
}

// byID builds the {"_id": id} filter for a hex identifier.
func byID(id string) (document.Object, error) {
	v, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return document.Object{document.IDField: v}, nil
}

func (m *Models) insert(ctx context.Context, collection string, record document.Object) (string, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return idString(res.InsertedID), nil
}

func (m *Models) get(ctx context.Context, collection, id string) (document.Object, error) {
	f, err := byID(id)
	if err != nil {
		return nil, err
	}
	return m.db.Collection(collection).FindOne(ctx, f)
}

// set applies fields to the record with the given id and reports whether
// it was modified.
func (m *Models) set(ctx context.Context, collection, id string, fields document.Object) (bool, error) {
	f, err := byID(id)
	if err != nil {
		return false, err
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx, f, document.Object{"$set": fields})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (m *Models) remove(ctx context.Context, collection string, f document.Object) (bool, error) {
	res, err := m.db.Collection(collection).DeleteOne(ctx, f)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *Models) delete(ctx context.Context, collection, id string) (bool, error) {
	f, err := byID(id)
	if err != nil {
		return false, err
	}
	return m.remove(ctx, collection, f)
}

func (m *Models) find(ctx context.Context, collection string, f document.Object, sortField string, dir int, skip, limit int64) ([]document.Object, error) {
	cur, err := m.db.Collection(collection).Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if sortField != "" {
		cur = cur.Sort(sortField, dir)
	}
	return cur.Skip(skip).Limit(limit).All(ctx)
}

// dayRange returns the first and last millisecond of the UTC day holding t.
func dayRange(t time.Time) document.Object {
	start := clock.StartOfDay(t)
	end := start.Add(24*time.Hour - time.Millisecond)
	return document.Object{
		"$gte": document.NewTime(start),
		"$lte": document.NewTime(end),
	}
}

func idString(v document.Value) string {
	switch id := v.(type) {
	case document.ObjectID:
		return id.Hex()
	case document.String:
		return string(id)
	}
	return string(document.Canonical(v))
}

func stringArray(values []string) document.Array {
	arr := make(document.Array, len(values))
	for i, v := range values {
		arr[i] = document.String(v)
	}
	return arr
}

// optional stores nil pointers as null.
func optional(v *float64) document.Value {
	if v == nil {
		return document.Null{}
	}
	return document.Float(*v)
}

func userFilter(userID string) (document.Object, document.Value, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("user %q: %w", userID, err)
	}
	return document.Object{"user_id": uid}, uid, nil
}
