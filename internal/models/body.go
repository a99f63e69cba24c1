package models

import (
	"context"
	"time"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/store"
)

// DefaultWeightHistoryLimit bounds WeightHistory when no limit is given.
const DefaultWeightHistoryLimit = 30

// WeightEntry is one weigh-in. Unit defaults to "kg" and a zero Date means
// now.
type WeightEntry struct {
	Weight float64
	Unit   string
	Date   time.Time
	Notes  string
}

// Measurements are body circumferences. Nil fields are stored as null.
type Measurements struct {
	Date      time.Time
	Chest     *float64
	Waist     *float64
	Hips      *float64
	Arms      *float64
	Legs      *float64
	Neck      *float64
	Shoulders *float64
	Unit      string
	Notes     string
}

var measurementFields = []string{"chest", "waist", "hips", "arms", "legs", "neck", "shoulders"}

// BodyGoal is a user's body target.
type BodyGoal struct {
	TargetWeight  *float64
	TargetBodyFat *float64
	Deadline      time.Time
	Notes         string
}

// LogWeight records a weigh-in and returns its id.
func (m *Models) LogWeight(ctx context.Context, userID string, entry WeightEntry) (string, error) {
	_, uid, err := userFilter(userID)
	if err != nil {
		return "", err
	}
	unit := entry.Unit
	if unit == "" {
		unit = "kg"
	}
	return m.insert(ctx, WeightLogs, document.Object{
		"user_id":    uid,
		"weight":     document.Float(entry.Weight),
		"unit":       document.String(unit),
		"date":       m.orNow(entry.Date),
		"notes":      document.String(entry.Notes),
		"created_at": m.now(),
	})
}

// WeightHistory returns the user's weigh-ins, newest first. The date range
// applies only when both from and to are set. A limit of zero or less uses
// DefaultWeightHistoryLimit.
func (m *Models) WeightHistory(ctx context.Context, userID string, from, to time.Time, limit int64) ([]document.Object, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return nil, err
	}
	f["weight"] = document.Object{"$exists": document.Bool(true)}
	if !from.IsZero() && !to.IsZero() {
		f["date"] = document.Object{
			"$gte": document.NewTime(from),
			"$lte": document.NewTime(to),
		}
	}
	if limit <= 0 {
		limit = DefaultWeightHistoryLimit
	}
	return m.find(ctx, WeightLogs, f, "date", -1, 0, limit)
}

// LogMeasurements records body measurements and returns the entry id.
func (m *Models) LogMeasurements(ctx context.Context, userID string, ms Measurements) (string, error) {
	_, uid, err := userFilter(userID)
	if err != nil {
		return "", err
	}
	unit := ms.Unit
	if unit == "" {
		unit = "cm"
	}
	record := document.Object{
		"user_id":    uid,
		"date":       m.orNow(ms.Date),
		"unit":       document.String(unit),
		"notes":      document.String(ms.Notes),
		"created_at": m.now(),
	}
	values := []*float64{ms.Chest, ms.Waist, ms.Hips, ms.Arms, ms.Legs, ms.Neck, ms.Shoulders}
	for i, name := range measurementFields {
		if values[i] != nil {
			record[name] = document.Float(*values[i])
		}
	}
	return m.insert(ctx, BodyMeasurements, record)
}

// MeasurementHistory returns entries holding at least one measurement,
// newest first.
func (m *Models) MeasurementHistory(ctx context.Context, userID string, limit int64) ([]document.Object, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return nil, err
	}
	clauses := make(document.Array, len(measurementFields))
	for i, name := range measurementFields {
		clauses[i] = document.Object{name: document.Object{"$exists": document.Bool(true)}}
	}
	f["$or"] = clauses
	return m.find(ctx, BodyMeasurements, f, "date", -1, 0, limit)
}

// SetBodyGoal creates or replaces the user's body goal.
func (m *Models) SetBodyGoal(ctx context.Context, userID string, goal BodyGoal) (bool, error) {
	f, uid, err := userFilter(userID)
	if err != nil {
		return false, err
	}
	var deadline document.Value = document.Null{}
	if !goal.Deadline.IsZero() {
		deadline = document.NewTime(goal.Deadline)
	}
	res, err := m.db.Collection(BodyGoals).UpdateOne(ctx, f, document.Object{
		"$set": document.Object{
			"user_id":         uid,
			"target_weight":   optional(goal.TargetWeight),
			"target_body_fat": optional(goal.TargetBodyFat),
			"deadline":        deadline,
			"notes":           document.String(goal.Notes),
			"updated_at":      m.now(),
		},
		"$setOnInsert": document.Object{"created_at": m.now()},
	}, store.Upsert(true))
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedID != nil, nil
}

// BodyGoal returns the user's body goal.
func (m *Models) BodyGoal(ctx context.Context, userID string) (document.Object, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return nil, err
	}
	return m.db.Collection(BodyGoals).FindOne(ctx, f)
}
