package models

import (
	"context"

	"github.com/roach88/sweatz/internal/document"
)

// DefaultExerciseLimit bounds ListExercises when no limit is given.
const DefaultExerciseLimit = 100

// Exercise is a catalogue entry.
type Exercise struct {
	Name        string
	MuscleGroup string
	Difficulty  string
	Description string
	Instruction string
	VideoURL    string
	Equipment   []string
	CreatedBy   string
}

// ExerciseFilter narrows ListExercises. Empty fields do not filter.
// Search is a case-insensitive regular expression over the name.
type ExerciseFilter struct {
	MuscleGroup string
	Difficulty  string
	Equipment   []string
	Search      string
}

func (f ExerciseFilter) query() document.Object {
	q := document.Object{}
	if f.MuscleGroup != "" {
		q["muscle_group"] = document.String(f.MuscleGroup)
	}
	if f.Difficulty != "" {
		q["difficulty"] = document.String(f.Difficulty)
	}
	if len(f.Equipment) > 0 {
		q["equipment"] = document.Object{"$in": stringArray(f.Equipment)}
	}
	if f.Search != "" {
		q["name"] = document.Object{
			"$regex":   document.String(f.Search),
			"$options": document.String("i"),
		}
	}
	return q
}

// EquipmentCount is how many exercises use one piece of equipment.
type EquipmentCount struct {
	Equipment string
	Count     int64
}

// Routine is a workout plan. Days holds arbitrary per-day structure.
type Routine struct {
	Name        string
	Description string
	Type        string // custom, split, full-body
	Days        document.Array
	Public      bool
	Tags        []string
}

// CreateExercise adds an exercise to the catalogue.
func (m *Models) CreateExercise(ctx context.Context, ex Exercise) (string, error) {
	if ex.MuscleGroup == "" {
		ex.MuscleGroup = "other"
	}
	if ex.Difficulty == "" {
		ex.Difficulty = "intermediate"
	}
	var createdBy document.Value = document.Null{}
	if ex.CreatedBy != "" {
		createdBy = document.String(ex.CreatedBy)
	}
	return m.insert(ctx, Exercises, document.Object{
		"name":         document.String(ex.Name),
		"muscle_group": document.String(ex.MuscleGroup),
		"difficulty":   document.String(ex.Difficulty),
		"description":  document.String(ex.Description),
		"instruction":  document.String(ex.Instruction),
		"video_url":    document.String(ex.VideoURL),
		"equipment":    stringArray(ex.Equipment),
		"created_by":   createdBy,
		"created_at":   m.now(),
	})
}

// ListExercises returns one page of matching exercises sorted by name, and
// the number of matches across all pages.
func (m *Models) ListExercises(ctx context.Context, filter ExerciseFilter, skip, limit int64) ([]document.Object, int64, error) {
	q := filter.query()
	if limit <= 0 {
		limit = DefaultExerciseLimit
	}
	page, err := m.find(ctx, Exercises, q, "name", 1, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := m.db.Collection(Exercises).CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return page, total, nil
}

// GetExercise returns one exercise.
func (m *Models) GetExercise(ctx context.Context, exerciseID string) (document.Object, error) {
	return m.get(ctx, Exercises, exerciseID)
}

// UpdateExercise replaces an exercise's descriptive fields. updatedBy
// records who made the change.
func (m *Models) UpdateExercise(ctx context.Context, exerciseID string, ex Exercise, updatedBy string) (bool, error) {
	return m.set(ctx, Exercises, exerciseID, document.Object{
		"name":         document.String(ex.Name),
		"muscle_group": document.String(ex.MuscleGroup),
		"difficulty":   document.String(ex.Difficulty),
		"description":  document.String(ex.Description),
		"instruction":  document.String(ex.Instruction),
		"video_url":    document.String(ex.VideoURL),
		"equipment":    stringArray(ex.Equipment),
		"updated_at":   m.now(),
		"updated_by":   document.String(updatedBy),
	})
}

// DeleteExercise removes an exercise.
func (m *Models) DeleteExercise(ctx context.Context, exerciseID string) (bool, error) {
	return m.delete(ctx, Exercises, exerciseID)
}

// MuscleGroups returns the distinct muscle groups in the catalogue.
func (m *Models) MuscleGroups(ctx context.Context) ([]string, error) {
	values, err := m.db.Collection(Exercises).Distinct(ctx, "muscle_group", nil)
	if err != nil {
		return nil, err
	}
	groups := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(document.String); ok {
			groups = append(groups, string(s))
		}
	}
	return groups, nil
}

// EquipmentUsage counts exercises per piece of equipment, most used first.
func (m *Models) EquipmentUsage(ctx context.Context) ([]EquipmentCount, error) {
	out, err := m.db.Collection(Exercises).Aggregate(ctx, []document.Object{
		{"$unwind": document.String("$equipment")},
		{"$group": document.Object{
			"_id":   document.String("$equipment"),
			"count": document.Object{"$sum": document.Int(1)},
		}},
		{"$sort": document.Object{"count": document.Int(-1)}},
	})
	if err != nil {
		return nil, err
	}
	usage := make([]EquipmentCount, 0, len(out))
	for _, r := range out {
		usage = append(usage, EquipmentCount{
			Equipment: r.StringOr("_id", ""),
			Count:     r.IntOr("count", 0),
		})
	}
	return usage, nil
}

// CreateRoutine stores a workout routine for the user.
func (m *Models) CreateRoutine(ctx context.Context, userID string, r Routine) (string, error) {
	_, uid, err := userFilter(userID)
	if err != nil {
		return "", err
	}
	if r.Type == "" {
		r.Type = "custom"
	}
	days := r.Days
	if days == nil {
		days = document.Array{}
	}
	return m.insert(ctx, WorkoutRoutines, document.Object{
		"user_id":     uid,
		"name":        document.String(r.Name),
		"description": document.String(r.Description),
		"type":        document.String(r.Type),
		"days":        document.Clone(days),
		"is_public":   document.Bool(r.Public),
		"tags":        stringArray(r.Tags),
		"created_at":  m.now(),
	})
}

// Routines returns the user's routines, and public ones when includePublic
// is set, newest first.
func (m *Models) Routines(ctx context.Context, userID string, includePublic bool) ([]document.Object, error) {
	own, _, err := userFilter(userID)
	if err != nil {
		return nil, err
	}
	clauses := document.Array{own}
	if includePublic {
		clauses = append(clauses, document.Object{"is_public": document.Bool(true)})
	}
	return m.find(ctx, WorkoutRoutines, document.Object{"$or": clauses}, "created_at", -1, 0, 0)
}
