package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/fixtures"
	"github.com/roach88/sweatz/internal/store"
)

func TestListExercisesFilters(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModels(t)

	tests := []struct {
		name   string
		filter ExerciseFilter
		total  int64
	}{
		{"all", ExerciseFilter{}, 19},
		{"muscle group", ExerciseFilter{MuscleGroup: "Chest"}, 3},
		{"difficulty", ExerciseFilter{Difficulty: "beginner"}, 7},
		{"equipment in", ExerciseFilter{Equipment: []string{"barbell", "kettlebell"}}, 9},
		{"search is case-insensitive", ExerciseFilter{Search: "sample exercise 1"}, 11},
		{"combined", ExerciseFilter{MuscleGroup: "Chest", Equipment: []string{"bodyweight"}}, 3},
		{"nothing", ExerciseFilter{MuscleGroup: "Neck"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, total, err := m.ListExercises(ctx, tt.filter, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Len(t, page, int(tt.total))
		})
	}
}

func TestListExercisesPaging(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModels(t)

	page, total, err := m.ListExercises(ctx, ExerciseFilter{}, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(19), total)
	var names []string
	for _, ex := range page {
		names = append(names, ex.StringOr("name", ""))
	}
	// Sorted by name: 1, 10, 11, 12, ...
	assert.Equal(t, []string{"Sample Exercise 11", "Sample Exercise 12", "Sample Exercise 13"}, names)
}

func TestMuscleGroups(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModels(t)

	groups, err := m.MuscleGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chest", "Back", "Shoulders", "Arms", "Legs", "Core", "Full Body", "Cardio"}, groups)
}

func TestEquipmentUsage(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModels(t)

	usage, err := m.EquipmentUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []EquipmentCount{
		{Equipment: "bodyweight", Count: 10},
		{Equipment: "barbell", Count: 9},
		{Equipment: "dumbbell", Count: 9},
	}, usage)
}

func TestExerciseLifecycle(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModels(t)

	id, err := m.CreateExercise(ctx, Exercise{Name: "Plank", Equipment: []string{"bodyweight"}, CreatedBy: fixtures.AdminID})
	require.NoError(t, err)

	ex, err := m.GetExercise(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "other", ex.StringOr("muscle_group", ""))
	assert.Equal(t, "intermediate", ex.StringOr("difficulty", ""))

	ok, err := m.UpdateExercise(ctx, id, Exercise{Name: "Side Plank", MuscleGroup: "Core", Difficulty: "beginner"}, fixtures.AdminID)
	require.NoError(t, err)
	assert.True(t, ok)

	ex, err = m.GetExercise(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Side Plank", ex.StringOr("name", ""))
	assert.Equal(t, fixtures.AdminID, ex.StringOr("updated_by", ""))

	ok, err = m.DeleteExercise(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = m.GetExercise(ctx, id)
	assert.True(t, store.IsNotFound(err))
}

func TestRoutines(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModels(t)

	_, err := m.CreateRoutine(ctx, fixtures.UserID, Routine{Name: "Mine"})
	require.NoError(t, err)
	_, err = m.CreateRoutine(ctx, fixtures.AdminID, Routine{
		Name:   "Shared",
		Public: true,
		Days:   document.Array{document.Object{"day": document.String("Monday")}},
	})
	require.NoError(t, err)
	_, err = m.CreateRoutine(ctx, fixtures.AdminID, Routine{Name: "Private"})
	require.NoError(t, err)

	own, err := m.Routines(ctx, fixtures.UserID, false)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "custom", own[0].StringOr("type", ""))

	visible, err := m.Routines(ctx, fixtures.UserID, true)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}
