package models

import (
	"context"
	"time"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/store"
)

// Meal is a logged meal. A zero Time means now.
type Meal struct {
	Name     string
	Time     time.Time
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
	Foods    []string
}

func (meal Meal) fields(t document.Time) document.Object {
	return document.Object{
		"name":     document.String(meal.Name),
		"time":     t,
		"calories": document.Float(meal.Calories),
		"protein":  document.Float(meal.Protein),
		"carbs":    document.Float(meal.Carbs),
		"fats":     document.Float(meal.Fats),
		"foods":    stringArray(meal.Foods),
	}
}

// NutritionGoal is a user's daily targets. Water is in millilitres.
type NutritionGoal struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
	Water    float64
}

// DefaultNutritionGoal applies to users who have not set one.
var DefaultNutritionGoal = NutritionGoal{Calories: 2000, Protein: 150, Carbs: 200, Fats: 65, Water: 2000}

// NutritionSummary totals one day of meals.
type NutritionSummary struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
	Meals    int64
}

// CreateMeal logs a meal and returns its id.
func (m *Models) CreateMeal(ctx context.Context, userID string, meal Meal) (string, error) {
	_, uid, err := userFilter(userID)
	if err != nil {
		return "", err
	}
	record := meal.fields(m.orNow(meal.Time))
	record["user_id"] = uid
	record["created_at"] = m.now()
	return m.insert(ctx, Meals, record)
}

// MealsByDate returns the user's meals on the UTC day of day, earliest
// first.
func (m *Models) MealsByDate(ctx context.Context, userID string, day time.Time) ([]document.Object, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return nil, err
	}
	f["time"] = dayRange(day)
	return m.find(ctx, Meals, f, "time", 1, 0, 0)
}

// GetMeal returns one meal.
func (m *Models) GetMeal(ctx context.Context, mealID string) (document.Object, error) {
	return m.get(ctx, Meals, mealID)
}

// UpdateMeal replaces a meal's fields. A zero Time is stored as null.
func (m *Models) UpdateMeal(ctx context.Context, mealID string, meal Meal) (bool, error) {
	var t document.Value = document.Null{}
	if !meal.Time.IsZero() {
		t = document.NewTime(meal.Time)
	}
	fields := meal.fields(document.Time{})
	fields["time"] = t
	fields["updated_at"] = m.now()
	return m.set(ctx, Meals, mealID, fields)
}

// DeleteMeal removes a meal.
func (m *Models) DeleteMeal(ctx context.Context, mealID string) (bool, error) {
	return m.delete(ctx, Meals, mealID)
}

// LogWater records an amount of water in millilitres. A zero at means now.
func (m *Models) LogWater(ctx context.Context, userID string, amount float64, at time.Time) (string, error) {
	_, uid, err := userFilter(userID)
	if err != nil {
		return "", err
	}
	return m.insert(ctx, WaterIntake, document.Object{
		"user_id":    uid,
		"amount":     document.Float(amount),
		"time":       m.orNow(at),
		"created_at": m.now(),
	})
}

// DailyWaterIntake totals the user's water on the UTC day of day.
func (m *Models) DailyWaterIntake(ctx context.Context, userID string, day time.Time) (float64, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return 0, err
	}
	f["time"] = dayRange(day)
	out, err := m.db.Collection(WaterIntake).Aggregate(ctx, []document.Object{
		{"$match": f},
		{"$group": document.Object{
			"_id":          document.Null{},
			"total_amount": document.Object{"$sum": document.String("$amount")},
		}},
	})
	if err != nil || len(out) == 0 {
		return 0, err
	}
	return out[0].FloatOr("total_amount", 0), nil
}

// SetGoal creates or replaces the user's nutrition goal. It reports
// whether a record was written.
func (m *Models) SetGoal(ctx context.Context, userID string, goal NutritionGoal) (bool, error) {
	f, uid, err := userFilter(userID)
	if err != nil {
		return false, err
	}
	res, err := m.db.Collection(NutritionGoals).UpdateOne(ctx, f, document.Object{
		"$set": document.Object{
			"user_id":    uid,
			"calories":   document.Float(goal.Calories),
			"protein":    document.Float(goal.Protein),
			"carbs":      document.Float(goal.Carbs),
			"fats":       document.Float(goal.Fats),
			"water":      document.Float(goal.Water),
			"updated_at": m.now(),
		},
	}, store.Upsert(true))
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedID != nil, nil
}

// Goal returns the user's nutrition goal, or DefaultNutritionGoal.
func (m *Models) Goal(ctx context.Context, userID string) (NutritionGoal, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return NutritionGoal{}, err
	}
	rec, err := m.db.Collection(NutritionGoals).FindOne(ctx, f)
	if store.IsNotFound(err) {
		return DefaultNutritionGoal, nil
	}
	if err != nil {
		return NutritionGoal{}, err
	}
	return NutritionGoal{
		Calories: rec.FloatOr("calories", 0),
		Protein:  rec.FloatOr("protein", 0),
		Carbs:    rec.FloatOr("carbs", 0),
		Fats:     rec.FloatOr("fats", 0),
		Water:    rec.FloatOr("water", 0),
	}, nil
}

// DailySummary totals the user's meals on the UTC day of day.
func (m *Models) DailySummary(ctx context.Context, userID string, day time.Time) (NutritionSummary, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return NutritionSummary{}, err
	}
	f["time"] = dayRange(day)
	sum := func(field string) document.Object {
		return document.Object{"$sum": document.String("$" + field)}
	}
	out, err := m.db.Collection(Meals).Aggregate(ctx, []document.Object{
		{"$match": f},
		{"$group": document.Object{
			"_id":            document.Null{},
			"total_calories": sum("calories"),
			"total_protein":  sum("protein"),
			"total_carbs":    sum("carbs"),
			"total_fats":     sum("fats"),
			"meals_count":    document.Object{"$sum": document.Int(1)},
		}},
	})
	if err != nil || len(out) == 0 {
		return NutritionSummary{}, err
	}
	r := out[0]
	return NutritionSummary{
		Calories: r.FloatOr("total_calories", 0),
		Protein:  r.FloatOr("total_protein", 0),
		Carbs:    r.FloatOr("total_carbs", 0),
		Fats:     r.FloatOr("total_fats", 0),
		Meals:    r.IntOr("meals_count", 0),
	}, nil
}
