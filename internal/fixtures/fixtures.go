// Package fixtures builds the seed data a new store starts with and loads
// extra records from YAML, JSON or CUE files.
package fixtures

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/sweatz/internal/clock"
	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/store"
)

// Set maps collection names to records. A name with no records still
// creates the collection when applied.
type Set map[string][]document.Object

// Collections returns the set's collection names, sorted.
func (s Set) Collections() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Merge appends other's records to s, collection by collection.
func (s Set) Merge(other Set) {
	for name, records := range other {
		s[name] = append(s[name], records...)
	}
}

// Len returns the total number of records.
func (s Set) Len() int {
	n := 0
	for _, records := range s {
		n += len(records)
	}
	return n
}

// Apply inserts every record of set into db, collections in name order, and
// returns how many records were inserted.
func Apply(ctx context.Context, db store.Database, set Set) (int, error) {
	inserted := 0
	for _, name := range set.Collections() {
		coll := db.Collection(name)
		if len(set[name]) == 0 {
			continue
		}
		res, err := coll.InsertMany(ctx, set[name])
		if res != nil {
			inserted += len(res.InsertedIDs)
		}
		if err != nil {
			return inserted, fmt.Errorf("failed to apply fixtures to %s: %w", name, err)
		}
	}
	return inserted, nil
}

// Well-known seed identities.
const (
	AdminID        = "6123456789abcdef01234567"
	UserID         = "7123456789abcdef01234567"
	SettingsID     = "app_settings"
	SampleCount    = 19
	samplePassword = "pbkdf2:sha256:150000$x7QZ9cNT$5b2491202c8a61cc38aa43db4d9c0d602dedb42cd8969ba4422c040f46d59303"
)

// Collections the application expects to exist.
var appCollections = []string{
	"users", "meals", "water_intake", "nutrition_goals",
	"weight_logs", "body_measurements", "body_composition", "progress_photos", "body_goals",
	"exercises", "workout_routines", "scheduled_workouts", "completed_workouts",
	"reminders", "settings",
}

var (
	muscleGroups = []string{"Chest", "Back", "Shoulders", "Arms", "Legs", "Core", "Full Body", "Cardio"}
	difficulties = []string{"beginner", "intermediate", "advanced"}
)

// Default returns the development seed: application settings, an admin
// and a regular user, and SampleCount sample exercises. Timestamps that
// track "now" come from clk. Exercises carry no "_id"; the store assigns
// one on insert.
func Default(clk clock.Clock) Set {
	set := make(Set, len(appCollections))
	for _, name := range appCollections {
		set[name] = []document.Object{}
	}

	set["settings"] = append(set["settings"], document.Object{
		"_id":                  document.String(SettingsID),
		"maintenance_mode":     document.Bool(false),
		"allow_registrations":  document.Bool(true),
		"default_subscription": document.String("free"),
		"app_version":          document.String("1.0.0"),
		"last_updated":         document.NewTime(clk.Now()),
	})

	set["users"] = append(set["users"],
		user(AdminID, "admin", "Admin", date(2024, 1, 1), true, "admin", "admin"),
		user(UserID, "user", "Regular", date(2024, 2, 1), false, "user", "free"),
	)

	for i := 1; i <= SampleCount; i++ {
		set["exercises"] = append(set["exercises"], exercise(i, clk.Now()))
	}
	return set
}

func user(id, username, firstName string, created time.Time, superuser bool, role, tier string) document.Object {
	return document.Object{
		"_id":               document.MustObjectID(id),
		"username":          document.String(username),
		"email":             document.String(username + "@example.com"),
		"password_hash":     document.String(samplePassword),
		"first_name":        document.String(firstName),
		"last_name":         document.String("User"),
		"created_at":        document.NewTime(created),
		"last_login":        document.NewTime(date(2025, 5, 1)),
		"is_active":         document.Bool(true),
		"is_superuser":      document.Bool(superuser),
		"role":              document.String(role),
		"subscription_tier": document.String(tier),
	}
}

func exercise(i int, now time.Time) document.Object {
	equipment := document.Array{document.String("bodyweight")}
	if i%2 == 0 {
		equipment = document.Array{document.String("barbell"), document.String("dumbbell")}
	}
	return document.Object{
		"name":         document.String(fmt.Sprintf("Sample Exercise %d", i)),
		"description":  document.String(fmt.Sprintf("This is a sample exercise description for exercise %d.", i)),
		"muscle_group": document.String(muscleGroups[(i-1)%len(muscleGroups)]),
		"difficulty":   document.String(difficulties[(i-1)%len(difficulties)]),
		"instruction":  document.String(fmt.Sprintf("Step 1. Do this.\nStep 2. Do that.\nStep 3. Complete set for exercise %d.", i)),
		"video_url":    document.String(fmt.Sprintf("https://www.youtube.com/watch?v=sample%d", i)),
		"equipment":    equipment,
		"created_at":   document.NewTime(now),
		"created_by":   document.String(AdminID),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
