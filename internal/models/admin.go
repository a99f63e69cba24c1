package models

import (
	"context"
	"time"

	"github.com/roach88/sweatz/internal/clock"
	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/store"
)

// SettingsID is the identity of the single application settings record.
const SettingsID = "app_settings"

// DashboardStats are the admin overview counts.
type DashboardStats struct {
	TotalUsers     int64
	ActiveUsers    int64
	TotalWorkouts  int64
	TotalExercises int64
	NewUsersWeek   int64
}

// TierCount is the number of users on one subscription tier.
type TierCount struct {
	Tier  string
	Count int64
}

// DayCount is the number of signups on one day, formatted YYYY-MM-DD.
type DayCount struct {
	Date  string
	Count int64
}

// DashboardStats counts users, workouts and exercises, and users created
// in the last seven days.
func (m *Models) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var (
		stats DashboardStats
		err   error
	)
	weekAgo := document.NewTime(m.clock.Now().Add(-7 * 24 * time.Hour))
	counts := []struct {
		dst        *int64
		collection string
		filter     document.Object
	}{
		{&stats.TotalUsers, Users, nil},
		{&stats.ActiveUsers, Users, document.Object{"is_active": document.Bool(true)}},
		{&stats.TotalWorkouts, CompletedWorkouts, nil},
		{&stats.TotalExercises, Exercises, nil},
		{&stats.NewUsersWeek, Users, document.Object{"created_at": document.Object{"$gte": weekAgo}}},
	}
	for _, c := range counts {
		*c.dst, err = m.db.Collection(c.collection).CountDocuments(ctx, c.filter)
		if err != nil {
			return DashboardStats{}, err
		}
	}
	return stats, nil
}

// SubscriptionDistribution counts users per subscription tier, largest
// first.
func (m *Models) SubscriptionDistribution(ctx context.Context) ([]TierCount, error) {
	out, err := m.db.Collection(Users).Aggregate(ctx, []document.Object{
		{"$group": document.Object{
			"_id":   document.String("$subscription_tier"),
			"count": document.Object{"$sum": document.Int(1)},
		}},
		{"$sort": document.Object{"count": document.Int(-1)}},
	})
	if err != nil {
		return nil, err
	}
	tiers := make([]TierCount, 0, len(out))
	for _, r := range out {
		tiers = append(tiers, TierCount{Tier: r.StringOr("_id", ""), Count: r.IntOr("count", 0)})
	}
	return tiers, nil
}

// RecentUsers returns the n most recently created users.
func (m *Models) RecentUsers(ctx context.Context, n int64) ([]document.Object, error) {
	return m.find(ctx, Users, nil, "created_at", -1, 0, n)
}

// SignupsPerDay counts users created on each of the last days days,
// oldest first. Days without signups are reported with a zero count.
func (m *Models) SignupsPerDay(ctx context.Context, days int) ([]DayCount, error) {
	start := m.clock.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	out, err := m.db.Collection(Users).Aggregate(ctx, []document.Object{
		{"$match": document.Object{"created_at": document.Object{"$gte": document.NewTime(start)}}},
		{"$group": document.Object{
			"_id": document.Object{"$dateToString": document.Object{
				"format": document.String("%Y-%m-%d"),
				"date":   document.String("$created_at"),
			}},
			"count": document.Object{"$sum": document.Int(1)},
		}},
		{"$sort": document.Object{"_id": document.Int(1)}},
	})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int64, len(out))
	for _, r := range out {
		byDate[r.StringOr("_id", "")] = r.IntOr("count", 0)
	}
	series := make([]DayCount, days)
	day := clock.StartOfDay(start)
	for i := range series {
		date := day.AddDate(0, 0, i).Format(time.DateOnly)
		series[i] = DayCount{Date: date, Count: byDate[date]}
	}
	return series, nil
}

// AppSettings returns the application settings record.
func (m *Models) AppSettings(ctx context.Context) (document.Object, error) {
	return m.db.Collection(Settings).FindOne(ctx, document.Object{document.IDField: document.String(SettingsID)})
}

// UpdateAppSettings merges fields into the settings record, creating it if
// needed, and stamps last_updated.
func (m *Models) UpdateAppSettings(ctx context.Context, fields document.Object) error {
	set := fields.Clone()
	if set == nil {
		set = document.Object{}
	}
	delete(set, document.IDField)
	set["last_updated"] = m.now()
	_, err := m.db.Collection(Settings).UpdateOne(ctx,
		document.Object{document.IDField: document.String(SettingsID)},
		document.Object{"$set": set},
		store.Upsert(true),
	)
	return err
}
