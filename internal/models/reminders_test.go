package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/fixtures"
	"github.com/roach88/sweatz/internal/store"
)

func TestReminders(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModels(t)

	later, err := m.CreateReminder(ctx, fixtures.UserID, Reminder{Title: "Stretch", DateTime: now.Add(2 * time.Hour), Active: true})
	require.NoError(t, err)
	sooner, err := m.CreateReminder(ctx, fixtures.UserID, Reminder{
		Title: "Drink water", Type: "water", DateTime: now.Add(time.Hour),
		Recurring: true, RecurringPattern: "daily", Active: true,
	})
	require.NoError(t, err)
	_, err = m.CreateReminder(ctx, fixtures.AdminID, Reminder{Title: "Admin only"})
	require.NoError(t, err)

	list, err := m.ListReminders(ctx, fixtures.UserID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Drink water", list[0].StringOr("title", ""))
	assert.Equal(t, "Stretch", list[1].StringOr("title", ""))
	assert.Equal(t, "workout", list[1].StringOr("type", ""))
	assert.Equal(t, document.Null{}, list[1]["recurring_pattern"])

	ok, err := m.UpdateReminder(ctx, sooner, Reminder{Title: "Drink more water", Type: "water", DateTime: now, Active: false})
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := m.GetReminder(ctx, sooner)
	require.NoError(t, err)
	assert.Equal(t, "Drink more water", r.StringOr("title", ""))
	assert.False(t, r.BoolOr("is_active", true))

	ok, err = m.DeleteReminder(ctx, later)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.GetReminder(ctx, later)
	assert.True(t, store.IsNotFound(err))
}
