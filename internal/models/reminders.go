package models

import (
	"context"
	"time"

	"github.com/roach88/sweatz/internal/document"
)

// Reminder is a scheduled notification. Type is workout, water, meal and so
// on; an empty Type means "workout".
type Reminder struct {
	Title            string
	Description      string
	DateTime         time.Time
	Type             string
	Recurring        bool
	RecurringPattern string // daily, weekly; empty when not recurring
	Active           bool
}

func (r Reminder) fields() document.Object {
	var pattern document.Value = document.Null{}
	if r.RecurringPattern != "" {
		pattern = document.String(r.RecurringPattern)
	}
	return document.Object{
		"title":             document.String(r.Title),
		"description":       document.String(r.Description),
		"type":              document.String(r.Type),
		"is_recurring":      document.Bool(r.Recurring),
		"recurring_pattern": pattern,
		"is_active":         document.Bool(r.Active),
	}
}

// CreateReminder stores a reminder and returns its id.
func (m *Models) CreateReminder(ctx context.Context, userID string, r Reminder) (string, error) {
	_, uid, err := userFilter(userID)
	if err != nil {
		return "", err
	}
	if r.Type == "" {
		r.Type = "workout"
	}
	record := r.fields()
	record["user_id"] = uid
	record["datetime"] = m.orNow(r.DateTime)
	record["created_at"] = m.now()
	return m.insert(ctx, Reminders, record)
}

// ListReminders returns the user's reminders, soonest first.
func (m *Models) ListReminders(ctx context.Context, userID string) ([]document.Object, error) {
	f, _, err := userFilter(userID)
	if err != nil {
		return nil, err
	}
	return m.find(ctx, Reminders, f, "datetime", 1, 0, 0)
}

// GetReminder returns one reminder.
func (m *Models) GetReminder(ctx context.Context, reminderID string) (document.Object, error) {
	return m.get(ctx, Reminders, reminderID)
}

// UpdateReminder replaces a reminder's fields.
func (m *Models) UpdateReminder(ctx context.Context, reminderID string, r Reminder) (bool, error) {
	fields := r.fields()
	fields["datetime"] = document.NewTime(r.DateTime)
	fields["updated_at"] = m.now()
	return m.set(ctx, Reminders, reminderID, fields)
}

// DeleteReminder removes a reminder.
func (m *Models) DeleteReminder(ctx context.Context, reminderID string) (bool, error) {
	return m.delete(ctx, Reminders, reminderID)
}
