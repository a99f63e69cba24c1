package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sweatz/internal/fixtures"
	"github.com/roach88/sweatz/internal/store"
	"github.com/roach88/sweatz/internal/testutil"
)

// now is the fixed clock reading every test sees.
var now = time.Date(2025, 5, 10, 15, 30, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return now }

// setupModels returns Models over a store seeded with the default fixtures.
func setupModels(t *testing.T) (*Models, *store.Store) {
	t.Helper()
	s := store.New(store.WithIDGenerator(testutil.NewSequentialIDGenerator(time.Time{})))
	_, err := fixtures.Apply(context.Background(), s, fixtures.Default(fixedClock{}))
	require.NoError(t, err)
	return New(s, fixedClock{}), s
}

func ptr(f float64) *float64 { return &f }
