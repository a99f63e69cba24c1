package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectIDHexRoundTrip(t *testing.T) {
	id := NewObjectID()

	parsed, err := ObjectIDFromHex(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Len(t, id.Hex(), 24)
	assert.False(t, id.IsZero())
}

func TestObjectIDUnique(t *testing.T) {
	seen := make(map[ObjectID]bool)
	for i := 0; i < 1000; i++ {
		id := NewObjectID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestObjectIDTimestamp(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id := NewObjectIDFromTime(at)

	assert.Equal(t, at, id.Timestamp())
}

func TestObjectIDFromHexRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "app_settings", "6123456789abcdef0123456", "zz23456789abcdef01234567"} {
		t.Run(s, func(t *testing.T) {
			_, err := ObjectIDFromHex(s)
			assert.ErrorIs(t, err, ErrInvalidIdentity)
		})
	}
}

func TestMustObjectIDPanics(t *testing.T) {
	assert.Panics(t, func() { MustObjectID("nope") })
}

func TestCoerceIdentity(t *testing.T) {
	hex := "7123456789abcdef01234567"

	got, err := CoerceIdentity(String(hex))
	require.NoError(t, err)
	assert.Equal(t, MustObjectID(hex), got)

	got, err = CoerceIdentity(Int(7))
	require.NoError(t, err)
	assert.Equal(t, Int(7), got)

	_, err = CoerceIdentity(String("not-an-id"))
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestIdentityAlternatives(t *testing.T) {
	hex := "7123456789abcdef01234567"

	assert.Equal(t, []Value{String(hex), MustObjectID(hex)}, IdentityAlternatives(String(hex)))
	assert.Equal(t, []Value{String("app_settings")}, IdentityAlternatives(String("app_settings")))
	assert.Equal(t, []Value{Array{Int(1)}}, IdentityAlternatives(Array{Int(1)}))
}
