package store

import (
	"github.com/google/uuid"

	"github.com/roach88/sweatz/internal/document"
)

// IDGenerator produces identities for records inserted without "_id".
type IDGenerator interface {
	Generate() document.Value
}

// ObjectIDGenerator generates fresh ObjectIDs, the database's default
// identity type.
//
// Thread-safety: ObjectIDGenerator is stateless and safe for concurrent use.
type ObjectIDGenerator struct{}

// Generate returns a new ObjectID stamped with the current time.
func (ObjectIDGenerator) Generate() document.Value {
	return document.NewObjectID()
}

// UUIDv7Generator generates time-sortable UUIDv7 strings.
//
// Format: "0190b6c4-8a2e-7d3c-9f4e-3b2a1c0d9e8f" (36 characters)
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() document.Value {
	return document.String(uuid.Must(uuid.NewV7()).String())
}

// GeneratorFor returns the generator for an identity scheme name:
// "objectid" (or "") and "uuid".
func GeneratorFor(scheme string) (IDGenerator, bool) {
	switch scheme {
	case "", "objectid":
		return ObjectIDGenerator{}, true
	case "uuid":
		return UUIDv7Generator{}, true
	}
	return nil, false
}
