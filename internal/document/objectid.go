package document

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// IDField is the identity field every record carries.
const IDField = "_id"

// ObjectID is the opaque 12-byte identifier assigned to records inserted
// without an identity. Layout:
//
//	[0:4]  big-endian unix seconds
//	[4:9]  per-process random bytes
//	[9:12] big-endian counter, seeded randomly
//
// Its textual form is 24 lowercase hex characters.
type ObjectID [12]byte

func (ObjectID) docValue() {}

var (
	processUnique = readProcessUnique()
	objectIDCount = readCounterSeed()
)

func readProcessUnique() [5]byte {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("cannot initialize objectid process bytes: %w", err))
	}
	return b
}

func readCounterSeed() *atomic.Uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("cannot initialize objectid counter: %w", err))
	}
	c := &atomic.Uint32{}
	c.Store(binary.BigEndian.Uint32(b[:]))
	return c
}

// NewObjectID returns a fresh identifier stamped with the current time.
func NewObjectID() ObjectID {
	return NewObjectIDFromTime(time.Now())
}

// NewObjectIDFromTime returns a fresh identifier stamped with t.
func NewObjectIDFromTime(t time.Time) ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))
	copy(id[4:9], processUnique[:])
	n := objectIDCount.Add(1)
	id[9] = byte(n >> 16)
	id[10] = byte(n >> 8)
	id[11] = byte(n)
	return id
}

// ObjectIDFromHex parses the 24-character hex form.
// Returns an error wrapping ErrInvalidIdentity for anything else.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 2*len(id) {
		return id, fmt.Errorf("%w: %q is not 24 hex characters", ErrInvalidIdentity, s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("%w: %q: %v", ErrInvalidIdentity, s, err)
	}
	return id, nil
}

// MustObjectID parses s and panics on failure. Intended for fixtures.
func MustObjectID(s string) ObjectID {
	id, err := ObjectIDFromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Hex returns the 24-character hex form.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) String() string {
	return fmt.Sprintf("ObjectID(%q)", id.Hex())
}

// Timestamp returns the creation second embedded in the identifier.
func (id ObjectID) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0).UTC()
}

// IsZero reports whether id is the all-zero identifier.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// CoerceIdentity converts an identity argument to the identifier form.
// Strings are parsed as ObjectID hex and fail with ErrInvalidIdentity when
// malformed; every other value is returned unchanged.
func CoerceIdentity(v Value) (Value, error) {
	s, ok := v.(String)
	if !ok {
		return v, nil
	}
	id, err := ObjectIDFromHex(string(s))
	if err != nil {
		return nil, err
	}
	return id, nil
}

// IdentityAlternatives returns every stored identity value a predicate
// argument v should match: v itself and, when v is a string holding a valid
// hex identifier, the ObjectID it parses to.
func IdentityAlternatives(v Value) []Value {
	if _, ok := v.(String); !ok {
		return []Value{v}
	}
	coerced, err := CoerceIdentity(v)
	if err != nil {
		return []Value{v}
	}
	return []Value{v, coerced}
}
