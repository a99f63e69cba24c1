package store

import (
	"errors"

	"github.com/roach88/sweatz/internal/document"
)

var (
	// ErrNotFound reports that FindOne matched nothing.
	ErrNotFound = errors.New("no matching record")

	// ErrInvalidIdentity is document.ErrInvalidIdentity, re-exported for
	// callers that only import store.
	ErrInvalidIdentity = document.ErrInvalidIdentity

	// ErrUnsupportedOperation is document.ErrUnsupportedOperation. Query and
	// pipeline errors for unsupported operators wrap it.
	ErrUnsupportedOperation = document.ErrUnsupportedOperation

	// ErrImmutableIdentity reports an update that would change "_id".
	ErrImmutableIdentity = errors.New("the _id field cannot be changed")

	// ErrDuplicateIdentity reports an insert whose "_id" is already taken.
	ErrDuplicateIdentity = errors.New("duplicate _id")
)

// IsNotFound reports whether err is ErrNotFound or an invalid identity,
// which callers treat the same way.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidIdentity)
}
