package query

import (
	"errors"
	"fmt"

	"github.com/roach88/sweatz/internal/document"
)

var (
	// ErrUnsupportedOperation reports a query operator outside the emulated
	// subset. It wraps document.ErrUnsupportedOperation.
	ErrUnsupportedOperation = fmt.Errorf("query operator: %w", document.ErrUnsupportedOperation)

	// ErrInvalidFilter reports a filter document with the wrong shape, such
	// as $in with a non-array argument.
	ErrInvalidFilter = errors.New("invalid filter")
)
