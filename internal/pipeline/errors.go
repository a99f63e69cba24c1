package pipeline

import (
	"errors"
	"fmt"

	"github.com/roach88/sweatz/internal/document"
)

var (
	// ErrUnsupportedOperation reports a stage, accumulator or expression
	// operator outside the emulated subset. It wraps
	// document.ErrUnsupportedOperation.
	ErrUnsupportedOperation = fmt.Errorf("aggregation: %w", document.ErrUnsupportedOperation)

	// ErrInvalidPipeline reports a stage with a malformed argument.
	ErrInvalidPipeline = errors.New("invalid pipeline")
)
