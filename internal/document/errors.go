package document

import "errors"

var (
	// ErrInvalidIdentity reports an identity string that cannot be parsed
	// into an ObjectID. Callers recover it as "not found".
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrUnsupportedOperation reports a query operator, update operator or
	// aggregation stage outside the emulated subset. It is never recovered
	// locally: a silent gap would corrupt test expectations.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrUnsupportedType reports a Go value FromGo cannot represent.
	ErrUnsupportedType = errors.New("unsupported value type")
)
