package sqlet

import "errors"

// Error kinds. Every error this package returns wraps exactly one of these,
// plus the engine's coded error where one exists, so callers can match the
// kind with errors.Is and still reach the SQLite result code via errors.As
// on the wrapped cause.
var (
	// ErrOpen: the database could not be opened under the requested mode.
	ErrOpen = errors.New("sqlet: open")

	// ErrCompile: SQL text failed to compile.
	ErrCompile = errors.New("sqlet: compile")

	// ErrExec: the engine reported a failure code during execution, e.g. a
	// constraint violation or a busy/locked database.
	ErrExec = errors.New("sqlet: execute")

	// ErrMarshal: a requested result type cannot represent the column, e.g.
	// a blob whose byte length the element size does not divide.
	ErrMarshal = errors.New("sqlet: marshal")

	// ErrMisuse: a stated precondition was violated by the caller, e.g.
	// binding an unsupported type or an out-of-range parameter index.
	ErrMisuse = errors.New("sqlet: misuse")
)
