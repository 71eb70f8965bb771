package sqlet

import (
	"fmt"

	"github.com/FocuswithJustin/sqlet/core/sqlet/internal/engine"
)

// Stmt is one compiled statement. It is either live (holds a statement
// handle) or empty (finalized); only Finalize is valid on an empty Stmt.
//
// The cursor state machine is: Ready (before first row) → Step → HasRow or
// Exhausted; once Exhausted, Step keeps returning false without touching the
// engine until Reset. Raw SQLite would restart the query on a step past
// DONE, which is never what a caller iterating a cursor wants.
type Stmt struct {
	eng  *engine.Stmt
	done bool
}

// Bind attaches v at the 0-based parameter index. Accepted types are int,
// int32, int64, float64, string, []byte and nil. Text and blob values are
// copied on bind, so the caller's bytes carry no lifetime obligation.
// Rebinding an index overwrites the prior value.
func (s *Stmt) Bind(index int, v any) error {
	pos := index + 1 // SQLite parameters are 1-based

	var err error
	switch x := v.(type) {
	case nil:
		err = s.eng.BindNull(pos)
	case int32:
		err = s.eng.BindInt32(pos, x)
	case int:
		err = s.eng.BindInt64(pos, int64(x))
	case int64:
		err = s.eng.BindInt64(pos, x)
	case float64:
		err = s.eng.BindDouble(pos, x)
	case string:
		err = s.eng.BindText(pos, x)
	case []byte:
		err = s.eng.BindBlob(pos, x)
	default:
		return fmt.Errorf("%w: cannot bind value of type %T", ErrMisuse, v)
	}
	if err != nil {
		return fmt.Errorf("%w: bind index %d: %w", ErrMisuse, index, err)
	}
	return nil
}

// BindAll binds vals at positions 0..len(vals)-1. On failure the statement
// is left partially bound; Reset it before reuse.
func (s *Stmt) BindAll(vals ...any) error {
	for i, v := range vals {
		if err := s.Bind(i, v); err != nil {
			return err
		}
	}
	return nil
}

// Reset rewinds the cursor to before the first row and clears all parameter
// bindings. Callers must rebind before re-executing.
func (s *Stmt) Reset() error {
	s.done = false
	if err := s.eng.Reset(); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrExec, err)
	}
	return nil
}

// Step advances the cursor. It returns true when a row is available and
// false once the statement is exhausted; further calls keep returning false
// until Reset. Engine failure codes (constraint violations, busy locks,
// misuse) surface as errors wrapping ErrExec.
func (s *Stmt) Step() (bool, error) {
	if s.done {
		return false, nil
	}
	row, err := s.eng.Step()
	if err != nil {
		return false, fmt.Errorf("%w: step: %w", ErrExec, err)
	}
	if !row {
		s.done = true
	}
	return row, nil
}

// Finalize releases the statement handle. No-op when already finalized, and
// never fails: release errors only replay what Step already reported.
func (s *Stmt) Finalize() {
	if s.eng != nil {
		s.eng.Finalize()
		s.eng = nil
	}
}
