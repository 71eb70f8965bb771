package sqlet

import (
	"errors"
	"fmt"
	"strconv"
)

// Atomic runs fn inside a savepoint scope. If fn returns nil the savepoint
// is released, folding its effects into the enclosing scope (or the database
// when outermost). If fn returns an error the scope's writes are rolled back
// and the same error is returned.
//
// Scopes nest to arbitrary depth on one Conn: every entry takes a fresh
// number from the connection's scope counter, so an inner rollback never
// disturbs an outer, still-open scope.
//
// Should the compensating rollback itself fail, that failure is joined to
// fn's error rather than discarded; errors.Is sees both and the caller
// decides which to prioritize.
func (c *Conn) Atomic(fn func() error) error {
	name := "s" + strconv.FormatUint(c.scopeSeq, 10)
	c.scopeSeq++

	if err := c.Run("savepoint " + name); err != nil {
		return err
	}

	if err := fn(); err != nil {
		if rbErr := c.rollbackTo(name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback savepoint %s: %w", name, rbErr))
		}
		return err
	}

	return c.Run("release savepoint " + name)
}

// rollbackTo discards the scope's writes, then releases the savepoint so its
// name leaves the transaction stack.
func (c *Conn) rollbackTo(name string) error {
	if err := c.Run("rollback transaction to savepoint " + name); err != nil {
		return err
	}
	return c.Run("release savepoint " + name)
}
