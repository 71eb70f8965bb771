// Package sqlet is a thin typed layer over SQLite's row/column API.
//
// It does three things: it owns and releases the native connection and
// statement handles deterministically, it converts between Go values and
// SQLite's dynamically typed columns at the call site via type-directed
// loaders (see Get, Row2 and friends), and it provides nestable atomic
// scopes built on savepoints (see Conn.Atomic).
//
// The package is strictly single-threaded per connection: a Conn and the
// Stmts prepared from it belong to one logical owner and must be used in
// program order. SQLite's own mutex modes (OpenFullMutex, OpenNoMutex) can
// be layered on via open flags, but this package adds no locking of its own.
//
// There is no query planning, pooling, or retry logic here; errors propagate
// to the caller, tagged with one of the Err* sentinels in this package.
package sqlet

import (
	"fmt"

	"github.com/FocuswithJustin/sqlet/core/sqlet/internal/engine"
)

// Conn is one open database handle. The zero value is not usable; obtain a
// Conn from Open. A Conn must outlive every Stmt prepared from it.
type Conn struct {
	eng *engine.Conn

	// scopeSeq numbers savepoint scopes. Monotonic for the lifetime of the
	// Conn, never reused, so nested scopes cannot collide.
	scopeSeq uint64
}

// Open opens or creates the database at path. With no flags the mode is
// OpenReadWrite|OpenCreate; otherwise the given flags are OR-ed together and
// used as-is.
func Open(path string, flags ...OpenFlag) (*Conn, error) {
	mode := OpenReadWrite | OpenCreate
	if len(flags) > 0 {
		mode = 0
		for _, f := range flags {
			mode |= f
		}
	}

	eng, err := engine.Open(path, int32(mode))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrOpen, path, err)
	}
	return &Conn{eng: eng}, nil
}

// Close releases the connection handle. Safe to call more than once; all
// statements prepared from this Conn must be finalized first.
func (c *Conn) Close() error {
	if c.eng == nil {
		return nil
	}
	err := c.eng.Close()
	c.eng = nil
	return err
}

// Prepare compiles sql into a Stmt. The caller owns the returned statement
// and must Finalize it.
func (c *Conn) Prepare(sql string) (*Stmt, error) {
	if c.eng == nil {
		return nil, fmt.Errorf("%w: prepare on closed connection", ErrMisuse)
	}
	es, err := c.eng.Prepare(sql)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrCompile, sql, err)
	}
	return &Stmt{eng: es}, nil
}

// Execute prepares sql and binds args at positions 0..n-1, returning the
// bound statement without stepping it. The caller steps and finalizes it.
func (c *Conn) Execute(sql string, args ...any) (*Stmt, error) {
	stmt, err := c.Prepare(sql)
	if err != nil {
		return nil, err
	}
	if err := stmt.Reset(); err != nil {
		stmt.Finalize()
		return nil, err
	}
	if err := stmt.BindAll(args...); err != nil {
		stmt.Finalize()
		return nil, err
	}
	return stmt, nil
}

// Run prepares sql, binds args, steps the statement to completion and
// finalizes it. Any produced rows are discarded. This is the convenience for
// DDL and writes; use Execute or Prepare when rows matter.
func (c *Conn) Run(sql string, args ...any) error {
	stmt, err := c.Execute(sql, args...)
	if err != nil {
		return err
	}
	defer stmt.Finalize()

	for {
		row, err := stmt.Step()
		if err != nil {
			return err
		}
		if !row {
			return nil
		}
	}
}
