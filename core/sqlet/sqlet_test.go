package sqlet

import (
	"errors"
	"path/filepath"
	"testing"
)

func testConn(t *testing.T) *Conn {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func mustRun(t *testing.T, c *Conn, sql string, args ...any) {
	t.Helper()

	if err := c.Run(sql, args...); err != nil {
		t.Fatalf("run %q: %v", sql, err)
	}
}

func countRows(t *testing.T, c *Conn, sql string) int64 {
	t.Helper()

	stmt, err := c.Execute(sql)
	if err != nil {
		t.Fatalf("execute %q: %v", sql, err)
	}
	defer stmt.Finalize()

	row, err := stmt.Step()
	if err != nil {
		t.Fatalf("step %q: %v", sql, err)
	}
	if !row {
		t.Fatalf("no row from %q", sql)
	}

	n, err := Get[int64](stmt, 0)
	if err != nil {
		t.Fatalf("get count: %v", err)
	}
	return n
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := c.Run("create table t (x integer)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := Open(path, OpenReadOnly)
	if err == nil {
		t.Fatal("expected error opening missing file read-only")
	}
	if !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}

func TestOpenFlagsCompose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.db")

	c, err := Open(path, OpenReadWrite, OpenCreate, OpenFullMutex)
	if err != nil {
		t.Fatalf("failed to open with composed flags: %v", err)
	}
	defer c.Close()

	mustRun(t, c, "create table t (x integer)")
}

func TestPrepareCompileError(t *testing.T) {
	c := testConn(t)

	_, err := c.Prepare("definitely not sql")
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !errors.Is(err, ErrCompile) {
		t.Errorf("expected ErrCompile, got %v", err)
	}
}

func TestExecuteReturnsUnstepped(t *testing.T) {
	c := testConn(t)
	mustRun(t, c, "create table t (x integer)")
	mustRun(t, c, "insert into t values (1), (2)")

	stmt, err := c.Execute("select x from t where x > ?", 0)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	defer stmt.Finalize()

	// The statement must not have been stepped: both rows are still ahead.
	var got []int64
	for {
		row, err := stmt.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if !row {
			break
		}
		v, err := Get[int64](stmt, 0)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestRunDiscardsRows(t *testing.T) {
	c := testConn(t)
	mustRun(t, c, "create table t (x integer)")
	mustRun(t, c, "insert into t values (1)")

	// A row-producing statement must still run to completion.
	if err := c.Run("select x from t"); err != nil {
		t.Fatalf("run select: %v", err)
	}
}

func TestExecutionErrorKind(t *testing.T) {
	c := testConn(t)
	mustRun(t, c, "create table t (x integer primary key)")
	mustRun(t, c, "insert into t values (1)")

	err := c.Run("insert into t values (1)")
	if err == nil {
		t.Fatal("expected constraint violation")
	}
	if !errors.Is(err, ErrExec) {
		t.Errorf("expected ErrExec, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	c := testConn(t)

	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
