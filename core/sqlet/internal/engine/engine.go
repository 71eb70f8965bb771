// Package engine drives the transpiled SQLite C API from modernc.org/sqlite/lib.
//
// It owns the two native handle kinds (sqlite3* and sqlite3_stmt*) and exposes
// the primitive operations the typed layer above is built on: open/close,
// prepare/finalize, bind, step and column reads. Nothing here interprets
// values; coercion between column storage classes is left to SQLite itself.
package engine

import (
	"fmt"
	"unsafe"

	"modernc.org/libc"
	"modernc.org/libc/sys/types"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open mode flags, bitwise-composable. Values are SQLite's own.
const (
	OpenReadOnly     = int32(sqlite3.SQLITE_OPEN_READONLY)
	OpenReadWrite    = int32(sqlite3.SQLITE_OPEN_READWRITE)
	OpenCreate       = int32(sqlite3.SQLITE_OPEN_CREATE)
	OpenNoMutex      = int32(sqlite3.SQLITE_OPEN_NOMUTEX)
	OpenFullMutex    = int32(sqlite3.SQLITE_OPEN_FULLMUTEX)
	OpenSharedCache  = int32(sqlite3.SQLITE_OPEN_SHAREDCACHE)
	OpenPrivateCache = int32(sqlite3.SQLITE_OPEN_PRIVATECACHE)
	OpenURI          = int32(sqlite3.SQLITE_OPEN_URI)
)

// Column type tags as reported by sqlite3_column_type.
const (
	TypeInteger = int(sqlite3.SQLITE_INTEGER)
	TypeFloat   = int(sqlite3.SQLITE_FLOAT)
	TypeText    = int(sqlite3.SQLITE_TEXT)
	TypeBlob    = int(sqlite3.SQLITE_BLOB)
	TypeNull    = int(sqlite3.SQLITE_NULL)
)

const ptrSize = unsafe.Sizeof(uintptr(0))

// Conn holds one sqlite3* handle and the libc thread state it was created on.
// The handle is exclusively owned; after Close it is zero and all further
// operations except Close are invalid.
type Conn struct {
	tls *libc.TLS
	db  uintptr
}

// Open opens or creates the database at path with the given flag bitset.
func Open(path string, flags int32) (*Conn, error) {
	c := &Conn{tls: libc.NewTLS()}
	db, err := c.openV2(path, flags)
	if err != nil {
		c.tls.Close()
		c.tls = nil
		return nil, err
	}
	c.db = db
	return c, nil
}

func (c *Conn) openV2(path string, flags int32) (uintptr, error) {
	var p, s uintptr

	defer func() {
		c.free(p)
		c.free(s)
	}()

	p, err := c.malloc(int(ptrSize))
	if err != nil {
		return 0, err
	}

	if s, err = libc.CString(path); err != nil {
		return 0, err
	}

	if rc := sqlite3.Xsqlite3_open_v2(c.tls, s, p, flags, 0); rc != sqlite3.SQLITE_OK {
		// A handle may be returned even on failure; release it.
		if db := *(*uintptr)(unsafe.Pointer(p)); db != 0 {
			sqlite3.Xsqlite3_close_v2(c.tls, db)
		}
		return 0, c.errstr(rc)
	}

	return *(*uintptr)(unsafe.Pointer(p)), nil
}

// Close releases the connection handle. It is a no-op on an already closed
// Conn and never fails on one.
func (c *Conn) Close() error {
	if c.db != 0 {
		if rc := sqlite3.Xsqlite3_close_v2(c.tls, c.db); rc != sqlite3.SQLITE_OK {
			return c.errstr(rc)
		}
		c.db = 0
	}
	if c.tls != nil {
		c.tls.Close()
		c.tls = nil
	}
	return nil
}

// Prepare compiles sql into a new statement handle. Multi-statement text is
// not supported; only the first statement is compiled and any trailing text
// is ignored. Comment-only or empty text is an error.
func (c *Conn) Prepare(sql string) (*Stmt, error) {
	zsql, err := libc.CString(sql)
	if err != nil {
		return nil, err
	}
	defer c.free(zsql)

	ppstmt, err := c.malloc(int(ptrSize))
	if err != nil {
		return nil, err
	}
	defer c.free(ppstmt)

	if rc := sqlite3.Xsqlite3_prepare_v2(c.tls, c.db, zsql, -1, ppstmt, 0); rc != sqlite3.SQLITE_OK {
		return nil, c.errstr(rc)
	}

	pstmt := *(*uintptr)(unsafe.Pointer(ppstmt))
	if pstmt == 0 {
		return nil, fmt.Errorf("engine: no statement in %q", sql)
	}
	return &Stmt{c: c, pstmt: pstmt}, nil
}

func (c *Conn) malloc(n int) (uintptr, error) {
	if p := libc.Xmalloc(c.tls, types.Size_t(n)); p != 0 || n == 0 {
		return p, nil
	}
	return 0, fmt.Errorf("engine: cannot allocate %d bytes of memory", n)
}

func (c *Conn) free(p uintptr) {
	if p != 0 {
		libc.Xfree(c.tls, p)
	}
}

// errstr builds an Error from a result code, folding in sqlite3_errmsg when
// it adds information beyond sqlite3_errstr.
func (c *Conn) errstr(rc int32) error {
	p := sqlite3.Xsqlite3_errstr(c.tls, rc)
	str := libc.GoString(p)
	var msg string
	if c.db != 0 {
		msg = libc.GoString(sqlite3.Xsqlite3_errmsg(c.tls, c.db))
	}
	if msg == "" || msg == str {
		return &Error{msg: fmt.Sprintf("%s (%v)", str, rc), code: int(rc)}
	}
	return &Error{msg: fmt.Sprintf("%s: %s (%v)", str, msg, rc), code: int(rc)}
}

// Stmt holds one sqlite3_stmt* handle. Zero pstmt means empty (finalized or
// moved-from); only Finalize is valid on an empty Stmt.
type Stmt struct {
	c     *Conn
	pstmt uintptr
}

// Finalize releases the statement handle. No-op when already finalized.
// Finalization errors report the last failed step and are deliberately
// dropped here; Step has already surfaced them.
func (s *Stmt) Finalize() {
	if s.pstmt != 0 {
		sqlite3.Xsqlite3_finalize(s.c.tls, s.pstmt)
		s.pstmt = 0
	}
}

// Reset rewinds the statement to before its first row and clears all
// parameter bindings.
func (s *Stmt) Reset() error {
	if rc := sqlite3.Xsqlite3_reset(s.c.tls, s.pstmt); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	if rc := sqlite3.Xsqlite3_clear_bindings(s.c.tls, s.pstmt); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	return nil
}

// Step advances the cursor. It reports (true, nil) when a row is available,
// (false, nil) on completion and an error for every other result code.
func (s *Stmt) Step() (bool, error) {
	switch rc := sqlite3.Xsqlite3_step(s.c.tls, s.pstmt); rc {
	case sqlite3.SQLITE_ROW:
		return true, nil
	case sqlite3.SQLITE_DONE:
		return false, nil
	default:
		return false, s.c.errstr(rc)
	}
}

// BindInt32 binds v at the 1-based position pos.
func (s *Stmt) BindInt32(pos int, v int32) error {
	if rc := sqlite3.Xsqlite3_bind_int(s.c.tls, s.pstmt, int32(pos), v); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	return nil
}

// BindInt64 binds v at the 1-based position pos.
func (s *Stmt) BindInt64(pos int, v int64) error {
	if rc := sqlite3.Xsqlite3_bind_int64(s.c.tls, s.pstmt, int32(pos), v); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	return nil
}

// BindDouble binds v at the 1-based position pos.
func (s *Stmt) BindDouble(pos int, v float64) error {
	if rc := sqlite3.Xsqlite3_bind_double(s.c.tls, s.pstmt, int32(pos), v); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	return nil
}

// BindText binds v at the 1-based position pos. SQLite takes its own copy
// (SQLITE_TRANSIENT), so the caller-side bytes carry no lifetime obligation.
func (s *Stmt) BindText(pos int, v string) error {
	p, err := libc.CString(v)
	if err != nil {
		return err
	}
	defer s.c.free(p)

	if rc := sqlite3.Xsqlite3_bind_text(s.c.tls, s.pstmt, int32(pos), p, int32(len(v)), sqlite3.SQLITE_TRANSIENT); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	return nil
}

// BindBlob binds v at the 1-based position pos, copy-on-bind like BindText.
// An empty or nil slice binds a zero-length blob, not NULL.
func (s *Stmt) BindBlob(pos int, v []byte) error {
	if len(v) == 0 {
		if rc := sqlite3.Xsqlite3_bind_zeroblob(s.c.tls, s.pstmt, int32(pos), 0); rc != sqlite3.SQLITE_OK {
			return s.c.errstr(rc)
		}
		return nil
	}

	p, err := s.c.malloc(len(v))
	if err != nil {
		return err
	}
	defer s.c.free(p)
	copy((*libc.RawMem)(unsafe.Pointer(p))[:len(v):len(v)], v)

	if rc := sqlite3.Xsqlite3_bind_blob(s.c.tls, s.pstmt, int32(pos), p, int32(len(v)), sqlite3.SQLITE_TRANSIENT); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	return nil
}

// BindNull binds SQL NULL at the 1-based position pos.
func (s *Stmt) BindNull(pos int) error {
	if rc := sqlite3.Xsqlite3_bind_null(s.c.tls, s.pstmt, int32(pos)); rc != sqlite3.SQLITE_OK {
		return s.c.errstr(rc)
	}
	return nil
}

// ColumnType reports the storage class tag of column i in the current row.
func (s *Stmt) ColumnType(i int) int {
	return int(sqlite3.Xsqlite3_column_type(s.c.tls, s.pstmt, int32(i)))
}

// ColumnInt32 reads column i as a 32-bit integer.
func (s *Stmt) ColumnInt32(i int) int32 {
	return sqlite3.Xsqlite3_column_int(s.c.tls, s.pstmt, int32(i))
}

// ColumnInt64 reads column i as a 64-bit integer.
func (s *Stmt) ColumnInt64(i int) int64 {
	return sqlite3.Xsqlite3_column_int64(s.c.tls, s.pstmt, int32(i))
}

// ColumnDouble reads column i as a float.
func (s *Stmt) ColumnDouble(i int) float64 {
	return sqlite3.Xsqlite3_column_double(s.c.tls, s.pstmt, int32(i))
}

// ColumnBytes reports the byte length of column i in its current
// representation. Call after ColumnText/ColumnBlob, as those may convert.
func (s *Stmt) ColumnBytes(i int) int {
	return int(sqlite3.Xsqlite3_column_bytes(s.c.tls, s.pstmt, int32(i)))
}

// ColumnText reads column i as text and returns an owned copy of exactly the
// reported byte length.
func (s *Stmt) ColumnText(i int) string {
	p := sqlite3.Xsqlite3_column_text(s.c.tls, s.pstmt, int32(i))
	n := s.ColumnBytes(i)
	if p == 0 || n == 0 {
		return ""
	}
	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return string(b)
}

// ColumnTextRaw reads column i as text and returns a view aliasing SQLite's
// buffer. The view is invalidated by the next Step, Reset or Finalize on
// this statement.
func (s *Stmt) ColumnTextRaw(i int) []byte {
	p := sqlite3.Xsqlite3_column_text(s.c.tls, s.pstmt, int32(i))
	n := s.ColumnBytes(i)
	if p == 0 || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// ColumnBlob reads column i as a blob and returns an owned copy.
func (s *Stmt) ColumnBlob(i int) []byte {
	p := sqlite3.Xsqlite3_column_blob(s.c.tls, s.pstmt, int32(i))
	n := s.ColumnBytes(i)
	if p == 0 || n == 0 {
		return nil
	}
	b := make([]byte, n)
	copy(b, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	return b
}

// ColumnBlobRaw reads column i as a blob view aliasing SQLite's buffer, with
// the same validity window as ColumnTextRaw.
func (s *Stmt) ColumnBlobRaw(i int) []byte {
	p := sqlite3.Xsqlite3_column_blob(s.c.tls, s.pstmt, int32(i))
	n := s.ColumnBytes(i)
	if p == 0 || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}
