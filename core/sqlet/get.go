package sqlet

import (
	"fmt"
	"unsafe"

	"github.com/FocuswithJustin/sqlet/core/sqlet/internal/engine"
)

// TextView is text aliasing SQLite's internal buffer instead of an owned
// copy. A view is valid only until the next Step, Reset or Finalize on the
// statement it was read from; retaining it past that is caller misuse and is
// not detected at runtime. Prefer string unless the copy matters.
type TextView []byte

func (v TextView) String() string { return string(v) }

// BlobView is a raw byte span aliasing SQLite's internal buffer, with the
// same validity window as TextView.
type BlobView []byte

// Null wraps any loadable type T and is absent exactly when the column's
// engine-reported type is NULL. When absent, T's loader is not invoked.
type Null[T any] struct {
	V     T
	Valid bool
}

func (n *Null[T]) loadColumn(s *Stmt, index int) error {
	if s.eng.ColumnType(index) == engine.TypeNull {
		*n = Null[T]{}
		return nil
	}
	v, err := Get[T](s, index)
	if err != nil {
		return err
	}
	*n = Null[T]{V: v, Valid: true}
	return nil
}

// Scalar constrains blob element types to fixed-size machine types.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Blob decodes a blob column as a contiguous sequence of T in the blob's
// native byte layout, owned by copy. Decoding fails with ErrMarshal when the
// raw byte length is not evenly divisible by T's size. For raw bytes with no
// divisibility check use []byte (owned) or BlobView (borrowed) instead.
type Blob[T Scalar] []T

func (b *Blob[T]) loadColumn(s *Stmt, index int) error {
	raw := s.eng.ColumnBlob(index)

	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(raw)%size != 0 {
		return fmt.Errorf("%w: blob of %d bytes is not divisible by element size %d", ErrMarshal, len(raw), size)
	}

	n := len(raw) / size
	out := make([]T, n)
	if n > 0 {
		copy(out, unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n))
	}
	*b = out
	return nil
}

// columnLoader is the hook composite result types implement to take part in
// Get's dispatch. Primitives are dispatched directly.
type columnLoader interface {
	loadColumn(s *Stmt, index int) error
}

// Get decodes the 0-based column index of the statement's current row as T.
//
// Dispatch is directed by the requested type, not the column's declared or
// runtime type, so caller and column must agree; numeric coercion between
// storage classes is SQLite's own and is not re-validated here. Supported
// types: int32, int64, float64, string (owned text), TextView (borrowed),
// []byte (owned blob), BlobView (borrowed), Null[T] and Blob[T].
func Get[T any](s *Stmt, index int) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *int32:
		*p = s.eng.ColumnInt32(index)
	case *int64:
		*p = s.eng.ColumnInt64(index)
	case *float64:
		*p = s.eng.ColumnDouble(index)
	case *string:
		*p = s.eng.ColumnText(index)
	case *TextView:
		*p = TextView(s.eng.ColumnTextRaw(index))
	case *[]byte:
		*p = s.eng.ColumnBlob(index)
	case *BlobView:
		*p = BlobView(s.eng.ColumnBlobRaw(index))
	case columnLoader:
		if err := p.loadColumn(s, index); err != nil {
			var zero T
			return zero, err
		}
	default:
		return out, fmt.Errorf("%w: unsupported result type %T", ErrMarshal, out)
	}
	return out, nil
}

// Row2 decodes columns 0 and 1 of the current row as A and B. On any failure
// all results are zero values; a row never decodes partially.
func Row2[A, B any](s *Stmt) (A, B, error) {
	var a A
	var b B
	var err error
	if a, err = Get[A](s, 0); err != nil {
		return *new(A), *new(B), err
	}
	if b, err = Get[B](s, 1); err != nil {
		return *new(A), *new(B), err
	}
	return a, b, nil
}

// Row3 decodes columns 0..2 of the current row, with Row2's all-or-nothing
// contract.
func Row3[A, B, C any](s *Stmt) (A, B, C, error) {
	var a A
	var b B
	var c C
	var err error
	if a, err = Get[A](s, 0); err != nil {
		return *new(A), *new(B), *new(C), err
	}
	if b, err = Get[B](s, 1); err != nil {
		return *new(A), *new(B), *new(C), err
	}
	if c, err = Get[C](s, 2); err != nil {
		return *new(A), *new(B), *new(C), err
	}
	return a, b, c, nil
}

// Row4 decodes columns 0..3 of the current row, with Row2's all-or-nothing
// contract.
func Row4[A, B, C, D any](s *Stmt) (A, B, C, D, error) {
	var a A
	var b B
	var c C
	var d D
	var err error
	if a, err = Get[A](s, 0); err != nil {
		return *new(A), *new(B), *new(C), *new(D), err
	}
	if b, err = Get[B](s, 1); err != nil {
		return *new(A), *new(B), *new(C), *new(D), err
	}
	if c, err = Get[C](s, 2); err != nil {
		return *new(A), *new(B), *new(C), *new(D), err
	}
	if d, err = Get[D](s, 3); err != nil {
		return *new(A), *new(B), *new(C), *new(D), err
	}
	return a, b, c, d, nil
}
