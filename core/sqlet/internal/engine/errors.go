package engine

// Error carries a SQLite result code alongside its message.
type Error struct {
	msg  string
	code int
}

// Error implements error.
func (e *Error) Error() string { return e.msg }

// Code returns the SQLite result code for this error.
func (e *Error) Code() int { return e.code }
