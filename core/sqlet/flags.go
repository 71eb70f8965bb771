package sqlet

import "github.com/FocuswithJustin/sqlet/core/sqlet/internal/engine"

// OpenFlag selects the open mode of a database. Flags compose with bitwise
// OR; values are SQLite's own SQLITE_OPEN_* constants.
type OpenFlag int32

const (
	OpenReadOnly     = OpenFlag(engine.OpenReadOnly)
	OpenReadWrite    = OpenFlag(engine.OpenReadWrite)
	OpenCreate       = OpenFlag(engine.OpenCreate)
	OpenNoMutex      = OpenFlag(engine.OpenNoMutex)
	OpenFullMutex    = OpenFlag(engine.OpenFullMutex)
	OpenSharedCache  = OpenFlag(engine.OpenSharedCache)
	OpenPrivateCache = OpenFlag(engine.OpenPrivateCache)
	OpenURI          = OpenFlag(engine.OpenURI)
)
