package stm

import "errors"

// Sentinel errors for typed handling on the caller side.
var (
	// ErrAborted wraps the error passed to Abort; callers can still
	// errors.Is against it while errors.As recovers the wrapped cause.
	ErrAborted = errors.New("stm: transaction aborted")

	// ErrRuntimeClosed is returned by Atomically after Runtime.Close.
	ErrRuntimeClosed = errors.New("stm: runtime closed")
)

// errConflict never escapes the package: a conflicting attempt is silently
// re-run from scratch by Atomically (spec: "Conflict is invisible to the
// caller").
var errConflict = errors.New("stm: write-write conflict")
