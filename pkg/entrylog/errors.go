package entrylog

import "errors"

var (
	// ErrLogNotFound is returned when no storage directory holds a segment file
	// for the requested log id.
	ErrLogNotFound = errors.New("entry log file not found")

	// ErrShortRead is returned when the underlying channel handed back fewer
	// bytes than a frame requires.
	ErrShortRead = errors.New("short read from entry log")

	// ErrIdentityMismatch is returned when a decoded frame does not belong to
	// the (ledger, entry) the caller asked for.
	ErrIdentityMismatch = errors.New("entry identity mismatch")
)
