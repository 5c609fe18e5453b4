package store

import "errors"

// Sentinels returned by every Repository implementation.
var (
	// ErrConflict reports an overlap caught by the store itself, either an
	// exclusion constraint or the in-memory equivalent.
	ErrConflict = errors.New("store: overlapping row")
	ErrNotFound = errors.New("store: not found")
	// ErrIdempotencyConflict means the key was already used for a different
	// request payload.
	ErrIdempotencyConflict = errors.New("store: idempotency key reused with different payload")
	ErrReadOnly            = errors.New("store: write in read-only transaction")
)
