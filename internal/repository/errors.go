package repository

import "errors"

var (
	// ErrRevisionMismatch is returned when an optimistic write carries a
	// revision that no longer matches the stored row. The caller re-reads
	// and retries the full read-merge-write cycle.
	ErrRevisionMismatch = errors.New("revision mismatch: row was modified concurrently")
)
