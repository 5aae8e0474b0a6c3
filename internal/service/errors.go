package service

import (
	"errors"
	"fmt"

	"habitforge/internal/repository"
)

// The engine's error taxonomy. Not-found and invalid-transition errors are
// surfaced to the caller as-is; revision conflicts are retried internally
// and only surface once the retry budget is spent.
var (
	ErrModuleNotFound   = errors.New("module not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrChildNotFound    = errors.New("child not found")
	ErrProgressNotFound = errors.New("progress not found")

	ErrModuleNotPublished = errors.New("module is not published")
	ErrNotInModule        = errors.New("activity does not belong to the session's module")
	ErrSessionCompleted   = errors.New("session is already completed")

	ErrRevisionConflict = errors.New("write conflict: state changed concurrently, please re-sync")
)

// maxRevisionRetries bounds the internal read-merge-write retry loop for
// optimistic writes.
const maxRevisionRetries = 3

// withRevisionRetry runs op, repeating the whole read-merge-write cycle when
// the repository reports a revision mismatch. Each attempt must re-read
// state, which is why op owns the full cycle. Any other error passes
// through untouched.
func withRevisionRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < maxRevisionRetries; attempt++ {
		err = op()
		if !errors.Is(err, repository.ErrRevisionMismatch) {
			return err
		}
	}
	return fmt.Errorf("%w (after %d attempts)", ErrRevisionConflict, maxRevisionRetries)
}
