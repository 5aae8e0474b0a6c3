package validation

import (
	"errors"
	"fmt"

	"habitforge/internal/models"
)

// Error marks malformed client input. Handlers surface it as a 400 with no
// retry; it is never used for server-side failures.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "validation failed: " + e.Reason
}

// Errorf builds a validation error
func Errorf(format string, args ...interface{}) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a validation error.
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// ValidateSnapshot checks the structural integrity of a device snapshot
// before any merge work starts. Referential checks (does the module exist,
// is it one of the child's) happen in the sync coordinator where the
// server-side state is in hand.
func ValidateSnapshot(snapshot *models.LocalSnapshot) error {
	if snapshot == nil {
		return Errorf("missing snapshot")
	}
	if snapshot.PackageVersion < 0 {
		return Errorf("negative package version %d", snapshot.PackageVersion)
	}
	for moduleID, version := range snapshot.ModuleVersions {
		if moduleID <= 0 {
			return Errorf("invalid module id %d in module versions", moduleID)
		}
		if version < 0 {
			return Errorf("negative version %d for module %d", version, moduleID)
		}
	}
	for i, pending := range snapshot.Pending {
		if pending.ModuleID <= 0 {
			return Errorf("pending completion %d: invalid module id %d", i, pending.ModuleID)
		}
		if pending.ActivityID <= 0 {
			return Errorf("pending completion %d: invalid activity id %d", i, pending.ActivityID)
		}
		if pending.CompletedOn.IsZero() {
			return Errorf("pending completion %d: missing completion date", i)
		}
	}
	return nil
}
