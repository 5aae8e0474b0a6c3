package service

import (
	"errors"
	"fmt"
	"time"

	"habitforge/internal/models"
	"habitforge/internal/validation"
)

// SyncService reconciles a device's local snapshot with authoritative
// server state. Completion sets merge by union, replayed through the
// session engine's idempotent CompleteActivity so every union member
// triggers aggregation and badge side effects exactly once no matter which
// side recorded it first. Derived progress fields are never merged
// directly: they are recomputed from the merged completions, which removes
// that whole class of conflicts. The only true conflicts left are divergent
// completion dates for the same activity, resolved earlier-date-wins.
type SyncService struct {
	sessionSvc *SessionService
	packages   *PackageService
	sessions   SessionStore
	modules    ModuleStore
	progress   ProgressStore
	children   ChildStore
}

// NewSyncService creates a new sync service
func NewSyncService(sessionSvc *SessionService, packages *PackageService, sessions SessionStore, modules ModuleStore, progress ProgressStore, children ChildStore) *SyncService {
	return &SyncService{
		sessionSvc: sessionSvc,
		packages:   packages,
		sessions:   sessions,
		modules:    modules,
		progress:   progress,
		children:   children,
	}
}

// SyncOfflinePackage merges the snapshot's pending completions into server
// state and returns the merge outcome plus a fresh offline package at the
// post-merge version. Duplicate completions are absorbed; nothing recorded
// on either side is ever lost.
func (s *SyncService) SyncOfflinePackage(childID int64, snapshot *models.LocalSnapshot) (*models.SyncResult, error) {
	child, err := s.children.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, fmt.Errorf("%w: %d", ErrChildNotFound, childID)
	}

	if err := validation.ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}

	// Resolve every module referenced by a pending completion up front: an
	// unknown module makes the snapshot malformed, not mergeable.
	modulesByID := make(map[int64]*models.ContentModule)
	for _, pending := range snapshot.Pending {
		if _, ok := modulesByID[pending.ModuleID]; ok {
			continue
		}
		module, err := s.modules.GetModuleByID(pending.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load module: %w", err)
		}
		if module == nil {
			return nil, validation.Errorf("snapshot references unknown module %d", pending.ModuleID)
		}
		modulesByID[pending.ModuleID] = module
	}

	result := &models.SyncResult{Conflicts: []models.SyncConflict{}}

	// Replay the local queue in recorded order.
	for _, pending := range snapshot.Pending {
		module := modulesByID[pending.ModuleID]
		if err := s.applyPending(childID, module, pending, result); err != nil {
			return nil, err
		}
	}

	result.Updates = s.collectOutdated(snapshot, modulesByID)

	sessions, err := s.sessions.ListSessionsByChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	result.Sessions = sessions

	progress, err := s.progress.GetChildProgress(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	result.Progress = progress

	pkg, err := s.packages.BuildOfflinePackage(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to build package: %w", err)
	}
	result.Package = pkg

	result.Success = true
	return result, nil
}

// applyPending merges one locally recorded completion into server state.
func (s *SyncService) applyPending(childID int64, module *models.ContentModule, pending models.PendingCompletion, result *models.SyncResult) error {
	session, err := s.sessions.GetSessionByChildAndModule(childID, module.ID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	if session == nil {
		// The device recorded work on a module the server has no session
		// for. Only published modules may start sessions; a module that was
		// archived while the device was offline surfaces as a conflict
		// rather than silently dropping the completion.
		if module.Status != models.ModulePublished {
			result.Conflicts = append(result.Conflicts, models.SyncConflict{
				ModuleID:   module.ID,
				ActivityID: pending.ActivityID,
				LocalDate:  models.DateOnly(pending.CompletedOn),
				Resolution: fmt.Sprintf("module %d is %s; completion not applied", module.ID, module.Status),
			})
			return nil
		}
		started, err := s.sessionSvc.StartSession(childID, module.ID)
		if err != nil {
			return err
		}
		session = started.Session
	}

	localDate := models.DateOnly(pending.CompletedOn)

	if serverDate, done := session.CompletedOn(pending.ActivityID); done {
		// Both sides recorded this completion. The set union absorbs the
		// duplicate; divergent dates are the one true conflict, resolved by
		// keeping the earlier calendar date (consistent with the
		// monotonic streak-dating rule).
		if serverDate.Equal(localDate) {
			result.Duplicates++
			return nil
		}
		resolution := "kept server date"
		if localDate.Before(serverDate) {
			if err := s.rewriteCompletionDate(session.ID, pending.ActivityID, localDate); err != nil {
				return err
			}
			resolution = "kept earlier local date"
		}
		result.Conflicts = append(result.Conflicts, models.SyncConflict{
			ModuleID:   module.ID,
			ActivityID: pending.ActivityID,
			LocalDate:  localDate,
			ServerDate: serverDate,
			Resolution: resolution,
		})
		result.Duplicates++
		return nil
	}

	_, err = s.sessionSvc.CompleteActivityOn(session.ID, pending.ActivityID, pending.CompletedOn)
	switch {
	case err == nil:
		result.Applied++
	case errors.Is(err, ErrNotInModule) || errors.Is(err, ErrSessionCompleted):
		// Content changed under the device. Surface it; never fail the
		// whole merge for it.
		result.Conflicts = append(result.Conflicts, models.SyncConflict{
			ModuleID:   module.ID,
			ActivityID: pending.ActivityID,
			LocalDate:  localDate,
			Resolution: fmt.Sprintf("completion not applicable: %v", err),
		})
	default:
		return err
	}
	return nil
}

// rewriteCompletionDate updates the stored date for an already-completed
// activity. This is pure metadata: no completion event is re-emitted, and
// the streak-never-decreases rule means the aggregate stays valid.
func (s *SyncService) rewriteCompletionDate(sessionID, activityID int64, date time.Time) error {
	return withRevisionRetry(func() error {
		session, err := s.sessions.GetSessionByID(sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session == nil {
			return ErrSessionNotFound
		}
		session.SetCompletedOn(activityID, date)
		return s.sessions.SaveSession(session, session.Revision)
	})
}

// collectOutdated compares the snapshot's cached module versions against
// current server versions. Progress merging proceeds regardless of content
// freshness; this only tells the device what to re-download.
func (s *SyncService) collectOutdated(snapshot *models.LocalSnapshot, known map[int64]*models.ContentModule) models.UpdateInfo {
	info := models.UpdateInfo{OutdatedModules: []int64{}}

	for moduleID, localVersion := range snapshot.ModuleVersions {
		module, ok := known[moduleID]
		if !ok {
			loaded, err := s.modules.GetModuleByID(moduleID)
			if err != nil || loaded == nil {
				// Module gone from the catalog; the fresh package will no
				// longer carry it, so flag it for cleanup.
				info.OutdatedModules = append(info.OutdatedModules, moduleID)
				continue
			}
			module = loaded
		}
		if module.Version > localVersion {
			info.OutdatedModules = append(info.OutdatedModules, moduleID)
		}
	}

	return info
}
