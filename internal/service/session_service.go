package service

import (
	"errors"
	"fmt"
	"time"

	"habitforge/internal/events"
	"habitforge/internal/models"
)

// SessionService owns the per-child, per-module session state machine.
// Sessions are Active from first start and become Completed (terminal) once
// every activity in the module is done. Completion events fan out on the
// bus; this service knows nothing about streaks, point totals, or badges.
type SessionService struct {
	modules  ModuleStore
	sessions SessionStore
	bus      *events.Bus
}

// NewSessionService creates a new session service
func NewSessionService(modules ModuleStore, sessions SessionStore, bus *events.Bus) *SessionService {
	return &SessionService{
		modules:  modules,
		sessions: sessions,
		bus:      bus,
	}
}

// SessionWithModule pairs a session with its module content for the client.
type SessionWithModule struct {
	Session *models.WorkshopSession
	Module  *models.ContentModule
}

// CompletionFeedback tells the client what a CompleteActivity call did.
type CompletionFeedback struct {
	AlreadyCompleted bool   `json:"already_completed"`
	SessionCompleted bool   `json:"session_completed"`
	PointsAwarded    int    `json:"points_awarded"`
	Message          string `json:"message"`
}

// CompletionResult is the outcome of CompleteActivity: feedback plus the
// updated session.
type CompletionResult struct {
	Feedback CompletionFeedback      `json:"feedback"`
	Session  *models.WorkshopSession `json:"session"`
}

// StartSession returns the child's session for a module, creating it on
// first request. Starting is idempotent per (child, module) pair; only
// published modules can start new sessions.
func (s *SessionService) StartSession(childID, moduleID int64) (*SessionWithModule, error) {
	module, err := s.modules.GetModuleByID(moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}
	if module == nil {
		return nil, ErrModuleNotFound
	}

	existing, err := s.sessions.GetSessionByChildAndModule(childID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if existing != nil {
		// Re-access is always allowed, even on completed sessions and
		// archived modules (review mode).
		existing.Recompute(module)
		return &SessionWithModule{Session: existing, Module: module}, nil
	}

	if module.Status != models.ModulePublished {
		return nil, fmt.Errorf("%w: module %d is %s", ErrModuleNotPublished, moduleID, module.Status)
	}

	session, err := s.sessions.CreateSession(childID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.Recompute(module)

	return &SessionWithModule{Session: session, Module: module}, nil
}

// GetSession loads a session by id.
func (s *SessionService) GetSession(sessionID int64) (*models.WorkshopSession, error) {
	session, err := s.sessions.GetSessionByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// CompleteActivity records an activity completion dated today.
func (s *SessionService) CompleteActivity(sessionID, activityID int64) (*CompletionResult, error) {
	return s.CompleteActivityOn(sessionID, activityID, time.Now())
}

// CompleteActivityOn records an activity completion with an explicit
// calendar date (offline completions carry the device-local date they were
// done on). Completing is idempotent per activity: a repeat call changes
// nothing and re-emits no event. Activities may be completed in any order;
// the session's current-activity index is only a suggestion.
func (s *SessionService) CompleteActivityOn(sessionID, activityID int64, date time.Time) (*CompletionResult, error) {
	var result *CompletionResult
	var pending []events.Event

	err := withRevisionRetry(func() error {
		// Re-read per attempt: a revision mismatch means another device
		// changed the session and the whole cycle must start over.
		pending = pending[:0]

		session, err := s.sessions.GetSessionByID(sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session == nil {
			return ErrSessionNotFound
		}

		module, err := s.modules.GetModuleByID(session.ModuleID)
		if err != nil {
			return fmt.Errorf("failed to load module: %w", err)
		}
		if module == nil {
			return ErrModuleNotFound
		}

		if !module.HasActivity(activityID) {
			return fmt.Errorf("%w: activity %d, module %d", ErrNotInModule, activityID, module.ID)
		}

		if session.HasCompleted(activityID) {
			// Idempotent no-op: state is untouched and no event re-emitted.
			session.Recompute(module)
			result = &CompletionResult{
				Feedback: CompletionFeedback{
					AlreadyCompleted: true,
					SessionCompleted: session.IsCompleted(),
					Message:          "Activity already completed",
				},
				Session: session,
			}
			return nil
		}

		if session.IsCompleted() {
			return fmt.Errorf("%w: session %d", ErrSessionCompleted, sessionID)
		}

		activity := module.ActivityByID(activityID)
		day := models.DateOnly(date)
		now := time.Now().UTC()

		session.Completed = append(session.Completed, models.CompletedActivity{
			ActivityID:  activityID,
			CompletedOn: day,
		})
		session.LastAccessedAt = now
		session.Recompute(module)

		feedback := CompletionFeedback{
			PointsAwarded: activity.Points,
			Message:       fmt.Sprintf("Nice work! You earned %d points", activity.Points),
		}

		pending = append(pending, events.NewActivityCompleted(session.ChildID, activity, module.Category, day))

		if session.AllActivitiesDone(module) {
			session.CompletedAt = &now
			feedback.SessionCompleted = true
			feedback.Message = "Module complete! Amazing job"
			pending = append(pending, events.NewModuleCompleted(session.ChildID, module.ID, module.Category, day))
		}

		if err := s.sessions.SaveSession(session, session.Revision); err != nil {
			return err
		}

		result = &CompletionResult{Feedback: feedback, Session: session}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Events go out only after the write is committed, so each union member
	// of a merge triggers aggregation and badge checks exactly once. The
	// completion itself is durable at this point; if aggregation still fails
	// after its own retries, the caller must see that instead of a false
	// success. Points and percentages are recomputed from the stored
	// completions on the next accepted event, so a surfaced failure here is
	// recoverable, never silent.
	var publishErrs []error
	for _, e := range pending {
		if err := s.bus.Publish(e); err != nil {
			publishErrs = append(publishErrs, err)
		}
	}
	if err := errors.Join(publishErrs...); err != nil {
		return nil, fmt.Errorf("completion recorded but aggregation failed: %w", err)
	}

	return result, nil
}
