package service

import (
	"errors"
	"fmt"
	"time"

	"habitforge/internal/events"
	"habitforge/internal/models"
)

// ProgressService maintains each child's aggregate progress as a pure
// function of the completion history and the calendar dates events carry.
// It subscribes to activity_completed events and re-emits streak and
// category milestone events for the badge engine.
type ProgressService struct {
	progress ProgressStore
	sessions SessionStore
	modules  ModuleStore
	children ChildStore
	bus      *events.Bus
}

// NewProgressService creates a new progress service
func NewProgressService(progress ProgressStore, sessions SessionStore, modules ModuleStore, children ChildStore, bus *events.Bus) *ProgressService {
	return &ProgressService{
		progress: progress,
		sessions: sessions,
		modules:  modules,
		children: children,
		bus:      bus,
	}
}

// Register subscribes the aggregator to the events it consumes.
func (s *ProgressService) Register(bus *events.Bus) {
	bus.Subscribe(events.ActivityCompleted, s.HandleActivityCompleted)
}

// HandleActivityCompleted is the bus entry point for completion events.
func (s *ProgressService) HandleActivityCompleted(e events.Event) error {
	return s.RecordCompletion(e.ChildID, e.Category, e.Date)
}

// RecordCompletion folds one completion event into the child's aggregate.
// Points and completion percentages are recomputed in full from the stored
// sessions, so a previously failed aggregation is repaired by whichever
// event lands next. The streak advances according to the event's calendar
// date; out-of-order dates never decrease the streak or move the engagement
// date backward.
func (s *ProgressService) RecordCompletion(childID int64, category models.HabitCategory, eventDate time.Time) error {
	var pending []events.Event

	err := withRevisionRetry(func() error {
		pending = pending[:0]

		progress, err := s.progress.GetChildProgress(childID)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		if progress == nil {
			progress, err = s.progress.CreateChildProgress(childID)
			if err != nil {
				return fmt.Errorf("failed to create progress: %w", err)
			}
		}

		prevStreak := progress.CurrentStreak

		progress.ApplyEngagement(eventDate)

		if err := s.recomputeAggregates(childID, progress); err != nil {
			return err
		}

		if err := s.progress.SaveChildProgress(progress, progress.Revision); err != nil {
			return err
		}

		if progress.CurrentStreak > prevStreak {
			pending = append(pending, events.NewStreakReached(childID, progress.CurrentStreak, eventDate))
		}
		if percent, ok := progress.CategoryProgress[category]; ok {
			pending = append(pending, events.NewCategoryMilestone(childID, category, percent, eventDate))
		}

		return nil
	})
	if err != nil {
		return err
	}

	var publishErrs []error
	for _, e := range pending {
		if err := s.bus.Publish(e); err != nil {
			publishErrs = append(publishErrs, err)
		}
	}
	return errors.Join(publishErrs...)
}

// GetProgress returns a read-only snapshot of the child's aggregate. A child
// who has started a session but completed nothing yet gets a zero snapshot;
// not-found is reserved for children with no sessions at all.
func (s *ProgressService) GetProgress(childID int64) (*models.ChildProgress, error) {
	progress, err := s.progress.GetChildProgress(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if progress != nil {
		return progress, nil
	}

	sessions, err := s.sessions.ListSessionsByChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: child %d has no recorded progress", ErrProgressNotFound, childID)
	}
	return models.NewChildProgress(childID), nil
}

// recomputeAggregates derives every completion-set field of the aggregate
// from the child's stored sessions: total points, and the overall and
// per-category completion percentages against the published modules for the
// child's age.
func (s *ProgressService) recomputeAggregates(childID int64, progress *models.ChildProgress) error {
	child, err := s.children.GetChildByID(childID)
	if err != nil {
		return fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return fmt.Errorf("%w: %d", ErrChildNotFound, childID)
	}

	modules, err := s.modules.ListPublishedForAge(child.Age)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}

	sessions, err := s.sessions.ListSessionsByChild(childID)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	sessionByModule := make(map[int64]*models.WorkshopSession, len(sessions))
	for _, session := range sessions {
		sessionByModule[session.ModuleID] = session
	}
	moduleByID := make(map[int64]*models.ContentModule, len(modules))
	for i := range modules {
		moduleByID[modules[i].ID] = &modules[i]
	}

	totalAll, doneAll := 0, 0
	totalByCategory := make(map[models.HabitCategory]int)
	doneByCategory := make(map[models.HabitCategory]int)

	for i := range modules {
		module := &modules[i]
		total := len(module.Activities)
		totalAll += total
		totalByCategory[module.Category] += total

		session, ok := sessionByModule[module.ID]
		if !ok {
			continue
		}

		// Count against the module's current activity set; a stored
		// completion may reference an activity that is no longer in it.
		done := 0
		for j := range module.Activities {
			if session.HasCompleted(module.Activities[j].ID) {
				done++
			}
		}
		doneAll += done
		doneByCategory[module.Category] += done
	}

	// Points count every stored completion, including sessions on modules
	// that have since been archived or aged out of the percentage base.
	points := 0
	for _, session := range sessions {
		module, ok := moduleByID[session.ModuleID]
		if !ok {
			module, err = s.modules.GetModuleByID(session.ModuleID)
			if err != nil {
				return fmt.Errorf("failed to load module: %w", err)
			}
			if module == nil {
				continue
			}
		}
		for j := range module.Activities {
			if session.HasCompleted(module.Activities[j].ID) {
				points += module.Activities[j].Points
			}
		}
	}

	progress.TotalPoints = points
	progress.OverallCompletion = percentage(doneAll, totalAll)
	progress.CategoryProgress = make(map[models.HabitCategory]int, len(totalByCategory))
	for category, total := range totalByCategory {
		progress.CategoryProgress[category] = percentage(doneByCategory[category], total)
	}

	return nil
}

// percentage computes done/total as a 0-100 integer
func percentage(done, total int) int {
	if total == 0 {
		return 0
	}
	return done * 100 / total
}
