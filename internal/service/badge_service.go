package service

import (
	"fmt"
	"log"

	"habitforge/internal/events"
	"habitforge/internal/models"
)

// BadgeNotifier is told about fresh awards so a parent can be notified.
// Notification failures never affect the award itself.
type BadgeNotifier interface {
	NotifyBadgeEarned(child *models.Child, family *models.Family, badge models.Badge) error
}

// BadgeService is the stateless badge rule evaluator. Any progress event
// triggers a full evaluation of the child's unearned badges; awards are
// guarded by the (child, badge) uniqueness constraint, so replayed or
// duplicated events can never award twice. Earned badges are never revoked:
// the metrics they check are monotonic by construction.
type BadgeService struct {
	badges   BadgeStore
	sessions SessionStore
	progress ProgressStore
	children ChildStore
	notifier BadgeNotifier
}

// NewBadgeService creates a new badge service. notifier may be nil.
func NewBadgeService(badges BadgeStore, sessions SessionStore, progress ProgressStore, children ChildStore, notifier BadgeNotifier) *BadgeService {
	return &BadgeService{
		badges:   badges,
		sessions: sessions,
		progress: progress,
		children: children,
		notifier: notifier,
	}
}

// Register subscribes the evaluator to every event kind that can move a
// badge metric.
func (s *BadgeService) Register(bus *events.Bus) {
	handler := func(e events.Event) error {
		_, err := s.Evaluate(e.ChildID)
		return err
	}
	bus.Subscribe(events.ActivityCompleted, handler)
	bus.Subscribe(events.ModuleCompleted, handler)
	bus.Subscribe(events.StreakReached, handler)
	bus.Subscribe(events.CategoryMilestoneReached, handler)
}

// Evaluate checks every badge the child has not yet earned and awards the
// ones whose criteria are now met. Returns the freshly awarded badges.
func (s *BadgeService) Evaluate(childID int64) ([]models.Badge, error) {
	badges, err := s.badges.ListBadges()
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	earned, err := s.badges.ListEarnedBadges(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	earnedSet := make(map[int64]bool, len(earned))
	for _, e := range earned {
		earnedSet[e.BadgeID] = true
	}

	metrics, err := s.loadMetrics(childID)
	if err != nil {
		return nil, err
	}

	var awarded []models.Badge
	for _, badge := range badges {
		if earnedSet[badge.ID] {
			continue
		}
		if !metrics.meets(badge) {
			continue
		}

		inserted, err := s.badges.RecordEarnedBadge(childID, badge.ID)
		if err != nil {
			return awarded, fmt.Errorf("failed to record badge %d: %w", badge.ID, err)
		}
		if !inserted {
			// Another evaluation of a concurrent event got there first.
			continue
		}

		awarded = append(awarded, badge)
		s.notify(childID, badge)
	}

	return awarded, nil
}

// badgeMetrics snapshots the monotonic counters badge criteria check.
type badgeMetrics struct {
	completedModules    int
	completedActivities int
	currentStreak       int
	categoryProgress    map[models.HabitCategory]int
}

func (m *badgeMetrics) meets(badge models.Badge) bool {
	switch badge.Kind {
	case models.BadgeModuleCount:
		return m.completedModules >= badge.Threshold
	case models.BadgeStreakLength:
		return m.currentStreak >= badge.Threshold
	case models.BadgeCategoryMilestone:
		return m.categoryProgress[badge.Category] >= badge.Threshold
	case models.BadgeActivityCount:
		return m.completedActivities >= badge.Threshold
	}
	return false
}

func (s *BadgeService) loadMetrics(childID int64) (*badgeMetrics, error) {
	metrics := &badgeMetrics{categoryProgress: make(map[models.HabitCategory]int)}

	completedModules, err := s.sessions.CountCompletedModules(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed modules: %w", err)
	}
	metrics.completedModules = completedModules

	sessions, err := s.sessions.ListSessionsByChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, session := range sessions {
		metrics.completedActivities += len(session.Completed)
	}

	progress, err := s.progress.GetChildProgress(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if progress != nil {
		metrics.currentStreak = progress.CurrentStreak
		metrics.categoryProgress = progress.CategoryProgress
	}

	return metrics, nil
}

// notify sends the award notification on a best-effort basis
func (s *BadgeService) notify(childID int64, badge models.Badge) {
	if s.notifier == nil {
		return
	}

	child, err := s.children.GetChildByID(childID)
	if err != nil || child == nil {
		log.Printf("badge notification skipped: child %d not loadable: %v", childID, err)
		return
	}
	family, err := s.children.GetFamilyByID(child.FamilyID)
	if err != nil || family == nil {
		log.Printf("badge notification skipped: family %d not loadable: %v", child.FamilyID, err)
		return
	}

	if err := s.notifier.NotifyBadgeEarned(child, family, badge); err != nil {
		log.Printf("badge notification failed for child %d: %v", childID, err)
	}
}

// ListEarned returns the child's award records joined with definitions.
func (s *BadgeService) ListEarned(childID int64) ([]models.Badge, error) {
	earned, err := s.badges.ListEarnedBadges(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}

	all, err := s.badges.ListBadges()
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	byID := make(map[int64]models.Badge, len(all))
	for _, b := range all {
		byID[b.ID] = b
	}

	var badges []models.Badge
	for _, e := range earned {
		if badge, ok := byID[e.BadgeID]; ok {
			badges = append(badges, badge)
		}
	}
	return badges, nil
}
