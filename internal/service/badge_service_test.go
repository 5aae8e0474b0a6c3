package service

import (
	"errors"
	"testing"

	"habitforge/internal/models"
)

type fakeNotifier struct {
	notified []models.Badge
	err      error
}

func (n *fakeNotifier) NotifyBadgeEarned(child *models.Child, family *models.Family, badge models.Badge) error {
	n.notified = append(n.notified, badge)
	return n.err
}

func badgeCatalog() []models.Badge {
	return []models.Badge{
		{ID: 1, Name: "First Steps", Kind: models.BadgeModuleCount, Threshold: 1},
		{ID: 2, Name: "Habit Builder", Kind: models.BadgeModuleCount, Threshold: 5},
		{ID: 3, Name: "On a Roll", Kind: models.BadgeStreakLength, Threshold: 3},
		{ID: 4, Name: "Busy Bee", Kind: models.BadgeActivityCount, Threshold: 2},
		{ID: 5, Name: "Sparkle Champion", Kind: models.BadgeCategoryMilestone, Threshold: 100, Category: models.CategoryHygiene},
	}
}

// seedMetrics gives child 7 one completed two-activity module, a streak of 3
// and hygiene at 100%.
func seedMetrics(t *testing.T, store *fakeStore) {
	t.Helper()

	store.addChild(7, 1, 6)
	store.addModule(1, models.CategoryHygiene, models.ModulePublished, 10, 11)

	session, err := store.CreateSession(7, 1)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	session.Completed = append(session.Completed,
		models.CompletedActivity{ActivityID: 10, CompletedOn: date("2024-01-09")},
		models.CompletedActivity{ActivityID: 11, CompletedOn: date("2024-01-10")},
	)
	done := date("2024-01-10")
	session.CompletedAt = &done
	if err := store.SaveSession(session, 1); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	progress, err := store.CreateChildProgress(7)
	if err != nil {
		t.Fatalf("CreateChildProgress() error = %v", err)
	}
	progress.CurrentStreak = 3
	progress.LongestStreak = 3
	progress.CategoryProgress[models.CategoryHygiene] = 100
	if err := store.SaveChildProgress(progress, 1); err != nil {
		t.Fatalf("SaveChildProgress() error = %v", err)
	}
}

func TestEvaluateAwardsByKind(t *testing.T) {
	store := newFakeStore()
	store.badges = badgeCatalog()
	seedMetrics(t, store)

	svc := NewBadgeService(store, store, store, store, nil)

	awarded, err := svc.Evaluate(7)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := map[int64]bool{1: true, 3: true, 4: true, 5: true}
	if len(awarded) != len(want) {
		t.Fatalf("awarded %d badges, want %d: %v", len(awarded), len(want), awarded)
	}
	for _, badge := range awarded {
		if !want[badge.ID] {
			t.Errorf("unexpected award: %q (id %d)", badge.Name, badge.ID)
		}
	}

	// Five-module badge stays out of reach.
	if _, ok := store.earned[7][2]; ok {
		t.Error("module-count badge awarded below threshold")
	}
}

func TestEvaluateAwardsExactlyOnce(t *testing.T) {
	store := newFakeStore()
	store.badges = badgeCatalog()
	seedMetrics(t, store)

	notifier := &fakeNotifier{}
	svc := NewBadgeService(store, store, store, store, notifier)

	first, err := svc.Evaluate(7)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	// A replayed or duplicated event re-runs the evaluation; nothing new may
	// be awarded or notified.
	second, err := svc.Evaluate(7)
	if err != nil {
		t.Fatalf("repeat Evaluate() error = %v", err)
	}
	if len(second) != 0 {
		t.Errorf("repeat evaluation awarded %d badges, want 0", len(second))
	}
	if len(notifier.notified) != len(first) {
		t.Errorf("notifications = %d, want %d", len(notifier.notified), len(first))
	}
}

func TestEvaluateNotifierFailureDoesNotBlockAward(t *testing.T) {
	store := newFakeStore()
	store.badges = badgeCatalog()
	seedMetrics(t, store)

	notifier := &fakeNotifier{err: errors.New("ses unavailable")}
	svc := NewBadgeService(store, store, store, store, notifier)

	awarded, err := svc.Evaluate(7)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(awarded) == 0 {
		t.Fatal("no badges awarded")
	}
	if len(store.earned[7]) != len(awarded) {
		t.Errorf("recorded awards = %d, want %d", len(store.earned[7]), len(awarded))
	}
}

func TestListEarned(t *testing.T) {
	store := newFakeStore()
	store.badges = badgeCatalog()
	seedMetrics(t, store)

	svc := NewBadgeService(store, store, store, store, nil)
	if _, err := svc.Evaluate(7); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	earned, err := svc.ListEarned(7)
	if err != nil {
		t.Fatalf("ListEarned() error = %v", err)
	}
	if len(earned) != 4 {
		t.Fatalf("earned badges = %d, want 4", len(earned))
	}
	for _, badge := range earned {
		if badge.Name == "" {
			t.Error("earned badge missing definition fields")
		}
	}
}
