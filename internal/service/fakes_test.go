package service

import (
	"time"

	"habitforge/internal/models"
	"habitforge/internal/repository"
)

// fakeStore is an in-memory implementation of every store interface. Reads
// hand out copies and writes enforce the same revision CAS as the SQL
// repositories, so the retry paths behave exactly as they do in production.
type fakeStore struct {
	modules       map[int64]*models.ContentModule
	sessions      map[int64]models.WorkshopSession
	nextSessionID int64
	progress      map[int64]models.ChildProgress
	badges        []models.Badge
	earned        map[int64]map[int64]time.Time
	children      map[int64]*models.Child
	families      map[int64]*models.Family

	// failSessionSaves makes the next N SaveSession calls fail with a
	// revision mismatch, for exercising the retry loop.
	failSessionSaves  int
	failProgressSaves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		modules:       make(map[int64]*models.ContentModule),
		sessions:      make(map[int64]models.WorkshopSession),
		nextSessionID: 1,
		progress:      make(map[int64]models.ChildProgress),
		earned:        make(map[int64]map[int64]time.Time),
		children:      make(map[int64]*models.Child),
		families:      make(map[int64]*models.Family),
	}
}

func (f *fakeStore) addChild(id, familyID int64, age int) {
	f.children[id] = &models.Child{ID: id, FamilyID: familyID, Name: "Kid", Age: age}
	if _, ok := f.families[familyID]; !ok {
		f.families[familyID] = &models.Family{ID: familyID, FamilyCode: "sunny-otter-01", Email: "parent@example.com"}
	}
}

func (f *fakeStore) addModule(id int64, category models.HabitCategory, status models.ModuleStatus, activityIDs ...int64) *models.ContentModule {
	module := &models.ContentModule{
		ID:       id,
		Title:    "Module",
		Category: category,
		Status:   status,
		MinAge:   4,
		MaxAge:   10,
		Version:  1,
	}
	for i, activityID := range activityIDs {
		module.Activities = append(module.Activities, models.Activity{
			ID:       activityID,
			ModuleID: id,
			Title:    "Activity",
			Points:   10,
			Position: i,
		})
	}
	f.modules[id] = module
	return module
}

// ModuleStore

func (f *fakeStore) GetModuleByID(moduleID int64) (*models.ContentModule, error) {
	module, ok := f.modules[moduleID]
	if !ok {
		return nil, nil
	}
	return module, nil
}

func (f *fakeStore) ListPublishedForAge(age int) ([]models.ContentModule, error) {
	var modules []models.ContentModule
	for _, module := range f.modules {
		if module.Status == models.ModulePublished && module.ForAge(age) {
			modules = append(modules, *module)
		}
	}
	return modules, nil
}

// SessionStore

func cloneSession(s models.WorkshopSession) *models.WorkshopSession {
	clone := s
	clone.Completed = append([]models.CompletedActivity(nil), s.Completed...)
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}

func (f *fakeStore) GetSessionByID(sessionID int64) (*models.WorkshopSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (f *fakeStore) GetSessionByChildAndModule(childID, moduleID int64) (*models.WorkshopSession, error) {
	for _, session := range f.sessions {
		if session.ChildID == childID && session.ModuleID == moduleID {
			return cloneSession(session), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListSessionsByChild(childID int64) ([]*models.WorkshopSession, error) {
	var sessions []*models.WorkshopSession
	for _, session := range f.sessions {
		if session.ChildID == childID {
			sessions = append(sessions, cloneSession(session))
		}
	}
	return sessions, nil
}

func (f *fakeStore) CreateSession(childID, moduleID int64) (*models.WorkshopSession, error) {
	now := time.Now().UTC()
	session := models.WorkshopSession{
		ID:             f.nextSessionID,
		ChildID:        childID,
		ModuleID:       moduleID,
		StartedAt:      now,
		LastAccessedAt: now,
		Revision:       1,
	}
	f.nextSessionID++
	f.sessions[session.ID] = session
	return cloneSession(session), nil
}

func (f *fakeStore) SaveSession(session *models.WorkshopSession, expectedRevision int64) error {
	if f.failSessionSaves > 0 {
		f.failSessionSaves--
		return repository.ErrRevisionMismatch
	}

	stored, ok := f.sessions[session.ID]
	if !ok || stored.Revision != expectedRevision {
		return repository.ErrRevisionMismatch
	}

	session.Revision = expectedRevision + 1
	f.sessions[session.ID] = *cloneSession(*session)
	return nil
}

func (f *fakeStore) CountCompletedModules(childID int64) (int, error) {
	count := 0
	for _, session := range f.sessions {
		if session.ChildID == childID && session.CompletedAt != nil {
			count++
		}
	}
	return count, nil
}

// ProgressStore

func cloneProgress(p models.ChildProgress) *models.ChildProgress {
	clone := p
	clone.CategoryProgress = make(map[models.HabitCategory]int, len(p.CategoryProgress))
	for k, v := range p.CategoryProgress {
		clone.CategoryProgress[k] = v
	}
	if p.LastEngagementDate != nil {
		d := *p.LastEngagementDate
		clone.LastEngagementDate = &d
	}
	return &clone
}

func (f *fakeStore) GetChildProgress(childID int64) (*models.ChildProgress, error) {
	progress, ok := f.progress[childID]
	if !ok {
		return nil, nil
	}
	return cloneProgress(progress), nil
}

func (f *fakeStore) CreateChildProgress(childID int64) (*models.ChildProgress, error) {
	// Mirrors the SQL repository: a lost insert race is absorbed and the
	// surviving row is returned.
	if existing, ok := f.progress[childID]; ok {
		return cloneProgress(existing), nil
	}
	progress := models.ChildProgress{
		ChildID:          childID,
		CategoryProgress: make(map[models.HabitCategory]int),
		Revision:         1,
		UpdatedAt:        time.Now().UTC(),
	}
	f.progress[childID] = progress
	return cloneProgress(progress), nil
}

func (f *fakeStore) SaveChildProgress(progress *models.ChildProgress, expectedRevision int64) error {
	if f.failProgressSaves > 0 {
		f.failProgressSaves--
		return repository.ErrRevisionMismatch
	}

	stored, ok := f.progress[progress.ChildID]
	if !ok || stored.Revision != expectedRevision {
		return repository.ErrRevisionMismatch
	}

	progress.Revision = expectedRevision + 1
	f.progress[progress.ChildID] = *cloneProgress(*progress)
	return nil
}

// BadgeStore

func (f *fakeStore) ListBadges() ([]models.Badge, error) {
	return f.badges, nil
}

func (f *fakeStore) ListEarnedBadges(childID int64) ([]models.EarnedBadge, error) {
	var earned []models.EarnedBadge
	for badgeID, at := range f.earned[childID] {
		earned = append(earned, models.EarnedBadge{ChildID: childID, BadgeID: badgeID, EarnedAt: at})
	}
	return earned, nil
}

func (f *fakeStore) RecordEarnedBadge(childID, badgeID int64) (bool, error) {
	if f.earned[childID] == nil {
		f.earned[childID] = make(map[int64]time.Time)
	}
	if _, ok := f.earned[childID][badgeID]; ok {
		return false, nil
	}
	f.earned[childID][badgeID] = time.Now().UTC()
	return true, nil
}

// ChildStore

func (f *fakeStore) GetChildByID(childID int64) (*models.Child, error) {
	return f.children[childID], nil
}

func (f *fakeStore) GetFamilyByID(familyID int64) (*models.Family, error) {
	return f.families[familyID], nil
}
