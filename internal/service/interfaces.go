package service

import "habitforge/internal/models"

// The engine consumes persistence through these narrow interfaces. The SQL
// repositories implement them; tests inject in-memory fakes so the
// revision-guarded write paths can be exercised without a database.

// ModuleStore provides read access to content modules.
type ModuleStore interface {
	GetModuleByID(moduleID int64) (*models.ContentModule, error)
	ListPublishedForAge(age int) ([]models.ContentModule, error)
}

// SessionStore provides workshop session persistence with optimistic writes.
type SessionStore interface {
	GetSessionByID(sessionID int64) (*models.WorkshopSession, error)
	GetSessionByChildAndModule(childID, moduleID int64) (*models.WorkshopSession, error)
	ListSessionsByChild(childID int64) ([]*models.WorkshopSession, error)
	CreateSession(childID, moduleID int64) (*models.WorkshopSession, error)
	SaveSession(session *models.WorkshopSession, expectedRevision int64) error
	CountCompletedModules(childID int64) (int, error)
}

// ProgressStore provides child progress persistence with optimistic writes.
type ProgressStore interface {
	GetChildProgress(childID int64) (*models.ChildProgress, error)
	CreateChildProgress(childID int64) (*models.ChildProgress, error)
	SaveChildProgress(progress *models.ChildProgress, expectedRevision int64) error
}

// BadgeStore provides badge definitions and append-only award records.
type BadgeStore interface {
	ListBadges() ([]models.Badge, error)
	ListEarnedBadges(childID int64) ([]models.EarnedBadge, error)
	RecordEarnedBadge(childID, badgeID int64) (bool, error)
}

// ChildStore provides read access to child profiles and their families.
type ChildStore interface {
	GetChildByID(childID int64) (*models.Child, error)
	GetFamilyByID(familyID int64) (*models.Family, error)
}
