package handlers

import (
	"time"

	"habitforge/internal/models"
	"habitforge/internal/service"
)

const dateLayout = "2006-01-02"

// The wire shapes below are the JSON surface the device client sees. Domain
// models stay tag-free; conversion happens here so the storage and engine
// layers can evolve without breaking the device protocol. Calendar dates go
// out as YYYY-MM-DD strings, timestamps as RFC 3339.

type activityView struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Type            string   `json:"type"`
	DurationMinutes int      `json:"duration_minutes"`
	Points          int      `json:"points"`
	Steps           []string `json:"steps"`
	Position        int      `json:"position"`
}

type moduleView struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	Category   string         `json:"category"`
	Status     string         `json:"status"`
	MinAge     int            `json:"min_age"`
	MaxAge     int            `json:"max_age"`
	Version    int            `json:"version"`
	Activities []activityView `json:"activities"`
}

type completedActivityView struct {
	ActivityID  int64  `json:"activity_id"`
	CompletedOn string `json:"completed_on"`
}

type sessionView struct {
	ID                   int64                   `json:"id"`
	ChildID              int64                   `json:"child_id"`
	ModuleID             int64                   `json:"module_id"`
	Completed            []completedActivityView `json:"completed"`
	CurrentActivityIndex int                     `json:"current_activity_index"`
	StartedAt            time.Time               `json:"started_at"`
	LastAccessedAt       time.Time               `json:"last_accessed_at"`
	CompletedAt          *time.Time              `json:"completed_at,omitempty"`
	Revision             int64                   `json:"revision"`
}

type progressView struct {
	ChildID            int64          `json:"child_id"`
	OverallCompletion  int            `json:"overall_completion"`
	CategoryProgress   map[string]int `json:"category_progress"`
	CurrentStreak      int            `json:"current_streak"`
	LongestStreak      int            `json:"longest_streak"`
	LastEngagementDate string         `json:"last_engagement_date,omitempty"`
	TotalPoints        int            `json:"total_points"`
	Revision           int64          `json:"revision"`
}

type badgeView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Kind        string `json:"kind"`
	Threshold   int    `json:"threshold"`
	Category    string `json:"category,omitempty"`
}

type packageView struct {
	PackageID string        `json:"package_id"`
	ChildID   int64         `json:"child_id"`
	Version   int64         `json:"version"`
	Modules   []moduleView  `json:"modules"`
	Badges    []badgeView   `json:"badges"`
	Progress  *progressView `json:"progress,omitempty"`
	Checksum  string        `json:"checksum"`
	BuiltAt   time.Time     `json:"built_at"`
}

type conflictView struct {
	ModuleID   int64  `json:"module_id"`
	ActivityID int64  `json:"activity_id"`
	LocalDate  string `json:"local_date"`
	ServerDate string `json:"server_date,omitempty"`
	Resolution string `json:"resolution"`
}

type syncResultView struct {
	Success         bool           `json:"success"`
	Applied         int            `json:"applied"`
	Duplicates      int            `json:"duplicates"`
	Sessions        []sessionView  `json:"sessions"`
	Progress        *progressView  `json:"progress,omitempty"`
	Conflicts       []conflictView `json:"conflicts"`
	OutdatedModules []int64        `json:"outdated_modules"`
	Package         *packageView   `json:"package,omitempty"`
}

type sessionStartView struct {
	Session sessionView `json:"session"`
	Module  moduleView  `json:"module"`
}

type completionView struct {
	Feedback service.CompletionFeedback `json:"feedback"`
	Session  sessionView                `json:"session"`
}

func toActivityView(a models.Activity) activityView {
	steps := a.Steps
	if steps == nil {
		steps = []string{}
	}
	return activityView{
		ID:              a.ID,
		Title:           a.Title,
		Type:            a.Type,
		DurationMinutes: a.DurationMinutes,
		Points:          a.Points,
		Steps:           steps,
		Position:        a.Position,
	}
}

func toModuleView(m *models.ContentModule) moduleView {
	activities := make([]activityView, len(m.Activities))
	for i, a := range m.Activities {
		activities[i] = toActivityView(a)
	}
	return moduleView{
		ID:         m.ID,
		Title:      m.Title,
		Category:   string(m.Category),
		Status:     string(m.Status),
		MinAge:     m.MinAge,
		MaxAge:     m.MaxAge,
		Version:    m.Version,
		Activities: activities,
	}
}

func toSessionView(s *models.WorkshopSession) sessionView {
	completed := make([]completedActivityView, len(s.Completed))
	for i, c := range s.Completed {
		completed[i] = completedActivityView{
			ActivityID:  c.ActivityID,
			CompletedOn: c.CompletedOn.Format(dateLayout),
		}
	}
	return sessionView{
		ID:                   s.ID,
		ChildID:              s.ChildID,
		ModuleID:             s.ModuleID,
		Completed:            completed,
		CurrentActivityIndex: s.CurrentActivityIndex,
		StartedAt:            s.StartedAt,
		LastAccessedAt:       s.LastAccessedAt,
		CompletedAt:          s.CompletedAt,
		Revision:             s.Revision,
	}
}

func toProgressView(p *models.ChildProgress) *progressView {
	if p == nil {
		return nil
	}
	categories := make(map[string]int, len(p.CategoryProgress))
	for category, percent := range p.CategoryProgress {
		categories[string(category)] = percent
	}
	view := &progressView{
		ChildID:           p.ChildID,
		OverallCompletion: p.OverallCompletion,
		CategoryProgress:  categories,
		CurrentStreak:     p.CurrentStreak,
		LongestStreak:     p.LongestStreak,
		TotalPoints:       p.TotalPoints,
		Revision:          p.Revision,
	}
	if p.LastEngagementDate != nil {
		view.LastEngagementDate = p.LastEngagementDate.Format(dateLayout)
	}
	return view
}

func toBadgeView(b models.Badge) badgeView {
	return badgeView{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		Kind:        string(b.Kind),
		Threshold:   b.Threshold,
		Category:    string(b.Category),
	}
}

func toBadgeViews(badges []models.Badge) []badgeView {
	views := make([]badgeView, len(badges))
	for i, b := range badges {
		views[i] = toBadgeView(b)
	}
	return views
}

func toPackageView(pkg *models.OfflinePackage) *packageView {
	if pkg == nil {
		return nil
	}
	modules := make([]moduleView, len(pkg.Modules))
	for i := range pkg.Modules {
		modules[i] = toModuleView(&pkg.Modules[i])
	}
	return &packageView{
		PackageID: pkg.PackageID,
		ChildID:   pkg.ChildID,
		Version:   pkg.Version,
		Modules:   modules,
		Badges:    toBadgeViews(pkg.Badges),
		Progress:  toProgressView(pkg.Progress),
		Checksum:  pkg.Checksum,
		BuiltAt:   pkg.BuiltAt,
	}
}

func toSyncResultView(result *models.SyncResult) syncResultView {
	sessions := make([]sessionView, len(result.Sessions))
	for i, s := range result.Sessions {
		sessions[i] = toSessionView(s)
	}
	conflicts := make([]conflictView, len(result.Conflicts))
	for i, c := range result.Conflicts {
		view := conflictView{
			ModuleID:   c.ModuleID,
			ActivityID: c.ActivityID,
			LocalDate:  c.LocalDate.Format(dateLayout),
			Resolution: c.Resolution,
		}
		if !c.ServerDate.IsZero() {
			view.ServerDate = c.ServerDate.Format(dateLayout)
		}
		conflicts[i] = view
	}
	outdated := result.Updates.OutdatedModules
	if outdated == nil {
		outdated = []int64{}
	}
	return syncResultView{
		Success:         result.Success,
		Applied:         result.Applied,
		Duplicates:      result.Duplicates,
		Sessions:        sessions,
		Progress:        toProgressView(result.Progress),
		Conflicts:       conflicts,
		OutdatedModules: outdated,
		Package:         toPackageView(result.Package),
	}
}
