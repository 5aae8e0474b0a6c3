package models

import "time"

// BadgeKind identifies which metric a badge's criteria evaluates.
type BadgeKind string

const (
	BadgeModuleCount       BadgeKind = "module-count"
	BadgeStreakLength      BadgeKind = "streak-length"
	BadgeCategoryMilestone BadgeKind = "category-milestone"
	BadgeActivityCount     BadgeKind = "activity-count"
)

// Badge is a static achievement definition. Category is only set for
// category-milestone badges.
type Badge struct {
	ID          int64
	Name        string
	Description string
	Icon        string
	Kind        BadgeKind
	Threshold   int
	Category    HabitCategory
}

// EarnedBadge is a per-child award record. Rows are append-only and unique
// per (child, badge); earning is the only lifecycle event.
type EarnedBadge struct {
	ChildID  int64
	BadgeID  int64
	EarnedAt time.Time
}
