package events

import (
	"time"

	"habitforge/internal/models"
)

// Type identifies a progress event.
type Type string

const (
	ActivityCompleted        Type = "activity_completed"
	ModuleCompleted          Type = "module_completed"
	StreakReached            Type = "streak_reached"
	CategoryMilestoneReached Type = "category_milestone_reached"
)

// Event is a progress event emitted by the session engine or the progress
// aggregator and consumed by the badge engine. Events carry the calendar
// date the underlying work happened on, not the time they were delivered.
type Event struct {
	Type       Type
	ChildID    int64
	ModuleID   int64
	ActivityID int64
	Category   models.HabitCategory
	Points     int
	Streak     int
	Percent    int
	Date       time.Time
}

// NewActivityCompleted builds an activity_completed event.
func NewActivityCompleted(childID int64, activity *models.Activity, category models.HabitCategory, date time.Time) Event {
	return Event{
		Type:       ActivityCompleted,
		ChildID:    childID,
		ModuleID:   activity.ModuleID,
		ActivityID: activity.ID,
		Category:   category,
		Points:     activity.Points,
		Date:       date,
	}
}

// NewModuleCompleted builds a module_completed event.
func NewModuleCompleted(childID, moduleID int64, category models.HabitCategory, date time.Time) Event {
	return Event{
		Type:     ModuleCompleted,
		ChildID:  childID,
		ModuleID: moduleID,
		Category: category,
		Date:     date,
	}
}

// NewStreakReached builds a streak_reached event.
func NewStreakReached(childID int64, streak int, date time.Time) Event {
	return Event{
		Type:    StreakReached,
		ChildID: childID,
		Streak:  streak,
		Date:    date,
	}
}

// NewCategoryMilestone builds a category_milestone_reached event.
func NewCategoryMilestone(childID int64, category models.HabitCategory, percent int, date time.Time) Event {
	return Event{
		Type:     CategoryMilestoneReached,
		ChildID:  childID,
		Category: category,
		Percent:  percent,
		Date:     date,
	}
}
