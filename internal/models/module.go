package models

import (
	"fmt"
	"time"
)

// ModuleStatus is the lifecycle state of a content module.
// Modules move draft -> published -> archived; content is immutable once
// published, only the status may change.
type ModuleStatus string

const (
	ModuleDraft     ModuleStatus = "draft"
	ModulePublished ModuleStatus = "published"
	ModuleArchived  ModuleStatus = "archived"
)

// ParseModuleStatus validates a raw status string
func ParseModuleStatus(s string) (ModuleStatus, error) {
	switch ModuleStatus(s) {
	case ModuleDraft, ModulePublished, ModuleArchived:
		return ModuleStatus(s), nil
	}
	return "", fmt.Errorf("unknown module status: %q", s)
}

// CanTransitionTo reports whether the lifecycle permits moving from the
// current status to next. The lifecycle only moves forward.
func (s ModuleStatus) CanTransitionTo(next ModuleStatus) bool {
	switch s {
	case ModuleDraft:
		return next == ModulePublished
	case ModulePublished:
		return next == ModuleArchived
	}
	return false
}

// ContentModule is a unit of workshop content: an ordered sequence of
// activities under one habit category, targeted at an age range.
type ContentModule struct {
	ID         int64
	Title      string
	Category   HabitCategory
	Status     ModuleStatus
	MinAge     int
	MaxAge     int
	Version    int
	Activities []Activity
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Activity is a single task within a module. The position of an activity in
// the module's Activities slice defines the canonical ordering.
type Activity struct {
	ID              int64
	ModuleID        int64
	Title           string
	Type            string
	DurationMinutes int
	Points          int
	Steps           []string
	Position        int
}

// ActivityByID returns the activity with the given id, or nil if the module
// has no such activity.
func (m *ContentModule) ActivityByID(activityID int64) *Activity {
	for i := range m.Activities {
		if m.Activities[i].ID == activityID {
			return &m.Activities[i]
		}
	}
	return nil
}

// HasActivity reports whether the module contains the given activity.
func (m *ContentModule) HasActivity(activityID int64) bool {
	return m.ActivityByID(activityID) != nil
}

// ForAge reports whether the module targets a child of the given age.
func (m *ContentModule) ForAge(age int) bool {
	return age >= m.MinAge && age <= m.MaxAge
}
