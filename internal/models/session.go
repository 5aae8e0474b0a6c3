package models

import "time"

// CompletedActivity records one completed activity inside a session, keyed
// by activity id. CompletedOn is the calendar date the child did the work
// (device-local date for offline completions), which streak arithmetic and
// sync conflict resolution depend on.
type CompletedActivity struct {
	ActivityID  int64
	CompletedOn time.Time
}

// WorkshopSession tracks one child's progress through one module. There is
// at most one session per (child, module) pair.
type WorkshopSession struct {
	ID             int64
	ChildID        int64
	ModuleID       int64
	Completed      []CompletedActivity
	StartedAt      time.Time
	LastAccessedAt time.Time
	CompletedAt    *time.Time
	Revision       int64

	// CurrentActivityIndex is derived from Completed and the module's
	// activity ordering; it is never persisted. See Recompute.
	CurrentActivityIndex int
}

// IsCompleted reports whether the session has reached its terminal state.
func (s *WorkshopSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// HasCompleted reports whether the given activity is already recorded.
func (s *WorkshopSession) HasCompleted(activityID int64) bool {
	return s.completedIndex(activityID) >= 0
}

// CompletedOn returns the recorded completion date for an activity and
// whether the activity has been completed at all.
func (s *WorkshopSession) CompletedOn(activityID int64) (time.Time, bool) {
	if i := s.completedIndex(activityID); i >= 0 {
		return s.Completed[i].CompletedOn, true
	}
	return time.Time{}, false
}

// SetCompletedOn overwrites the recorded completion date for an activity.
// Used by sync conflict resolution when an earlier device-recorded date wins.
func (s *WorkshopSession) SetCompletedOn(activityID int64, date time.Time) {
	if i := s.completedIndex(activityID); i >= 0 {
		s.Completed[i].CompletedOn = date
	}
}

func (s *WorkshopSession) completedIndex(activityID int64) int {
	for i := range s.Completed {
		if s.Completed[i].ActivityID == activityID {
			return i
		}
	}
	return -1
}

// CompletedIDs returns the set of completed activity ids in recorded order.
func (s *WorkshopSession) CompletedIDs() []int64 {
	ids := make([]int64, len(s.Completed))
	for i, c := range s.Completed {
		ids[i] = c.ActivityID
	}
	return ids
}

// Recompute derives CurrentActivityIndex from the module's ordered activity
// list: the smallest index whose activity is not yet completed, or the
// activity count once every activity is done. The index is a suggestion for
// the client, never a gate; activities may be completed in any order.
func (s *WorkshopSession) Recompute(module *ContentModule) {
	for i := range module.Activities {
		if !s.HasCompleted(module.Activities[i].ID) {
			s.CurrentActivityIndex = i
			return
		}
	}
	s.CurrentActivityIndex = len(module.Activities)
}

// AllActivitiesDone reports whether the session covers the module's full
// activity set.
func (s *WorkshopSession) AllActivitiesDone(module *ContentModule) bool {
	for i := range module.Activities {
		if !s.HasCompleted(module.Activities[i].ID) {
			return false
		}
	}
	return len(module.Activities) > 0
}
