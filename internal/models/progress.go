package models

import "time"

// ChildProgress is the aggregate progress record for one child. It is a
// derived view over the child's completion history: every field except
// Revision can be recomputed from completion events and their dates.
// Revision increases on every accepted write and guards optimistic
// concurrency at the repository boundary.
type ChildProgress struct {
	ChildID            int64
	OverallCompletion  int
	CategoryProgress   map[HabitCategory]int
	CurrentStreak      int
	LongestStreak      int
	LastEngagementDate *time.Time
	TotalPoints        int
	Revision           int64
	UpdatedAt          time.Time
}

// NewChildProgress returns an empty progress record for a child
func NewChildProgress(childID int64) *ChildProgress {
	return &ChildProgress{
		ChildID:          childID,
		CategoryProgress: make(map[HabitCategory]int),
	}
}

// ApplyEngagement updates the streak counters for a qualifying engagement on
// the given calendar date. Duplicate dates are absorbed; dates earlier than
// the last engagement never decrease the streak or move the date backward.
func (p *ChildProgress) ApplyEngagement(date time.Time) {
	day := DateOnly(date)

	switch {
	case p.LastEngagementDate == nil:
		p.CurrentStreak = 1
	case day.Equal(*p.LastEngagementDate):
		// Same day already counted.
	case day.Equal(p.LastEngagementDate.AddDate(0, 0, 1)):
		p.CurrentStreak++
	case day.After(*p.LastEngagementDate):
		// Gap of more than one day: streak starts over.
		p.CurrentStreak = 1
	default:
		// Backfilled date from a deferred delivery. Points and counts are
		// handled by the caller; the streak must not move backward.
		return
	}

	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	if p.LastEngagementDate == nil || day.After(*p.LastEngagementDate) {
		p.LastEngagementDate = &day
	}
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
