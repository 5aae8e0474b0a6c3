package models

import (
	"testing"
	"time"
)

func testModule(activityIDs ...int64) *ContentModule {
	module := &ContentModule{ID: 1, Category: CategoryHygiene, Status: ModulePublished}
	for i, id := range activityIDs {
		module.Activities = append(module.Activities, Activity{ID: id, ModuleID: 1, Position: i})
	}
	return module
}

func TestRecompute(t *testing.T) {
	tests := []struct {
		name      string
		completed []int64
		wantIndex int
	}{
		{"nothing done", nil, 0},
		{"first done", []int64{10}, 1},
		{"skipped ahead", []int64{12}, 0},
		{"middle gap", []int64{10, 12}, 1},
		{"all done", []int64{10, 11, 12}, 3},
	}

	module := testModule(10, 11, 12)
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &WorkshopSession{}
			for _, id := range tt.completed {
				session.Completed = append(session.Completed, CompletedActivity{ActivityID: id, CompletedOn: day})
			}

			session.Recompute(module)
			if session.CurrentActivityIndex != tt.wantIndex {
				t.Errorf("CurrentActivityIndex = %d, want %d", session.CurrentActivityIndex, tt.wantIndex)
			}
		})
	}
}

func TestAllActivitiesDone(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		module    *ContentModule
		completed []int64
		want      bool
	}{
		{"empty module never completes", testModule(), nil, false},
		{"partial", testModule(10, 11), []int64{10}, false},
		{"complete", testModule(10, 11), []int64{10, 11}, true},
		{"complete out of order", testModule(10, 11), []int64{11, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &WorkshopSession{}
			for _, id := range tt.completed {
				session.Completed = append(session.Completed, CompletedActivity{ActivityID: id, CompletedOn: day})
			}

			if got := session.AllActivitiesDone(tt.module); got != tt.want {
				t.Errorf("AllActivitiesDone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetCompletedOn(t *testing.T) {
	day := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	session := &WorkshopSession{
		Completed: []CompletedActivity{{ActivityID: 10, CompletedOn: day}},
	}

	session.SetCompletedOn(10, earlier)
	if got, _ := session.CompletedOn(10); !got.Equal(earlier) {
		t.Errorf("CompletedOn(10) = %v, want %v", got, earlier)
	}

	// Unknown activity is a no-op.
	session.SetCompletedOn(99, earlier)
	if len(session.Completed) != 1 {
		t.Errorf("SetCompletedOn on unknown activity changed the set: %v", session.Completed)
	}
}
