package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"habitforge/internal/database"
	"habitforge/internal/models"
)

// ProgressRepository handles child progress database operations
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetChildProgress retrieves the aggregate progress record for a child.
// Returns (nil, nil) if the child has no progress row yet.
func (r *ProgressRepository) GetChildProgress(childID int64) (*models.ChildProgress, error) {
	query := `
		SELECT child_id, overall_completion, category_progress, current_streak,
		       longest_streak, last_engagement_date, total_points, revision, updated_at
		FROM child_progress
		WHERE child_id = ?
	`

	progress := &models.ChildProgress{}
	var categoryJSON string
	var lastEngagement sql.NullString

	err := r.db.QueryRow(query, childID).Scan(
		&progress.ChildID,
		&progress.OverallCompletion,
		&categoryJSON,
		&progress.CurrentStreak,
		&progress.LongestStreak,
		&lastEngagement,
		&progress.TotalPoints,
		&progress.Revision,
		&progress.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	progress.CategoryProgress = make(map[models.HabitCategory]int)
	if categoryJSON != "" {
		raw := make(map[string]int)
		if err := json.Unmarshal([]byte(categoryJSON), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode category progress for child %d: %w", childID, err)
		}
		for k, v := range raw {
			progress.CategoryProgress[models.HabitCategory(k)] = v
		}
	}

	if lastEngagement.Valid && lastEngagement.String != "" {
		date, err := time.ParseInLocation(dateLayout, lastEngagement.String, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad engagement date %q: %w", lastEngagement.String, err)
		}
		progress.LastEngagementDate = &date
	}

	return progress, nil
}

// CreateChildProgress inserts an empty progress row at revision 1. Two
// first-ever completions can race into this insert; the loser is absorbed by
// the uniqueness guard and the re-read returns whichever row won, so the
// caller's revision-guarded save sees a consistent starting point.
func (r *ProgressRepository) CreateChildProgress(childID int64) (*models.ChildProgress, error) {
	query := `
		INSERT INTO child_progress (child_id, overall_completion, category_progress,
			current_streak, longest_streak, last_engagement_date, total_points, revision)
		VALUES (?, 0, '{}', 0, 0, NULL, 0, 1)
	`

	if _, err := r.db.ExecIgnoringConflict(query, "child_id", childID); err != nil {
		return nil, err
	}

	return r.GetChildProgress(childID)
}

// SaveChildProgress writes the aggregate guarded by the revision the caller
// last read. Returns ErrRevisionMismatch if another writer won the race; on
// success the stored and in-memory revisions are bumped.
func (r *ProgressRepository) SaveChildProgress(progress *models.ChildProgress, expectedRevision int64) error {
	raw := make(map[string]int, len(progress.CategoryProgress))
	for k, v := range progress.CategoryProgress {
		raw[string(k)] = v
	}
	categoryJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode category progress: %w", err)
	}

	var lastEngagement interface{}
	if progress.LastEngagementDate != nil {
		lastEngagement = progress.LastEngagementDate.Format(dateLayout)
	}

	query := `
		UPDATE child_progress
		SET overall_completion = ?, category_progress = ?, current_streak = ?,
		    longest_streak = ?, last_engagement_date = ?, total_points = ?,
		    revision = revision + 1, updated_at = CURRENT_TIMESTAMP
		WHERE child_id = ? AND revision = ?
	`

	result, err := r.db.Exec(query,
		progress.OverallCompletion, string(categoryJSON), progress.CurrentStreak,
		progress.LongestStreak, lastEngagement, progress.TotalPoints,
		progress.ChildID, expectedRevision)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRevisionMismatch
	}

	progress.Revision = expectedRevision + 1
	return nil
}
