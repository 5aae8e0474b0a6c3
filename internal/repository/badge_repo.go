package repository

import (
	"database/sql"
	"time"

	"habitforge/internal/database"
	"habitforge/internal/models"
)

// BadgeRepository handles badge definition and award database operations
type BadgeRepository struct {
	db database.DBTX
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db database.DBTX) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// ListBadges retrieves every badge definition
func (r *BadgeRepository) ListBadges() ([]models.Badge, error) {
	query := `
		SELECT id, name, description, icon, kind, threshold, category
		FROM badges
		ORDER BY id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var badge models.Badge
		var kind string
		var category sql.NullString
		err := rows.Scan(
			&badge.ID,
			&badge.Name,
			&badge.Description,
			&badge.Icon,
			&kind,
			&badge.Threshold,
			&category,
		)
		if err != nil {
			return nil, err
		}
		badge.Kind = models.BadgeKind(kind)
		if category.Valid {
			badge.Category = models.HabitCategory(category.String)
		}
		badges = append(badges, badge)
	}

	return badges, rows.Err()
}

// ListEarnedBadges retrieves a child's award records
func (r *BadgeRepository) ListEarnedBadges(childID int64) ([]models.EarnedBadge, error) {
	query := `
		SELECT child_id, badge_id, earned_at
		FROM earned_badges
		WHERE child_id = ?
		ORDER BY earned_at ASC
	`

	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earned []models.EarnedBadge
	for rows.Next() {
		var e models.EarnedBadge
		if err := rows.Scan(&e.ChildID, &e.BadgeID, &e.EarnedAt); err != nil {
			return nil, err
		}
		earned = append(earned, e)
	}

	return earned, rows.Err()
}

// RecordEarnedBadge inserts an award row, relying on the (child_id, badge_id)
// uniqueness constraint to make redundant awards a no-op. Returns true only
// when this call created the row, so duplicate or replayed events can never
// award twice.
func (r *BadgeRepository) RecordEarnedBadge(childID, badgeID int64) (bool, error) {
	query := `
		INSERT INTO earned_badges (child_id, badge_id, earned_at)
		VALUES (?, ?, ?)
	`

	inserted, err := r.db.ExecIgnoringConflict(query, "child_id, badge_id", childID, badgeID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// CreateBadge inserts a badge definition. Used by the seed tool.
func (r *BadgeRepository) CreateBadge(badge *models.Badge) (int64, error) {
	query := `
		INSERT INTO badges (name, description, icon, kind, threshold, category)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var category interface{}
	if badge.Category != "" {
		category = string(badge.Category)
	}

	return r.db.ExecReturningID(query,
		badge.Name, badge.Description, badge.Icon,
		string(badge.Kind), badge.Threshold, category)
}
