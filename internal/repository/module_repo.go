package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"habitforge/internal/database"
	"habitforge/internal/models"
)

// ModuleRepository handles content module database operations
type ModuleRepository struct {
	db database.DBTX
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db database.DBTX) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// GetModuleByID retrieves a module with its ordered activities.
// Returns (nil, nil) if the module does not exist.
func (r *ModuleRepository) GetModuleByID(moduleID int64) (*models.ContentModule, error) {
	query := `
		SELECT id, title, category, status, min_age, max_age, version, created_at, updated_at
		FROM modules
		WHERE id = ?
	`

	module := &models.ContentModule{}
	var category string
	var status string

	err := r.db.QueryRow(query, moduleID).Scan(
		&module.ID,
		&module.Title,
		&category,
		&status,
		&module.MinAge,
		&module.MaxAge,
		&module.Version,
		&module.CreatedAt,
		&module.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	module.Category = models.HabitCategory(category)
	module.Status = models.ModuleStatus(status)

	activities, err := r.getActivities(module.ID)
	if err != nil {
		return nil, err
	}
	module.Activities = activities

	return module, nil
}

// ListPublishedForAge retrieves all published modules targeting the given
// age, with activities, ordered by category then id. This is the module set
// that counts toward a child's completion percentages and offline package.
func (r *ModuleRepository) ListPublishedForAge(age int) ([]models.ContentModule, error) {
	query := `
		SELECT id, title, category, status, min_age, max_age, version, created_at, updated_at
		FROM modules
		WHERE status = 'published' AND min_age <= ? AND max_age >= ?
		ORDER BY category, id
	`

	rows, err := r.db.Query(query, age, age)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []models.ContentModule
	for rows.Next() {
		var module models.ContentModule
		var category, status string
		err := rows.Scan(
			&module.ID,
			&module.Title,
			&category,
			&status,
			&module.MinAge,
			&module.MaxAge,
			&module.Version,
			&module.CreatedAt,
			&module.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		module.Category = models.HabitCategory(category)
		module.Status = models.ModuleStatus(status)
		modules = append(modules, module)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range modules {
		activities, err := r.getActivities(modules[i].ID)
		if err != nil {
			return nil, err
		}
		modules[i].Activities = activities
	}

	return modules, nil
}

// CreateModule inserts a module and its activities. Used by the seed tool.
func (r *ModuleRepository) CreateModule(module *models.ContentModule) (*models.ContentModule, error) {
	query := `
		INSERT INTO modules (title, category, status, min_age, max_age, version)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		module.Title, string(module.Category), string(module.Status),
		module.MinAge, module.MaxAge, module.Version)
	if err != nil {
		return nil, err
	}

	for i := range module.Activities {
		activity := &module.Activities[i]
		activity.ModuleID = id
		activity.Position = i
		if err := r.createActivity(activity); err != nil {
			return nil, fmt.Errorf("failed to create activity %q: %w", activity.Title, err)
		}
	}

	return r.GetModuleByID(id)
}

// UpdateModuleStatus moves a module through its lifecycle and bumps the
// content version so cached offline packages report as outdated.
func (r *ModuleRepository) UpdateModuleStatus(moduleID int64, status models.ModuleStatus) error {
	query := `
		UPDATE modules
		SET status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, string(status), moduleID)
	return err
}

// getActivities retrieves a module's activities in canonical order
func (r *ModuleRepository) getActivities(moduleID int64) ([]models.Activity, error) {
	query := `
		SELECT id, module_id, title, type, duration_minutes, points, steps, position
		FROM activities
		WHERE module_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var activity models.Activity
		var stepsJSON string
		err := rows.Scan(
			&activity.ID,
			&activity.ModuleID,
			&activity.Title,
			&activity.Type,
			&activity.DurationMinutes,
			&activity.Points,
			&stepsJSON,
			&activity.Position,
		)
		if err != nil {
			return nil, err
		}
		if stepsJSON != "" {
			if err := json.Unmarshal([]byte(stepsJSON), &activity.Steps); err != nil {
				return nil, fmt.Errorf("failed to decode steps for activity %d: %w", activity.ID, err)
			}
		}
		activities = append(activities, activity)
	}

	return activities, rows.Err()
}

// createActivity inserts one activity row
func (r *ModuleRepository) createActivity(activity *models.Activity) error {
	steps, err := json.Marshal(activity.Steps)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO activities (module_id, title, type, duration_minutes, points, steps, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query,
		activity.ModuleID, activity.Title, activity.Type,
		activity.DurationMinutes, activity.Points, string(steps), activity.Position)
	if err != nil {
		return err
	}
	activity.ID = id
	return nil
}
