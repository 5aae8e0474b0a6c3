package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"habitforge/internal/database"
	"habitforge/internal/models"
)

// completedRow is the persisted JSON encoding of one completed activity.
// Dates are stored as calendar dates only; the engine never sees this type.
type completedRow struct {
	ActivityID  int64  `json:"activity_id"`
	CompletedOn string `json:"completed_on"`
}

const dateLayout = "2006-01-02"

// SessionRepository handles workshop session database operations
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetSessionByID retrieves a session by ID. Returns (nil, nil) if absent.
func (r *SessionRepository) GetSessionByID(sessionID int64) (*models.WorkshopSession, error) {
	query := `
		SELECT id, child_id, module_id, completed, started_at, last_accessed_at, completed_at, revision
		FROM workshop_sessions
		WHERE id = ?
	`
	return r.scanSession(r.db.QueryRow(query, sessionID))
}

// GetSessionByChildAndModule retrieves the unique session for a
// (child, module) pair. Returns (nil, nil) if the child never started the
// module.
func (r *SessionRepository) GetSessionByChildAndModule(childID, moduleID int64) (*models.WorkshopSession, error) {
	query := `
		SELECT id, child_id, module_id, completed, started_at, last_accessed_at, completed_at, revision
		FROM workshop_sessions
		WHERE child_id = ? AND module_id = ?
	`
	return r.scanSession(r.db.QueryRow(query, childID, moduleID))
}

// ListSessionsByChild retrieves all of a child's sessions
func (r *SessionRepository) ListSessionsByChild(childID int64) ([]*models.WorkshopSession, error) {
	query := `
		SELECT id, child_id, module_id, completed, started_at, last_accessed_at, completed_at, revision
		FROM workshop_sessions
		WHERE child_id = ?
		ORDER BY started_at ASC
	`

	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.WorkshopSession
	for rows.Next() {
		session, err := r.scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// CreateSession inserts a new active session with no completions
func (r *SessionRepository) CreateSession(childID, moduleID int64) (*models.WorkshopSession, error) {
	query := `
		INSERT INTO workshop_sessions (child_id, module_id, completed, started_at, last_accessed_at, revision)
		VALUES (?, ?, ?, ?, ?, 1)
	`

	now := time.Now().UTC()
	id, err := r.db.ExecReturningID(query, childID, moduleID, "[]", now, now)
	if err != nil {
		return nil, err
	}

	return r.GetSessionByID(id)
}

// SaveSession writes the session's mutable state guarded by the revision the
// caller last read. Returns ErrRevisionMismatch when another writer got
// there first; the stored revision is bumped on success and the in-memory
// session updated to match.
func (r *SessionRepository) SaveSession(session *models.WorkshopSession, expectedRevision int64) error {
	completed, err := encodeCompleted(session.Completed)
	if err != nil {
		return fmt.Errorf("failed to encode completions: %w", err)
	}

	var completedAt interface{}
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	query := `
		UPDATE workshop_sessions
		SET completed = ?, last_accessed_at = ?, completed_at = ?, revision = revision + 1
		WHERE id = ? AND revision = ?
	`

	result, err := r.db.Exec(query, completed, session.LastAccessedAt, completedAt, session.ID, expectedRevision)
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

	session.Revision = expectedRevision + 1
	return nil
}

// CountCompletedModules returns how many of the child's sessions have
// reached the terminal completed state.
func (r *SessionRepository) CountCompletedModules(childID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM workshop_sessions WHERE child_id = ? AND completed_at IS NOT NULL"
	err := r.db.QueryRow(query, childID).Scan(&count)
	return count, err
}

// scanner abstracts sql.Row and sql.Rows for session scanning
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *SessionRepository) scanSession(row *sql.Row) (*models.WorkshopSession, error) {
	session, err := scanSessionFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return session, err
}

func (r *SessionRepository) scanSessionRows(rows *sql.Rows) (*models.WorkshopSession, error) {
	return scanSessionFrom(rows)
}

func scanSessionFrom(s scanner) (*models.WorkshopSession, error) {
	session := &models.WorkshopSession{}
	var completedJSON string
	var completedAt sql.NullTime

	err := s.Scan(
		&session.ID,
		&session.ChildID,
		&session.ModuleID,
		&completedJSON,
		&session.StartedAt,
		&session.LastAccessedAt,
		&completedAt,
		&session.Revision,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}

	completed, err := decodeCompleted(completedJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode completions for session %d: %w", session.ID, err)
	}
	session.Completed = completed

	return session, nil
}

// encodeCompleted marshals completions to the stored JSON array
func encodeCompleted(completed []models.CompletedActivity) (string, error) {
	rows := make([]completedRow, len(completed))
	for i, c := range completed {
		rows[i] = completedRow{
			ActivityID:  c.ActivityID,
			CompletedOn: c.CompletedOn.Format(dateLayout),
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeCompleted unmarshals the stored JSON array into typed completions
func decodeCompleted(data string) ([]models.CompletedActivity, error) {
	if data == "" {
		return nil, nil
	}

	var rows []completedRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, err
	}

	completed := make([]models.CompletedActivity, 0, len(rows))
	for _, row := range rows {
		date, err := time.ParseInLocation(dateLayout, row.CompletedOn, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad completion date %q: %w", row.CompletedOn, err)
		}
		completed = append(completed, models.CompletedActivity{
			ActivityID:  row.ActivityID,
			CompletedOn: date,
		})
	}
	return completed, nil
}
