package repository

import (
	"database/sql"

	"habitforge/internal/database"
	"habitforge/internal/models"
)

// ChildRepository handles child profile database operations
type ChildRepository struct {
	db database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

// GetChildByID retrieves a child profile. Returns (nil, nil) if absent.
func (r *ChildRepository) GetChildByID(childID int64) (*models.Child, error) {
	query := `
		SELECT id, family_id, name, age, avatar_color, created_at, updated_at
		FROM children
		WHERE id = ?
	`

	child := &models.Child{}
	err := r.db.QueryRow(query, childID).Scan(
		&child.ID,
		&child.FamilyID,
		&child.Name,
		&child.Age,
		&child.AvatarColor,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return child, nil
}

// CreateChild inserts a child profile
func (r *ChildRepository) CreateChild(familyID int64, name string, age int, avatarColor string) (*models.Child, error) {
	query := `
		INSERT INTO children (family_id, name, age, avatar_color)
		VALUES (?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, familyID, name, age, avatarColor)
	if err != nil {
		return nil, err
	}

	return r.GetChildByID(id)
}

// GetFamilyByID retrieves the family a child belongs to, for parent
// notifications. Returns (nil, nil) if absent.
func (r *ChildRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := `
		SELECT id, family_code, email, created_at
		FROM families
		WHERE id = ?
	`

	family := &models.Family{}
	err := r.db.QueryRow(query, familyID).Scan(
		&family.ID,
		&family.FamilyCode,
		&family.Email,
		&family.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return family, nil
}

// GetFamilyByCode retrieves a family by its code, for device pairing.
// Returns (nil, nil) if absent.
func (r *ChildRepository) GetFamilyByCode(familyCode string) (*models.Family, error) {
	query := `
		SELECT id, family_code, email, created_at
		FROM families
		WHERE family_code = ?
	`

	family := &models.Family{}
	err := r.db.QueryRow(query, familyCode).Scan(
		&family.ID,
		&family.FamilyCode,
		&family.Email,
		&family.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return family, nil
}

// ListChildrenByFamily retrieves all child profiles in a family
func (r *ChildRepository) ListChildrenByFamily(familyID int64) ([]models.Child, error) {
	query := `
		SELECT id, family_id, name, age, avatar_color, created_at, updated_at
		FROM children
		WHERE family_id = ?
		ORDER BY id
	`

	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var child models.Child
		err := rows.Scan(
			&child.ID,
			&child.FamilyID,
			&child.Name,
			&child.Age,
			&child.AvatarColor,
			&child.CreatedAt,
			&child.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	return children, rows.Err()
}

// CreateFamily inserts a family row. Used by the seed tool.
func (r *ChildRepository) CreateFamily(familyCode, email string) (*models.Family, error) {
	query := `
		INSERT INTO families (family_code, email)
		VALUES (?, ?)
	`

	id, err := r.db.ExecReturningID(query, familyCode, email)
	if err != nil {
		return nil, err
	}

	return r.GetFamilyByID(id)
}
