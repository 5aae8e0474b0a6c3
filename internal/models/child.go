package models

import "time"

// Child represents a child profile in the system
type Child struct {
	ID          int64
	FamilyID    int64
	Name        string
	Age         int
	AvatarColor string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
