package models

import "time"

// Family groups child profiles under one household. Email is the parent
// contact address used for badge notifications.
type Family struct {
	ID         int64
	FamilyCode string
	Email      string
	CreatedAt  time.Time
}
