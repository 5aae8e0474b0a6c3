package models

import "fmt"

// Role is the single closed role enumeration for the whole system.
// Roles are resolved once from the request token in middleware and passed
// down; services never compare raw role strings.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
	RoleAdmin  Role = "admin"
)

// ParseRole validates a raw role claim. Role strings are canonically
// lowercase; anything else is rejected rather than normalized.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParent, RoleChild, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}
