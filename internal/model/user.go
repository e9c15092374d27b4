package model

import "time"

// User represents an authentication user.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin          = "admin"
	RoleInfrastructure = "infrastructure"
	RoleAreas          = "areas"
	RoleUser           = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInfrastructure, RoleAreas, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to operational staff
// (admin, infrastructure or areas). Staff roles decide on requests.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleInfrastructure || role == RoleAreas
}
