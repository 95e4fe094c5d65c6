package models

import "time"

// User represents a user in the system
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Email        *string   `json:"email,omitempty" db:"email"`
	FullName     *string   `json:"full_name,omitempty" db:"full_name"`
	RoleID       *string   `json:"role_id,omitempty" db:"role_id"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	Role         *Role     `json:"role,omitempty"` // For joining with Role
}

// Role represents a user role
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// System role names. These double as the project-level assignment roles.
const (
	RoleAdmin        = "admin"
	RoleSupervisor   = "supervisor"
	RoleTalentEscort = "talent_escort"
	RoleCoordinator  = "talent_logistics_coordinator"
)

// RoleCanApprove reports whether the named role may approve or reject
// submitted timecards.
func RoleCanApprove(roleName string) bool {
	return roleName == RoleAdmin || roleName == RoleSupervisor
}

// Break classes used by the rate-rule defaults: escorts carry a shorter
// default break than the rest of the crew.
const (
	BreakClassEscort = "escort"
	BreakClassStaff  = "staff"
)

// BreakClassForRole maps an assignment role to its default-break class.
func BreakClassForRole(roleName string) string {
	if roleName == RoleTalentEscort {
		return BreakClassEscort
	}
	return BreakClassStaff
}
