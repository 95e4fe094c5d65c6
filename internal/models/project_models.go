package models

import "time"

// ProjectStatus defines the type for project lifecycle statuses
type ProjectStatus string

const (
	ProjectStatusSetup   ProjectStatus = "setup"
	ProjectStatusActive  ProjectStatus = "active"
	ProjectStatusWrapped ProjectStatus = "wrapped"
)

// IsValidProjectStatus checks if the provided status string is a valid ProjectStatus.
func IsValidProjectStatus(status string) bool {
	switch ProjectStatus(status) {
	case ProjectStatusSetup, ProjectStatusActive, ProjectStatusWrapped:
		return true
	default:
		return false
	}
}

// Project represents one production
type Project struct {
	ID                string        `json:"id" db:"id"`
	Name              string        `json:"name" db:"name" binding:"required"`
	ProductionCompany *string       `json:"production_company,omitempty" db:"production_company"`
	StartDate         *string       `json:"start_date,omitempty" db:"start_date"` // YYYY-MM-DD; gates timecard submission
	EndDate           *string       `json:"end_date,omitempty" db:"end_date"`
	Status            ProjectStatus `json:"status" db:"status"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// ProjectAssignment links a user to a project with a project role. The role
// determines the break-class defaults and whether the user can approve
// timecards on the project.
type ProjectAssignment struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	DayRate   *float64  `json:"day_rate,omitempty" db:"day_rate"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	User      *User     `json:"user,omitempty"` // For joining with user details
}
