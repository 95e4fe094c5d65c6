package models

import "time"

// TalentLocationStatus defines the type for a talent's on-set location state
type TalentLocationStatus string

const (
	TalentLocationNotArrived TalentLocationStatus = "not_arrived"
	TalentLocationOnSite     TalentLocationStatus = "on_site"
	TalentLocationOnSet      TalentLocationStatus = "on_set"
	TalentLocationWrapped    TalentLocationStatus = "wrapped"
)

// IsValidTalentLocationStatus checks if the provided status string is a valid TalentLocationStatus.
func IsValidTalentLocationStatus(status string) bool {
	switch TalentLocationStatus(status) {
	case TalentLocationNotArrived, TalentLocationOnSite, TalentLocationOnSet, TalentLocationWrapped:
		return true
	default:
		return false
	}
}

// TalentProfile represents a talent on a project's roster
type TalentProfile struct {
	ID             string               `json:"id" db:"id"`
	ProjectID      string               `json:"project_id" db:"project_id"`
	FullName       string               `json:"full_name" db:"full_name" binding:"required"`
	PhoneNumber    *string              `json:"phone_number,omitempty" db:"phone_number"`
	Email          *string              `json:"email,omitempty" db:"email"`
	RepName        *string              `json:"rep_name,omitempty" db:"rep_name"`
	RepPhone       *string              `json:"rep_phone,omitempty" db:"rep_phone"`
	LocationStatus TalentLocationStatus `json:"location_status" db:"location_status"`
	EscortUserID   *string              `json:"escort_user_id,omitempty" db:"escort_user_id"`
	Notes          *string              `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" db:"updated_at"`
}
