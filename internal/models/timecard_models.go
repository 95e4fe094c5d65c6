package models

import "time"

// TimecardStatus defines the type for timecard lifecycle statuses
type TimecardStatus string

const (
	TimecardStatusDraft TimecardStatus = "draft"
	// TimecardStatusEditedDraft marks a card an approver corrected and
	// returned to its owner. It behaves as a draft for submission purposes.
	TimecardStatusEditedDraft TimecardStatus = "edited_draft"
	TimecardStatusSubmitted   TimecardStatus = "submitted"
	TimecardStatusApproved    TimecardStatus = "approved"
	TimecardStatusRejected    TimecardStatus = "rejected"
)

// IsValidTimecardStatus checks if the provided status string is a valid TimecardStatus.
func IsValidTimecardStatus(status string) bool {
	switch TimecardStatus(status) {
	case TimecardStatusDraft,
		TimecardStatusEditedDraft,
		TimecardStatusSubmitted,
		TimecardStatusApproved,
		TimecardStatusRejected:
		return true
	default:
		return false
	}
}

// IsDraftLike reports whether the status accepts field edits and submission.
func (s TimecardStatus) IsDraftLike() bool {
	return s == TimecardStatusDraft || s == TimecardStatusEditedDraft || s == TimecardStatusRejected
}

// CanTransitionTimecard reports whether a status transition is legal.
// Approved is terminal; every path into rejected requires a caller reason,
// enforced at the service layer.
func CanTransitionTimecard(from, to TimecardStatus) bool {
	switch from {
	case TimecardStatusDraft, TimecardStatusEditedDraft:
		return to == TimecardStatusSubmitted
	case TimecardStatusSubmitted:
		return to == TimecardStatusApproved ||
			to == TimecardStatusRejected ||
			to == TimecardStatusEditedDraft // reject-and-return
	case TimecardStatusRejected:
		return to == TimecardStatusSubmitted || to == TimecardStatusDraft
	default:
		return false
	}
}

// Timecard is the approvable record of a worker's hours on one project.
type Timecard struct {
	ID               string         `json:"id" db:"id"`
	ProjectID        string         `json:"project_id" db:"project_id"`
	OwnerID          string         `json:"owner_id" db:"owner_id"`
	Status           TimecardStatus `json:"status" db:"status"`
	EditedManually   bool           `json:"edited_manually" db:"edited_manually"`
	EditReason       *string        `json:"edit_reason,omitempty" db:"edit_reason"`
	RejectionReason  *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	SubmittedAt      *time.Time     `json:"submitted_at,omitempty" db:"submitted_at"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedByUserID *string        `json:"resolved_by_user_id,omitempty" db:"resolved_by_user_id"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
	Entries          []TimeEntry    `json:"entries,omitempty"`
	Owner            *User          `json:"owner,omitempty"`   // For joining with owner details
	Project          *Project       `json:"project,omitempty"` // For joining with Project details
}

// TimeEntry is one work day inside a timecard. The derived columns
// (total_hours, break_minutes, total_pay) are recomputed on every edit.
type TimeEntry struct {
	ID            string     `json:"id" db:"id"`
	TimecardID    string     `json:"timecard_id" db:"timecard_id"`
	WorkDate      string     `json:"work_date" db:"work_date"` // YYYY-MM-DD
	CheckIn       time.Time  `json:"check_in" db:"check_in"`
	CheckOut      *time.Time `json:"check_out,omitempty" db:"check_out"`
	BreakStart    *time.Time `json:"break_start,omitempty" db:"break_start"`
	BreakEnd      *time.Time `json:"break_end,omitempty" db:"break_end"`
	NoBreakWaived bool       `json:"no_break_waived" db:"no_break_waived"`
	TotalHours    float64    `json:"total_hours" db:"total_hours"`
	BreakMinutes  float64    `json:"break_minutes" db:"break_minutes"`
	TotalPay      float64    `json:"total_pay" db:"total_pay"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// TimecardFilters defines the available filters for querying timecards.
type TimecardFilters struct {
	ProjectID *string `form:"project_id"`
	OwnerID   *string `form:"owner_id"`
	Status    *string `form:"status"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}

// TimecardSummary aggregates a project's timecards by status.
type TimecardSummary struct {
	ProjectID  string         `json:"project_id"`
	TotalHours float64        `json:"total_hours"`
	TotalPay   float64        `json:"total_pay"`
	ByStatus   map[string]int `json:"by_status"`
}
