package models

import "time"

// RateRule is a stored pay/break configuration, either the single global
// defaults row or a per-project, per-break-class override.
type RateRule struct {
	ID                      string    `json:"id" db:"id"`
	ProjectID               *string   `json:"project_id,omitempty" db:"project_id"` // nil for the global row
	BreakClass              string    `json:"break_class" db:"break_class"`         // escort | staff
	Rate                    float64   `json:"rate" db:"rate"`
	TimeType                string    `json:"time_type" db:"time_type"` // hourly | daily
	OvertimeThresholdHours  float64   `json:"overtime_threshold_hours" db:"overtime_threshold_hours"`
	OvertimeMultiplier      float64   `json:"overtime_multiplier" db:"overtime_multiplier"`
	DefaultBreakMinutes     int       `json:"default_break_minutes" db:"default_break_minutes"`
	BreakGracePeriodMinutes int       `json:"break_grace_period_minutes" db:"break_grace_period_minutes"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

// GlobalSettings is the single configuration row of system-wide limits.
// It is read once per request and passed into the calculation layer as
// values; nothing reads it mid-calculation.
type GlobalSettings struct {
	ID                      string    `json:"id" db:"id"`
	MaxShiftHours           float64   `json:"max_shift_hours" db:"max_shift_hours"`
	OvertimeWarningHours    float64   `json:"overtime_warning_hours" db:"overtime_warning_hours"`
	EnforceSubmissionTiming bool      `json:"enforce_submission_timing" db:"enforce_submission_timing"`
	ManualEditHoursDelta    float64   `json:"manual_edit_hours_delta" db:"manual_edit_hours_delta"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}
