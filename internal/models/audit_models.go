package models

import "time"

// AuditAction defines the type for audit-log action tags
type AuditAction string

const (
	AuditActionUserEdit      AuditAction = "user_edit"
	AuditActionAdminEdit     AuditAction = "admin_edit"
	AuditActionRejectionEdit AuditAction = "rejection_edit"
	AuditActionStatusChange  AuditAction = "status_change"
)

// ClassifyEditAction is the single place field edits are tagged by actor
// identity. Identity checks never appear at call sites; callers pass the
// facts and get the tag.
func ClassifyEditAction(actorID, ownerID string, actorCanApprove, isReturnToDraft bool) AuditAction {
	switch {
	case isReturnToDraft:
		return AuditActionRejectionEdit
	case actorID == ownerID:
		return AuditActionUserEdit
	case actorCanApprove:
		return AuditActionAdminEdit
	default:
		// An actor with neither ownership nor approval rights should have
		// been rejected before this point; tag it as a user edit so the
		// trail still records who touched the row.
		return AuditActionUserEdit
	}
}

// AuditEntry is one field-level change record. All rows written for one
// save share a change_id.
type AuditEntry struct {
	ID          string      `json:"id" db:"id"`
	TimecardID  string      `json:"timecard_id" db:"timecard_id"`
	ChangeID    string      `json:"change_id" db:"change_id"`
	FieldName   string      `json:"field_name" db:"field_name"`
	OldValue    *string     `json:"old_value,omitempty" db:"old_value"`
	NewValue    *string     `json:"new_value,omitempty" db:"new_value"`
	ActorID     string      `json:"actor_id" db:"actor_id"`
	Action      AuditAction `json:"action" db:"action"`
	EditReason  *string     `json:"edit_reason,omitempty" db:"edit_reason"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// FieldChange is a pending audit row produced by the service layer while
// diffing an edit, before the change_id is stamped on.
type FieldChange struct {
	FieldName string
	OldValue  *string
	NewValue  *string
}
