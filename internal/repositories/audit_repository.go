package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"talent_tracker_backend/internal/models"

	"github.com/google/uuid"
)

// AuditRepository defines the interface for audit-log database operations.
// Writes here are composed best-effort by the service layer: a failure must
// never roll back the primary timecard write.
type AuditRepository interface {
	AppendEntries(executor SQLExecutor, entries []models.AuditEntry) error
	GetEntriesByTimecard(timecardID string) ([]models.AuditEntry, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

// AppendEntries inserts one row per changed field. Callers stamp a shared
// ChangeID on every entry of a single save before calling.
func (r *auditRepository) AppendEntries(executor SQLExecutor, entries []models.AuditEntry) error {
	query := `INSERT INTO timecard_audit_log (id, timecard_id, change_id, field_name, old_value, new_value, actor_id, action, edit_reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	currentTime := time.Now()
	for i := range entries {
		e := &entries[i]
		e.ID = uuid.New().String()
		e.CreatedAt = currentTime
		if _, err := executor.Exec(query,
			e.ID, e.TimecardID, e.ChangeID, e.FieldName, e.OldValue, e.NewValue,
			e.ActorID, e.Action, e.EditReason, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("%w: appending audit entry for field %s: %v", ErrDatabaseError, e.FieldName, err)
		}
	}
	return nil
}

func (r *auditRepository) GetEntriesByTimecard(timecardID string) ([]models.AuditEntry, error) {
	entries := []models.AuditEntry{}
	query := `SELECT id, timecard_id, change_id, field_name, old_value, new_value, actor_id, action, edit_reason, created_at
	          FROM timecard_audit_log WHERE timecard_id = $1 ORDER BY created_at DESC, field_name ASC`

	rows, err := r.db.Query(query, timecardID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying audit entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(
			&e.ID, &e.TimecardID, &e.ChangeID, &e.FieldName, &e.OldValue, &e.NewValue,
			&e.ActorID, &e.Action, &e.EditReason, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning audit entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating audit entry rows: %v", ErrDatabaseError, err)
	}
	return entries, nil
}
