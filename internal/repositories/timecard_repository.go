package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"talent_tracker_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error
)

// TimecardRepository defines the interface for timecard and time entry
// database operations. Status transition legality is enforced by the
// service layer; this layer is a straight pass-through to the rows.
type TimecardRepository interface {
	CreateTimecard(executor SQLExecutor, timecard *models.Timecard) (*models.Timecard, error)
	GetTimecardByID(id string) (*models.Timecard, error)
	GetTimecards(filters models.TimecardFilters) ([]models.Timecard, int, error)
	UpdateTimecardStatus(executor SQLExecutor, id string, status models.TimecardStatus, rejectionReason *string, resolvedBy *string) error
	SetTimecardEditMeta(executor SQLExecutor, id string, editedManually bool, editReason *string) error
	CreateEntry(executor SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error)
	UpdateEntry(executor SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error)
	DeleteTimecard(executor SQLExecutor, id string) error
	GetProjectSummary(projectID string) (*models.TimecardSummary, error)
}

type timecardRepository struct {
	db *sql.DB
}

// NewTimecardRepository creates a new instance of TimecardRepository.
func NewTimecardRepository(db *sql.DB) TimecardRepository {
	return &timecardRepository{db: db}
}

func (r *timecardRepository) CreateTimecard(executor SQLExecutor, timecard *models.Timecard) (*models.Timecard, error) {
	query := `INSERT INTO timecards (id, project_id, owner_id, status, edited_manually, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	currentTime := time.Now()
	timecard.ID = uuid.New().String()
	if timecard.Status == "" {
		timecard.Status = models.TimecardStatusDraft
	}

	err := executor.QueryRow(query,
		timecard.ID, timecard.ProjectID, timecard.OwnerID, timecard.Status,
		timecard.EditedManually, currentTime, currentTime,
	).Scan(&timecard.CreatedAt, &timecard.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return nil, fmt.Errorf("%w: creating timecard (project or owner not found, constraint: %s)", ErrNotFound, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return nil, fmt.Errorf("%w: creating timecard: %v", ErrDatabaseError, err)
	}

	for i := range timecard.Entries {
		timecard.Entries[i].TimecardID = timecard.ID
		created, err := r.CreateEntry(executor, &timecard.Entries[i])
		if err != nil {
			return nil, err
		}
		timecard.Entries[i] = *created
	}
	return timecard, nil
}

func (r *timecardRepository) CreateEntry(executor SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error) {
	query := `INSERT INTO time_entries (id, timecard_id, work_date, check_in, check_out, break_start, break_end,
	            no_break_waived, total_hours, break_minutes, total_pay, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING created_at, updated_at`

	currentTime := time.Now()
	entry.ID = uuid.New().String()

	err := executor.QueryRow(query,
		entry.ID, entry.TimecardID, entry.WorkDate, entry.CheckIn, entry.CheckOut,
		entry.BreakStart, entry.BreakEnd, entry.NoBreakWaived,
		entry.TotalHours, entry.BreakMinutes, entry.TotalPay,
		currentTime, currentTime,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: an entry for work date %s already exists on this timecard", ErrDuplicateKey, entry.WorkDate)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return nil, fmt.Errorf("%w: creating time entry (timecard %s not found)", ErrNotFound, entry.TimecardID)
			}
		}
		return nil, fmt.Errorf("%w: creating time entry: %v", ErrDatabaseError, err)
	}
	return entry, nil
}

func scanTimecardRow(row scanner) (*models.Timecard, error) {
	var tc models.Timecard
	var owner models.User
	var project models.Project
	var ownerFullName sql.NullString

	err := row.Scan(
		&tc.ID, &tc.ProjectID, &tc.OwnerID, &tc.Status, &tc.EditedManually,
		&tc.EditReason, &tc.RejectionReason, &tc.SubmittedAt, &tc.ResolvedAt,
		&tc.ResolvedByUserID, &tc.CreatedAt, &tc.UpdatedAt,
		&owner.Username, &ownerFullName, &project.Name,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning timecard: %v", ErrDatabaseError, err)
	}

	owner.ID = tc.OwnerID
	if ownerFullName.Valid {
		owner.FullName = &ownerFullName.String
	}
	project.ID = tc.ProjectID
	tc.Owner = &owner
	tc.Project = &project
	return &tc, nil
}

const timecardSelect = `SELECT
	    t.id, t.project_id, t.owner_id, t.status, t.edited_manually,
	    t.edit_reason, t.rejection_reason, t.submitted_at, t.resolved_at,
	    t.resolved_by_user_id, t.created_at, t.updated_at,
	    u.username, u.full_name, p.name as project_name
	  FROM timecards t
	  JOIN users u ON t.owner_id = u.id
	  JOIN projects p ON t.project_id = p.id`

func (r *timecardRepository) GetTimecardByID(id string) (*models.Timecard, error) {
	tc, err := scanTimecardRow(r.db.QueryRow(timecardSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, err
	}

	entries, err := r.getEntries(id)
	if err != nil {
		return nil, err
	}
	tc.Entries = entries
	return tc, nil
}

func (r *timecardRepository) getEntries(timecardID string) ([]models.TimeEntry, error) {
	entries := []models.TimeEntry{}
	query := `SELECT id, timecard_id, work_date, check_in, check_out, break_start, break_end,
	            no_break_waived, total_hours, break_minutes, total_pay, created_at, updated_at
	          FROM time_entries WHERE timecard_id = $1 ORDER BY work_date ASC`

	rows, err := r.db.Query(query, timecardID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying time entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.TimeEntry
		if err := rows.Scan(
			&e.ID, &e.TimecardID, &e.WorkDate, &e.CheckIn, &e.CheckOut, &e.BreakStart, &e.BreakEnd,
			&e.NoBreakWaived, &e.TotalHours, &e.BreakMinutes, &e.TotalPay, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning time entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating time entry rows: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

func (r *timecardRepository) GetTimecards(filters models.TimecardFilters) ([]models.Timecard, int, error) {
	timecards := []models.Timecard{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    t.id, t.project_id, t.owner_id, t.status, t.edited_manually,
	    t.edit_reason, t.rejection_reason, t.submitted_at, t.resolved_at,
	    t.resolved_by_user_id, t.created_at, t.updated_at,
	    u.username, u.full_name, p.name as project_name,
	    COUNT(*) OVER() as total_count
	  FROM timecards t
	  JOIN users u ON t.owner_id = u.id
	  JOIN projects p ON t.project_id = p.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("t.project_id = $%d", argCount))
		args = append(args, *filters.ProjectID)
		argCount++
	}
	if filters.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("t.owner_id = $%d", argCount))
		args = append(args, *filters.OwnerID)
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY t.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying timecards: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc models.Timecard
		var owner models.User
		var project models.Project
		var ownerFullName sql.NullString
		var currentRowTotalCount int

		if err := rows.Scan(
			&tc.ID, &tc.ProjectID, &tc.OwnerID, &tc.Status, &tc.EditedManually,
			&tc.EditReason, &tc.RejectionReason, &tc.SubmittedAt, &tc.ResolvedAt,
			&tc.ResolvedByUserID, &tc.CreatedAt, &tc.UpdatedAt,
			&owner.Username, &ownerFullName, &project.Name,
			&currentRowTotalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning timecard from list: %v", ErrDatabaseError, err)
		}
		totalCount = currentRowTotalCount

		owner.ID = tc.OwnerID
		if ownerFullName.Valid {
			owner.FullName = &ownerFullName.String
		}
		project.ID = tc.ProjectID
		tc.Owner = &owner
		tc.Project = &project
		timecards = append(timecards, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating timecard rows: %v", ErrDatabaseError, err)
	}
	return timecards, totalCount, nil
}

// UpdateTimecardStatus writes a status transition. Moving into submitted
// stamps submitted_at; approved/rejected stamp resolved_at and the resolver.
func (r *timecardRepository) UpdateTimecardStatus(executor SQLExecutor, id string, status models.TimecardStatus, rejectionReason *string, resolvedBy *string) error {
	currentTime := time.Now()

	var submittedAt, resolvedAt interface{}
	switch status {
	case models.TimecardStatusSubmitted:
		submittedAt = currentTime
		resolvedAt = nil
	case models.TimecardStatusApproved, models.TimecardStatusRejected:
		resolvedAt = currentTime
	}

	query := `UPDATE timecards SET
	            status = $1,
	            rejection_reason = COALESCE($2, rejection_reason),
	            submitted_at = COALESCE($3, submitted_at),
	            resolved_at = COALESCE($4, resolved_at),
	            resolved_by_user_id = COALESCE($5, resolved_by_user_id),
	            updated_at = $6
	          WHERE id = $7`

	result, err := executor.Exec(query, status, rejectionReason, submittedAt, resolvedAt, resolvedBy, currentTime, id)
	if err != nil {
		return fmt.Errorf("%w: updating timecard status ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *timecardRepository) SetTimecardEditMeta(executor SQLExecutor, id string, editedManually bool, editReason *string) error {
	query := `UPDATE timecards SET edited_manually = $1, edit_reason = COALESCE($2, edit_reason), updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, editedManually, editReason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating timecard edit meta ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *timecardRepository) UpdateEntry(executor SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error) {
	query := `UPDATE time_entries SET
	            check_in = $1, check_out = $2, break_start = $3, break_end = $4,
	            no_break_waived = $5, total_hours = $6, break_minutes = $7, total_pay = $8, updated_at = $9
	          WHERE id = $10
	          RETURNING updated_at`

	entry.UpdatedAt = time.Now()
	err := executor.QueryRow(query,
		entry.CheckIn, entry.CheckOut, entry.BreakStart, entry.BreakEnd,
		entry.NoBreakWaived, entry.TotalHours, entry.BreakMinutes, entry.TotalPay,
		entry.UpdatedAt, entry.ID,
	).Scan(&entry.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating time entry ID %s: %v", ErrDatabaseError, entry.ID, err)
	}
	return entry, nil
}

func (r *timecardRepository) DeleteTimecard(executor SQLExecutor, id string) error {
	// time_entries and audit rows cascade via FK.
	query := `DELETE FROM timecards WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting timecard ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProjectSummary aggregates a project's timecards: total hours and pay
// across all entries, plus a per-status card count.
func (r *timecardRepository) GetProjectSummary(projectID string) (*models.TimecardSummary, error) {
	summary := &models.TimecardSummary{
		ProjectID: projectID,
		ByStatus:  map[string]int{},
	}

	totalsQuery := `SELECT COALESCE(SUM(e.total_hours), 0), COALESCE(SUM(e.total_pay), 0)
	          FROM time_entries e
	          JOIN timecards t ON e.timecard_id = t.id
	          WHERE t.project_id = $1`
	err := r.db.QueryRow(totalsQuery, projectID).Scan(&summary.TotalHours, &summary.TotalPay)
	if err != nil {
		return nil, fmt.Errorf("%w: summing project timecards: %v", ErrDatabaseError, err)
	}

	statusQuery := `SELECT status, COUNT(*) FROM timecards WHERE project_id = $1 GROUP BY status`
	rows, err := r.db.Query(statusQuery, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: counting timecards by status: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: scanning status count: %v", ErrDatabaseError, err)
		}
		summary.ByStatus[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating status count rows: %v", ErrDatabaseError, err)
	}
	return summary, nil
}
