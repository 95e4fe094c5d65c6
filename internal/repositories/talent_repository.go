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

// TalentRepository defines the interface for talent roster database operations.
type TalentRepository interface {
	CreateTalent(executor SQLExecutor, talent *models.TalentProfile) (*models.TalentProfile, error)
	GetTalentByID(id string) (*models.TalentProfile, error)
	GetTalent(projectID *string, page, pageSize int, searchTerm *string) ([]models.TalentProfile, int, error)
	UpdateTalent(executor SQLExecutor, talent *models.TalentProfile) (*models.TalentProfile, error)
	UpdateLocationStatus(executor SQLExecutor, id string, status models.TalentLocationStatus) error
	DeleteTalent(executor SQLExecutor, id string) error
}

type talentRepository struct {
	db *sql.DB
}

// NewTalentRepository creates a new instance of TalentRepository.
func NewTalentRepository(db *sql.DB) TalentRepository {
	return &talentRepository{db: db}
}

func (r *talentRepository) CreateTalent(executor SQLExecutor, talent *models.TalentProfile) (*models.TalentProfile, error) {
	query := `INSERT INTO talent_profiles (id, project_id, full_name, phone_number, email, rep_name, rep_phone, location_status, escort_user_id, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING created_at, updated_at`

	currentTime := time.Now()
	talent.ID = uuid.New().String()
	if talent.LocationStatus == "" {
		talent.LocationStatus = models.TalentLocationNotArrived
	}

	err := executor.QueryRow(query,
		talent.ID, talent.ProjectID, talent.FullName, talent.PhoneNumber, talent.Email,
		talent.RepName, talent.RepPhone, talent.LocationStatus, talent.EscortUserID,
		talent.Notes, currentTime, currentTime,
	).Scan(&talent.CreatedAt, &talent.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, fmt.Errorf("%w: creating talent (project or escort not found, constraint: %s)", ErrNotFound, pqErr.Constraint)
		}
		return nil, fmt.Errorf("%w: creating talent profile: %v", ErrDatabaseError, err)
	}
	return talent, nil
}

func scanTalentRow(row scanner) (*models.TalentProfile, error) {
	var talent models.TalentProfile

	err := row.Scan(
		&talent.ID, &talent.ProjectID, &talent.FullName, &talent.PhoneNumber, &talent.Email,
		&talent.RepName, &talent.RepPhone, &talent.LocationStatus, &talent.EscortUserID,
		&talent.Notes, &talent.CreatedAt, &talent.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning talent profile: %v", ErrDatabaseError, err)
	}
	return &talent, nil
}

const talentSelect = `SELECT id, project_id, full_name, phone_number, email, rep_name, rep_phone, location_status, escort_user_id, notes, created_at, updated_at
	  FROM talent_profiles`

func (r *talentRepository) GetTalentByID(id string) (*models.TalentProfile, error) {
	return scanTalentRow(r.db.QueryRow(talentSelect+` WHERE id = $1`, id))
}

func (r *talentRepository) GetTalent(projectID *string, page, pageSize int, searchTerm *string) ([]models.TalentProfile, int, error) {
	talents := []models.TalentProfile{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    id, project_id, full_name, phone_number, email, rep_name, rep_phone, location_status, escort_user_id, notes, created_at, updated_at,
	    COUNT(*) OVER() as total_count
	  FROM talent_profiles`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if projectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argCount))
		args = append(args, *projectID)
		argCount++
	}
	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) ILIKE $%d OR LOWER(rep_name) ILIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY full_name ASC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			offset := (page - 1) * pageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying talent profiles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var talent models.TalentProfile
		var currentRowTotalCount int

		err := rows.Scan(
			&talent.ID, &talent.ProjectID, &talent.FullName, &talent.PhoneNumber, &talent.Email,
			&talent.RepName, &talent.RepPhone, &talent.LocationStatus, &talent.EscortUserID,
			&talent.Notes, &talent.CreatedAt, &talent.UpdatedAt,
			&currentRowTotalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning talent profile from list: %v", ErrDatabaseError, err)
		}
		totalCount = currentRowTotalCount
		talents = append(talents, talent)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating talent rows: %v", ErrDatabaseError, err)
	}
	return talents, totalCount, nil
}

func (r *talentRepository) UpdateTalent(executor SQLExecutor, talent *models.TalentProfile) (*models.TalentProfile, error) {
	query := `UPDATE talent_profiles SET
	            full_name = $1, phone_number = $2, email = $3, rep_name = $4, rep_phone = $5,
	            location_status = $6, escort_user_id = $7, notes = $8, updated_at = $9
	          WHERE id = $10
	          RETURNING updated_at`

	talent.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		talent.FullName, talent.PhoneNumber, talent.Email, talent.RepName, talent.RepPhone,
		talent.LocationStatus, talent.EscortUserID, talent.Notes, talent.UpdatedAt, talent.ID,
	).Scan(&talent.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating talent profile ID %s: %v", ErrDatabaseError, talent.ID, err)
	}
	return talent, nil
}

func (r *talentRepository) UpdateLocationStatus(executor SQLExecutor, id string, status models.TalentLocationStatus) error {
	query := `UPDATE talent_profiles SET location_status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating talent location status ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *talentRepository) DeleteTalent(executor SQLExecutor, id string) error {
	query := `DELETE FROM talent_profiles WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting talent profile ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
