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

// ProjectRepository defines the interface for project and assignment related database operations.
type ProjectRepository interface {
	// Project methods
	CreateProject(executor SQLExecutor, project *models.Project) (*models.Project, error)
	GetProjectByID(id string) (*models.Project, error)
	GetProjects(page, pageSize int, searchTerm *string) ([]models.Project, int, error)
	UpdateProject(executor SQLExecutor, project *models.Project) (*models.Project, error)
	DeleteProject(executor SQLExecutor, id string) error

	// Assignment methods
	CreateAssignment(executor SQLExecutor, assignment *models.ProjectAssignment) (*models.ProjectAssignment, error)
	GetAssignmentByID(id string) (*models.ProjectAssignment, error)
	GetAssignment(projectID, userID string) (*models.ProjectAssignment, error)
	GetAssignmentsByProject(projectID string) ([]models.ProjectAssignment, error)
	DeleteAssignment(executor SQLExecutor, id string) error
}

type projectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// --- Project Methods ---

func (r *projectRepository) CreateProject(executor SQLExecutor, project *models.Project) (*models.Project, error) {
	query := `INSERT INTO projects (id, name, production_company, start_date, end_date, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at, updated_at`

	currentTime := time.Now()
	project.ID = uuid.New().String()

	var startDate, endDate sql.NullString
	if project.StartDate != nil {
		startDate = sql.NullString{String: *project.StartDate, Valid: true}
	}
	if project.EndDate != nil {
		endDate = sql.NullString{String: *project.EndDate, Valid: true}
	}

	err := executor.QueryRow(query,
		project.ID, project.Name, project.ProductionCompany, startDate, endDate,
		project.Status, currentTime, currentTime,
	).Scan(&project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: project name '%s' already exists", ErrDuplicateKey, project.Name)
		}
		return nil, fmt.Errorf("%w: creating project: %v", ErrDatabaseError, err)
	}
	return project, nil
}

func scanProjectRow(row scanner) (*models.Project, error) {
	var project models.Project
	var startDate, endDate sql.NullString

	err := row.Scan(
		&project.ID, &project.Name, &project.ProductionCompany, &startDate, &endDate,
		&project.Status, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning project: %v", ErrDatabaseError, err)
	}

	if startDate.Valid {
		project.StartDate = &startDate.String
	}
	if endDate.Valid {
		project.EndDate = &endDate.String
	}
	return &project, nil
}

func (r *projectRepository) GetProjectByID(id string) (*models.Project, error) {
	query := `SELECT id, name, production_company, start_date, end_date, status, created_at, updated_at
	          FROM projects WHERE id = $1`
	return scanProjectRow(r.db.QueryRow(query, id))
}

func (r *projectRepository) GetProjects(page, pageSize int, searchTerm *string) ([]models.Project, int, error) {
	projects := []models.Project{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    id, name, production_company, start_date, end_date, status, created_at, updated_at,
	    COUNT(*) OVER() as total_count
	  FROM projects`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) ILIKE $%d OR LOWER(production_company) ILIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name ASC")

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
		return nil, 0, fmt.Errorf("%w: querying projects: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var project models.Project
		var startDate, endDate sql.NullString
		// Must scan totalCount from each row when using COUNT(*) OVER()
		var currentRowTotalCount int

		err := rows.Scan(
			&project.ID, &project.Name, &project.ProductionCompany, &startDate, &endDate,
			&project.Status, &project.CreatedAt, &project.UpdatedAt,
			&currentRowTotalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning project from list: %v", ErrDatabaseError, err)
		}
		totalCount = currentRowTotalCount

		if startDate.Valid {
			project.StartDate = &startDate.String
		}
		if endDate.Valid {
			project.EndDate = &endDate.String
		}
		projects = append(projects, project)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating project rows: %v", ErrDatabaseError, err)
	}
	return projects, totalCount, nil
}

func (r *projectRepository) UpdateProject(executor SQLExecutor, project *models.Project) (*models.Project, error) {
	query := `UPDATE projects SET
	            name = $1, production_company = $2, start_date = $3,
	            end_date = $4, status = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING updated_at`

	project.UpdatedAt = time.Now()
	var startDate, endDate sql.NullString
	if project.StartDate != nil {
		startDate = sql.NullString{String: *project.StartDate, Valid: true}
	}
	if project.EndDate != nil {
		endDate = sql.NullString{String: *project.EndDate, Valid: true}
	}

	err := executor.QueryRow(query,
		project.Name, project.ProductionCompany, startDate, endDate,
		project.Status, project.UpdatedAt, project.ID,
	).Scan(&project.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating project ID %s: %v", ErrDatabaseError, project.ID, err)
	}
	return project, nil
}

func (r *projectRepository) DeleteProject(executor SQLExecutor, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: project ID %s cannot be deleted as it is referenced in other records (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting project ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Assignment Methods ---

func (r *projectRepository) CreateAssignment(executor SQLExecutor, assignment *models.ProjectAssignment) (*models.ProjectAssignment, error) {
	query := `INSERT INTO project_assignments (id, project_id, user_id, role, day_rate, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	currentTime := time.Now()
	assignment.ID = uuid.New().String()

	err := executor.QueryRow(query,
		assignment.ID, assignment.ProjectID, assignment.UserID, assignment.Role,
		assignment.DayRate, currentTime, currentTime,
	).Scan(&assignment.CreatedAt, &assignment.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: user %s is already assigned to project %s", ErrDuplicateKey, assignment.UserID, assignment.ProjectID)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return nil, fmt.Errorf("%w: creating assignment (project or user not found, constraint: %s)", ErrNotFound, pqErr.Constraint)
			}
		}
		return nil, fmt.Errorf("%w: creating assignment: %v", ErrDatabaseError, err)
	}
	return assignment, nil
}

func scanAssignmentRow(row scanner) (*models.ProjectAssignment, error) {
	var assignment models.ProjectAssignment
	var user models.User
	var userFullName sql.NullString

	err := row.Scan(
		&assignment.ID, &assignment.ProjectID, &assignment.UserID, &assignment.Role,
		&assignment.DayRate, &assignment.CreatedAt, &assignment.UpdatedAt,
		&user.ID, &user.Username, &userFullName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning assignment: %v", ErrDatabaseError, err)
	}

	if userFullName.Valid {
		user.FullName = &userFullName.String
	}
	assignment.User = &user
	return &assignment, nil
}

const assignmentSelect = `SELECT
	    pa.id, pa.project_id, pa.user_id, pa.role, pa.day_rate, pa.created_at, pa.updated_at,
	    u.id as user_id_fk, u.username, u.full_name
	  FROM project_assignments pa
	  JOIN users u ON pa.user_id = u.id`

func (r *projectRepository) GetAssignmentByID(id string) (*models.ProjectAssignment, error) {
	return scanAssignmentRow(r.db.QueryRow(assignmentSelect+` WHERE pa.id = $1`, id))
}

func (r *projectRepository) GetAssignment(projectID, userID string) (*models.ProjectAssignment, error) {
	return scanAssignmentRow(r.db.QueryRow(assignmentSelect+` WHERE pa.project_id = $1 AND pa.user_id = $2`, projectID, userID))
}

func (r *projectRepository) GetAssignmentsByProject(projectID string) ([]models.ProjectAssignment, error) {
	assignments := []models.ProjectAssignment{}

	rows, err := r.db.Query(assignmentSelect+` WHERE pa.project_id = $1 ORDER BY u.full_name ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying assignments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		assignment, err := scanAssignmentRow(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating assignment rows: %v", ErrDatabaseError, err)
	}
	return assignments, nil
}

func (r *projectRepository) DeleteAssignment(executor SQLExecutor, id string) error {
	query := `DELETE FROM project_assignments WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting assignment ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
