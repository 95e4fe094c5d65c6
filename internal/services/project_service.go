package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/repositories"
)

// --- Custom Service Errors for Projects ---
var (
	ErrProjectNotFound        = errors.New("project not found")
	ErrProjectNameTaken       = errors.New("a project with this name already exists")
	ErrProjectValidation      = errors.New("project validation error")
	ErrProjectInUse           = errors.New("project is referenced by other records and cannot be deleted")
	ErrAssignmentNotFound     = errors.New("project assignment not found")
	ErrAssignmentExists       = errors.New("user is already assigned to this project")
	ErrAssignmentInvalidRole  = errors.New("invalid assignment role")
	ErrAssignmentUserNotFound = errors.New("project or user not found for assignment")
)

// --- Project DTOs ---
type CreateProjectRequest struct {
	Name              string  `json:"name" binding:"required"`
	ProductionCompany *string `json:"production_company"`
	StartDate         *string `json:"start_date"` // YYYY-MM-DD
	EndDate           *string `json:"end_date"`
	Status            *string `json:"status"` // defaults to setup
}

type UpdateProjectRequest struct {
	ID                string  `json:"-"`
	Name              *string `json:"name"`
	ProductionCompany *string `json:"production_company"`
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	Status            *string `json:"status"`
}

type CreateAssignmentRequest struct {
	ProjectID string   `json:"-"`
	UserID    string   `json:"user_id" binding:"required"`
	Role      string   `json:"role" binding:"required"`
	DayRate   *float64 `json:"day_rate"`
}

// --- ProjectService Interface ---
type ProjectService interface {
	CreateProject(req CreateProjectRequest) (*models.Project, error)
	GetProjectByID(id string) (*models.Project, error)
	GetProjects(page, pageSize int, searchTerm *string) ([]models.Project, int, error)
	UpdateProject(req UpdateProjectRequest) (*models.Project, error)
	DeleteProject(id string) error

	CreateAssignment(req CreateAssignmentRequest) (*models.ProjectAssignment, error)
	GetAssignmentsByProject(projectID string) ([]models.ProjectAssignment, error)
	DeleteAssignment(id string) error
}

type projectService struct {
	projectRepo repositories.ProjectRepository
	db          *sql.DB
}

// NewProjectService creates a new instance of ProjectService.
func NewProjectService(repo repositories.ProjectRepository, db *sql.DB) ProjectService {
	return &projectService{projectRepo: repo, db: db}
}

func validateProjectDate(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *value); err != nil {
		return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrProjectValidation, field)
	}
	return nil
}

func (s *projectService) CreateProject(req CreateProjectRequest) (*models.Project, error) {
	if err := validateProjectDate("start_date", req.StartDate); err != nil {
		return nil, err
	}
	if err := validateProjectDate("end_date", req.EndDate); err != nil {
		return nil, err
	}

	status := models.ProjectStatusSetup
	if req.Status != nil && *req.Status != "" {
		if !models.IsValidProjectStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid status '%s'", ErrProjectValidation, *req.Status)
		}
		status = models.ProjectStatus(*req.Status)
	}

	project := &models.Project{
		Name:              req.Name,
		ProductionCompany: req.ProductionCompany,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            status,
	}

	created, err := s.projectRepo.CreateProject(s.db, project)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to create project in repository: %w", err)
	}
	return created, nil
}

func (s *projectService) GetProjectByID(id string) (*models.Project, error) {
	project, err := s.projectRepo.GetProjectByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}
	return project, nil
}

func (s *projectService) GetProjects(page, pageSize int, searchTerm *string) ([]models.Project, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	projects, totalCount, err := s.projectRepo.GetProjects(page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get projects: %w", err)
	}
	return projects, totalCount, nil
}

func (s *projectService) UpdateProject(req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.projectRepo.GetProjectByID(req.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project for update: %w", err)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.ProductionCompany != nil {
		project.ProductionCompany = req.ProductionCompany
	}
	if req.StartDate != nil {
		if err := validateProjectDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		if err := validateProjectDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
		project.EndDate = req.EndDate
	}
	if req.Status != nil {
		if !models.IsValidProjectStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid status '%s'", ErrProjectValidation, *req.Status)
		}
		project.Status = models.ProjectStatus(*req.Status)
	}

	updated, err := s.projectRepo.UpdateProject(s.db, project)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to update project in repository: %w", err)
	}
	return updated, nil
}

func (s *projectService) DeleteProject(id string) error {
	err := s.projectRepo.DeleteProject(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProjectNotFound
		}
		if errors.Is(err, repositories.ErrDatabaseError) {
			// The repository wraps foreign-key violations as a database error
			// with the constraint named; surface a friendlier sentinel.
			return ErrProjectInUse
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// --- Assignments ---

func (s *projectService) CreateAssignment(req CreateAssignmentRequest) (*models.ProjectAssignment, error) {
	if !isValidRoleName(req.Role) {
		return nil, fmt.Errorf("%w: '%s'", ErrAssignmentInvalidRole, req.Role)
	}
	if req.DayRate != nil && *req.DayRate < 0 {
		return nil, fmt.Errorf("%w: day_rate must be non-negative", ErrProjectValidation)
	}

	assignment := &models.ProjectAssignment{
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Role:      req.Role,
		DayRate:   req.DayRate,
	}

	created, err := s.projectRepo.CreateAssignment(s.db, assignment)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAssignmentExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentUserNotFound
		}
		return nil, fmt.Errorf("failed to create assignment in repository: %w", err)
	}
	return s.projectRepo.GetAssignmentByID(created.ID)
}

func (s *projectService) GetAssignmentsByProject(projectID string) ([]models.ProjectAssignment, error) {
	if _, err := s.projectRepo.GetProjectByID(projectID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to check project existence: %w", err)
	}
	assignments, err := s.projectRepo.GetAssignmentsByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	return assignments, nil
}

func (s *projectService) DeleteAssignment(id string) error {
	err := s.projectRepo.DeleteAssignment(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}
