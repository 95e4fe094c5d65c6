package services

import (
	"database/sql"
	"errors"
	"fmt"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/repositories"
)

// --- Custom Service Errors for Talent ---
var (
	ErrTalentNotFound        = errors.New("talent profile not found")
	ErrTalentValidation      = errors.New("talent profile validation error")
	ErrTalentInvalidLocation = errors.New("invalid talent location status")
)

// --- Talent DTOs ---
type CreateTalentRequest struct {
	ProjectID    string  `json:"project_id" binding:"required"`
	FullName     string  `json:"full_name" binding:"required"`
	PhoneNumber  *string `json:"phone_number"`
	Email        *string `json:"email"`
	RepName      *string `json:"rep_name"`
	RepPhone     *string `json:"rep_phone"`
	EscortUserID *string `json:"escort_user_id"`
	Notes        *string `json:"notes"`
}

type UpdateTalentRequest struct {
	ID           string  `json:"-"`
	FullName     *string `json:"full_name"`
	PhoneNumber  *string `json:"phone_number"`
	Email        *string `json:"email"`
	RepName      *string `json:"rep_name"`
	RepPhone     *string `json:"rep_phone"`
	EscortUserID *string `json:"escort_user_id"`
	Notes        *string `json:"notes"`
}

// --- TalentService Interface ---
type TalentService interface {
	CreateTalent(req CreateTalentRequest) (*models.TalentProfile, error)
	GetTalentByID(id string) (*models.TalentProfile, error)
	GetTalent(projectID *string, page, pageSize int, searchTerm *string) ([]models.TalentProfile, int, error)
	UpdateTalent(req UpdateTalentRequest) (*models.TalentProfile, error)
	UpdateLocationStatus(id, status string) (*models.TalentProfile, error)
	DeleteTalent(id string) error
}

type talentService struct {
	talentRepo repositories.TalentRepository
	db         *sql.DB
}

// NewTalentService creates a new instance of TalentService.
func NewTalentService(repo repositories.TalentRepository, db *sql.DB) TalentService {
	return &talentService{talentRepo: repo, db: db}
}

func (s *talentService) CreateTalent(req CreateTalentRequest) (*models.TalentProfile, error) {
	talent := &models.TalentProfile{
		ProjectID:    req.ProjectID,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		RepName:      req.RepName,
		RepPhone:     req.RepPhone,
		EscortUserID: req.EscortUserID,
		Notes:        req.Notes,
	}

	created, err := s.talentRepo.CreateTalent(s.db, talent)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: project or escort user does not exist", ErrTalentValidation)
		}
		return nil, fmt.Errorf("failed to create talent profile in repository: %w", err)
	}
	return created, nil
}

func (s *talentService) GetTalentByID(id string) (*models.TalentProfile, error) {
	talent, err := s.talentRepo.GetTalentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTalentNotFound
		}
		return nil, fmt.Errorf("failed to get talent profile by ID: %w", err)
	}
	return talent, nil
}

func (s *talentService) GetTalent(projectID *string, page, pageSize int, searchTerm *string) ([]models.TalentProfile, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	talents, totalCount, err := s.talentRepo.GetTalent(projectID, page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get talent profiles: %w", err)
	}
	return talents, totalCount, nil
}

func (s *talentService) UpdateTalent(req UpdateTalentRequest) (*models.TalentProfile, error) {
	talent, err := s.talentRepo.GetTalentByID(req.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTalentNotFound
		}
		return nil, fmt.Errorf("failed to find talent profile for update: %w", err)
	}

	if req.FullName != nil {
		talent.FullName = *req.FullName
	}
	if req.PhoneNumber != nil {
		talent.PhoneNumber = req.PhoneNumber
	}
	if req.Email != nil {
		talent.Email = req.Email
	}
	if req.RepName != nil {
		talent.RepName = req.RepName
	}
	if req.RepPhone != nil {
		talent.RepPhone = req.RepPhone
	}
	if req.EscortUserID != nil {
		talent.EscortUserID = req.EscortUserID
	}
	if req.Notes != nil {
		talent.Notes = req.Notes
	}

	updated, err := s.talentRepo.UpdateTalent(s.db, talent)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTalentNotFound
		}
		return nil, fmt.Errorf("failed to update talent profile in repository: %w", err)
	}
	return updated, nil
}

// UpdateLocationStatus moves a talent through the on-set location board:
// not_arrived, on_site, on_set, wrapped. Any direct jump is allowed; the
// board is informational, not a workflow gate.
func (s *talentService) UpdateLocationStatus(id, status string) (*models.TalentProfile, error) {
	if !models.IsValidTalentLocationStatus(status) {
		return nil, fmt.Errorf("%w: '%s'", ErrTalentInvalidLocation, status)
	}

	err := s.talentRepo.UpdateLocationStatus(s.db, id, models.TalentLocationStatus(status))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTalentNotFound
		}
		return nil, fmt.Errorf("failed to update talent location status: %w", err)
	}
	return s.talentRepo.GetTalentByID(id)
}

func (s *talentService) DeleteTalent(id string) error {
	err := s.talentRepo.DeleteTalent(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTalentNotFound
		}
		return fmt.Errorf("failed to delete talent profile: %w", err)
	}
	return nil
}
