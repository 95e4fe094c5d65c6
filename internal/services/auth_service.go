package services

import (
	"database/sql"
	"errors"
	"fmt"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/repositories"
	"talent_tracker_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for Auth ---
var (
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownRole        = errors.New("unknown role name")
	ErrUserInactive       = errors.New("user account is deactivated")
)

// --- Auth DTOs ---
type RegisterRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role" binding:"required"` // admin | supervisor | talent_escort | talent_logistics_coordinator
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// --- AuthService Interface ---
type AuthService interface {
	Register(req RegisterRequest) (*models.User, error)
	Login(req LoginRequest) (*LoginResponse, error)
	GetUserByID(userID string) (*models.User, error)
}

type authService struct {
	authRepo repositories.AuthRepository
	db       *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(repo repositories.AuthRepository, db *sql.DB) AuthService {
	return &authService{authRepo: repo, db: db}
}

// Register creates a user under the named system role.
func (s *authService) Register(req RegisterRequest) (*models.User, error) {
	if !isValidRoleName(req.Role) {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownRole, req.Role)
	}
	role, err := s.authRepo.FindRoleByName(req.Role)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s' is not seeded", ErrUnknownRole, req.Role)
		}
		return nil, fmt.Errorf("failed to look up role: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   &role.ID,
	}

	userID, err := s.authRepo.CreateUser(s.db, user, string(hashedPassword))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	created, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created user: %w", err)
	}
	return created, nil
}

// Login verifies credentials and issues an access token carrying the
// user's role name for downstream authorization.
func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	user, hashedPassword, err := s.authRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	token, err := utils.GenerateAccessToken(user.ID, user.Username, roleName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &LoginResponse{AccessToken: token, User: user}, nil
}

func (s *authService) GetUserByID(userID string) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func isValidRoleName(name string) bool {
	switch name {
	case models.RoleAdmin, models.RoleSupervisor, models.RoleTalentEscort, models.RoleCoordinator:
		return true
	}
	return false
}
