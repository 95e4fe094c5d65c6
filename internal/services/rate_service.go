package services

import (
	"database/sql"
	"errors"
	"fmt"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/repositories"
	"talent_tracker_backend/internal/timecalc"
)

// --- Custom Service Errors for Rate Rules ---
var (
	ErrRateRuleNotFound   = errors.New("rate rule not found")
	ErrRateRuleValidation = errors.New("rate rule validation error")
	ErrSettingsNotFound   = errors.New("global settings row not found")
)

// --- Rate DTOs ---
type UpsertRateRuleRequest struct {
	ProjectID              string  `json:"-"`
	BreakClass             string  `json:"break_class" binding:"required"` // escort | staff
	Rate                   float64 `json:"rate" binding:"required"`
	TimeType               string  `json:"time_type" binding:"required"` // hourly | daily
	OvertimeThresholdHours float64 `json:"overtime_threshold_hours"`
	OvertimeMultiplier     float64 `json:"overtime_multiplier"`
	DefaultBreakMinutes    int     `json:"default_break_minutes"`
	BreakGraceMinutes      *int    `json:"break_grace_period_minutes"`
}

type UpdateSettingsRequest struct {
	MaxShiftHours           *float64 `json:"max_shift_hours"`
	OvertimeWarningHours    *float64 `json:"overtime_warning_hours"`
	EnforceSubmissionTiming *bool    `json:"enforce_submission_timing"`
	ManualEditHoursDelta    *float64 `json:"manual_edit_hours_delta"`
}

// --- RateService Interface ---
type RateService interface {
	GetDefaultRateRules() ([]models.RateRule, error)
	GetProjectRateRules(projectID string) ([]models.RateRule, error)
	GetEffectiveRateRule(projectID, breakClass string) (*models.RateRule, error)
	UpsertProjectRateRule(req UpsertRateRuleRequest) (*models.RateRule, error)
	DeleteProjectRateRule(id string) error
	GetGlobalSettings() (*models.GlobalSettings, error)
	UpdateGlobalSettings(req UpdateSettingsRequest) (*models.GlobalSettings, error)
}

type rateService struct {
	rateRepo repositories.RateRepository
	db       *sql.DB
}

// NewRateService creates a new instance of RateService.
func NewRateService(repo repositories.RateRepository, db *sql.DB) RateService {
	return &rateService{rateRepo: repo, db: db}
}

// GetDefaultRateRules returns the seeded global rows, one per break class.
func (s *rateService) GetDefaultRateRules() ([]models.RateRule, error) {
	classes := []string{models.BreakClassEscort, models.BreakClassStaff}
	rules := make([]models.RateRule, 0, len(classes))
	for _, class := range classes {
		rule, err := s.rateRepo.LoadRateRule("", class)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load default rate rule: %w", err)
		}
		// LoadRateRule with an unknown project falls through to the global row.
		if rule.ProjectID == nil {
			rules = append(rules, *rule)
		}
	}
	return rules, nil
}

func (s *rateService) GetProjectRateRules(projectID string) ([]models.RateRule, error) {
	rules, err := s.rateRepo.GetProjectRateRules(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project rate rules: %w", err)
	}
	return rules, nil
}

// GetEffectiveRateRule resolves the rule a calculation would actually use:
// the project override when present, otherwise the global defaults row.
func (s *rateService) GetEffectiveRateRule(projectID, breakClass string) (*models.RateRule, error) {
	if breakClass != models.BreakClassEscort && breakClass != models.BreakClassStaff {
		return nil, fmt.Errorf("%w: unknown break class '%s'", ErrRateRuleValidation, breakClass)
	}
	rule, err := s.rateRepo.LoadRateRule(projectID, breakClass)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRateRuleNotFound
		}
		return nil, fmt.Errorf("failed to resolve rate rule: %w", err)
	}
	return rule, nil
}

func validateRateRule(req *UpsertRateRuleRequest) error {
	if req.BreakClass != models.BreakClassEscort && req.BreakClass != models.BreakClassStaff {
		return fmt.Errorf("%w: unknown break class '%s'", ErrRateRuleValidation, req.BreakClass)
	}
	if req.TimeType != timecalc.TimeTypeHourly && req.TimeType != timecalc.TimeTypeDaily {
		return fmt.Errorf("%w: time_type must be hourly or daily", ErrRateRuleValidation)
	}
	if req.Rate < 0 {
		return fmt.Errorf("%w: rate must be non-negative", ErrRateRuleValidation)
	}
	if req.OvertimeThresholdHours < 0 {
		return fmt.Errorf("%w: overtime_threshold_hours must be non-negative", ErrRateRuleValidation)
	}
	if req.TimeType == timecalc.TimeTypeHourly && req.OvertimeThresholdHours > 0 && req.OvertimeMultiplier < 1 {
		return fmt.Errorf("%w: overtime_multiplier must be at least 1", ErrRateRuleValidation)
	}
	if req.DefaultBreakMinutes < 0 {
		return fmt.Errorf("%w: default_break_minutes must be non-negative", ErrRateRuleValidation)
	}
	return nil
}

func (s *rateService) UpsertProjectRateRule(req UpsertRateRuleRequest) (*models.RateRule, error) {
	if err := validateRateRule(&req); err != nil {
		return nil, err
	}

	grace := timecalc.DefaultBreakGraceMinutes
	if req.BreakGraceMinutes != nil {
		if *req.BreakGraceMinutes < 0 {
			return nil, fmt.Errorf("%w: break_grace_period_minutes must be non-negative", ErrRateRuleValidation)
		}
		grace = *req.BreakGraceMinutes
	}

	rule := &models.RateRule{
		ProjectID:               &req.ProjectID,
		BreakClass:              req.BreakClass,
		Rate:                    req.Rate,
		TimeType:                req.TimeType,
		OvertimeThresholdHours:  req.OvertimeThresholdHours,
		OvertimeMultiplier:      req.OvertimeMultiplier,
		DefaultBreakMinutes:     req.DefaultBreakMinutes,
		BreakGracePeriodMinutes: grace,
	}

	upserted, err := s.rateRepo.UpsertProjectRateRule(s.db, rule)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to upsert rate rule in repository: %w", err)
	}
	return upserted, nil
}

func (s *rateService) DeleteProjectRateRule(id string) error {
	err := s.rateRepo.DeleteProjectRateRule(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRateRuleNotFound
		}
		return fmt.Errorf("failed to delete rate rule: %w", err)
	}
	return nil
}

func (s *rateService) GetGlobalSettings() (*models.GlobalSettings, error) {
	settings, err := s.rateRepo.GetGlobalSettings()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get global settings: %w", err)
	}
	return settings, nil
}

func (s *rateService) UpdateGlobalSettings(req UpdateSettingsRequest) (*models.GlobalSettings, error) {
	settings, err := s.rateRepo.GetGlobalSettings()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load global settings for update: %w", err)
	}

	if req.MaxShiftHours != nil {
		if *req.MaxShiftHours <= 0 {
			return nil, fmt.Errorf("%w: max_shift_hours must be positive", ErrRateRuleValidation)
		}
		settings.MaxShiftHours = *req.MaxShiftHours
	}
	if req.OvertimeWarningHours != nil {
		if *req.OvertimeWarningHours <= 0 {
			return nil, fmt.Errorf("%w: overtime_warning_hours must be positive", ErrRateRuleValidation)
		}
		settings.OvertimeWarningHours = *req.OvertimeWarningHours
	}
	if req.EnforceSubmissionTiming != nil {
		settings.EnforceSubmissionTiming = *req.EnforceSubmissionTiming
	}
	if req.ManualEditHoursDelta != nil {
		if *req.ManualEditHoursDelta < 0 {
			return nil, fmt.Errorf("%w: manual_edit_hours_delta must be non-negative", ErrRateRuleValidation)
		}
		settings.ManualEditHoursDelta = *req.ManualEditHoursDelta
	}

	updated, err := s.rateRepo.UpdateGlobalSettings(s.db, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to update global settings: %w", err)
	}
	return updated, nil
}
