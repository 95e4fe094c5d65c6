package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"talent_tracker_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error
)

// RateRepository defines the interface for rate-rule and global-settings
// database operations. LoadRateRule implements the project-override /
// global-fallback contract.
type RateRepository interface {
	LoadRateRule(projectID, breakClass string) (*models.RateRule, error)
	GetProjectRateRules(projectID string) ([]models.RateRule, error)
	UpsertProjectRateRule(executor SQLExecutor, rule *models.RateRule) (*models.RateRule, error)
	DeleteProjectRateRule(executor SQLExecutor, id string) error
	GetGlobalSettings() (*models.GlobalSettings, error)
	UpdateGlobalSettings(executor SQLExecutor, settings *models.GlobalSettings) (*models.GlobalSettings, error)
}

type rateRepository struct {
	db *sql.DB
}

// NewRateRepository creates a new instance of RateRepository.
func NewRateRepository(db *sql.DB) RateRepository {
	return &rateRepository{db: db}
}

const rateRuleSelect = `SELECT id, project_id, break_class, rate, time_type, overtime_threshold_hours,
	       overtime_multiplier, default_break_minutes, break_grace_period_minutes, created_at, updated_at
	  FROM rate_rules`

func scanRateRuleRow(row scanner) (*models.RateRule, error) {
	var rule models.RateRule
	var projectID sql.NullString

	err := row.Scan(
		&rule.ID, &projectID, &rule.BreakClass, &rule.Rate, &rule.TimeType,
		&rule.OvertimeThresholdHours, &rule.OvertimeMultiplier, &rule.DefaultBreakMinutes,
		&rule.BreakGracePeriodMinutes, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning rate rule: %v", ErrDatabaseError, err)
	}

	if projectID.Valid {
		rule.ProjectID = &projectID.String
	}
	return &rule, nil
}

// LoadRateRule returns the project override for the break class if one
// exists, otherwise the seeded global defaults row for that class.
func (r *rateRepository) LoadRateRule(projectID, breakClass string) (*models.RateRule, error) {
	rule, err := scanRateRuleRow(r.db.QueryRow(
		rateRuleSelect+` WHERE project_id = $1 AND break_class = $2`, projectID, breakClass))
	if err == nil {
		return rule, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rule, err = scanRateRuleRow(r.db.QueryRow(
		rateRuleSelect+` WHERE project_id IS NULL AND break_class = $1`, breakClass))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: no global rate rule seeded for break class %s", ErrNotFound, breakClass)
		}
		return nil, err
	}
	return rule, nil
}

func (r *rateRepository) GetProjectRateRules(projectID string) ([]models.RateRule, error) {
	rules := []models.RateRule{}

	rows, err := r.db.Query(rateRuleSelect+` WHERE project_id = $1 ORDER BY break_class ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying rate rules: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		rule, err := scanRateRuleRow(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rate rule rows: %v", ErrDatabaseError, err)
	}
	return rules, nil
}

// UpsertProjectRateRule inserts or replaces the override row for
// (project_id, break_class).
func (r *rateRepository) UpsertProjectRateRule(executor SQLExecutor, rule *models.RateRule) (*models.RateRule, error) {
	query := `INSERT INTO rate_rules (id, project_id, break_class, rate, time_type, overtime_threshold_hours,
	            overtime_multiplier, default_break_minutes, break_grace_period_minutes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (project_id, break_class) WHERE project_id IS NOT NULL
	          DO UPDATE SET rate = EXCLUDED.rate, time_type = EXCLUDED.time_type,
	            overtime_threshold_hours = EXCLUDED.overtime_threshold_hours,
	            overtime_multiplier = EXCLUDED.overtime_multiplier,
	            default_break_minutes = EXCLUDED.default_break_minutes,
	            break_grace_period_minutes = EXCLUDED.break_grace_period_minutes,
	            updated_at = EXCLUDED.updated_at
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	newID := uuid.New().String()

	err := executor.QueryRow(query,
		newID, rule.ProjectID, rule.BreakClass, rule.Rate, rule.TimeType,
		rule.OvertimeThresholdHours, rule.OvertimeMultiplier, rule.DefaultBreakMinutes,
		rule.BreakGracePeriodMinutes, currentTime, currentTime,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, fmt.Errorf("%w: project not found for rate rule (constraint: %s)", ErrNotFound, pqErr.Constraint)
		}
		return nil, fmt.Errorf("%w: upserting rate rule: %v", ErrDatabaseError, err)
	}
	return rule, nil
}

func (r *rateRepository) DeleteProjectRateRule(executor SQLExecutor, id string) error {
	// The global defaults rows are protected; only project overrides can go.
	query := `DELETE FROM rate_rules WHERE id = $1 AND project_id IS NOT NULL`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting rate rule ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *rateRepository) GetGlobalSettings() (*models.GlobalSettings, error) {
	settings := &models.GlobalSettings{}
	query := `SELECT id, max_shift_hours, overtime_warning_hours, enforce_submission_timing, manual_edit_hours_delta, updated_at
	          FROM global_settings LIMIT 1`

	err := r.db.QueryRow(query).Scan(
		&settings.ID, &settings.MaxShiftHours, &settings.OvertimeWarningHours,
		&settings.EnforceSubmissionTiming, &settings.ManualEditHoursDelta, &settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: loading global settings: %v", ErrDatabaseError, err)
	}
	return settings, nil
}

func (r *rateRepository) UpdateGlobalSettings(executor SQLExecutor, settings *models.GlobalSettings) (*models.GlobalSettings, error) {
	query := `UPDATE global_settings SET
	            max_shift_hours = $1, overtime_warning_hours = $2,
	            enforce_submission_timing = $3, manual_edit_hours_delta = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING updated_at`

	settings.UpdatedAt = time.Now()
	err := executor.QueryRow(query,
		settings.MaxShiftHours, settings.OvertimeWarningHours,
		settings.EnforceSubmissionTiming, settings.ManualEditHoursDelta,
		settings.UpdatedAt, settings.ID,
	).Scan(&settings.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating global settings: %v", ErrDatabaseError, err)
	}
	return settings, nil
}
