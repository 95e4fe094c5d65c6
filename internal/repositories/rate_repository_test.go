package repositories

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateRepo(t *testing.T) (RateRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRateRepository(db), mock
}

func rateRuleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "project_id", "break_class", "rate", "time_type",
		"overtime_threshold_hours", "overtime_multiplier",
		"default_break_minutes", "break_grace_period_minutes",
		"created_at", "updated_at",
	})
}

func TestLoadRateRuleProjectOverride(t *testing.T) {
	repo, mock := newRateRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE project_id = $1 AND break_class = $2`)).
		WithArgs("proj-1", "escort").
		WillReturnRows(rateRuleRows().
			AddRow("rule-1", "proj-1", "escort", 45.0, "hourly", 10.0, 2.0, 30, 5, now, now))

	rule, err := repo.LoadRateRule("proj-1", "escort")
	require.NoError(t, err)
	require.NotNil(t, rule.ProjectID)
	assert.Equal(t, "proj-1", *rule.ProjectID)
	assert.Equal(t, 45.0, rule.Rate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRateRuleFallsBackToGlobal(t *testing.T) {
	repo, mock := newRateRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE project_id = $1 AND break_class = $2`)).
		WithArgs("proj-1", "staff").
		WillReturnRows(rateRuleRows())
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE project_id IS NULL AND break_class = $1`)).
		WithArgs("staff").
		WillReturnRows(rateRuleRows().
			AddRow("rule-global", nil, "staff", 30.0, "hourly", 8.0, 1.5, 60, 5, now, now))

	rule, err := repo.LoadRateRule("proj-1", "staff")
	require.NoError(t, err)
	assert.Nil(t, rule.ProjectID)
	assert.Equal(t, 60, rule.DefaultBreakMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRateRuleNoRuleSeeded(t *testing.T) {
	repo, mock := newRateRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE project_id = $1 AND break_class = $2`)).
		WillReturnRows(rateRuleRows())
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE project_id IS NULL AND break_class = $1`)).
		WillReturnRows(rateRuleRows())

	_, err := repo.LoadRateRule("proj-1", "staff")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGlobalSettingsMissingRow(t *testing.T) {
	repo, mock := newRateRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM global_settings LIMIT 1`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "max_shift_hours", "overtime_warning_hours",
			"enforce_submission_timing", "manual_edit_hours_delta", "updated_at",
		}))

	_, err := repo.GetGlobalSettings()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
