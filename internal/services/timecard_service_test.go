package services

import (
	"errors"
	"testing"
	"time"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/repositories"
	"talent_tracker_backend/internal/timecalc"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---
// Each fake embeds the repository interface so only the methods a test
// exercises need an implementation.

type fakeTimecardRepo struct {
	repositories.TimecardRepository
	timecard       *models.Timecard
	statusUpdates  []models.TimecardStatus
	entryUpdates   []models.TimeEntry
	editMetaCalls  []bool
	lastEditReason *string
	lastRejection  *string
}

func (f *fakeTimecardRepo) GetTimecardByID(id string) (*models.Timecard, error) {
	if f.timecard == nil || f.timecard.ID != id {
		return nil, repositories.ErrNotFound
	}
	// Return a shallow copy so service-side mutation does not leak back.
	tc := *f.timecard
	tc.Entries = append([]models.TimeEntry(nil), f.timecard.Entries...)
	return &tc, nil
}

func (f *fakeTimecardRepo) UpdateTimecardStatus(_ repositories.SQLExecutor, id string, status models.TimecardStatus, rejectionReason *string, _ *string) error {
	f.statusUpdates = append(f.statusUpdates, status)
	f.lastRejection = rejectionReason
	f.timecard.Status = status
	return nil
}

func (f *fakeTimecardRepo) SetTimecardEditMeta(_ repositories.SQLExecutor, id string, editedManually bool, editReason *string) error {
	f.editMetaCalls = append(f.editMetaCalls, editedManually)
	f.lastEditReason = editReason
	return nil
}

func (f *fakeTimecardRepo) UpdateEntry(_ repositories.SQLExecutor, entry *models.TimeEntry) (*models.TimeEntry, error) {
	f.entryUpdates = append(f.entryUpdates, *entry)
	for i := range f.timecard.Entries {
		if f.timecard.Entries[i].ID == entry.ID {
			f.timecard.Entries[i] = *entry
		}
	}
	return entry, nil
}

type fakeProjectRepo struct {
	repositories.ProjectRepository
	project    *models.Project
	assignment *models.ProjectAssignment
}

func (f *fakeProjectRepo) GetProjectByID(id string) (*models.Project, error) {
	if f.project == nil || f.project.ID != id {
		return nil, repositories.ErrNotFound
	}
	return f.project, nil
}

func (f *fakeProjectRepo) GetAssignment(projectID, userID string) (*models.ProjectAssignment, error) {
	if f.assignment == nil || f.assignment.ProjectID != projectID || f.assignment.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return f.assignment, nil
}

type fakeRateRepo struct {
	repositories.RateRepository
	rule     *models.RateRule
	settings *models.GlobalSettings
}

func (f *fakeRateRepo) LoadRateRule(projectID, breakClass string) (*models.RateRule, error) {
	if f.rule == nil {
		return nil, repositories.ErrNotFound
	}
	return f.rule, nil
}

func (f *fakeRateRepo) GetGlobalSettings() (*models.GlobalSettings, error) {
	if f.settings == nil {
		return nil, repositories.ErrNotFound
	}
	return f.settings, nil
}

type fakeAuditRepo struct {
	repositories.AuditRepository
	appended [][]models.AuditEntry
	failWith error
}

func (f *fakeAuditRepo) AppendEntries(_ repositories.SQLExecutor, entries []models.AuditEntry) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.appended = append(f.appended, entries)
	return nil
}

// --- fixtures ---

const (
	testProjectID = "proj-1"
	testOwnerID   = "user-owner"
	testCardID    = "card-1"
)

var (
	ownerActor    = Actor{ID: testOwnerID, Role: models.RoleTalentEscort}
	approverActor = Actor{ID: "user-supervisor", Role: models.RoleSupervisor}
)

func entryAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func tptr(t time.Time) *time.Time { return &t }

func testRule() *models.RateRule {
	return &models.RateRule{
		ID:                      "rule-1",
		BreakClass:              models.BreakClassStaff,
		Rate:                    20,
		TimeType:                timecalc.TimeTypeHourly,
		OvertimeThresholdHours:  8,
		OvertimeMultiplier:      1.5,
		DefaultBreakMinutes:     30,
		BreakGracePeriodMinutes: 5,
	}
}

func testSettings() *models.GlobalSettings {
	return &models.GlobalSettings{
		ID:                      "settings-1",
		MaxShiftHours:           20,
		OvertimeWarningHours:    12,
		EnforceSubmissionTiming: true,
		ManualEditHoursDelta:    0.25,
	}
}

// testTimecard is a draft with one 7.5h entry and no break recorded, which
// is long enough to require a break resolution before submission.
func testTimecard(status models.TimecardStatus) *models.Timecard {
	return &models.Timecard{
		ID:        testCardID,
		ProjectID: testProjectID,
		OwnerID:   testOwnerID,
		Status:    status,
		Entries: []models.TimeEntry{{
			ID:         "entry-1",
			TimecardID: testCardID,
			WorkDate:   "2026-03-10",
			CheckIn:    entryAt(8, 0),
			CheckOut:   tptr(entryAt(15, 30)),
			TotalHours: 7.5,
			TotalPay:   150,
		}},
	}
}

type serviceFixture struct {
	svc      *timecardService
	timecard *fakeTimecardRepo
	project  *fakeProjectRepo
	rate     *fakeRateRepo
	audit    *fakeAuditRepo
	mock     sqlmock.Sqlmock
}

func newServiceFixture(t *testing.T, status models.TimecardStatus) *serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	startDate := "2026-03-09"
	f := &serviceFixture{
		timecard: &fakeTimecardRepo{timecard: testTimecard(status)},
		project: &fakeProjectRepo{
			project: &models.Project{ID: testProjectID, Name: "Night Shoot", Status: models.ProjectStatusActive, StartDate: &startDate},
			assignment: &models.ProjectAssignment{
				ID: "assign-1", ProjectID: testProjectID, UserID: testOwnerID, Role: models.RoleTalentEscort,
			},
		},
		rate:  &fakeRateRepo{rule: testRule(), settings: testSettings()},
		audit: &fakeAuditRepo{},
		mock:  mock,
	}
	f.svc = &timecardService{
		timecardRepo: f.timecard,
		projectRepo:  f.project,
		rateRepo:     f.rate,
		auditRepo:    f.audit,
		db:           db,
		now:          func() time.Time { return entryAt(18, 0) },
	}
	return f
}

// --- rejection ---

func TestRejectTimecardRequiresReason(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusSubmitted)

	for _, reason := range []string{"", "   ", "\t"} {
		_, err := f.svc.RejectTimecard(approverActor, RejectTimecardRequest{
			TimecardID: testCardID,
			Reason:     reason,
		})
		assert.ErrorIs(t, err, ErrRejectionReasonRequired)
	}
	// The precondition fires before anything is touched.
	assert.Empty(t, f.timecard.statusUpdates)
	assert.Empty(t, f.audit.appended)
}

func TestRejectTimecardOnlyApprovers(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusSubmitted)

	_, err := f.svc.RejectTimecard(ownerActor, RejectTimecardRequest{
		TimecardID: testCardID,
		Reason:     "times look wrong",
	})
	assert.ErrorIs(t, err, ErrTimecardPermission)
	assert.Empty(t, f.timecard.statusUpdates)
}

func TestRejectTimecard(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusSubmitted)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	updated, err := f.svc.RejectTimecard(approverActor, RejectTimecardRequest{
		TimecardID: testCardID,
		Reason:     "checkout does not match the call sheet",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TimecardStatusRejected, updated.Status)
	require.NotNil(t, f.timecard.lastRejection)
	assert.Equal(t, "checkout does not match the call sheet", *f.timecard.lastRejection)

	require.Len(t, f.audit.appended, 1)
	row := f.audit.appended[0][0]
	assert.Equal(t, models.AuditActionStatusChange, row.Action)
	assert.Equal(t, "status", row.FieldName)
	assert.Equal(t, string(models.TimecardStatusRejected), *row.NewValue)
}

func TestRejectTimecardReturnToDraft(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusSubmitted)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	checkOut := entryAt(16, 0).Format(time.RFC3339)
	updated, err := f.svc.RejectTimecard(approverActor, RejectTimecardRequest{
		TimecardID:    testCardID,
		Reason:        "wrap time corrected per the AD report",
		ReturnToDraft: true,
		Corrections:   []EntryEdit{{EntryID: "entry-1", CheckOut: &checkOut}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TimecardStatusEditedDraft, updated.Status)
	require.Len(t, f.timecard.entryUpdates, 1)
	assert.Equal(t, 8.0, f.timecard.entryUpdates[0].TotalHours)

	// Corrections audit as a rejection edit, separate from the status change.
	require.Len(t, f.audit.appended, 2)
	assert.Equal(t, models.AuditActionRejectionEdit, f.audit.appended[0][0].Action)
	assert.Equal(t, models.AuditActionStatusChange, f.audit.appended[1][0].Action)
}

// --- submission ---

func TestSubmitTimecardBlockedOnMissingBreak(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)

	_, err := f.svc.SubmitTimecard(ownerActor, testCardID)
	assert.ErrorIs(t, err, ErrMissingBreakUnresolved)
	assert.Empty(t, f.timecard.statusUpdates)
}

func TestSubmitTimecardAfterWaiver(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.timecard.timecard.Entries[0].NoBreakWaived = true

	updated, err := f.svc.SubmitTimecard(ownerActor, testCardID)
	require.NoError(t, err)
	assert.Equal(t, models.TimecardStatusSubmitted, updated.Status)

	require.Len(t, f.audit.appended, 1)
	assert.Equal(t, models.AuditActionStatusChange, f.audit.appended[0][0].Action)
}

func TestSubmitTimecardBeforeProjectStart(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.timecard.timecard.Entries[0].NoBreakWaived = true
	future := "2026-03-11"
	f.project.project.StartDate = &future

	_, err := f.svc.SubmitTimecard(ownerActor, testCardID)
	assert.ErrorIs(t, err, ErrSubmissionNotOpen)

	// Switching enforcement off opens the gate.
	f.rate.settings.EnforceSubmissionTiming = false
	_, err = f.svc.SubmitTimecard(ownerActor, testCardID)
	assert.NoError(t, err)
}

func TestSubmitTimecardBlockedOnIncompleteEntry(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.timecard.timecard.Entries[0].CheckOut = nil
	f.timecard.timecard.Entries[0].TotalHours = 0

	_, err := f.svc.SubmitTimecard(ownerActor, testCardID)
	assert.ErrorIs(t, err, ErrTimecardValidation)
	assert.Empty(t, f.timecard.statusUpdates)
}

func TestSubmitTimecardInvalidTransition(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusApproved)

	_, err := f.svc.SubmitTimecard(ownerActor, testCardID)
	assert.ErrorIs(t, err, ErrTimecardStatusTransition)
}

func TestValidateSubmissionReportsBlockers(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)

	checks, err := f.svc.ValidateSubmission([]string{testCardID}, testProjectID)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].CanSubmit)
	assert.Contains(t, checks[0].Blockers, timecalc.CodeMissingBreakUnresolved)
}

// --- editing ---

func TestEditTimecardRecalculatesAndFlagsManualEdit(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	checkOut := entryAt(17, 30).Format(time.RFC3339)
	_, err := f.svc.EditTimecard(ownerActor, EditTimecardRequest{
		TimecardID: testCardID,
		Entries:    []EntryEdit{{EntryID: "entry-1", CheckOut: &checkOut}},
	})
	require.NoError(t, err)

	require.Len(t, f.timecard.entryUpdates, 1)
	entry := f.timecard.entryUpdates[0]
	assert.Equal(t, 9.5, entry.TotalHours)
	// 8h straight + 1.5h at time-and-a-half on a $20 rate.
	assert.Equal(t, 205.0, entry.TotalPay)

	// Moving hours by 2.0 crosses the 0.25 manual-edit threshold.
	require.Len(t, f.timecard.editMetaCalls, 1)
	assert.True(t, f.timecard.editMetaCalls[0])

	require.Len(t, f.audit.appended, 1)
	assert.Equal(t, models.AuditActionUserEdit, f.audit.appended[0][0].Action)
}

func TestEditTimecardSmallNudgeNotFlagged(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	checkOut := entryAt(15, 36).Format(time.RFC3339) // +0.1h
	_, err := f.svc.EditTimecard(ownerActor, EditTimecardRequest{
		TimecardID: testCardID,
		Entries:    []EntryEdit{{EntryID: "entry-1", CheckOut: &checkOut}},
	})
	require.NoError(t, err)
	assert.Empty(t, f.timecard.editMetaCalls)
}

func TestEditTimecardByApproverClassifiedAdminEdit(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusSubmitted)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	checkOut := entryAt(16, 0).Format(time.RFC3339)
	reason := "corrected against the production report"
	_, err := f.svc.EditTimecard(approverActor, EditTimecardRequest{
		TimecardID: testCardID,
		EditReason: &reason,
		Entries:    []EntryEdit{{EntryID: "entry-1", CheckOut: &checkOut}},
	})
	require.NoError(t, err)

	require.Len(t, f.audit.appended, 1)
	assert.Equal(t, models.AuditActionAdminEdit, f.audit.appended[0][0].Action)
	assert.Equal(t, reason, *f.audit.appended[0][0].EditReason)
}

func TestEditTimecardApprovedIsImmutable(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusApproved)

	checkOut := entryAt(16, 0).Format(time.RFC3339)
	_, err := f.svc.EditTimecard(approverActor, EditTimecardRequest{
		TimecardID: testCardID,
		Entries:    []EntryEdit{{EntryID: "entry-1", CheckOut: &checkOut}},
	})
	assert.ErrorIs(t, err, ErrTimecardStatusTransition)
}

func TestEditTimecardSequenceViolationRejected(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)

	checkOut := entryAt(7, 0).Format(time.RFC3339) // before check-in
	_, err := f.svc.EditTimecard(ownerActor, EditTimecardRequest{
		TimecardID: testCardID,
		Entries:    []EntryEdit{{EntryID: "entry-1", CheckOut: &checkOut}},
	})
	assert.ErrorIs(t, err, ErrTimecardValidation)
	assert.Empty(t, f.timecard.entryUpdates)
}

func TestEditTimecardAuditFailureDoesNotFailEdit(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.audit.failWith = errors.New("audit table unavailable")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	checkOut := entryAt(16, 0).Format(time.RFC3339)
	updated, err := f.svc.EditTimecard(ownerActor, EditTimecardRequest{
		TimecardID: testCardID,
		Entries:    []EntryEdit{{EntryID: "entry-1", CheckOut: &checkOut}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.Entries[0].TotalHours)
}

// --- break resolution ---

func TestResolveBreaksAddBreak(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	updated, err := f.svc.ResolveBreaks(ownerActor, ResolveBreaksRequest{
		TimecardID:  testCardID,
		Resolutions: map[string]string{"2026-03-10": ResolutionAddBreak},
	})
	require.NoError(t, err)

	entry := updated.Entries[0]
	require.NotNil(t, entry.BreakStart)
	require.NotNil(t, entry.BreakEnd)
	// A 30-minute break centered on the 08:00-15:30 shift.
	assert.Equal(t, entryAt(11, 30), *entry.BreakStart)
	assert.Equal(t, entryAt(12, 0), *entry.BreakEnd)
	assert.Equal(t, 7.0, entry.TotalHours)
	assert.False(t, entry.NoBreakWaived)
}

func TestResolveBreaksNoBreakKeepsHours(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	updated, err := f.svc.ResolveBreaks(ownerActor, ResolveBreaksRequest{
		TimecardID:  testCardID,
		Resolutions: map[string]string{"2026-03-10": ResolutionNoBreak},
	})
	require.NoError(t, err)

	entry := updated.Entries[0]
	assert.True(t, entry.NoBreakWaived)
	assert.Nil(t, entry.BreakStart)
	assert.Equal(t, 7.5, entry.TotalHours)
	assert.Equal(t, 150.0, entry.TotalPay)
}

func TestResolveBreaksUnknownPolicy(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)

	_, err := f.svc.ResolveBreaks(ownerActor, ResolveBreaksRequest{
		TimecardID:  testCardID,
		Resolutions: map[string]string{"2026-03-10": "skip_it"},
	})
	assert.ErrorIs(t, err, ErrUnknownResolutionPolicy)
	assert.Empty(t, f.timecard.entryUpdates)
}

// --- approval ---

func TestApproveTimecard(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusSubmitted)

	updated, err := f.svc.ApproveTimecard(approverActor, testCardID)
	require.NoError(t, err)
	assert.Equal(t, models.TimecardStatusApproved, updated.Status)
}

func TestApproveTimecardRequiresApproverRole(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusSubmitted)

	_, err := f.svc.ApproveTimecard(ownerActor, testCardID)
	assert.ErrorIs(t, err, ErrTimecardPermission)
}

func TestApproveTimecardFromDraftRejected(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)

	_, err := f.svc.ApproveTimecard(approverActor, testCardID)
	assert.ErrorIs(t, err, ErrTimecardStatusTransition)
}

// --- calculation endpoint ---

func TestCalculateWithRuleOverride(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)

	checkOut := entryAt(18, 3).Format(time.RFC3339)
	breakStart := entryAt(12, 0).Format(time.RFC3339)
	breakEnd := entryAt(12, 33).Format(time.RFC3339)
	result, err := f.svc.Calculate(CalculateRequest{
		Entry: EntryInput{
			WorkDate:   "2026-03-10",
			CheckIn:    entryAt(8, 0).Format(time.RFC3339),
			CheckOut:   &checkOut,
			BreakStart: &breakStart,
			BreakEnd:   &breakEnd,
		},
		Rule: &timecalc.Rule{
			Rate: 20, TimeType: timecalc.TimeTypeHourly,
			OvertimeThresholdHours: 8, OvertimeMultiplier: 1.5,
			DefaultBreakMinutes: 30, BreakGraceMinutes: 5,
		},
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	// The 33-minute measured break falls inside the grace window and is
	// recorded as the 30-minute default.
	assert.Equal(t, 30.0, result.BreakDurationMinutes)
	assert.Equal(t, 9.55, result.TotalHours)
}

func TestCalculateRequiresRuleOrProject(t *testing.T) {
	f := newServiceFixture(t, models.TimecardStatusDraft)

	_, err := f.svc.Calculate(CalculateRequest{
		Entry: EntryInput{WorkDate: "2026-03-10", CheckIn: entryAt(8, 0).Format(time.RFC3339)},
	})
	assert.ErrorIs(t, err, ErrTimecardValidation)
}
