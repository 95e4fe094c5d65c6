package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/repositories"
	"talent_tracker_backend/internal/timecalc"
	"talent_tracker_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Timecards ---
var (
	ErrTimecardNotFound         = errors.New("timecard not found")
	ErrTimecardEntryNotFound    = errors.New("time entry not found")
	ErrTimecardValidation       = errors.New("timecard validation error")
	ErrTimecardStatusTransition = errors.New("invalid timecard status transition")
	ErrRejectionReasonRequired  = errors.New("a rejection reason is required")
	ErrMissingBreakUnresolved   = errors.New(timecalc.CodeMissingBreakUnresolved)
	ErrShiftExceedsMax          = errors.New(timecalc.CodeShiftExceedsMax)
	ErrSubmissionNotOpen        = errors.New("timecard submission has not opened for this project")
	ErrTimecardPermission       = errors.New("actor may not perform this timecard operation")
	ErrOwnerNotAssigned         = errors.New("timecard owner is not assigned to the project")
	ErrEntryTimeFormat          = errors.New("invalid time format for entry, please use RFC3339 like format")
	ErrUnknownResolutionPolicy  = errors.New("unknown missing-break resolution policy")
)

// Missing-break resolution policies.
const (
	ResolutionAddBreak = "add_break"
	ResolutionNoBreak  = "no_break"
)

// Actor identifies the authenticated caller for permission and audit
// classification purposes.
type Actor struct {
	ID   string
	Role string
}

// CanApprove reports whether the actor's system role carries approval rights.
func (a Actor) CanApprove() bool {
	return models.RoleCanApprove(a.Role)
}

// --- Timecard DTOs ---

// EntryInput carries one day's raw clock strings. Times are RFC3339.
type EntryInput struct {
	WorkDate   string  `json:"work_date" binding:"required"` // YYYY-MM-DD
	CheckIn    string  `json:"check_in" binding:"required"`
	CheckOut   *string `json:"check_out"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
}

// EntryEdit carries field updates for one stored entry. Absent fields are
// unchanged; an empty string clears a nullable field.
type EntryEdit struct {
	EntryID    string  `json:"entry_id" binding:"required"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`
	BreakStart *string `json:"break_start"`
	BreakEnd   *string `json:"break_end"`
}

type CreateTimecardRequest struct {
	ProjectID string       `json:"project_id" binding:"required"`
	OwnerID   *string      `json:"owner_id"` // defaults to the actor; approvers may create on behalf
	Entries   []EntryInput `json:"entries" binding:"required"`
}

type CalculateRequest struct {
	Entry EntryInput `json:"entry" binding:"required"`
	// Rule overrides; absent fields come from the project/global rule.
	ProjectID  *string        `json:"project_id"`
	BreakClass *string        `json:"break_class"`
	Rule       *timecalc.Rule `json:"rule"`
}

type EditTimecardRequest struct {
	TimecardID string      `json:"-"` // from the route param
	EditReason *string     `json:"edit_reason"`
	Entries    []EntryEdit `json:"entries" binding:"required"`
}

type RejectTimecardRequest struct {
	TimecardID    string      `json:"-"` // from the route param
	Reason        string      `json:"reason"`
	ReturnToDraft bool        `json:"return_to_draft"`
	Corrections   []EntryEdit `json:"corrections"` // optional fixes applied on reject-and-return
}

type ResolveBreaksRequest struct {
	TimecardID  string            `json:"-"` // from the route param
	Resolutions map[string]string `json:"resolutions" binding:"required"` // work_date -> add_break | no_break
}

// SubmissionCheck is the per-timecard result of a pre-submission validation pass.
type SubmissionCheck struct {
	TimecardID string   `json:"timecard_id"`
	CanSubmit  bool     `json:"can_submit"`
	Blockers   []string `json:"blockers"`
}

// --- TimecardService Interface ---
type TimecardService interface {
	Calculate(req CalculateRequest) (*timecalc.Result, error)
	CreateTimecard(actor Actor, req CreateTimecardRequest) (*models.Timecard, error)
	GetTimecardByID(actor Actor, id string) (*models.Timecard, error)
	GetTimecards(actor Actor, filters models.TimecardFilters) ([]models.Timecard, int, error)
	EditTimecard(actor Actor, req EditTimecardRequest) (*models.Timecard, error)
	SubmitTimecard(actor Actor, timecardID string) (*models.Timecard, error)
	ValidateSubmission(timecardIDs []string, projectID string) ([]SubmissionCheck, error)
	ApproveTimecard(actor Actor, timecardID string) (*models.Timecard, error)
	RejectTimecard(actor Actor, req RejectTimecardRequest) (*models.Timecard, error)
	ResolveBreaks(actor Actor, req ResolveBreaksRequest) (*models.Timecard, error)
	GetProjectSummary(projectID string) (*models.TimecardSummary, error)
	GetAuditLog(timecardID string) ([]models.AuditEntry, error)
	DeleteTimecard(actor Actor, id string) error
}

// --- timecardService Implementation ---
type timecardService struct {
	timecardRepo repositories.TimecardRepository
	projectRepo  repositories.ProjectRepository
	rateRepo     repositories.RateRepository
	auditRepo    repositories.AuditRepository
	db           *sql.DB
	now          func() time.Time // seam for submission-timing tests
}

// NewTimecardService creates a new instance of TimecardService.
func NewTimecardService(
	tr repositories.TimecardRepository,
	pr repositories.ProjectRepository,
	rr repositories.RateRepository,
	ar repositories.AuditRepository,
	db *sql.DB,
) TimecardService {
	return &timecardService{
		timecardRepo: tr,
		projectRepo:  pr,
		rateRepo:     rr,
		auditRepo:    ar,
		db:           db,
		now:          time.Now,
	}
}

// --- helpers ---

func parseEntryTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Try parsing without timezone if RFC3339 fails (common if client sends local time string)
		t, err = time.Parse("2006-01-02T15:04:05", value)
		if err != nil {
			return time.Time{}, ErrEntryTimeFormat
		}
	}
	return t, nil
}

func parseOptionalEntryTime(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseEntryTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func entryFromInput(in EntryInput) (timecalc.Entry, error) {
	checkIn, err := parseEntryTime(in.CheckIn)
	if err != nil {
		return timecalc.Entry{}, fmt.Errorf("check_in: %w", err)
	}
	e := timecalc.Entry{CheckIn: checkIn}
	if e.CheckOut, err = parseOptionalEntryTime(in.CheckOut); err != nil {
		return timecalc.Entry{}, fmt.Errorf("check_out: %w", err)
	}
	if e.BreakStart, err = parseOptionalEntryTime(in.BreakStart); err != nil {
		return timecalc.Entry{}, fmt.Errorf("break_start: %w", err)
	}
	if e.BreakEnd, err = parseOptionalEntryTime(in.BreakEnd); err != nil {
		return timecalc.Entry{}, fmt.Errorf("break_end: %w", err)
	}
	return e, nil
}

func calcEntry(m models.TimeEntry) timecalc.Entry {
	return timecalc.Entry{
		CheckIn:    m.CheckIn,
		CheckOut:   m.CheckOut,
		BreakStart: m.BreakStart,
		BreakEnd:   m.BreakEnd,
	}
}

func ruleFromModel(m *models.RateRule) timecalc.Rule {
	return timecalc.Rule{
		Rate:                   m.Rate,
		TimeType:               m.TimeType,
		OvertimeThresholdHours: m.OvertimeThresholdHours,
		OvertimeMultiplier:     m.OvertimeMultiplier,
		DefaultBreakMinutes:    m.DefaultBreakMinutes,
		BreakGraceMinutes:      m.BreakGracePeriodMinutes,
	}
}

// resolveRule loads the rate rule for a timecard owner on a project: the
// owner's assignment picks the break class, the project override (or the
// global defaults row) supplies the numbers, and an assignment day rate
// overrides both into a flat daily rate.
func (s *timecardService) resolveRule(projectID, ownerID string) (timecalc.Rule, error) {
	assignment, err := s.projectRepo.GetAssignment(projectID, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return timecalc.Rule{}, ErrOwnerNotAssigned
		}
		return timecalc.Rule{}, fmt.Errorf("failed to load project assignment: %w", err)
	}

	breakClass := models.BreakClassForRole(assignment.Role)
	stored, err := s.rateRepo.LoadRateRule(projectID, breakClass)
	if err != nil {
		return timecalc.Rule{}, fmt.Errorf("failed to load rate rule: %w", err)
	}

	rule := ruleFromModel(stored)
	if assignment.DayRate != nil {
		rule.Rate = *assignment.DayRate
		rule.TimeType = timecalc.TimeTypeDaily
	}
	return rule, nil
}

// settings returns the global limits row, falling back to the package
// defaults when the row has not been seeded.
func (s *timecardService) settings() models.GlobalSettings {
	stored, err := s.rateRepo.GetGlobalSettings()
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			utils.LogError(err, "Failed to load global settings, using defaults")
		}
		return models.GlobalSettings{
			MaxShiftHours:           timecalc.DefaultMaxShiftHours,
			OvertimeWarningHours:    timecalc.DefaultOvertimeWarningHours,
			EnforceSubmissionTiming: true,
			ManualEditHoursDelta:    timecalc.DefaultManualEditHoursDelta,
		}
	}
	return *stored
}

func formatTimeValue(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func strValue(s string) *string { return &s }

// recordAudit writes the audit rows for one save, stamping a shared
// change_id. Failures are logged and swallowed: the primary write already
// committed and must stand.
func (s *timecardService) recordAudit(timecardID string, actor Actor, action models.AuditAction, editReason *string, changes []models.FieldChange) {
	if len(changes) == 0 {
		return
	}
	changeID := uuid.New().String()
	entries := make([]models.AuditEntry, 0, len(changes))
	for _, ch := range changes {
		entries = append(entries, models.AuditEntry{
			TimecardID: timecardID,
			ChangeID:   changeID,
			FieldName:  ch.FieldName,
			OldValue:   ch.OldValue,
			NewValue:   ch.NewValue,
			ActorID:    actor.ID,
			Action:     action,
			EditReason: editReason,
		})
	}
	if err := s.auditRepo.AppendEntries(s.db, entries); err != nil {
		utils.LogError(err, "Audit write failed for timecard "+timecardID+"; primary write preserved")
	}
}

// --- Calculation ---

func (s *timecardService) Calculate(req CalculateRequest) (*timecalc.Result, error) {
	entry, err := entryFromInput(req.Entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimecardValidation, err)
	}

	var rule timecalc.Rule
	switch {
	case req.Rule != nil:
		rule = *req.Rule
	case req.ProjectID != nil:
		breakClass := models.BreakClassStaff
		if req.BreakClass != nil && *req.BreakClass != "" {
			breakClass = *req.BreakClass
		}
		stored, err := s.rateRepo.LoadRateRule(*req.ProjectID, breakClass)
		if err != nil {
			return nil, fmt.Errorf("failed to load rate rule: %w", err)
		}
		rule = ruleFromModel(stored)
	default:
		return nil, fmt.Errorf("%w: either rule overrides or project_id must be provided", ErrTimecardValidation)
	}

	if rule.BreakGraceMinutes <= 0 {
		rule.BreakGraceMinutes = timecalc.DefaultBreakGraceMinutes
	}
	result := timecalc.Calculate(entry, rule)
	return &result, nil
}

// --- CRUD ---

func (s *timecardService) CreateTimecard(actor Actor, req CreateTimecardRequest) (*models.Timecard, error) {
	ownerID := actor.ID
	if req.OwnerID != nil && *req.OwnerID != "" {
		if *req.OwnerID != actor.ID && !actor.CanApprove() {
			return nil, fmt.Errorf("%w: only approvers may create timecards on behalf of another user", ErrTimecardPermission)
		}
		ownerID = *req.OwnerID
	}

	if len(req.Entries) == 0 {
		return nil, fmt.Errorf("%w: a timecard needs at least one day entry", ErrTimecardValidation)
	}

	rule, err := s.resolveRule(req.ProjectID, ownerID)
	if err != nil {
		return nil, err
	}
	limits := s.settings()

	timecard := &models.Timecard{
		ProjectID: req.ProjectID,
		OwnerID:   ownerID,
		Status:    models.TimecardStatusDraft,
	}
	seenDates := map[string]bool{}
	for _, in := range req.Entries {
		if seenDates[in.WorkDate] {
			return nil, fmt.Errorf("%w: duplicate work date %s", ErrTimecardValidation, in.WorkDate)
		}
		seenDates[in.WorkDate] = true

		entry, err := entryFromInput(in)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTimecardValidation, in.WorkDate, err)
		}
		if seqErrs := timecalc.ValidateSequence(entry); len(seqErrs) > 0 {
			return nil, fmt.Errorf("%w: %s: %s", ErrTimecardValidation, in.WorkDate, strings.Join(seqErrs, ", "))
		}

		result := timecalc.Calculate(entry, rule)
		if fatal, _ := timecalc.ValidateShiftLength(result.TotalHours, limits.MaxShiftHours, limits.OvertimeWarningHours); len(fatal) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrShiftExceedsMax, in.WorkDate)
		}

		timecard.Entries = append(timecard.Entries, models.TimeEntry{
			WorkDate:     in.WorkDate,
			CheckIn:      entry.CheckIn,
			CheckOut:     entry.CheckOut,
			BreakStart:   entry.BreakStart,
			BreakEnd:     entry.BreakEnd,
			TotalHours:   result.TotalHours,
			BreakMinutes: result.BreakDurationMinutes,
			TotalPay:     result.TotalPay,
		})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	created, err := s.timecardRepo.CreateTimecard(tx, timecard)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create timecard in repository: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit timecard creation: %w", err)
	}
	return s.timecardRepo.GetTimecardByID(created.ID)
}

func (s *timecardService) GetTimecardByID(actor Actor, id string) (*models.Timecard, error) {
	timecard, err := s.timecardRepo.GetTimecardByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimecardNotFound
		}
		return nil, fmt.Errorf("failed to get timecard by ID: %w", err)
	}
	if timecard.OwnerID != actor.ID && !actor.CanApprove() {
		return nil, ErrTimecardPermission
	}
	return timecard, nil
}

func (s *timecardService) GetTimecards(actor Actor, filters models.TimecardFilters) ([]models.Timecard, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}
	// Non-approvers only ever see their own cards.
	if !actor.CanApprove() {
		filters.OwnerID = &actor.ID
	}
	if filters.Status != nil && !models.IsValidTimecardStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: invalid status filter '%s'", ErrTimecardValidation, *filters.Status)
	}

	timecards, totalCount, err := s.timecardRepo.GetTimecards(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get timecards: %w", err)
	}
	return timecards, totalCount, nil
}

// --- Editing ---

// applyEntryEdits parses and applies field updates against the stored
// entries, recalculates each touched entry and collects audit changes.
// It returns the updated entry rows and whether any recalculation moved
// hours past the manual-edit threshold.
func (s *timecardService) applyEntryEdits(timecard *models.Timecard, edits []EntryEdit, rule timecalc.Rule, limits models.GlobalSettings) ([]models.TimeEntry, []models.FieldChange, bool, error) {
	byID := map[string]*models.TimeEntry{}
	for i := range timecard.Entries {
		byID[timecard.Entries[i].ID] = &timecard.Entries[i]
	}

	var updated []models.TimeEntry
	var changes []models.FieldChange
	manualEdit := false

	for _, edit := range edits {
		stored, ok := byID[edit.EntryID]
		if !ok {
			return nil, nil, false, fmt.Errorf("%w: entry %s", ErrTimecardEntryNotFound, edit.EntryID)
		}

		next := calcEntry(*stored)

		apply := func(field string, target **time.Time, update *string, old *time.Time) error {
			if update == nil {
				return nil
			}
			parsed, err := parseOptionalEntryTime(update)
			if err != nil {
				return fmt.Errorf("%w: %s %s: %v", ErrTimecardValidation, stored.WorkDate, field, err)
			}
			*target = parsed
			changes = append(changes, models.FieldChange{
				FieldName: field,
				OldValue:  formatTimeValue(old),
				NewValue:  formatTimeValue(parsed),
			})
			return nil
		}

		if edit.CheckIn != nil {
			parsed, err := parseEntryTime(*edit.CheckIn)
			if err != nil {
				return nil, nil, false, fmt.Errorf("%w: %s check_in: %v", ErrTimecardValidation, stored.WorkDate, err)
			}
			changes = append(changes, models.FieldChange{
				FieldName: "check_in",
				OldValue:  formatTimeValue(&stored.CheckIn),
				NewValue:  formatTimeValue(&parsed),
			})
			next.CheckIn = parsed
		}
		if err := apply("check_out", &next.CheckOut, edit.CheckOut, stored.CheckOut); err != nil {
			return nil, nil, false, err
		}
		if err := apply("break_start", &next.BreakStart, edit.BreakStart, stored.BreakStart); err != nil {
			return nil, nil, false, err
		}
		if err := apply("break_end", &next.BreakEnd, edit.BreakEnd, stored.BreakEnd); err != nil {
			return nil, nil, false, err
		}

		if seqErrs := timecalc.ValidateSequence(next); len(seqErrs) > 0 {
			return nil, nil, false, fmt.Errorf("%w: %s: %s", ErrTimecardValidation, stored.WorkDate, strings.Join(seqErrs, ", "))
		}
		result := timecalc.Calculate(next, rule)
		if fatal, _ := timecalc.ValidateShiftLength(result.TotalHours, limits.MaxShiftHours, limits.OvertimeWarningHours); len(fatal) > 0 {
			return nil, nil, false, fmt.Errorf("%w: %s", ErrShiftExceedsMax, stored.WorkDate)
		}

		if timecalc.ManualEditExceeded(stored.TotalHours, result.TotalHours, limits.ManualEditHoursDelta) {
			manualEdit = true
		}

		row := *stored
		row.CheckIn = next.CheckIn
		row.CheckOut = next.CheckOut
		row.BreakStart = next.BreakStart
		row.BreakEnd = next.BreakEnd
		// Touching the clock fields discards a previous "no break" waiver.
		if edit.BreakStart != nil || edit.BreakEnd != nil {
			row.NoBreakWaived = false
		}
		row.TotalHours = result.TotalHours
		row.BreakMinutes = result.BreakDurationMinutes
		row.TotalPay = result.TotalPay
		updated = append(updated, row)
	}
	return updated, changes, manualEdit, nil
}

func (s *timecardService) EditTimecard(actor Actor, req EditTimecardRequest) (*models.Timecard, error) {
	timecard, err := s.timecardRepo.GetTimecardByID(req.TimecardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimecardNotFound
		}
		return nil, fmt.Errorf("failed to find timecard for edit: %w", err)
	}

	isOwner := timecard.OwnerID == actor.ID
	if !isOwner && !actor.CanApprove() {
		return nil, ErrTimecardPermission
	}
	if timecard.Status == models.TimecardStatusApproved {
		return nil, fmt.Errorf("%w: approved timecards are immutable", ErrTimecardStatusTransition)
	}
	if isOwner && !actor.CanApprove() && !timecard.Status.IsDraftLike() {
		return nil, fmt.Errorf("%w: owners may only edit draft or rejected timecards", ErrTimecardStatusTransition)
	}

	rule, err := s.resolveRule(timecard.ProjectID, timecard.OwnerID)
	if err != nil {
		return nil, err
	}
	limits := s.settings()

	updated, changes, manualEdit, err := s.applyEntryEdits(timecard, req.Entries, rule, limits)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	for i := range updated {
		if _, err := s.timecardRepo.UpdateEntry(tx, &updated[i]); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update time entry: %w", err)
		}
	}
	if manualEdit || req.EditReason != nil {
		edited := timecard.EditedManually || manualEdit
		if err := s.timecardRepo.SetTimecardEditMeta(tx, timecard.ID, edited, req.EditReason); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update timecard edit metadata: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit timecard edit: %w", err)
	}

	action := models.ClassifyEditAction(actor.ID, timecard.OwnerID, actor.CanApprove(), false)
	s.recordAudit(timecard.ID, actor, action, req.EditReason, changes)

	return s.timecardRepo.GetTimecardByID(timecard.ID)
}

// --- Submission ---

// submissionBlockers runs the pre-submission validation pass for one card.
func (s *timecardService) submissionBlockers(timecard *models.Timecard, project *models.Project, limits models.GlobalSettings) []string {
	var blockers []string

	if project.StartDate != nil {
		if start, err := time.Parse("2006-01-02", *project.StartDate); err == nil {
			if !timecalc.SubmissionOpen(s.now(), start, limits.EnforceSubmissionTiming) {
				blockers = append(blockers, timecalc.CodeSubmissionNotOpen)
			}
		}
	}

	for i := range timecard.Entries {
		entry := calcEntry(timecard.Entries[i])
		if entry.CheckOut == nil {
			blockers = append(blockers, timecalc.CodeIncompleteEntry)
			continue
		}
		if fatal, _ := timecalc.ValidateShiftLength(timecard.Entries[i].TotalHours, limits.MaxShiftHours, limits.OvertimeWarningHours); len(fatal) > 0 {
			blockers = append(blockers, timecalc.CodeShiftExceedsMax)
		}
		if timecalc.RequiresBreakResolution(entry, timecard.Entries[i].TotalHours) && !timecard.Entries[i].NoBreakWaived {
			blockers = append(blockers, timecalc.CodeMissingBreakUnresolved)
		}
	}
	return blockers
}

func (s *timecardService) SubmitTimecard(actor Actor, timecardID string) (*models.Timecard, error) {
	timecard, err := s.timecardRepo.GetTimecardByID(timecardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimecardNotFound
		}
		return nil, fmt.Errorf("failed to find timecard for submission: %w", err)
	}

	if timecard.OwnerID != actor.ID && !actor.CanApprove() {
		return nil, ErrTimecardPermission
	}
	if !models.CanTransitionTimecard(timecard.Status, models.TimecardStatusSubmitted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTimecardStatusTransition, timecard.Status, models.TimecardStatusSubmitted)
	}

	project, err := s.projectRepo.GetProjectByID(timecard.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project for submission check: %w", err)
	}

	limits := s.settings()
	blockers := s.submissionBlockers(timecard, project, limits)
	for _, b := range blockers {
		switch b {
		case timecalc.CodeMissingBreakUnresolved:
			return nil, fmt.Errorf("%w: resolve missing breaks before submitting", ErrMissingBreakUnresolved)
		case timecalc.CodeShiftExceedsMax:
			return nil, fmt.Errorf("%w: correct the flagged day before submitting", ErrShiftExceedsMax)
		case timecalc.CodeSubmissionNotOpen:
			return nil, ErrSubmissionNotOpen
		default:
			return nil, fmt.Errorf("%w: %s", ErrTimecardValidation, b)
		}
	}

	oldStatus := timecard.Status
	if err := s.timecardRepo.UpdateTimecardStatus(s.db, timecard.ID, models.TimecardStatusSubmitted, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to submit timecard: %w", err)
	}

	s.recordAudit(timecard.ID, actor, models.AuditActionStatusChange, nil, []models.FieldChange{{
		FieldName: "status",
		OldValue:  strValue(string(oldStatus)),
		NewValue:  strValue(string(models.TimecardStatusSubmitted)),
	}})

	return s.timecardRepo.GetTimecardByID(timecard.ID)
}

func (s *timecardService) ValidateSubmission(timecardIDs []string, projectID string) ([]SubmissionCheck, error) {
	project, err := s.projectRepo.GetProjectByID(projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	limits := s.settings()

	checks := make([]SubmissionCheck, 0, len(timecardIDs))
	for _, id := range timecardIDs {
		timecard, err := s.timecardRepo.GetTimecardByID(id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrTimecardNotFound, id)
			}
			return nil, fmt.Errorf("failed to load timecard %s: %w", id, err)
		}
		blockers := s.submissionBlockers(timecard, project, limits)
		if blockers == nil {
			blockers = []string{}
		}
		checks = append(checks, SubmissionCheck{
			TimecardID: id,
			CanSubmit:  len(blockers) == 0 && timecard.Status.IsDraftLike(),
			Blockers:   blockers,
		})
	}
	return checks, nil
}

// --- Approval ---

func (s *timecardService) ApproveTimecard(actor Actor, timecardID string) (*models.Timecard, error) {
	if !actor.CanApprove() {
		return nil, ErrTimecardPermission
	}
	timecard, err := s.timecardRepo.GetTimecardByID(timecardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimecardNotFound
		}
		return nil, fmt.Errorf("failed to find timecard for approval: %w", err)
	}
	if !models.CanTransitionTimecard(timecard.Status, models.TimecardStatusApproved) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTimecardStatusTransition, timecard.Status, models.TimecardStatusApproved)
	}

	if err := s.timecardRepo.UpdateTimecardStatus(s.db, timecard.ID, models.TimecardStatusApproved, nil, &actor.ID); err != nil {
		return nil, fmt.Errorf("failed to approve timecard: %w", err)
	}

	s.recordAudit(timecard.ID, actor, models.AuditActionStatusChange, nil, []models.FieldChange{{
		FieldName: "status",
		OldValue:  strValue(string(timecard.Status)),
		NewValue:  strValue(string(models.TimecardStatusApproved)),
	}})

	return s.timecardRepo.GetTimecardByID(timecard.ID)
}

func (s *timecardService) RejectTimecard(actor Actor, req RejectTimecardRequest) (*models.Timecard, error) {
	// Reason is a hard precondition, checked before anything is touched.
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrRejectionReasonRequired
	}
	if !actor.CanApprove() {
		return nil, ErrTimecardPermission
	}

	timecard, err := s.timecardRepo.GetTimecardByID(req.TimecardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimecardNotFound
		}
		return nil, fmt.Errorf("failed to find timecard for rejection: %w", err)
	}

	target := models.TimecardStatusRejected
	if req.ReturnToDraft {
		target = models.TimecardStatusEditedDraft
	}
	if !models.CanTransitionTimecard(timecard.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTimecardStatusTransition, timecard.Status, target)
	}

	var updated []models.TimeEntry
	var correctionChanges []models.FieldChange
	if req.ReturnToDraft && len(req.Corrections) > 0 {
		rule, err := s.resolveRule(timecard.ProjectID, timecard.OwnerID)
		if err != nil {
			return nil, err
		}
		updated, correctionChanges, _, err = s.applyEntryEdits(timecard, req.Corrections, rule, s.settings())
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	for i := range updated {
		if _, err := s.timecardRepo.UpdateEntry(tx, &updated[i]); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to apply correction: %w", err)
		}
	}
	if err := s.timecardRepo.UpdateTimecardStatus(tx, timecard.ID, target, &reason, &actor.ID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to reject timecard: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit timecard rejection: %w", err)
	}

	if len(correctionChanges) > 0 {
		action := models.ClassifyEditAction(actor.ID, timecard.OwnerID, actor.CanApprove(), true)
		s.recordAudit(timecard.ID, actor, action, &reason, correctionChanges)
	}
	s.recordAudit(timecard.ID, actor, models.AuditActionStatusChange, &reason, []models.FieldChange{{
		FieldName: "status",
		OldValue:  strValue(string(timecard.Status)),
		NewValue:  strValue(string(target)),
	}})

	return s.timecardRepo.GetTimecardByID(timecard.ID)
}

// --- Missing-break resolution ---

func (s *timecardService) ResolveBreaks(actor Actor, req ResolveBreaksRequest) (*models.Timecard, error) {
	timecard, err := s.timecardRepo.GetTimecardByID(req.TimecardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTimecardNotFound
		}
		return nil, fmt.Errorf("failed to find timecard for break resolution: %w", err)
	}
	if timecard.OwnerID != actor.ID && !actor.CanApprove() {
		return nil, ErrTimecardPermission
	}
	if !timecard.Status.IsDraftLike() {
		return nil, fmt.Errorf("%w: breaks can only be resolved on draft timecards", ErrTimecardStatusTransition)
	}

	rule, err := s.resolveRule(timecard.ProjectID, timecard.OwnerID)
	if err != nil {
		return nil, err
	}

	byDate := map[string]*models.TimeEntry{}
	for i := range timecard.Entries {
		byDate[timecard.Entries[i].WorkDate] = &timecard.Entries[i]
	}

	var updated []models.TimeEntry
	var changes []models.FieldChange
	for workDate, policy := range req.Resolutions {
		stored, ok := byDate[workDate]
		if !ok {
			return nil, fmt.Errorf("%w: no entry for work date %s", ErrTimecardEntryNotFound, workDate)
		}

		row := *stored
		switch policy {
		case ResolutionAddBreak:
			withBreak := timecalc.SynthesizeBreak(calcEntry(*stored), rule.DefaultBreakMinutes)
			result := timecalc.Calculate(withBreak, rule)
			row.BreakStart = withBreak.BreakStart
			row.BreakEnd = withBreak.BreakEnd
			row.NoBreakWaived = false
			row.TotalHours = result.TotalHours
			row.BreakMinutes = result.BreakDurationMinutes
			row.TotalPay = result.TotalPay
			changes = append(changes,
				models.FieldChange{FieldName: "break_start", OldValue: formatTimeValue(stored.BreakStart), NewValue: formatTimeValue(row.BreakStart)},
				models.FieldChange{FieldName: "break_end", OldValue: formatTimeValue(stored.BreakEnd), NewValue: formatTimeValue(row.BreakEnd)},
			)
		case ResolutionNoBreak:
			// A conscious "no break taken": hours and pay stay as computed.
			row.BreakStart = nil
			row.BreakEnd = nil
			row.NoBreakWaived = true
			changes = append(changes, models.FieldChange{
				FieldName: "no_break_waived",
				OldValue:  strValue("false"),
				NewValue:  strValue("true"),
			})
		default:
			return nil, fmt.Errorf("%w: '%s' for %s", ErrUnknownResolutionPolicy, policy, workDate)
		}
		updated = append(updated, row)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	for i := range updated {
		if _, err := s.timecardRepo.UpdateEntry(tx, &updated[i]); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to apply break resolution: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit break resolution: %w", err)
	}

	action := models.ClassifyEditAction(actor.ID, timecard.OwnerID, actor.CanApprove(), false)
	s.recordAudit(timecard.ID, actor, action, nil, changes)

	return s.timecardRepo.GetTimecardByID(timecard.ID)
}

// --- Reporting / misc ---

func (s *timecardService) GetProjectSummary(projectID string) (*models.TimecardSummary, error) {
	summary, err := s.timecardRepo.GetProjectSummary(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to build project summary: %w", err)
	}
	summary.TotalHours = timecalc.Round2(summary.TotalHours)
	summary.TotalPay = timecalc.Round2(summary.TotalPay)
	return summary, nil
}

func (s *timecardService) GetAuditLog(timecardID string) ([]models.AuditEntry, error) {
	entries, err := s.auditRepo.GetEntriesByTimecard(timecardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit log: %w", err)
	}
	return entries, nil
}

func (s *timecardService) DeleteTimecard(actor Actor, id string) error {
	if !actor.CanApprove() {
		return ErrTimecardPermission
	}
	err := s.timecardRepo.DeleteTimecard(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTimecardNotFound
		}
		return fmt.Errorf("failed to delete timecard: %w", err)
	}
	return nil
}
