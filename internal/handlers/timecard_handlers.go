package handlers

import (
	"errors"
	"net/http"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/services"
	"talent_tracker_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TimecardHandler holds the timecard service.
type TimecardHandler struct {
	timecardService services.TimecardService
}

// NewTimecardHandler creates a new TimecardHandler.
func NewTimecardHandler(ts services.TimecardService) *TimecardHandler {
	return &TimecardHandler{timecardService: ts}
}

// respondTimecardError maps the timecard service sentinels onto HTTP codes.
// 422 is used for workflow blockers so the client can distinguish them from
// malformed payloads.
func respondTimecardError(c *gin.Context, err error, operation string) {
	utils.LogError(err, operation+": Error from timecardService")
	switch {
	case errors.Is(err, services.ErrTimecardNotFound), errors.Is(err, services.ErrTimecardEntryNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Timecard or entry not found.", err.Error()))
	case errors.Is(err, services.ErrTimecardPermission):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You are not allowed to perform this operation.", err.Error()))
	case errors.Is(err, services.ErrRejectionReasonRequired):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "A rejection reason is required.", err.Error()))
	case errors.Is(err, services.ErrTimecardStatusTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "The timecard is not in a state that allows this operation.", err.Error()))
	case errors.Is(err, services.ErrMissingBreakUnresolved),
		errors.Is(err, services.ErrShiftExceedsMax),
		errors.Is(err, services.ErrSubmissionNotOpen):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "The timecard cannot be submitted yet.", err.Error()))
	case errors.Is(err, services.ErrTimecardValidation),
		errors.Is(err, services.ErrEntryTimeFormat),
		errors.Is(err, services.ErrUnknownResolutionPolicy),
		errors.Is(err, services.ErrOwnerNotAssigned):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrProjectNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Timecard operation failed.", "Internal error"))
	}
}

// Calculate runs the pay engine over a single day entry without persisting
// anything. Drafting clients call this as the user types.
func (h *TimecardHandler) Calculate(c *gin.Context) {
	var req services.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.timecardService.Calculate(req)
	if err != nil {
		respondTimecardError(c, err, "Calculate")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateTimecard handles the creation of a new timecard with its day entries.
func (h *TimecardHandler) CreateTimecard(c *gin.Context) {
	var req services.CreateTimecardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTimecard: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	timecard, err := h.timecardService.CreateTimecard(actorFromContext(c), req)
	if err != nil {
		respondTimecardError(c, err, "CreateTimecard")
		return
	}
	c.JSON(http.StatusCreated, timecard)
}

// GetTimecards handles fetching timecards with filters and pagination.
func (h *TimecardHandler) GetTimecards(c *gin.Context) {
	var filters models.TimecardFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters: "+err.Error(), err.Error()))
		return
	}

	timecards, totalCount, err := h.timecardService.GetTimecards(actorFromContext(c), filters)
	if err != nil {
		respondTimecardError(c, err, "GetTimecards")
		return
	}

	if timecards == nil {
		timecards = []models.Timecard{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      timecards,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetTimecardByID handles fetching a single timecard with its entries.
func (h *TimecardHandler) GetTimecardByID(c *gin.Context) {
	timecard, err := h.timecardService.GetTimecardByID(actorFromContext(c), c.Param("id"))
	if err != nil {
		respondTimecardError(c, err, "GetTimecardByID")
		return
	}
	c.JSON(http.StatusOK, timecard)
}

// EditTimecard applies field edits to a timecard's entries, recalculating
// hours and pay for every touched day.
func (h *TimecardHandler) EditTimecard(c *gin.Context) {
	var req services.EditTimecardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.TimecardID = c.Param("id")

	timecard, err := h.timecardService.EditTimecard(actorFromContext(c), req)
	if err != nil {
		respondTimecardError(c, err, "EditTimecard")
		return
	}
	c.JSON(http.StatusOK, timecard)
}

// SubmitTimecard moves a draft into review.
func (h *TimecardHandler) SubmitTimecard(c *gin.Context) {
	timecard, err := h.timecardService.SubmitTimecard(actorFromContext(c), c.Param("id"))
	if err != nil {
		respondTimecardError(c, err, "SubmitTimecard")
		return
	}
	c.JSON(http.StatusOK, timecard)
}

// ValidateSubmission reports, per timecard, whether submission would pass
// and which blockers stand in the way. Nothing is persisted.
func (h *TimecardHandler) ValidateSubmission(c *gin.Context) {
	var req struct {
		ProjectID   string   `json:"project_id" binding:"required"`
		TimecardIDs []string `json:"timecard_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	checks, err := h.timecardService.ValidateSubmission(req.TimecardIDs, req.ProjectID)
	if err != nil {
		respondTimecardError(c, err, "ValidateSubmission")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": checks})
}

// ApproveTimecard finalizes a submitted timecard.
func (h *TimecardHandler) ApproveTimecard(c *gin.Context) {
	timecard, err := h.timecardService.ApproveTimecard(actorFromContext(c), c.Param("id"))
	if err != nil {
		respondTimecardError(c, err, "ApproveTimecard")
		return
	}
	c.JSON(http.StatusOK, timecard)
}

// RejectTimecard sends a submitted timecard back, either as rejected or as
// an edited draft with optional corrections applied.
func (h *TimecardHandler) RejectTimecard(c *gin.Context) {
	var req services.RejectTimecardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.TimecardID = c.Param("id")

	timecard, err := h.timecardService.RejectTimecard(actorFromContext(c), req)
	if err != nil {
		respondTimecardError(c, err, "RejectTimecard")
		return
	}
	c.JSON(http.StatusOK, timecard)
}

// ResolveBreaks applies per-day missing-break resolutions.
func (h *TimecardHandler) ResolveBreaks(c *gin.Context) {
	var req services.ResolveBreaksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.TimecardID = c.Param("id")

	timecard, err := h.timecardService.ResolveBreaks(actorFromContext(c), req)
	if err != nil {
		respondTimecardError(c, err, "ResolveBreaks")
		return
	}
	c.JSON(http.StatusOK, timecard)
}

// GetAuditLog returns a timecard's change history.
func (h *TimecardHandler) GetAuditLog(c *gin.Context) {
	entries, err := h.timecardService.GetAuditLog(c.Param("id"))
	if err != nil {
		respondTimecardError(c, err, "GetAuditLog")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// GetProjectSummary aggregates a project's hours, pay, and status counts.
func (h *TimecardHandler) GetProjectSummary(c *gin.Context) {
	projectID := c.Query("project_id")
	if utils.IsEmpty(projectID) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "project_id query parameter is required.", ""))
		return
	}

	summary, err := h.timecardService.GetProjectSummary(projectID)
	if err != nil {
		respondTimecardError(c, err, "GetProjectSummary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteTimecard removes a timecard and its entries.
func (h *TimecardHandler) DeleteTimecard(c *gin.Context) {
	err := h.timecardService.DeleteTimecard(actorFromContext(c), c.Param("id"))
	if err != nil {
		respondTimecardError(c, err, "DeleteTimecard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Timecard deleted successfully"})
}
