package handlers

import (
	"errors"
	"net/http"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/services"
	"talent_tracker_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RateHandler holds the rate service.
type RateHandler struct {
	rateService services.RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rs services.RateService) *RateHandler {
	return &RateHandler{rateService: rs}
}

// GetDefaultRateRules returns the seeded global defaults, one per break class.
func (h *RateHandler) GetDefaultRateRules(c *gin.Context) {
	rules, err := h.rateService.GetDefaultRateRules()
	if err != nil {
		utils.LogError(err, "GetDefaultRateRules: Error from rateService.GetDefaultRateRules")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch default rate rules.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

// GetProjectRateRules lists a project's rate-rule overrides.
func (h *RateHandler) GetProjectRateRules(c *gin.Context) {
	projectID := c.Param("id")

	rules, err := h.rateService.GetProjectRateRules(projectID)
	if err != nil {
		utils.LogError(err, "GetProjectRateRules: Error from rateService.GetProjectRateRules for project "+projectID)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch rate rules.", "Internal error"))
		return
	}
	if rules == nil {
		rules = []models.RateRule{}
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

// GetEffectiveRateRule resolves which rule a calculation would use for a
// project and break class.
func (h *RateHandler) GetEffectiveRateRule(c *gin.Context) {
	projectID := c.Param("id")
	breakClass := c.DefaultQuery("break_class", models.BreakClassStaff)

	rule, err := h.rateService.GetEffectiveRateRule(projectID, breakClass)
	if err != nil {
		utils.LogError(err, "GetEffectiveRateRule: Error from rateService.GetEffectiveRateRule")
		if errors.Is(err, services.ErrRateRuleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No rate rule found.", err.Error()))
		} else if errors.Is(err, services.ErrRateRuleValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to resolve rate rule.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, rule)
}

// UpsertProjectRateRule creates or replaces a project's override for one
// break class.
func (h *RateHandler) UpsertProjectRateRule(c *gin.Context) {
	var req services.UpsertRateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.ProjectID = c.Param("id")

	rule, err := h.rateService.UpsertProjectRateRule(req)
	if err != nil {
		utils.LogError(err, "UpsertProjectRateRule: Error from rateService.UpsertProjectRateRule")
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else if errors.Is(err, services.ErrRateRuleValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to save rate rule.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteProjectRateRule removes an override, reverting the project to the
// global defaults for that break class.
func (h *RateHandler) DeleteProjectRateRule(c *gin.Context) {
	id := c.Param("ruleId")

	err := h.rateService.DeleteProjectRateRule(id)
	if err != nil {
		utils.LogError(err, "DeleteProjectRateRule: Error from rateService.DeleteProjectRateRule for ID "+id)
		if errors.Is(err, services.ErrRateRuleNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Rate rule not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete rate rule.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate rule deleted successfully"})
}

// GetGlobalSettings returns the system-wide limits row.
func (h *RateHandler) GetGlobalSettings(c *gin.Context) {
	settings, err := h.rateService.GetGlobalSettings()
	if err != nil {
		utils.LogError(err, "GetGlobalSettings: Error from rateService.GetGlobalSettings")
		if errors.Is(err, services.ErrSettingsNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Global settings not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch global settings.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateGlobalSettings updates the system-wide limits row.
func (h *RateHandler) UpdateGlobalSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	settings, err := h.rateService.UpdateGlobalSettings(req)
	if err != nil {
		utils.LogError(err, "UpdateGlobalSettings: Error from rateService.UpdateGlobalSettings")
		if errors.Is(err, services.ErrSettingsNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Global settings not found.", err.Error()))
		} else if errors.Is(err, services.ErrRateRuleValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update global settings.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, settings)
}
