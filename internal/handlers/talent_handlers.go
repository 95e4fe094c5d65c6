package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"talent_tracker_backend/internal/models"
	"talent_tracker_backend/internal/services"
	"talent_tracker_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TalentHandler holds the talent service.
type TalentHandler struct {
	talentService services.TalentService
}

// NewTalentHandler creates a new TalentHandler.
func NewTalentHandler(ts services.TalentService) *TalentHandler {
	return &TalentHandler{talentService: ts}
}

// CreateTalent adds a talent to a project roster.
func (h *TalentHandler) CreateTalent(c *gin.Context) {
	var req services.CreateTalentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTalent: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	talent, err := h.talentService.CreateTalent(req)
	if err != nil {
		utils.LogError(err, "CreateTalent: Error from talentService.CreateTalent")
		if errors.Is(err, services.ErrTalentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create talent profile.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, talent)
}

// GetTalent handles fetching the roster with pagination, search, and an
// optional project filter.
func (h *TalentHandler) GetTalent(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	searchTerm := c.Query("search")
	projectID := c.Query("project_id")

	var pSearchTerm, pProjectID *string
	if searchTerm != "" {
		pSearchTerm = &searchTerm
	}
	if projectID != "" {
		pProjectID = &projectID
	}

	talents, totalCount, err := h.talentService.GetTalent(pProjectID, page, pageSize, pSearchTerm)
	if err != nil {
		utils.LogError(err, "GetTalent: Error from talentService.GetTalent")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch talent profiles.", "Internal error"))
		return
	}

	if talents == nil {
		talents = []models.TalentProfile{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      talents,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetTalentByID handles fetching a single talent profile.
func (h *TalentHandler) GetTalentByID(c *gin.Context) {
	id := c.Param("id")

	talent, err := h.talentService.GetTalentByID(id)
	if err != nil {
		utils.LogError(err, "GetTalentByID: Error from talentService.GetTalentByID for ID "+id)
		if errors.Is(err, services.ErrTalentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Talent profile not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch talent profile.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, talent)
}

// UpdateTalent handles updating a talent profile.
func (h *TalentHandler) UpdateTalent(c *gin.Context) {
	var req services.UpdateTalentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.ID = c.Param("id")

	talent, err := h.talentService.UpdateTalent(req)
	if err != nil {
		utils.LogError(err, "UpdateTalent: Error from talentService.UpdateTalent for ID "+req.ID)
		if errors.Is(err, services.ErrTalentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Talent profile not found.", err.Error()))
		} else if errors.Is(err, services.ErrTalentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update talent profile.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, talent)
}

// UpdateTalentLocation moves a talent across the location board.
func (h *TalentHandler) UpdateTalentLocation(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		LocationStatus string `json:"location_status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	talent, err := h.talentService.UpdateLocationStatus(id, req.LocationStatus)
	if err != nil {
		utils.LogError(err, "UpdateTalentLocation: Error from talentService.UpdateLocationStatus for ID "+id)
		if errors.Is(err, services.ErrTalentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Talent profile not found.", err.Error()))
		} else if errors.Is(err, services.ErrTalentInvalidLocation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update talent location.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, talent)
}

// DeleteTalent handles removing a talent profile.
func (h *TalentHandler) DeleteTalent(c *gin.Context) {
	id := c.Param("id")

	err := h.talentService.DeleteTalent(id)
	if err != nil {
		utils.LogError(err, "DeleteTalent: Error from talentService.DeleteTalent for ID "+id)
		if errors.Is(err, services.ErrTalentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Talent profile not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete talent profile.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Talent profile deleted successfully"})
}
