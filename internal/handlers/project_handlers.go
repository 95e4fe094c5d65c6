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

// ProjectHandler holds the project service.
type ProjectHandler struct {
	projectService services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(ps services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: ps}
}

// CreateProject handles the creation of a new production.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateProject: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(req)
	if err != nil {
		utils.LogError(err, "CreateProject: Error from projectService.CreateProject")
		if errors.Is(err, services.ErrProjectNameTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Project name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrProjectValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProjects handles fetching all projects with pagination and search.
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	searchTerm := c.Query("search")

	var pSearchTerm *string
	if searchTerm != "" {
		pSearchTerm = &searchTerm
	}

	projects, totalCount, err := h.projectService.GetProjects(page, pageSize, pSearchTerm)
	if err != nil {
		utils.LogError(err, "GetProjects: Error from projectService.GetProjects")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch projects.", "Internal error"))
		return
	}

	if projects == nil {
		projects = []models.Project{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      projects,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetProjectByID handles fetching a single project.
func (h *ProjectHandler) GetProjectByID(c *gin.Context) {
	id := c.Param("id")

	project, err := h.projectService.GetProjectByID(id)
	if err != nil {
		utils.LogError(err, "GetProjectByID: Error from projectService.GetProjectByID for ID "+id)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject handles updating a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.ID = c.Param("id")

	project, err := h.projectService.UpdateProject(req)
	if err != nil {
		utils.LogError(err, "UpdateProject: Error from projectService.UpdateProject for ID "+req.ID)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else if errors.Is(err, services.ErrProjectNameTaken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Project name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrProjectValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject handles deleting a project.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")

	err := h.projectService.DeleteProject(id)
	if err != nil {
		utils.LogError(err, "DeleteProject: Error from projectService.DeleteProject for ID "+id)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else if errors.Is(err, services.ErrProjectInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Project has timecards or assignments and cannot be deleted.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete project.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// --- Assignments ---

// CreateAssignment adds a crew member to a project.
func (h *ProjectHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	req.ProjectID = c.Param("id")

	assignment, err := h.projectService.CreateAssignment(req)
	if err != nil {
		utils.LogError(err, "CreateAssignment: Error from projectService.CreateAssignment")
		if errors.Is(err, services.ErrAssignmentExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "User is already assigned to this project.", err.Error()))
		} else if errors.Is(err, services.ErrAssignmentUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project or user not found.", err.Error()))
		} else if errors.Is(err, services.ErrAssignmentInvalidRole) || errors.Is(err, services.ErrProjectValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create assignment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// GetAssignments lists a project's crew assignments.
func (h *ProjectHandler) GetAssignments(c *gin.Context) {
	projectID := c.Param("id")

	assignments, err := h.projectService.GetAssignmentsByProject(projectID)
	if err != nil {
		utils.LogError(err, "GetAssignments: Error from projectService.GetAssignmentsByProject for project "+projectID)
		if errors.Is(err, services.ErrProjectNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Project not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch assignments.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// DeleteAssignment removes a crew member from a project.
func (h *ProjectHandler) DeleteAssignment(c *gin.Context) {
	id := c.Param("assignmentId")

	err := h.projectService.DeleteAssignment(id)
	if err != nil {
		utils.LogError(err, "DeleteAssignment: Error from projectService.DeleteAssignment for ID "+id)
		if errors.Is(err, services.ErrAssignmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Assignment not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete assignment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted successfully"})
}
