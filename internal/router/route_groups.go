package router

import (
	"talent_tracker_backend/internal/handlers"
	"talent_tracker_backend/internal/middleware"
	"talent_tracker_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.GetMe)
		}
	}
}

// SetupProjectRoutes sets up the project, assignment, and per-project
// rate-rule routes. Project administration is restricted to approver roles;
// reading is open to any authenticated crew member.
func SetupProjectRoutes(authenticatedGroup *gin.RouterGroup, projectHandler *handlers.ProjectHandler, rateHandler *handlers.RateHandler) {
	projectRoutes := authenticatedGroup.Group("/projects")
	{
		projectRoutes.GET("", projectHandler.GetProjects)
		projectRoutes.GET("/:id", projectHandler.GetProjectByID)
		projectRoutes.GET("/:id/assignments", projectHandler.GetAssignments)
		projectRoutes.GET("/:id/rate-rules", rateHandler.GetProjectRateRules)
		projectRoutes.GET("/:id/rate-rules/effective", rateHandler.GetEffectiveRateRule)

		adminRoutes := projectRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSupervisor))
		{
			adminRoutes.POST("", projectHandler.CreateProject)
			adminRoutes.PUT("/:id", projectHandler.UpdateProject)
			adminRoutes.DELETE("/:id", projectHandler.DeleteProject)
			adminRoutes.POST("/:id/assignments", projectHandler.CreateAssignment)
			adminRoutes.DELETE("/:id/assignments/:assignmentId", projectHandler.DeleteAssignment)
			adminRoutes.PUT("/:id/rate-rules", rateHandler.UpsertProjectRateRule)
			adminRoutes.DELETE("/:id/rate-rules/:ruleId", rateHandler.DeleteProjectRateRule)
		}
	}
}

// SetupTalentRoutes sets up the talent roster routes. Escorts and
// coordinators run the location board day to day, so writes are open to all
// four roles; deletion stays with approvers.
func SetupTalentRoutes(authenticatedGroup *gin.RouterGroup, talentHandler *handlers.TalentHandler) {
	talentRoutes := authenticatedGroup.Group("/talent")
	{
		talentRoutes.GET("", talentHandler.GetTalent)
		talentRoutes.GET("/:id", talentHandler.GetTalentByID)
		talentRoutes.POST("", talentHandler.CreateTalent)
		talentRoutes.PUT("/:id", talentHandler.UpdateTalent)
		talentRoutes.PATCH("/:id/location", talentHandler.UpdateTalentLocation)

		adminRoutes := talentRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSupervisor))
		{
			adminRoutes.DELETE("/:id", talentHandler.DeleteTalent)
		}
	}
}

// SetupTimecardRoutes sets up the timecard routes. Ownership and approval
// permissions are enforced in the service layer; the route level only gates
// the approval and deletion endpoints by role.
func SetupTimecardRoutes(authenticatedGroup *gin.RouterGroup, timecardHandler *handlers.TimecardHandler) {
	timecardRoutes := authenticatedGroup.Group("/timecards")
	{
		timecardRoutes.POST("/calculate", timecardHandler.Calculate)
		timecardRoutes.POST("/validate-submission", timecardHandler.ValidateSubmission)
		timecardRoutes.GET("/summary", timecardHandler.GetProjectSummary)

		timecardRoutes.POST("", timecardHandler.CreateTimecard)
		timecardRoutes.GET("", timecardHandler.GetTimecards)
		timecardRoutes.GET("/:id", timecardHandler.GetTimecardByID)
		timecardRoutes.PATCH("/:id", timecardHandler.EditTimecard)
		timecardRoutes.POST("/:id/submit", timecardHandler.SubmitTimecard)
		timecardRoutes.POST("/:id/resolve-breaks", timecardHandler.ResolveBreaks)
		timecardRoutes.GET("/:id/audit-log", timecardHandler.GetAuditLog)

		approverRoutes := timecardRoutes.Group("")
		approverRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSupervisor))
		{
			approverRoutes.POST("/:id/approve", timecardHandler.ApproveTimecard)
			approverRoutes.POST("/:id/reject", timecardHandler.RejectTimecard)
			approverRoutes.DELETE("/:id", timecardHandler.DeleteTimecard)
		}
	}
}

// SetupRateRoutes sets up the global rate-defaults and settings routes.
func SetupRateRoutes(authenticatedGroup *gin.RouterGroup, rateHandler *handlers.RateHandler) {
	rateRoutes := authenticatedGroup.Group("/rate-rules")
	{
		rateRoutes.GET("/defaults", rateHandler.GetDefaultRateRules)
	}

	settingsRoutes := authenticatedGroup.Group("/settings")
	{
		settingsRoutes.GET("", rateHandler.GetGlobalSettings)

		adminRoutes := settingsRoutes.Group("")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.PUT("", rateHandler.UpdateGlobalSettings)
		}
	}
}
