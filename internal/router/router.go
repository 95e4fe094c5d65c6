package router

import (
	"database/sql"

	"talent_tracker_backend/internal/handlers"
	"talent_tracker_backend/internal/middleware"
	"talent_tracker_backend/internal/repositories"
	"talent_tracker_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	talentRepo := repositories.NewTalentRepository(db)
	rateRepo := repositories.NewRateRepository(db)
	timecardRepo := repositories.NewTimecardRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	projectService := services.NewProjectService(projectRepo, db)
	talentService := services.NewTalentService(talentRepo, db)
	rateService := services.NewRateService(rateRepo, db)
	timecardService := services.NewTimecardService(timecardRepo, projectRepo, rateRepo, auditRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	talentHandler := handlers.NewTalentHandler(talentService)
	rateHandler := handlers.NewRateHandler(rateService)
	timecardHandler := handlers.NewTimecardHandler(timecardService)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupAuthRoutes(apiV1, authHandler)

	// Everything else requires a valid token
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupProjectRoutes(authenticated, projectHandler, rateHandler)
		SetupTalentRoutes(authenticated, talentHandler)
		SetupTimecardRoutes(authenticated, timecardHandler)
		SetupRateRoutes(authenticated, rateHandler)
	}
}
