package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/learnlytics/learnlytics-backend/internal/config"
	"github.com/learnlytics/learnlytics-backend/internal/handler"
	"github.com/learnlytics/learnlytics-backend/internal/middleware"
	"github.com/learnlytics/learnlytics-backend/internal/response"
	"github.com/learnlytics/learnlytics-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	Report  *handler.ReportHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokenService *service.TokenService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Learner Group (JWT) ────────────────────────────────────────
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(middleware.RequireLearnerJWT(tokenService))
	{
		learnerAPI.POST("/attempts/start", handlers.Attempt.Start)
		learnerAPI.GET("/attempts/:attempt_id", handlers.Attempt.Get)
		learnerAPI.POST("/attempts/:attempt_id/submit", handlers.Attempt.Submit)
	}

	// ─── 2. Instructor Group (JWT) ─────────────────────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(tokenService))
	{
		instructorAPI.GET("/assessments/:assessment_id/plagiarism-reports", handlers.Report.ListByAssessment)
	}

	// ─── 3. WebSocket Group (Instructor WS Auth) ───────────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireInstructorWSAuth(tokenService))
	{
		wsGroup.GET("/instructor/assessments/:assessment_id/monitor", handlers.WS.MonitorStream)
	}

	return router
}
