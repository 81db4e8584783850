package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/handler"
	"github.com/Ayushant/skillspan-hub/internal/middleware"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/response"
	"github.com/Ayushant/skillspan-hub/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	SessionAdmin  *handler.SessionAdminHandler
	University    *handler.UniversityHandler
	Question      *handler.QuestionHandler
	Dashboard     *handler.DashboardHandler
	System        *handler.SystemHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Role + Single Device) ─────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireJWT(authService),
		middleware.RequireRole(model.RoleStudent),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/dashboard", handlers.StudentPortal.GetDashboard)
		studentAPI.GET("/session", handlers.StudentPortal.GetSession)
		studentAPI.POST("/session/start", handlers.StudentPortal.StartSession)
		studentAPI.GET("/session/questions", handlers.StudentPortal.GetQuestions)
		studentAPI.GET("/session/state", handlers.StudentPortal.GetState)
		studentAPI.PUT("/session/answers", handlers.StudentPortal.RecordAnswer)
		studentAPI.POST("/session/answers/:question_id/review", handlers.StudentPortal.ToggleReview)
		studentAPI.POST("/session/submit", handlers.StudentPortal.SubmitSession)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/session/stream", handlers.WS.SessionStream)
	}

	// ─── 4. University Admin Group (JWT + Role) ────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireJWT(authService),
		middleware.RequireRole(model.RoleUniversityAdmin),
	)
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetUniversityDashboard)

		// Student management
		adminAPI.GET("/students", handlers.StudentMgmt.ListStudents)
		adminAPI.POST("/students", handlers.StudentMgmt.CreateStudent)
		adminAPI.DELETE("/students/:id", handlers.StudentMgmt.DeleteStudent)
		adminAPI.POST("/students/:id/reset-session", handlers.StudentMgmt.ResetStudentSession)
		adminAPI.POST("/students/:id/grant-session", handlers.SessionAdmin.GrantSession)

		// Session control
		adminAPI.GET("/sessions", handlers.SessionAdmin.ListSessions)
		adminAPI.POST("/sessions/grant-all", handlers.SessionAdmin.GrantAll)
		adminAPI.POST("/sessions/stop-all", handlers.SessionAdmin.StopAll)
		adminAPI.POST("/sessions/:id/stop", handlers.SessionAdmin.StopSession)
		adminAPI.GET("/sessions/monitor", handlers.SessionAdmin.MonitorSSE)
	}

	// ─── 5. Super Admin Group (JWT + Role) ─────────────────────────────
	superAPI := router.Group("/api/v1/super")
	superAPI.Use(
		middleware.RequireJWT(authService),
		middleware.RequireRole(model.RoleSuperAdmin),
	)
	{
		superAPI.GET("/stats", handlers.Dashboard.GetPlatformStats)
		superAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)

		// University management
		superAPI.GET("/universities", handlers.University.ListUniversities)
		superAPI.POST("/universities", handlers.University.CreateUniversity)
		superAPI.GET("/universities/:id", handlers.University.GetUniversity)
		superAPI.PUT("/universities/:id", handlers.University.UpdateUniversity)
		superAPI.DELETE("/universities/:id", handlers.University.DeleteUniversity)
		superAPI.GET("/universities/:id/licenses", handlers.University.ListLicensePackages)
		superAPI.POST("/universities/:id/licenses", handlers.University.IssueLicensePackage)

		// Question authoring
		superAPI.GET("/questions", handlers.Question.ListQuestions)
		superAPI.POST("/questions", handlers.Question.CreateQuestion)
		superAPI.DELETE("/questions/:id", handlers.Question.DeleteQuestion)
	}

	return router
}
