package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/config"
	"github.com/personal-system/personal-backend/internal/handler"
	"github.com/personal-system/personal-backend/internal/middleware"
	"github.com/personal-system/personal-backend/internal/response"
	"github.com/personal-system/personal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Student *handler.StudentHandler
	Plan    *handler.PlanHandler
	Session *handler.SessionHandler
	Payment *handler.PaymentHandler
	Health  *handler.HealthHandler
	// FinanceStream is nil when Redis is not configured.
	FinanceStream *handler.FinanceStreamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

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

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	// ─── 1. Auth (public, rate limited) ────────────────────────────────
	auth := router.Group("/api/v1/auth")
	if loginLimiter != nil {
		auth.Use(loginLimiter.Middleware())
	}
	{
		auth.POST("/login", handlers.Auth.Login)
	}

	// ─── 2. Trainer API (JWT) ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireTrainerJWT(authService))
	{
		students := api.Group("/alunos")
		students.POST("", handlers.Student.Create)
		students.GET("", handlers.Student.List)
		students.GET("/:id", handlers.Student.Get)
		students.PATCH("/:id", handlers.Student.Update)
		students.DELETE("/:id", handlers.Student.Delete)
		students.GET("/:id/planos", handlers.Student.ListPlans)
		students.POST("/:id/planos", handlers.Student.CreatePlan)

		plans := api.Group("/planos")
		plans.POST("", handlers.Plan.Create)
		plans.GET("/:id", handlers.Plan.Get)
		plans.PATCH("/:id/desativar", handlers.Plan.Deactivate)
		plans.DELETE("/:id", handlers.Plan.Delete)
		plans.POST("/:id/exercicios", handlers.Plan.AddPrescription)
		plans.PATCH("/exercicios/:id", handlers.Plan.UpdatePrescription)
		plans.DELETE("/exercicios/:id", handlers.Plan.DeletePrescription)

		sessions := api.Group("/sessoes")
		sessions.POST("", handlers.Session.Create)
		sessions.GET("", handlers.Session.List)
		sessions.GET("/frequencia/:aluno_id", handlers.Session.Adherence)
		sessions.GET("/:id", handlers.Session.Get)
		sessions.DELETE("/:id", handlers.Session.Delete)

		payments := api.Group("/pagamentos")
		payments.POST("", handlers.Payment.Create)
		payments.GET("", handlers.Payment.List)
		payments.GET("/estatisticas", middleware.CacheControl(0), handlers.Payment.Stats)
		payments.GET("/:id", handlers.Payment.Get)
		payments.PUT("/:id", handlers.Payment.Update)
		payments.DELETE("/:id", handlers.Payment.Delete)
	}

	// ─── 3. WebSocket (query token) ────────────────────────────────────
	if handlers.FinanceStream != nil {
		ws := router.Group("/ws/v1")
		ws.Use(middleware.RequireTrainerWSAuth(authService))
		{
			ws.GET("/financeiro/stream", handlers.FinanceStream.Stream)
		}
	}

	return router
}
