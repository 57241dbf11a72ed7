package http

import (
	"github.com/gin-gonic/gin"

	"github.com/comparaprecios/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Unified search endpoint
	router.GET("/search", handler.Search)

	// MercadoLibre OAuth endpoints
	ml := router.Group("/ml")
	{
		ml.GET("/login", handler.MeliLogin)
		ml.GET("/callback", handler.MeliCallback)
		ml.POST("/notifications", handler.MeliNotifications)
	}

	// Per-source inspection endpoints
	debug := router.Group("/debug")
	{
		debug.GET("/:source", handler.DebugSource)
	}

	return router
}
