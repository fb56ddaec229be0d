package http

import (
	"github.com/gin-gonic/gin"
	"github.com/greenbasket/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.PerIP > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/score", handler.ScoreProducts)
		v1.POST("/optimize", handler.OptimizeBudget)

		substitutes := v1.Group("/substitutes")
		{
			substitutes.POST("", handler.FindSubstitutes)
			substitutes.POST("/best", handler.FindBestSubstitute)
		}

		v1.POST("/lists/optimize", handler.OptimizeList)
		v1.GET("/products/search", handler.SearchProducts)
	}

	return router
}
