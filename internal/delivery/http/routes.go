package http

import (
	"github.com/gin-gonic/gin"

	"github.com/recomp/act-service/config"
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
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		act := v1.Group("/act")
		{
			act.GET("/status", handler.Status)
			act.POST("/grocery", RateLimitMiddleware(cfg.RateLimit.Grocery), handler.GrocerySearch)
			act.POST("/nutrition", RateLimitMiddleware(cfg.RateLimit.Nutrition), handler.NutritionLookup)
		}
	}

	return router
}
