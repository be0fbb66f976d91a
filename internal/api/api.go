package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/database"
	"github.com/recipefy/backend/internal/middleware"
	"github.com/recipefy/backend/internal/service"
	"github.com/recipefy/backend/internal/usage"
)

// UsageService is what the API needs from the usage tracker.
type UsageService interface {
	middleware.UsageTracker
	Status(ctx context.Context, id usage.Identity) (*usage.Record, error)
	Reset(ctx context.Context, id usage.Identity) (*usage.Record, error)
}

// Dependencies holds the services the handlers are built from.
type Dependencies struct {
	DB         *gorm.DB
	Auth       service.IAuthService
	Profiles   service.IProfileService
	Recipes    service.IRecipeService
	Generation service.IGenerationService
	Images     service.ImageEnricher
	Usage      UsageService
	Env        config.Environment
	// RequireAuth rejects guests on the generation endpoint.
	RequireAuth bool
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck(deps.DB))

	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck(deps.DB))

	NewAuthHandler(deps.Auth, deps.Profiles).RegisterRoutes(v1)
	NewProfileHandler(deps.Profiles, deps.Auth).RegisterRoutes(v1)
	NewGenerationHandler(deps.Generation, deps.Auth, deps.Usage, deps.RequireAuth).RegisterRoutes(v1)
	NewRecipeHandler(deps.Recipes, deps.Auth).RegisterRoutes(v1)
	NewImageHandler(deps.Images, deps.Auth).RegisterRoutes(v1)
	NewUsageHandler(deps.Usage, deps.Auth, !deps.Env.IsProduction()).RegisterRoutes(v1)
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := database.HealthCheck(ctx, db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  "database unavailable",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Recipefy API is running",
		})
	}
}
