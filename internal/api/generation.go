package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/middleware"
	"github.com/recipefy/backend/internal/service"
	"github.com/recipefy/backend/internal/types"
)

// GenerationHandler serves recipe generation
type GenerationHandler struct {
	generation  service.IGenerationService
	authService middleware.TokenValidator
	usage       middleware.UsageTracker
	requireAuth bool
}

func NewGenerationHandler(generation service.IGenerationService, authService middleware.TokenValidator, usage middleware.UsageTracker, requireAuth bool) *GenerationHandler {
	return &GenerationHandler{
		generation:  generation,
		authService: authService,
		usage:       usage,
		requireAuth: requireAuth,
	}
}

func (h *GenerationHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{middleware.OptionalAuth(h.authService)}
	if h.requireAuth {
		handlers = []gin.HandlerFunc{middleware.AuthMiddleware(h.authService)}
	}
	if h.usage != nil {
		handlers = append(handlers, middleware.UsageGate(h.usage))
	}
	handlers = append(handlers, h.GenerateRecipe)

	router.POST("/recipes/generate", handlers...)
}

// GenerateRecipe turns {"query": "..."} into {"recipe": {...}}.
func (h *GenerationHandler) GenerateRecipe(c *gin.Context) {
	var req types.GenerateRecipeRequest
	// a malformed body is reported the same way as a missing query
	_ = c.ShouldBindJSON(&req)

	var userID *uuid.UUID
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}

	result, err := h.generation.Generate(c.Request.Context(), req.Query, userID)
	if err != nil {
		writeGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": result.Recipe})
}

func writeGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQueryRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
	case errors.Is(err, service.ErrNotFoodRelated):
		c.JSON(http.StatusBadRequest, gin.H{"error": service.FoodOnlyMessage})
	case errors.Is(err, service.ErrModelNotConfigured):
		logger.Error("Text model is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Text model API key not configured"})
	case errors.Is(err, service.ErrUnparseableRecipe):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse recipe response"})
	case errors.Is(err, service.ErrGenerationFailed), errors.Is(err, context.DeadlineExceeded):
		logger.Error("Recipe generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipe"})
	default:
		logger.Error("Unexpected error generating recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
