package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/middleware"
)

// UsageHandler reports and resets the caller's daily generation count.
type UsageHandler struct {
	usage       UsageService
	authService middleware.TokenValidator
	allowReset  bool
}

func NewUsageHandler(usage UsageService, authService middleware.TokenValidator, allowReset bool) *UsageHandler {
	return &UsageHandler{
		usage:       usage,
		authService: authService,
		allowReset:  allowReset,
	}
}

func (h *UsageHandler) RegisterRoutes(router *gin.RouterGroup) {
	if h.usage == nil {
		return
	}
	group := router.Group("/usage")
	group.Use(middleware.OptionalAuth(h.authService))
	{
		group.GET("", h.GetUsage)
		if h.allowReset {
			group.POST("/reset", h.ResetUsage)
		}
	}
}

func (h *UsageHandler) GetUsage(c *gin.Context) {
	rec, err := h.usage.Status(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		logger.Error("Failed to read usage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read usage"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *UsageHandler) ResetUsage(c *gin.Context) {
	rec, err := h.usage.Reset(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		logger.Error("Failed to reset usage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset usage"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
