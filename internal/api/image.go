package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/middleware"
	"github.com/recipefy/backend/internal/service"
	"github.com/recipefy/backend/internal/types"
)

// ImageHandler handles image generation requests
type ImageHandler struct {
	imageService service.ImageEnricher
	authService  middleware.TokenValidator
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageService service.ImageEnricher, authService middleware.TokenValidator) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		authService:  authService,
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/images/generate", middleware.OptionalAuth(h.authService), h.GenerateImage)
}

// GenerateImage returns {"image": url} for a free-form prompt. Provider
// failures already resolve to a fallback URL inside the image service.
func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req types.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	imageURL, err := h.imageService.GenerateImage(c.Request.Context(), strings.TrimSpace(req.Prompt))
	if err != nil {
		logger.Error("Image generation aborted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": imageURL})
}
