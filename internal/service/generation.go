package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/models"
	"github.com/recipefy/backend/internal/types"
)

// GenerationResult is what one successful pipeline run produced.
type GenerationResult struct {
	Recipe  *types.Recipe
	Outcome Outcome
	// Saved is nil for guests and when persistence failed.
	Saved *models.Recipe
}

// GenerationService runs validate, generate, normalize, enrich and persist in
// order. The first three stages are required; enrichment and persistence are
// best-effort and never fail the request.
type GenerationService struct {
	validator  QueryValidator
	generator  TextGenerator
	normalizer *Normalizer
	images     ImageEnricher
	saver      RecipeSaver
}

// NewGenerationService wires the pipeline. images and saver may be nil to
// skip those stages.
func NewGenerationService(validator QueryValidator, generator TextGenerator, normalizer *Normalizer, images ImageEnricher, saver RecipeSaver) *GenerationService {
	return &GenerationService{
		validator:  validator,
		generator:  generator,
		normalizer: normalizer,
		images:     images,
		saver:      saver,
	}
}

// Generate turns query into a recipe. userID is nil for guests.
func (s *GenerationService) Generate(ctx context.Context, query string, userID *uuid.UUID) (*GenerationResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	if err := s.validator.Validate(ctx, query); err != nil {
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, BuildRecipePrompt(query))
	if err != nil {
		return nil, err
	}

	normalized, err := s.normalizer.Normalize(raw, query)
	if err != nil {
		logger.Error("Failed to normalize model reply", zap.Error(err), zap.Int("length", len(raw)))
		return nil, err
	}
	recipe := normalized.Recipe

	s.enrich(ctx, recipe)

	result := &GenerationResult{Recipe: recipe, Outcome: normalized.Outcome}
	if userID != nil {
		result.Saved = s.persist(ctx, *userID, query, recipe)
	}
	return result, nil
}

func (s *GenerationService) enrich(ctx context.Context, recipe *types.Recipe) {
	if s.images == nil {
		return
	}
	imageURL, err := s.images.GenerateImage(ctx, BuildImagePrompt(recipe.Name))
	if err != nil {
		logger.Warn("Image enrichment failed", zap.String("recipe", recipe.Name), zap.Error(err))
		return
	}
	recipe.Image = imageURL
}

func (s *GenerationService) persist(ctx context.Context, userID uuid.UUID, query string, recipe *types.Recipe) *models.Recipe {
	if s.saver == nil {
		return nil
	}
	saved, err := s.saver.SaveGenerated(ctx, userID, query, recipe)
	if err != nil {
		logger.Warn("Failed to save generated recipe",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil
	}
	return saved
}
