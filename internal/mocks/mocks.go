// Package mocks provides testify mocks of the service interfaces the HTTP
// layer depends on.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/recipefy/backend/internal/models"
	"github.com/recipefy/backend/internal/service"
	"github.com/recipefy/backend/internal/types"
)

// MockGenerationService is a mock implementation of service.IGenerationService
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, query string, userID *uuid.UUID) (*service.GenerationResult, error) {
	args := m.Called(ctx, query, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerationResult), args.Error(1)
}

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) SaveGenerated(ctx context.Context, userID uuid.UUID, query string, r *types.Recipe) (*models.Recipe, error) {
	args := m.Called(ctx, userID, query, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockRecipeService) ListRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeService) SearchRecipes(ctx context.Context, userID uuid.UUID, query string) ([]models.Recipe, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetRecipeStats(ctx context.Context, userID uuid.UUID) (*types.RecipeStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeStats), args.Error(1)
}

// MockImageService is a mock implementation of service.ImageEnricher
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

var (
	_ service.IGenerationService = (*MockGenerationService)(nil)
	_ service.IRecipeService     = (*MockRecipeService)(nil)
	_ service.ImageEnricher      = (*MockImageService)(nil)
)
