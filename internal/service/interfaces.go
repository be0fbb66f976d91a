package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/recipefy/backend/internal/models"
	"github.com/recipefy/backend/internal/types"
)

// QueryValidator decides whether a query may be turned into a recipe.
type QueryValidator interface {
	Validate(ctx context.Context, query string) error
}

// ImageEnricher returns an illustration URL for a prompt.
type ImageEnricher interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// RecipeSaver stores a generated recipe for a signed-in user.
type RecipeSaver interface {
	SaveGenerated(ctx context.Context, userID uuid.UUID, query string, r *types.Recipe) (*models.Recipe, error)
}

// IGenerationService defines the recipe generation pipeline
type IGenerationService interface {
	Generate(ctx context.Context, query string, userID *uuid.UUID) (*GenerationResult, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(user *models.User) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error)
}

// IRecipeService defines the interface for saved recipe operations
type IRecipeService interface {
	RecipeSaver
	GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
	ListRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error)
	SearchRecipes(ctx context.Context, userID uuid.UUID, query string) ([]models.Recipe, error)
	GetRecipeStats(ctx context.Context, userID uuid.UUID) (*types.RecipeStats, error)
}

var (
	_ IRecipeService     = (*RecipeService)(nil)
	_ QueryValidator     = (*Validator)(nil)
	_ ImageEnricher      = (*ImageService)(nil)
	_ IGenerationService = (*GenerationService)(nil)
)
