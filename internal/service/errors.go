package service

import "errors"

// FoodOnlyMessage is shown to callers whose query was rejected by the validator.
const FoodOnlyMessage = "Please enter food-related items only. Try ingredients, recipe names, food types, or cuisine styles (e.g., 'chicken curry', 'Italian pasta', 'chocolate cake')."

var (
	ErrQueryRequired      = errors.New("query is required")
	ErrNotFoodRelated     = errors.New("query is not food-related")
	ErrModelNotConfigured = errors.New("text model API key not configured")
	ErrGenerationFailed   = errors.New("failed to generate recipe")
	ErrUnparseableRecipe  = errors.New("failed to parse recipe response")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
