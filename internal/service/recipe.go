package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/recipefy/backend/internal/models"
	"github.com/recipefy/backend/internal/types"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RecipeService handles saved recipe operations. Every query is scoped to
// the owning user.
type RecipeService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db, now: time.Now}
}

// SaveGenerated stores a freshly generated recipe for userID.
func (s *RecipeService) SaveGenerated(ctx context.Context, userID uuid.UUID, query string, r *types.Recipe) (*models.Recipe, error) {
	embedding := GenerateEmbedding(r.Name + " " + query)
	record := &models.Recipe{
		UserID:       userID,
		Name:         r.Name,
		Ingredients:  models.JSONBStringArray(r.Ingredients),
		Instructions: models.JSONBStringArray(r.Instructions),
		CookingTime:  r.CookingTime,
		Servings:     r.Servings,
		Difficulty:   r.Difficulty,
		Tips:         models.JSONBStringArray(r.Tips),
		SearchQuery:  query,
		Image:        r.Image,
		Embedding:    &embedding,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecipes returns the user's recipes, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recipes).Error
	return recipes, err
}

// GetRecipe retrieves one of the user's recipes by ID
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// DeleteRecipe deletes one of the user's recipes
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// SearchRecipes matches the user's recipes by name or original query. On
// PostgreSQL matches are ranked by embedding distance, elsewhere newest first.
func (s *RecipeService) SearchRecipes(ctx context.Context, userID uuid.UUID, query string) ([]models.Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListRecipes(ctx, userID)
	}

	like := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	dbQuery := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(search_query) LIKE ? ESCAPE '\'`, like, like)

	if s.db.Dialector.Name() == "postgres" {
		vec := GenerateEmbedding(query)
		dbQuery = dbQuery.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?, created_at DESC", Vars: []interface{}{vec}},
		})
	} else {
		dbQuery = dbQuery.Order("created_at DESC")
	}

	var recipes []models.Recipe
	if err := dbQuery.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipeStats counts the user's recipes overall, in the last 7 days and in the last 30 days.
func (s *RecipeService) GetRecipeStats(ctx context.Context, userID uuid.UUID) (*types.RecipeStats, error) {
	now := s.now()
	stats := &types.RecipeStats{}

	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID)
	}

	if err := base().Count(&stats.TotalRecipes).Error; err != nil {
		return nil, err
	}
	if err := base().Where("created_at >= ?", now.Add(-7*24*time.Hour)).Count(&stats.RecipesThisWeek).Error; err != nil {
		return nil, err
	}
	if err := base().Where("created_at >= ?", now.Add(-30*24*time.Hour)).Count(&stats.RecipesThisMonth).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
