package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipefy/backend/internal/models"
)

func (e *testEnv) seedRecipe(t *testing.T, userID uuid.UUID, name, query string, createdAt time.Time) uuid.UUID {
	t.Helper()
	r := &models.Recipe{
		UserID:       userID,
		Name:         name,
		Ingredients:  models.JSONBStringArray{"x"},
		Instructions: models.JSONBStringArray{"y"},
		SearchQuery:  query,
		CreatedAt:    createdAt,
	}
	require.NoError(t, e.db.Create(r).Error)
	return r.ID
}

func recipeNames(t *testing.T, resp map[string]interface{}) []string {
	t.Helper()
	list, ok := resp["recipes"].([]interface{})
	require.True(t, ok, "recipes missing from %v", resp)
	names := make([]string, 0, len(list))
	for _, item := range list {
		names = append(names, item.(map[string]interface{})["name"].(string))
	}
	return names
}

func TestRecipesRequireAuth(t *testing.T) {
	env := setupTestRouter(t, testOptions{})

	for _, path := range []string{"/api/v1/recipes", "/api/v1/recipes/search?q=x", "/api/v1/recipes/stats", "/api/v1/recipes/" + uuid.NewString()} {
		w := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := env.do(t, http.MethodGet, "/api/v1/recipes", nil, map[string]string{"Authorization": "Bearer forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRecipes(t *testing.T) {
	env := setupTestRouter(t, testOptions{})
	auth, userID := env.signUp(t, "list@example.com")
	now := time.Now()

	env.seedRecipe(t, userID, "First", "a", now.Add(-48*time.Hour))
	env.seedRecipe(t, userID, "Third", "c", now.Add(-1*time.Hour))
	env.seedRecipe(t, userID, "Second", "b", now.Add(-24*time.Hour))
	env.seedRecipe(t, uuid.New(), "Stranger", "d", now)

	w := env.do(t, http.MethodGet, "/api/v1/recipes", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Third", "Second", "First"}, recipeNames(t, decode(t, w)))
}

func TestSearchAndStats(t *testing.T) {
	env := setupTestRouter(t, testOptions{})
	auth, userID := env.signUp(t, "search@example.com")
	now := time.Now()

	env.seedRecipe(t, userID, "Green Curry", "thai dinner", now.Add(-time.Hour))
	env.seedRecipe(t, userID, "Lasagna", "italian pasta", now.Add(-20*24*time.Hour))

	w := env.do(t, http.MethodGet, "/api/v1/recipes/search?q=pasta", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Lasagna"}, recipeNames(t, decode(t, w)))

	w = env.do(t, http.MethodGet, "/api/v1/recipes/stats", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_recipes":2,"recipes_this_week":1,"recipes_this_month":2}`, w.Body.String())
}

func TestGetAndDeleteRecipe(t *testing.T) {
	env := setupTestRouter(t, testOptions{})
	owner, ownerID := env.signUp(t, "owner@example.com")
	stranger, _ := env.signUp(t, "stranger@example.com")
	recipeID := env.seedRecipe(t, ownerID, "Ramen", "ramen", time.Now())
	path := "/api/v1/recipes/" + recipeID.String()

	w := env.do(t, http.MethodGet, path, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ramen", decode(t, w)["recipe"].(map[string]interface{})["name"])

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil, stranger).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, nil, stranger).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil, owner).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, nil, owner).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil, owner).Code)
}
