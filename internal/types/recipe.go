package types

// Recipe is the structured result of one generation. Optional text fields
// are empty when the model did not supply them and are omitted from JSON.
type Recipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	CookingTime  string   `json:"cookingTime,omitempty"`
	Servings     string   `json:"servings,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	Tips         []string `json:"tips"`
	Image        string   `json:"image,omitempty"`
}

// RecipeStats summarizes a user's saved recipes.
type RecipeStats struct {
	TotalRecipes     int64 `json:"total_recipes"`
	RecipesThisWeek  int64 `json:"recipes_this_week"`
	RecipesThisMonth int64 `json:"recipes_this_month"`
}
