package service

import "fmt"

// Answer tokens the validation prompt asks the model to reply with.
const (
	validAnswer   = "VALID"
	invalidAnswer = "INVALID"
)

// BuildValidationPrompt asks the model for a single VALID/INVALID token.
func BuildValidationPrompt(query string) string {
	return fmt.Sprintf(`Analyze this input: %q.

Determine if this input is related to food, cooking, recipes, ingredients, cuisine types, or culinary topics.

Respond with ONLY "%s" if the input is food-related, or "%s" if it contains non-food items or is completely unrelated to cooking/food.

Examples of %s inputs: "chicken curry", "pasta", "Italian cuisine", "tomatoes and garlic", "chocolate cake recipe"
Examples of %s inputs: "cars", "programming", "football", "mathematics", "vacation planning"`,
		query, validAnswer, invalidAnswer, validAnswer, invalidAnswer)
}

// BuildRecipePrompt renders the recipe request with the fixed output schema.
func BuildRecipePrompt(query string) string {
	return fmt.Sprintf(`Create a detailed recipe based on: %q.

Please respond with a JSON object in this exact format:
{
  "name": "Recipe Name",
  "ingredients": ["ingredient 1", "ingredient 2", ...],
  "instructions": ["step 1", "step 2", ...],
  "cookingTime": "X minutes",
  "servings": "X people",
  "difficulty": "Beginner/Intermediate/Advanced",
  "tips": ["tip 1", "tip 2", ...]
}

Make sure the recipe is practical, detailed, and includes cooking times and serving information.
Include specific measurements for every ingredient and keep the steps in cooking order.
Return only valid JSON, no additional text.`, query)
}

// BuildImagePrompt describes the photo used to illustrate a recipe.
func BuildImagePrompt(recipeName string) string {
	return fmt.Sprintf("A beautiful, appetizing photo of %s, professionally plated and photographed, high quality food photography, well-lit, attractive presentation", recipeName)
}
