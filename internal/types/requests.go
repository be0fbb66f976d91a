package types

// GenerateRecipeRequest is the body of POST /recipes/generate.
// Query is checked by the handler so a missing value gets the API's own message.
type GenerateRecipeRequest struct {
	Query string `json:"query"`
}

// GenerateImageRequest is the body of POST /images/generate.
type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
