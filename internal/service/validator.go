package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/recipefy/backend/internal/logger"
)

// Validator rejects queries that are not about food before a recipe call is spent.
type Validator struct {
	gen TextGenerator
}

func NewValidator(gen TextGenerator) *Validator {
	return &Validator{gen: gen}
}

// Validate returns nil when the model answers exactly VALID. Any other answer
// is ErrNotFoodRelated; a failed model call is returned unchanged.
func (v *Validator) Validate(ctx context.Context, query string) error {
	answer, err := v.gen.Generate(ctx, BuildValidationPrompt(query))
	if err != nil {
		return err
	}

	if strings.TrimSpace(answer) != validAnswer {
		logger.Info("Query rejected by validator",
			zap.String("query", query),
			zap.String("answer", truncate(answer, 40)),
		)
		return ErrNotFoodRelated
	}
	return nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
