package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/database"
	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/service"
)

const batchSize = 5

var seedQueries = []string{
	"traditional Italian pasta with a unique twist",
	"healthy vegan salad with seasonal ingredients",
	"quick breakfast smoothie with protein",
	"spicy Indian curry",
	"classic French dessert",
	"gluten-free bread with alternative flours",
	"Mediterranean seafood with fresh herbs",
	"vegetarian stir-fry with Asian flavors",
	"traditional Mexican tacos",
	"Thai soup with bold flavors",
	"Korean BBQ with homemade marinade",
	"Spanish tapas for a party",
	"Moroccan tagine with aromatic spices",
	"budget-friendly weeknight dinner",
	"summer barbecue side dish",
}

// Runs the real generation pipeline for a demo account so a fresh database
// has saved recipes to browse and search.
func main() {
	email := flag.String("email", "demo@recipefy.dev", "Account that owns the seeded recipes")
	password := flag.String("password", "demopassword123", "Password used if the account has to be created")
	count := flag.Int("count", 10, "Number of recipes to generate")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info", "console")
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Init(cfg.LogLevel, cfg.LogMode)
	defer logger.Sync()

	db, err := database.New(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.RunMigrations(db, cfg.DB.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	authService := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.Expiry)

	user, err := authService.Register(ctx, *email, *password, "Demo Cook")
	if errors.Is(err, service.ErrUserExists) {
		user, err = authService.Login(ctx, *email, *password)
	}
	if err != nil {
		logger.Fatal("Failed to prepare seed user", zap.String("email", *email), zap.Error(err))
	}

	textModel, err := service.NewTextGenerator(ctx, cfg.LLM)
	if err != nil {
		logger.Fatal("Failed to initialize text model", zap.Error(err))
	}
	if closer, ok := textModel.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	generation := service.NewGenerationService(
		service.NewValidator(textModel),
		textModel,
		service.NewNormalizer(service.NormalizerOptions{ApplyDefaults: true, HeuristicFallback: true}),
		service.NewImageService(cfg.Image, nil),
		service.NewRecipeService(db),
	)

	saved := 0
	for i := 0; i < *count; i++ {
		if i > 0 && i%batchSize == 0 {
			// stay under provider rate limits
			time.Sleep(2 * time.Second)
		}

		query := seedQueries[i%len(seedQueries)]
		result, err := generation.Generate(ctx, query, &user.ID)
		if err != nil {
			logger.Warn("Failed to generate recipe", zap.String("query", query), zap.Error(err))
			continue
		}
		if result.Saved == nil {
			logger.Warn("Recipe generated but not saved", zap.String("name", result.Recipe.Name))
			continue
		}
		saved++
		logger.Info("Seeded recipe", zap.String("name", result.Recipe.Name), zap.String("outcome", string(result.Outcome)))
	}

	logger.Info("Seeding finished", zap.Int("saved", saved), zap.Int("requested", *count))
}
