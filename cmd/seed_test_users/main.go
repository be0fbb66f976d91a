package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/database"
	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/service"
	"github.com/recipefy/backend/internal/types"
)

const testPassword = "testpassword123"

var testUsers = []struct {
	name    string
	email   string
	address string
}{
	{name: "John Doe", email: "john.doe@example.com", address: "12 Market Street, Springfield"},
	{name: "Jane Smith", email: "jane.smith@example.com"},
	{name: "Bob Wilson", email: "bob.wilson@example.com"},
	{name: "Alice Cooper", email: "alice.cooper@example.com", address: "5 Harbor Road, Portland"},
	{name: "Test Cook", email: "cook@example.com"},
}

func main() {
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
	profileService := service.NewProfileService(db)

	logger.Info("Creating test users", zap.Int("count", len(testUsers)))
	created := 0
	for _, u := range testUsers {
		user, err := authService.Register(ctx, u.email, testPassword, u.name)
		if errors.Is(err, service.ErrUserExists) {
			logger.Info("User already exists, skipping", zap.String("email", u.email))
			continue
		}
		if err != nil {
			logger.Fatal("Failed to create user", zap.String("email", u.email), zap.Error(err))
		}

		if u.address != "" {
			address := u.address
			if _, err := profileService.UpdateProfile(ctx, user.ID, &types.UpdateProfileRequest{Address: &address}); err != nil {
				logger.Warn("Failed to set address", zap.String("email", u.email), zap.Error(err))
			}
		}
		created++
		logger.Info("Created test user", zap.String("email", u.email), zap.String("id", user.ID.String()))
	}

	logger.Info("Test users ready", zap.Int("created", created), zap.String("password", testPassword))
}
