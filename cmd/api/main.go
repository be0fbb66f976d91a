package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/api"
	"github.com/recipefy/backend/internal/database"
	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/server"
	"github.com/recipefy/backend/internal/service"
	"github.com/recipefy/backend/internal/usage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info", "console")
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Init(cfg.LogLevel, cfg.LogMode)
	defer logger.Sync()
	logger.Info("Starting Recipefy API", zap.String("env", cfg.Env.String()))

	db, err := database.New(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.DB.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()

	tracker, err := newUsageTracker(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize usage tracking", zap.Error(err))
	}

	textModel, err := service.NewTextGenerator(ctx, cfg.LLM)
	if err != nil {
		logger.Fatal("Failed to initialize text model", zap.Error(err))
	}
	if closer, ok := textModel.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	images, err := newImageService(ctx, cfg.Image)
	if err != nil {
		logger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	authService := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.Expiry)
	profileService := service.NewProfileService(db)
	recipeService := service.NewRecipeService(db)
	normalizer := service.NewNormalizer(service.NormalizerOptions{
		ApplyDefaults:     cfg.Generation.ApplyDefaults,
		HeuristicFallback: cfg.Generation.HeuristicFallback,
	})
	generation := service.NewGenerationService(
		service.NewValidator(textModel),
		textModel,
		normalizer,
		images,
		recipeService,
	)

	srv := server.New(cfg, api.Dependencies{
		DB:          db,
		Auth:        authService,
		Profiles:    profileService,
		Recipes:     recipeService,
		Generation:  generation,
		Images:      images,
		Usage:       tracker,
		RequireAuth: cfg.Generation.RequireAuth,
	})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func newUsageTracker(cfg *config.Config) (*usage.Tracker, error) {
	var store usage.Store = usage.NewMemoryStore()
	if cfg.Usage.Store == "redis" {
		client, err := database.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		store = usage.NewRedisStore(client)
	}
	logger.Info("Usage tracking ready",
		zap.String("store", cfg.Usage.Store),
		zap.Int("guest_limit", cfg.Usage.GuestLimit),
		zap.Int("user_limit", cfg.Usage.UserLimit),
	)
	return usage.NewTracker(store, cfg.Usage)
}

func newImageService(ctx context.Context, cfg config.ImageConfig) (*service.ImageService, error) {
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// a nil *S3Config must not become a non-nil ObjectStore
	if s3cfg == nil {
		return service.NewImageService(cfg, nil), nil
	}
	logger.Info("Mirroring generated images to S3", zap.String("bucket", s3cfg.BucketName))
	return service.NewImageService(cfg, s3cfg), nil
}
