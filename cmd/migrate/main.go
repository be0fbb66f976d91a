package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/database"
	"github.com/recipefy/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to DB_MIGRATIONS_DIR)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info", "console")
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Init(cfg.LogLevel, cfg.LogMode)
	defer logger.Sync()

	migrationsDir := cfg.DB.MigrationsDir
	if *dir != "" {
		migrationsDir = *dir
	}

	db, err := database.New(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if *rollback {
		name, err := database.Rollback(db, migrationsDir)
		if err != nil {
			logger.Fatal("Rollback failed", zap.Error(err))
		}
		logger.Info("Successfully rolled back migration", zap.String("name", name))
		return
	}

	if err := database.RunMigrations(db, migrationsDir); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("All migrations applied successfully")
}
