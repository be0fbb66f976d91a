package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/models"
)

const rollbackSuffix = "_rollback.sql"

// RunMigrations executes all SQL migration files in the migrations directory.
// SQLite databases are migrated from the gorm models instead.
func RunMigrations(db *gorm.DB, migrationsDir string) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("Using GORM auto-migration for SQLite")
		return AutoMigrate(db)
	}

	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return err
	}

	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	for _, name := range files {
		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("Skipping migration (already applied)", zap.String("name", name))
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if err := tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		logger.Info("Applied migration", zap.String("name", name))
	}

	return nil
}

// Rollback reverts the most recently applied migration using its
// <name>_rollback.sql companion file.
func Rollback(db *gorm.DB, migrationsDir string) (string, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return "", err
	}

	var last struct{ Name string }
	res := db.Table("migrations").Select("name").Order("applied_at DESC, id DESC").Limit(1).Scan(&last)
	if res.Error != nil {
		return "", fmt.Errorf("failed to get last migration: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("no migrations to rollback")
	}

	rollbackPath := filepath.Join(migrationsDir, strings.TrimSuffix(last.Name, ".sql")+rollbackSuffix)
	content, err := os.ReadFile(rollbackPath)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		return tx.Exec("DELETE FROM migrations WHERE name = ?", last.Name).Error
	})
	if err != nil {
		return "", err
	}
	return last.Name, nil
}

// AutoMigrate creates the schema from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Recipe{},
	)
}

func ensureMigrationsTable(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// migrationFiles lists forward migrations in apply order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}
