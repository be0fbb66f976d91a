package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/models"
)

func sqliteConfig(t *testing.T) config.DBConfig {
	t.Helper()
	return config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "recipefy.db"),
	}
}

func TestNewSQLiteAndAutoMigrate(t *testing.T) {
	db, err := New(sqliteConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, RunMigrations(db, "does-not-matter-for-sqlite"))

	user := models.User{Email: "cook@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	vec := pgvector.NewVector([]float32{3, 1, 2})
	recipe := models.Recipe{
		UserID:       user.ID,
		Name:         "Tacos",
		Ingredients:  models.JSONBStringArray{"tortillas", "beef"},
		Instructions: models.JSONBStringArray{"Cook beef", "Fill tortillas"},
		SearchQuery:  "tacos",
		Embedding:    &vec,
	}
	require.NoError(t, db.Create(&recipe).Error)

	var loaded models.Recipe
	require.NoError(t, db.First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, models.JSONBStringArray{"tortillas", "beef"}, loaded.Ingredients)
	assert.Equal(t, models.JSONBStringArray{"Cook beef", "Fill tortillas"}, loaded.Instructions)
	assert.Empty(t, loaded.Tips)
	require.NotNil(t, loaded.Embedding)
	assert.Equal(t, []float32{3, 1, 2}, loaded.Embedding.Slice())
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(config.DBConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	db, err := New(sqliteConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.NoError(t, HealthCheck(context.Background(), db))
}

func TestMigrationFilesOrderAndSkipRollbacks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "001_a_rollback.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}

func TestMigrationFilesMissingDir(t *testing.T) {
	_, err := migrationFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
