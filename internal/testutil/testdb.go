// Package testutil provides utilities for testing
package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/localpress/localpress/internal/database"
)

// NewSQLiteStore returns an object store over a migrated in-memory SQLite
// database that is closed when the test ends.
func NewSQLiteStore(t *testing.T) *database.ObjectStore {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate sqlite: %v", err)
	}
	return database.NewObjectStore(db)
}

// NewPostgresStore connects to the PostgreSQL instance described by the
// DB_* environment variables, migrates it and empties cms_objects. It skips
// the test if the database is not available.
func NewPostgresStore(t *testing.T) *database.ObjectStore {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.Host = getEnvOrDefault("DB_HOST", "localhost")
	cfg.User = getEnvOrDefault("DB_USER", "test")
	cfg.Password = getEnvOrDefault("DB_PASSWORD", "test")
	cfg.Database = getEnvOrDefault("DB_NAME", "localpress_test")
	cfg.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	if p, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432")); err == nil {
		cfg.Port = p
	}

	db, err := database.New(cfg)
	if err != nil {
		t.Skipf("Skipping test: unable to connect to database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM cms_objects"); err != nil {
		t.Fatalf("Failed to clean cms_objects: %v", err)
	}
	return database.NewObjectStore(db)
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
