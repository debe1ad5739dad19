// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"io"
	"testing"

	"github.com/google/uuid"
	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"gorm.io/gorm"
)

// New returns a fresh database private to t with every migration applied.
// It is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}

	runner := migration.New(db)
	runner.Out = io.Discard
	if err := runner.Run(); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
