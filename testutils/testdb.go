package testutils

import (
	"testing"

	"lumen-notes/lumen/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory sqlite database with the full schema
// migrated, for service-level tests that exercise real queries.
func SetupTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	testDB := &database.Database{DB: db}
	t.Cleanup(testDB.Close)

	return testDB
}
