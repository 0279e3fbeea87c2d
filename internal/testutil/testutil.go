// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"smartroute/internal/db"
)

// TestDB connects to TEST_DATABASE_URL and runs the migrations. The test is
// skipped when the variable is unset. Usage rows are removed on cleanup.
func TestDB(t *testing.T) *db.DB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database)
	t.Cleanup(func() {
		cleanupTestData(ctx, database)
		database.Close()
	})
	return database
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, database *db.DB) {
	database.Pool.Exec(ctx, "DELETE FROM generation_usage")
}
