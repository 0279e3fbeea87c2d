package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartroute/internal/models"
)

func skipIfNoTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	skipIfNoTestDB(t)

	connString := os.Getenv("TEST_DATABASE_URL")
	ctx := context.Background()
	database, err := New(ctx, connString)
	require.NoError(t, err, "failed to connect to test database")

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		database.Pool.Exec(ctx, "DELETE FROM generation_usage")
		database.Close()
	})
	_, err = database.Pool.Exec(ctx, "DELETE FROM generation_usage")
	require.NoError(t, err)
	return database
}

func TestAddUsage_Accumulates(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	key := models.UsageKey{Mode: models.ModeRoute, Outcome: "success"}
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, database.AddUsage(ctx, []models.UsageCount{{UsageKey: key, Count: 2, LastSeenAt: now}}))
	require.NoError(t, database.AddUsage(ctx, []models.UsageCount{
		{UsageKey: key, Count: 3, LastSeenAt: now.Add(time.Minute)},
		{UsageKey: models.UsageKey{Mode: models.ModeProspect, Outcome: "failure"}, Count: 1, LastSeenAt: now},
	}))

	counts, err := database.GetAllUsage(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.ModeProspect, counts[0].Mode)
	assert.Equal(t, int64(1), counts[0].Count)
	assert.Equal(t, key, counts[1].UsageKey)
	assert.Equal(t, int64(5), counts[1].Count)
	assert.True(t, counts[1].LastSeenAt.Equal(now.Add(time.Minute)))
}

func TestAddUsage_Empty(t *testing.T) {
	database := setupTestDB(t)
	require.NoError(t, database.AddUsage(context.Background(), nil))

	counts, err := database.GetAllUsage(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}
