//go:build integration

package services

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"profileapp/internal/config"
	"profileapp/internal/database"
	"profileapp/internal/observability"

	"github.com/stretchr/testify/require"
)

// SharedTestDBSetup provides a clean database connection for each
// integration test. TEST_DATABASE_URL must point at a scratch database.
func SharedTestDBSetup(t *testing.T) *sql.DB {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Fatal("TEST_DATABASE_URL environment variable must be set for integration tests")
	}

	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	dbManager := database.NewManager(logger)

	db, err := dbManager.InitDB(config.DatabaseConfig{URL: databaseURL})
	require.NoError(t, err)

	CleanupTestDatabase(db, t)

	return db
}

// CleanupTestDatabase truncates every table so tests start from an empty
// ledger. Visitors cascade into responses via the fingerprint FK.
func CleanupTestDatabase(db *sql.DB, t *testing.T) {
	t.Helper()

	ctx := context.Background()
	for _, query := range []string{
		"TRUNCATE TABLE responses CASCADE",
		"TRUNCATE TABLE visitors CASCADE",
	} {
		if _, err := db.ExecContext(ctx, query); err != nil {
			t.Fatalf("cleanup query %q failed: %v", query, err)
		}
	}
}
