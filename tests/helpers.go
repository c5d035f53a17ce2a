// Package tests provides integration test helpers and utilities. The tests
// need a reachable PostgreSQL with scripts/schema.sql applied and skip
// themselves when DATABASE_URL is not set.
package tests

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/stretchr/testify/require"

	"github.com/renthive/recommender/pkg/database"
)

const testAPIKey = "test-api-key-12345"

// connectTestDB connects to the database named by DATABASE_URL, skipping the
// test when it is not set.
func connectTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := database.NewPostgresPool(context.Background(), url,
		database.WithAfterConnect(func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}),
	)
	require.NoError(t, err, "Failed to connect to database")

	return db
}
