package db

import (
	"context"
	"errors"
	"os"
)

// ErrNoTestDatabase signals that TEST_DATABASE_URL is unset and integration tests should skip.
var ErrNoTestDatabase = errors.New("TEST_DATABASE_URL environment variable is not set")

// ConnectTestStore connects to TEST_DATABASE_URL and applies migrations.
func ConnectTestStore(ctx context.Context, migrationsPath string) (*PostgresStore, error) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		return nil, ErrNoTestDatabase
	}

	conn, err := Connect(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, conn, migrationsPath); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return NewStore(conn), nil
}
