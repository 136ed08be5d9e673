package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/logging"
)

// ConnectDB opens a pool to dbURL and checks the connection.
func ConnectDB(ctx context.Context, dbURL string, logger logging.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	// Test the connection
	var version string
	if err := pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		pool.Close()
		return nil, fmt.Errorf("query version: %w", err)
	}
	logger.Infof("Connected to: %s", version)

	return pool, nil
}
