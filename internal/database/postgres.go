package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// NewPgPool creates a pgx connection pool and verifies it with a ping,
// retrying while the database comes up.
func NewPgPool(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}

	var pool *pgxpool.Pool
	var lastErr error
	maxRetries := 10
	retryDelay := 3 * time.Second

	logger.Info("Attempting to connect to PostgreSQL", zap.Int("max_retries", maxRetries), zap.Duration("retry_delay", retryDelay))

	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err = pgxpool.NewWithConfig(connectCtx, poolConfig)
		connectCancel()

		if err != nil {
			lastErr = fmt.Errorf("unable to create postgres connection pool (attempt %d/%d): %w", attempt, maxRetries, err)
			logger.Warn("Postgres connection pool creation failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
			}
			continue
		}

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err = pool.Ping(pingCtx)
		pingCancel()

		if err == nil {
			logger.Info("Successfully connected and pinged PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}

		pool.Close()
		lastErr = fmt.Errorf("unable to ping postgres database (attempt %d/%d): %w", attempt, maxRetries, err)
		logger.Warn("Postgres ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}
