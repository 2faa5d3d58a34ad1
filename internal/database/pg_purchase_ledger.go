package database

import (
	"context"
	"errors"
	"fmt"

	"techstore-server/internal/interfaces"
	"techstore-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgPurchaseLedger implements PurchaseLedger
var _ interfaces.PurchaseLedger = (*pgPurchaseLedger)(nil)

type pgPurchaseLedger struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgPurchaseLedger creates a new PostgreSQL-backed PurchaseLedger.
func NewPgPurchaseLedger(db interfaces.DBTX, logger *zap.Logger) interfaces.PurchaseLedger {
	return &pgPurchaseLedger{
		db:     db,
		logger: logger.Named("PgPurchaseLedger"),
	}
}

// Append records a purchase. Deliberately not idempotent: the same pair
// inserts a new row every time.
func (r *pgPurchaseLedger) Append(ctx context.Context, userID, packageID uuid.UUID) error {
	query := `INSERT INTO user_packages (user_id, package_id) VALUES ($1, $2)`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", userID.String()), zap.String("packageID", packageID.String()))
	_, err := r.db.Exec(ctx, query, userID, packageID)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503 is foreign_key_violation: either side of the pair is gone.
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if pgErr.ConstraintName == "user_packages_user_id_fkey" {
				return models.ErrUserNotFound
			}
			return models.ErrPackageNotFound
		}
		r.logger.Error("Failed to append purchase in postgres", zap.Error(err), zap.String("userID", userID.String()), zap.String("packageID", packageID.String()))
		return fmt.Errorf("failed to append purchase: %w", err)
	}
	r.logger.Info("Purchase recorded", zap.String("userID", userID.String()), zap.String("packageID", packageID.String()))
	return nil
}

// ListByUser returns package references in purchase order, duplicates kept.
func (r *pgPurchaseLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT package_id FROM user_packages WHERE user_id = $1 ORDER BY id ASC`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("userID", userID.String()))

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query purchases from postgres", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.logger.Error("Failed to scan purchase row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan purchase row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchase rows: %w", err)
	}
	return ids, nil
}
