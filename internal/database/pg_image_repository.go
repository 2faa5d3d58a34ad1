package database

import (
	"context"
	"fmt"

	"techstore-server/internal/interfaces"
	"techstore-server/internal/models"

	"go.uber.org/zap"
)

var _ interfaces.ImageRepository = (*pgImageRepository)(nil)

type pgImageRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgImageRepository creates a new PostgreSQL-backed ImageRepository.
func NewPgImageRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ImageRepository {
	return &pgImageRepository{
		db:     db,
		logger: logger.Named("PgImageRepo"),
	}
}

// CreateImage stores an ingested image record.
func (r *pgImageRepository) CreateImage(ctx context.Context, img *models.Image) error {
	query := `INSERT INTO images (email, image_url) VALUES ($1, $2) RETURNING id, created_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", img.Email))
	err := r.db.QueryRow(ctx, query, img.Email, img.ImageURL).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create image record in postgres", zap.Error(err))
		return fmt.Errorf("failed to create image record: %w", err)
	}
	return nil
}
