package database

import (
	"context"
	"errors"
	"fmt"

	"techstore-server/internal/interfaces"
	"techstore-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgPackageRepository implements PackageRepository
var _ interfaces.PackageRepository = (*pgPackageRepository)(nil)

type pgPackageRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgPackageRepository creates a new PostgreSQL-backed PackageRepository.
func NewPgPackageRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.PackageRepository {
	return &pgPackageRepository{
		db:     db,
		logger: logger.Named("PgPackageRepo"),
	}
}

const packageColumns = `id, name, version, description, price, images, created_at, updated_at`

func (r *pgPackageRepository) scanPackage(row pgx.Row) (*models.Package, error) {
	pkg := &models.Package{}
	err := row.Scan(&pkg.ID, &pkg.Name, &pkg.Version, &pkg.Description, &pkg.Price, &pkg.Images, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// CreatePackage inserts a new package with its image URLs.
func (r *pgPackageRepository) CreatePackage(ctx context.Context, pkg *models.Package) error {
	query := `INSERT INTO packages (name, version, description, price, images) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("name", pkg.Name))
	err := r.db.QueryRow(ctx, query, pkg.Name, pkg.Version, pkg.Description, pkg.Price, pkg.Images).Scan(&pkg.ID, &pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create package in postgres", zap.Error(err), zap.String("name", pkg.Name))
		return fmt.Errorf("failed to create package in postgres: %w", err)
	}
	r.logger.Info("Package created successfully", zap.String("packageID", pkg.ID.String()), zap.String("name", pkg.Name))
	return nil
}

// GetPackageByID retrieves a package by its ID.
func (r *pgPackageRepository) GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	pkg, err := r.scanPackage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Package not found by ID", zap.String("id", id.String()))
			return nil, models.ErrPackageNotFound
		}
		r.logger.Error("Failed to get package by id from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get package by id from postgres: %w", err)
	}
	return pkg, nil
}

// ListPackages retrieves all packages.
func (r *pgPackageRepository) ListPackages(ctx context.Context) ([]models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages ORDER BY created_at ASC`
	r.logger.Debug("Executing query", zap.String("query", query))

	packages := make([]models.Package, 0)
	if err := pgxscan.Select(ctx, r.db, &packages, query); err != nil {
		r.logger.Error("Failed to query packages from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query packages: %w", err)
	}
	return packages, nil
}

// UpdatePackage updates scalar metadata; images are replaced only when a
// non-nil slice is passed.
func (r *pgPackageRepository) UpdatePackage(ctx context.Context, id uuid.UUID, name, version, description string, price float64, images []string) (*models.Package, error) {
	query := `UPDATE packages
		SET name = $1, version = $2, description = $3, price = $4,
		    images = COALESCE($5, images), updated_at = NOW()
		WHERE id = $6
		RETURNING ` + packageColumns
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	pkg, err := r.scanPackage(r.db.QueryRow(ctx, query, name, version, description, price, images, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPackageNotFound
		}
		r.logger.Error("Failed to update package in postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to update package: %w", err)
	}
	r.logger.Info("Package updated", zap.String("packageID", pkg.ID.String()))
	return pkg, nil
}

// DeletePackage removes a package by ID.
func (r *pgPackageRepository) DeletePackage(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM packages WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete package from postgres", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to delete package: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrPackageNotFound
	}
	r.logger.Info("Package deleted", zap.String("packageID", id.String()))
	return nil
}
