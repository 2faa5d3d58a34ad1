package interfaces

import (
	"context"

	"techstore-server/internal/models"

	"github.com/google/uuid"
)

// PackageRepository defines the persistence contract for catalog entries.
type PackageRepository interface {
	// CreatePackage inserts a new package with its image URLs.
	CreatePackage(ctx context.Context, pkg *models.Package) error

	// GetPackageByID returns models.ErrPackageNotFound if absent.
	GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error)

	// ListPackages retrieves all packages.
	ListPackages(ctx context.Context) ([]models.Package, error)

	// UpdatePackage updates scalar metadata; images are replaced only when
	// a non-nil slice is passed.
	UpdatePackage(ctx context.Context, id uuid.UUID, name, version, description string, price float64, images []string) (*models.Package, error)

	// DeletePackage removes a package by ID.
	DeletePackage(ctx context.Context, id uuid.UUID) error
}

// PurchaseLedger records which packages a user owns. Append-only: repeated
// purchases of the same pair produce duplicate entries by contract.
type PurchaseLedger interface {
	// Append records a purchase of packageID by userID.
	Append(ctx context.Context, userID, packageID uuid.UUID) error

	// ListByUser returns the package references held by a user, in purchase
	// order, duplicates preserved.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ImageRepository persists records for images accepted through the public
// ingest endpoint.
type ImageRepository interface {
	CreateImage(ctx context.Context, img *models.Image) error
}
