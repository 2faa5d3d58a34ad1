package service

import (
	"context"

	"techstore-server/internal/models"

	"github.com/google/uuid"
)

// UploadFile is one multipart file received by a handler, decoupled from the
// HTTP layer so the service can be tested without a request.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CatalogService covers the product catalog and the purchase ledger.
type CatalogService interface {
	// CreatePackage uploads all files to the object store and inserts the
	// package. If any upload fails, nothing is persisted.
	CreatePackage(ctx context.Context, name, version, description string, price float64, files []UploadFile) (*models.Package, error)

	// GetPackage retrieves one package by ID.
	GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error)

	// ListPackages retrieves the full catalog.
	ListPackages(ctx context.Context) ([]models.Package, error)

	// UpdatePackage replaces scalar metadata; the image set is replaced only
	// when files are supplied, otherwise the stored set is kept.
	UpdatePackage(ctx context.Context, id uuid.UUID, name, version, description string, price float64, files []UploadFile) (*models.Package, error)

	// DeletePackage removes a package from the catalog.
	DeletePackage(ctx context.Context, id uuid.UUID) error

	// Purchase appends a ledger entry and returns the buyer with the
	// refreshed package list. Repeat purchases append again.
	Purchase(ctx context.Context, userID, packageID uuid.UUID) (*models.User, error)

	// IngestImage stores an image in the object store and records who sent it.
	IngestImage(ctx context.Context, email, filename, contentType string, data []byte) (*models.Image, error)

	// RequestAvatarEdit emails an avatar edit request referencing the image.
	RequestAvatarEdit(ctx context.Context, email, imageURL string) error
}
