package mocks

import (
	"context"

	"techstore-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *UserRepository) UpdateName(ctx context.Context, email, name string) (*models.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, newHash string) error {
	args := m.Called(ctx, id, newHash)
	return args.Error(0)
}

func (m *UserRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	args := m.Called(ctx, id, blocked)
	return args.Error(0)
}

func (m *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *UserRepository) SetProfileImageURL(ctx context.Context, id uuid.UUID, url *string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *UserRepository) DeleteUser(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// Mock PackageRepository
type PackageRepository struct {
	mock.Mock
}

func (m *PackageRepository) CreatePackage(ctx context.Context, pkg *models.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *PackageRepository) GetPackageByID(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}

func (m *PackageRepository) ListPackages(ctx context.Context) ([]models.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Package), args.Error(1)
}

func (m *PackageRepository) UpdatePackage(ctx context.Context, id uuid.UUID, name, version, description string, price float64, images []string) (*models.Package, error) {
	args := m.Called(ctx, id, name, version, description, price, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}

func (m *PackageRepository) DeletePackage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock PurchaseLedger
type PurchaseLedger struct {
	mock.Mock
}

func (m *PurchaseLedger) Append(ctx context.Context, userID, packageID uuid.UUID) error {
	args := m.Called(ctx, userID, packageID)
	return args.Error(0)
}

func (m *PurchaseLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// Mock ImageRepository
type ImageRepository struct {
	mock.Mock
}

func (m *ImageRepository) CreateImage(ctx context.Context, img *models.Image) error {
	args := m.Called(ctx, img)
	return args.Error(0)
}

// Mock ImageStore
type ImageStore struct {
	mock.Mock
}

func (m *ImageStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

// Mock MailSender
type MailSender struct {
	mock.Mock
}

func (m *MailSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
