package mocks

import (
	"context"

	"techstore-server/internal/models"
	"techstore-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock AuthService
type AuthService struct {
	mock.Mock
}

func (m *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claims), args.Error(1)
}

func (m *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *AuthService) UpdateName(ctx context.Context, email, name string) (*models.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *AuthService) UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	args := m.Called(ctx, email, currentPassword, newPassword)
	return args.Error(0)
}

func (m *AuthService) DeleteAccount(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthService) ToggleBlock(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *AuthService) UpdateRole(ctx context.Context, id uuid.UUID, role string) (bool, error) {
	args := m.Called(ctx, id, role)
	return args.Bool(0), args.Error(1)
}

func (m *AuthService) SetProfileImage(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (*models.User, error) {
	args := m.Called(ctx, userID, filename, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *AuthService) GetProfileImageURL(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *AuthService) RemoveProfileImage(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// Mock CatalogService
type CatalogService struct {
	mock.Mock
}

func (m *CatalogService) CreatePackage(ctx context.Context, name, version, description string, price float64, files []service.UploadFile) (*models.Package, error) {
	args := m.Called(ctx, name, version, description, price, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}

func (m *CatalogService) GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}

func (m *CatalogService) ListPackages(ctx context.Context) ([]models.Package, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Package), args.Error(1)
}

func (m *CatalogService) UpdatePackage(ctx context.Context, id uuid.UUID, name, version, description string, price float64, files []service.UploadFile) (*models.Package, error) {
	args := m.Called(ctx, id, name, version, description, price, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}

func (m *CatalogService) DeletePackage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CatalogService) Purchase(ctx context.Context, userID, packageID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *CatalogService) IngestImage(ctx context.Context, email, filename, contentType string, data []byte) (*models.Image, error) {
	args := m.Called(ctx, email, filename, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *CatalogService) RequestAvatarEdit(ctx context.Context, email, imageURL string) error {
	args := m.Called(ctx, email, imageURL)
	return args.Error(0)
}
