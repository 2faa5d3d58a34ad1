package service

import (
	"context"
	"fmt"
	"strings"

	"techstore-server/internal/config"
	"techstore-server/internal/interfaces"
	"techstore-server/internal/models"
	"techstore-server/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Compile-time check to ensure catalogServiceImpl implements CatalogService
var _ CatalogService = (*catalogServiceImpl)(nil)

type catalogServiceImpl struct {
	packageRepo interfaces.PackageRepository
	imageRepo   interfaces.ImageRepository
	userRepo    interfaces.UserRepository
	ledger      interfaces.PurchaseLedger
	imageStore  interfaces.ImageStore
	mailSender  interfaces.MailSender
	cfg         *config.Config
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of catalogServiceImpl.
func NewCatalogService(packageRepo interfaces.PackageRepository, imageRepo interfaces.ImageRepository, userRepo interfaces.UserRepository, ledger interfaces.PurchaseLedger, imageStore interfaces.ImageStore, mailSender interfaces.MailSender, cfg *config.Config, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{
		packageRepo: packageRepo,
		imageRepo:   imageRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		imageStore:  imageStore,
		mailSender:  mailSender,
		cfg:         cfg,
		logger:      logger.Named("CatalogService"),
	}
}

// CreatePackage uploads all files concurrently, then inserts the package.
func (s *catalogServiceImpl) CreatePackage(ctx context.Context, name, version, description string, price float64, files []UploadFile) (*models.Package, error) {
	log := s.logger.With(zap.String("name", name), zap.String("version", version))
	log.Info("Creating package", zap.Int("imageCount", len(files)))

	name = strings.TrimSpace(name)
	if name == "" || price < 0 {
		return nil, models.ErrInvalidInput
	}

	urls, err := s.uploadAll(ctx, "packages", files)
	if err != nil {
		log.Error("Package image upload failed, nothing persisted", zap.Error(err))
		return nil, err
	}

	pkg := &models.Package{
		Name:        name,
		Version:     version,
		Description: description,
		Price:       price,
		Images:      urls,
	}
	if err := s.packageRepo.CreatePackage(ctx, pkg); err != nil {
		return nil, err
	}

	log.Info("Package created", zap.String("packageID", pkg.ID.String()))
	return pkg, nil
}

// GetPackage retrieves one package by ID.
func (s *catalogServiceImpl) GetPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	return s.packageRepo.GetPackageByID(ctx, id)
}

// ListPackages retrieves the full catalog.
func (s *catalogServiceImpl) ListPackages(ctx context.Context) ([]models.Package, error) {
	return s.packageRepo.ListPackages(ctx)
}

// UpdatePackage replaces metadata; images only when new files are supplied.
func (s *catalogServiceImpl) UpdatePackage(ctx context.Context, id uuid.UUID, name, version, description string, price float64, files []UploadFile) (*models.Package, error) {
	log := s.logger.With(zap.String("packageID", id.String()))
	log.Info("Updating package", zap.Int("imageCount", len(files)))

	// Существование проверяем до загрузки файлов, чтобы не оставлять
	// осиротевшие объекты в хранилище.
	if _, err := s.packageRepo.GetPackageByID(ctx, id); err != nil {
		return nil, err
	}

	var urls []string
	if len(files) > 0 {
		uploaded, err := s.uploadAll(ctx, "packages", files)
		if err != nil {
			log.Error("Package image upload failed, update aborted", zap.Error(err))
			return nil, err
		}
		urls = uploaded
	}

	pkg, err := s.packageRepo.UpdatePackage(ctx, id, name, version, description, price, urls)
	if err != nil {
		return nil, err
	}

	log.Info("Package updated")
	return pkg, nil
}

// DeletePackage removes a package from the catalog.
func (s *catalogServiceImpl) DeletePackage(ctx context.Context, id uuid.UUID) error {
	log := s.logger.With(zap.String("packageID", id.String()))
	if err := s.packageRepo.DeletePackage(ctx, id); err != nil {
		return err
	}
	log.Info("Package deleted")
	return nil
}

// Purchase appends a ledger entry and returns the buyer with the refreshed
// package list.
func (s *catalogServiceImpl) Purchase(ctx context.Context, userID, packageID uuid.UUID) (*models.User, error) {
	log := s.logger.With(zap.String("userID", userID.String()), zap.String("packageID", packageID.String()))
	log.Info("Recording purchase")

	if err := s.ledger.Append(ctx, userID, packageID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	packages, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Packages = packages

	log.Info("Purchase recorded", zap.Int("totalOwned", len(packages)))
	return user, nil
}

// IngestImage stores an image in the object store and records who sent it.
func (s *catalogServiceImpl) IngestImage(ctx context.Context, email, filename, contentType string, data []byte) (*models.Image, error) {
	log := s.logger.With(zap.String("email", email), zap.String("filename", filename))
	log.Info("Ingesting image", zap.Int("size", len(data)))

	if email == "" || len(data) == 0 {
		return nil, models.ErrInvalidInput
	}

	key := storage.ObjectKey("uploads", filename)
	url, err := s.imageStore.Upload(ctx, key, contentType, data)
	if err != nil {
		log.Error("Image upload to object store failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}

	img := &models.Image{
		Email:    email,
		ImageURL: url,
	}
	if err := s.imageRepo.CreateImage(ctx, img); err != nil {
		return nil, err
	}

	log.Info("Image ingested", zap.String("url", url))
	return img, nil
}

// RequestAvatarEdit emails an avatar edit request referencing the image.
func (s *catalogServiceImpl) RequestAvatarEdit(ctx context.Context, email, imageURL string) error {
	log := s.logger.With(zap.String("email", email))

	if email == "" || strings.TrimSpace(imageURL) == "" {
		return models.ErrInvalidInput
	}

	body := fmt.Sprintf("<p>Hello,</p><p>I would like to request your assistance in editing my avatar model.</p><p>Here is the image I would like you to work on:<br/>%s</p>", imageURL)
	if err := s.mailSender.Send(ctx, email, "Request to Edit Avatar Model", body); err != nil {
		log.Error("Failed to send avatar edit request email", zap.Error(err))
		return fmt.Errorf("failed to send edit request: %w", err)
	}

	log.Info("Avatar edit request sent")
	return nil
}

// uploadAll stores every file concurrently. Either every upload succeeds and
// the URLs come back in input order, or the first error cancels the rest and
// nothing is returned.
func (s *catalogServiceImpl) uploadAll(ctx context.Context, folder string, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	urls := make([]string, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			key := storage.ObjectKey(folder, file.Name)
			url, err := s.imageStore.Upload(gCtx, key, file.ContentType, file.Data)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", models.ErrUploadFailed, file.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
