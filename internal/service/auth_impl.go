package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"techstore-server/internal/config"
	"techstore-server/internal/interfaces"
	"techstore-server/internal/models"
	"techstore-server/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo   interfaces.UserRepository
	ledger     interfaces.PurchaseLedger
	imageStore interfaces.ImageStore
	mailSender interfaces.MailSender
	cfg        *config.Config
	logger     *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo interfaces.UserRepository, ledger interfaces.PurchaseLedger, imageStore interfaces.ImageStore, mailSender interfaces.MailSender, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		ledger:     ledger,
		imageStore: imageStore,
		mailSender: mailSender,
		cfg:        cfg,
		logger:     logger.Named("AuthService"),
	}
}

// Register creates a new user.
func (s *authServiceImpl) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	logFields := []zap.Field{zap.String("name", name), zap.String("email", email)}
	s.logger.Info("Registering new user", logFields...)

	if _, err := mail.ParseAddress(email); err != nil {
		s.logger.Warn("Registration attempt with invalid email format", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("invalid email format: %w", models.ErrInvalidInput)
	}
	if name == "" || password == "" {
		s.logger.Warn("Registration attempt with empty name or password", logFields...)
		return nil, models.ErrInvalidInput
	}

	// Предварительная проверка только для быстрого ответа; настоящий барьер -
	// уникальный индекс в репозитории.
	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing email during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Registration attempt for existing email", logFields...)
		return nil, models.ErrEmailAlreadyExists
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		// Hashing failure aborts the write; plaintext is never stored.
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		Blocked:      false,
		Packages:     []uuid.UUID{},
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, models.ErrEmailAlreadyExists) {
			s.logger.Error("Failed to create user via repository", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	// Welcome mail is best-effort: delivery failure never rolls back the
	// already-committed registration.
	welcomeBody := fmt.Sprintf("<h1>Welcome to Tech-E!</h1><p>We're excited to have you join our community, %s.</p><p>Cheers,<br/>Tech-E.</p>", name)
	if err := s.mailSender.Send(ctx, email, "Welcome to Tech-E!", welcomeBody); err != nil {
		s.logger.Warn("Failed to send welcome email", append(logFields, zap.Error(err))...)
	}

	s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return user, nil
}

// Login authenticates a user and returns a signed session token.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	s.logger.Info("Login attempt", zap.String("email", email))
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Не раскрываем, какая половина учетных данных неверна.
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return "", nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("email", email))
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		s.logger.Warn("Login failed: invalid password", zap.String("email", email), zap.String("userID", user.ID.String()))
		return "", nil, models.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("Failed to sign token during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	packages, err := s.ledger.ListByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("Failed to load purchased packages during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return "", nil, fmt.Errorf("failed to load purchases: %w", err)
	}
	user.Packages = packages

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return token, user, nil
}

// VerifyToken parses and validates a session token string.
func (s *authServiceImpl) VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	s.logger.Debug("Verifying session token") // Не логируем сам токен
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("Token verification failed: expired")
			return nil, models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			s.logger.Warn("Token verification failed: malformed")
			return nil, models.ErrTokenMalformed
		}
		s.logger.Warn("Failed to parse session token", zap.Error(err))
		return nil, models.ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*models.Claims); ok && token.Valid {
		s.logger.Debug("Token verified successfully", zap.String("userID", claims.UserID.String()), zap.String("role", claims.Role))
		return claims, nil
	}

	s.logger.Warn("Token verification failed (invalid claims type or signature)")
	return nil, models.ErrTokenInvalid
}

// Authenticate verifies the token and resolves its subject to a user record.
func (s *authServiceImpl) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.VerifyToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("User from valid token not found in DB", zap.String("userID", claims.UserID.String()))
			return nil, models.ErrUserNotFound
		}
		s.logger.Error("Failed to get user by ID during token validation", zap.Error(err), zap.String("userID", claims.UserID.String()))
		return nil, fmt.Errorf("failed to get user for validation: %w", err)
	}

	return user, nil
}

// UpdateName updates the display name of the account with the given email.
func (s *authServiceImpl) UpdateName(ctx context.Context, email, name string) (*models.User, error) {
	log := s.logger.With(zap.String("email", email))
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrInvalidInput
	}

	user, err := s.userRepo.UpdateName(ctx, email, name)
	if err != nil {
		return nil, err
	}
	log.Info("User name updated", zap.String("userID", user.ID.String()))
	return user, nil
}

// UpdatePassword re-verifies the current password before replacing it.
func (s *authServiceImpl) UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	log := s.logger.With(zap.String("email", email))
	log.Info("Attempting to update user password")

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !checkPasswordHash(currentPassword, user.PasswordHash) {
		log.Warn("Password update failed: current password incorrect", zap.String("userID", user.ID.String()))
		return models.ErrPasswordIncorrect
	}

	newHash, err := hashPassword(newPassword)
	if err != nil {
		log.Error("Failed to hash new password during update", zap.Error(err))
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		return err
	}

	log.Info("User password updated successfully", zap.String("userID", user.ID.String()))
	return nil
}

// DeleteAccount permanently removes the account after password re-verification.
func (s *authServiceImpl) DeleteAccount(ctx context.Context, email, password string) error {
	log := s.logger.With(zap.String("email", email))
	log.Info("Attempting to delete account")

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		log.Warn("Account deletion failed: password incorrect", zap.String("userID", user.ID.String()))
		return models.ErrPasswordIncorrect
	}

	if err := s.userRepo.DeleteUser(ctx, email); err != nil {
		return err
	}

	log.Info("Account deleted", zap.String("userID", user.ID.String()))
	return nil
}

// ToggleBlock flips the blocked flag and returns the new state.
func (s *authServiceImpl) ToggleBlock(ctx context.Context, id uuid.UUID) (bool, error) {
	log := s.logger.With(zap.String("userID", id.String()))

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}

	newState := !user.Blocked
	if err := s.userRepo.SetBlocked(ctx, id, newState); err != nil {
		log.Error("Failed to set blocked flag", zap.Error(err), zap.Bool("blocked", newState))
		return false, err
	}

	log.Info("User block state toggled", zap.Bool("blocked", newState))
	return newState, nil
}

// UpdateRole validates and sets the role, notifying on promotion to admin.
func (s *authServiceImpl) UpdateRole(ctx context.Context, id uuid.UUID, role string) (bool, error) {
	log := s.logger.With(zap.String("userID", id.String()), zap.String("role", role))

	if !models.ValidRole(role) {
		log.Warn("Role update attempt with unknown role")
		return false, models.ErrInvalidInput
	}

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}

	if err := s.userRepo.SetRole(ctx, id, role); err != nil {
		return false, err
	}

	emailSent := false
	// Уведомляем только при повышении до администратора.
	if role == models.RoleAdmin && user.Role != models.RoleAdmin {
		body := "<h1>Congratulations!</h1><p>You have been assigned the Admin role on Tech-E.</p><p>If you have any questions, feel free to reach out to us.</p><p>Cheers,<br/>Tech-E Team</p>"
		if err := s.mailSender.Send(ctx, user.Email, "Your Role has been Updated", body); err != nil {
			// Delivery is reported separately and never blocks the change.
			log.Warn("Failed to send role promotion email", zap.Error(err))
		} else {
			emailSent = true
		}
	}

	log.Info("User role updated", zap.Bool("emailSent", emailSent))
	return emailSent, nil
}

// SetProfileImage uploads the image to the object store and saves its URL.
func (s *authServiceImpl) SetProfileImage(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (*models.User, error) {
	log := s.logger.With(zap.String("userID", userID.String()))

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	key := storage.ObjectKey("avatars", filename)
	url, err := s.imageStore.Upload(ctx, key, contentType, data)
	if err != nil {
		// Object-store failure is fatal to this request: no partial write.
		log.Error("Profile image upload failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
	}

	if err := s.userRepo.SetProfileImageURL(ctx, userID, &url); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.Info("Profile image updated", zap.String("url", url))
	return user, nil
}

// GetProfileImageURL returns ErrProfileImageMissing when none is set.
func (s *authServiceImpl) GetProfileImageURL(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ProfileImageURL == nil || *user.ProfileImageURL == "" {
		return "", models.ErrProfileImageMissing
	}
	return *user.ProfileImageURL, nil
}

// RemoveProfileImage clears the profile image URL.
func (s *authServiceImpl) RemoveProfileImage(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.GetProfileImageURL(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.SetProfileImageURL(ctx, userID, nil)
}

// --- Helper Functions ---

// hashPassword generates a bcrypt hash of the password. bcrypt embeds the
// algorithm, cost and per-call salt in its output.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password with a stored hash.
// bcrypt's comparison is constant-time.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// issueToken signs a session token carrying the subject id and role.
func (s *authServiceImpl) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    "techstore-server",
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
