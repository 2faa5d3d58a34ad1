package service

import (
	"context"

	"techstore-server/internal/models"

	"github.com/google/uuid"
)

// AuthService covers the credential lifecycle: registration, login, token
// verification and account mutations.
type AuthService interface {
	// Register creates a new user with a hashed password and default role.
	// The welcome notification is best-effort and never fails registration.
	Register(ctx context.Context, name, email, password string) (*models.User, error)

	// Login verifies credentials and issues a signed session token.
	// Unknown email and wrong password both surface as ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *models.User, error)

	// VerifyToken parses and validates a session token string.
	VerifyToken(ctx context.Context, tokenString string) (*models.Claims, error)

	// Authenticate verifies the token and resolves its subject to a live
	// user record (hash stripped by callers before leaving the process).
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)

	// UpdateName updates the display name of the account with the given email.
	UpdateName(ctx context.Context, email, name string) (*models.User, error)

	// UpdatePassword re-verifies the current password before replacing it.
	// On mismatch the stored hash is left untouched.
	UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error

	// DeleteAccount permanently removes the account after password
	// re-verification. Terminal.
	DeleteAccount(ctx context.Context, email, password string) error

	// ToggleBlock flips the blocked flag and returns the new state.
	ToggleBlock(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateRole validates and sets the role. Promotion to admin triggers a
	// notification email; the returned flag reports delivery, which never
	// affects whether the role change is committed.
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (bool, error)

	// SetProfileImage uploads the image to the object store and saves its URL.
	SetProfileImage(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (*models.User, error)

	// GetProfileImageURL returns ErrProfileImageMissing when none is set.
	GetProfileImageURL(ctx context.Context, userID uuid.UUID) (string, error)

	// RemoveProfileImage clears the profile image URL.
	RemoveProfileImage(ctx context.Context, userID uuid.UUID) error
}
