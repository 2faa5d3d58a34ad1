package interfaces

import (
	"context"

	"techstore-server/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines the persistence contract for user records
// (the credential store).
type UserRepository interface {
	// CreateUser inserts a new user. The email unique index is the
	// authoritative duplicate guard: a constraint violation surfaces as
	// models.ErrEmailAlreadyExists regardless of any pre-check.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by their ID.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetUserByEmail retrieves a user by their email address.
	// Returns models.ErrUserNotFound if the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ListUsers retrieves all users. Password hashes are never selected.
	ListUsers(ctx context.Context) ([]models.User, error)

	// UpdateName sets the display name of the user identified by email.
	UpdateName(ctx context.Context, email, name string) (*models.User, error)

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, newHash string) error

	// SetBlocked sets the blocked flag of a user.
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error

	// SetRole sets the role of a user.
	SetRole(ctx context.Context, id uuid.UUID, role string) error

	// SetProfileImageURL sets (or clears, when nil) the profile image URL.
	SetProfileImageURL(ctx context.Context, id uuid.UUID, url *string) error

	// DeleteUser permanently removes a user record.
	DeleteUser(ctx context.Context, email string) error
}
