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
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

const userColumns = `id, name, email, password_hash, role, blocked, profile_image_url, created_at`

func (r *pgUserRepository) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Blocked, &user.ProfileImageURL, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, password_hash, role, blocked) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", user.Email))
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.Blocked).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation: единственный надежный барьер против
		// одновременной регистрации одного email.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to create duplicate user by email", zap.String("email", user.Email), zap.String("constraint", pgErr.ConstraintName))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	user, err := r.scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by ID", zap.String("id", id.String()))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by id from postgres", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("failed to get user by id from postgres: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", email))
	user, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by email", zap.String("email", email))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by email from postgres", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email from postgres: %w", err)
	}
	return user, nil
}

// ListUsers retrieves all users. Password hashes are not selected.
func (r *pgUserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, name, email, role, blocked, profile_image_url, created_at FROM users ORDER BY created_at ASC`
	r.logger.Debug("Executing query", zap.String("query", query))

	users := make([]models.User, 0)
	if err := pgxscan.Select(ctx, r.db, &users, query); err != nil {
		r.logger.Error("Failed to query users from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, nil
}

// UpdateName sets the display name of the user identified by email.
func (r *pgUserRepository) UpdateName(ctx context.Context, email, name string) (*models.User, error) {
	query := `UPDATE users SET name = $1 WHERE email = $2 RETURNING ` + userColumns
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", email))
	user, err := r.scanUser(r.db.QueryRow(ctx, query, name, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to update user name in postgres", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to update user name: %w", err)
	}
	r.logger.Info("User name updated", zap.String("userID", user.ID.String()))
	return user, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *pgUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, newHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	tag, err := r.db.Exec(ctx, query, newHash, id)
	if err != nil {
		r.logger.Error("Failed to update password hash in postgres", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	r.logger.Info("Password hash updated", zap.String("userID", id.String()))
	return nil
}

// SetBlocked sets the blocked flag of a user.
func (r *pgUserRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	query := `UPDATE users SET blocked = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()), zap.Bool("blocked", blocked))
	tag, err := r.db.Exec(ctx, query, blocked, id)
	if err != nil {
		r.logger.Error("Failed to set blocked flag in postgres", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to set blocked flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SetRole sets the role of a user.
func (r *pgUserRepository) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	query := `UPDATE users SET role = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()), zap.String("role", role))
	tag, err := r.db.Exec(ctx, query, role, id)
	if err != nil {
		r.logger.Error("Failed to set role in postgres", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SetProfileImageURL sets (or clears, when nil) the profile image URL.
func (r *pgUserRepository) SetProfileImageURL(ctx context.Context, id uuid.UUID, url *string) error {
	query := `UPDATE users SET profile_image_url = $1 WHERE id = $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("id", id.String()))
	tag, err := r.db.Exec(ctx, query, url, id)
	if err != nil {
		r.logger.Error("Failed to set profile image url in postgres", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to set profile image url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// DeleteUser permanently removes a user record.
func (r *pgUserRepository) DeleteUser(ctx context.Context, email string) error {
	query := `DELETE FROM users WHERE email = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", email))
	tag, err := r.db.Exec(ctx, query, email)
	if err != nil {
		r.logger.Error("Failed to delete user from postgres", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	r.logger.Info("User deleted", zap.String("email", email))
	return nil
}
