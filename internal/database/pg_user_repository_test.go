package database

import (
	"context"
	"testing"
	"time"

	"techstore-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock
}

const insertUserQuery = `INSERT INTO users \(name, email, password_hash, role, blocked\) VALUES \(\$1, \$2, \$3, \$4, \$5\) RETURNING id, created_at`

func TestPgUserRepository_CreateUser_OK_and_UniqueViolation(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewPgUserRepository(mock, zap.NewNop())
	ctx := context.Background()

	user := &models.User{
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$hash",
		Role:         models.RoleUser,
	}

	// OK
	mock.ExpectQuery(insertUserQuery).
		WithArgs(user.Name, user.Email, user.PasswordHash, user.Role, user.Blocked).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NotEqual(t, uuid.Nil, user.ID)

	// 23505 от уникального индекса: вторая из двух одновременных регистраций
	// одного email проходит pre-check, но режется здесь.
	mock.ExpectQuery(insertUserQuery).
		WithArgs(user.Name, user.Email, user.PasswordHash, user.Role, user.Blocked).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	err := repo.CreateUser(ctx, user)
	require.ErrorIs(t, err, models.ErrEmailAlreadyExists)
}

func TestPgUserRepository_GetUserByEmail(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewPgUserRepository(mock, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, blocked, profile_image_url, created_at FROM users WHERE email = \$1`).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "blocked", "profile_image_url", "created_at"}).
			AddRow(id, "Alice", "alice@example.com", "$2a$04$hash", models.RoleUser, false, nil, time.Now()))
	user, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	require.Nil(t, user.ProfileImageURL)

	mock.ExpectQuery(`SELECT id, name, email, password_hash, role, blocked, profile_image_url, created_at FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestPgUserRepository_UpdatePasswordHash_NoRows(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewPgUserRepository(mock, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(`UPDATE users SET password_hash = \$1 WHERE id = \$2`).
		WithArgs("$2a$04$newhash", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := repo.UpdatePasswordHash(ctx, id, "$2a$04$newhash")
	require.ErrorIs(t, err, models.ErrUserNotFound)
}
