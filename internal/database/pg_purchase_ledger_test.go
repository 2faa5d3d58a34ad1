package database

import (
	"context"
	"testing"

	"techstore-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const appendPurchaseQuery = `INSERT INTO user_packages \(user_id, package_id\) VALUES \(\$1, \$2\)`

func TestPgPurchaseLedger_Append(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	ledger := NewPgPurchaseLedger(mock, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()
	packageID := uuid.New()

	// OK, дважды: уникального ограничения на пару нет, повтор — новая строка
	mock.ExpectExec(appendPurchaseQuery).
		WithArgs(userID, packageID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, ledger.Append(ctx, userID, packageID))

	mock.ExpectExec(appendPurchaseQuery).
		WithArgs(userID, packageID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, ledger.Append(ctx, userID, packageID))
}

func TestPgPurchaseLedger_Append_ForeignKeyViolations(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	ledger := NewPgPurchaseLedger(mock, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()
	packageID := uuid.New()

	// Имя ограничения различает, какая именно сторона пары отсутствует
	mock.ExpectExec(appendPurchaseQuery).
		WithArgs(userID, packageID).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "user_packages_user_id_fkey"})
	err := ledger.Append(ctx, userID, packageID)
	require.ErrorIs(t, err, models.ErrUserNotFound)

	mock.ExpectExec(appendPurchaseQuery).
		WithArgs(userID, packageID).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "user_packages_package_id_fkey"})
	err = ledger.Append(ctx, userID, packageID)
	require.ErrorIs(t, err, models.ErrPackageNotFound)
}

func TestPgPurchaseLedger_ListByUser_KeepsOrderAndDuplicates(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	ledger := NewPgPurchaseLedger(mock, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	mock.ExpectQuery(`SELECT package_id FROM user_packages WHERE user_id = \$1 ORDER BY id ASC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"package_id"}).
			AddRow(first).
			AddRow(second).
			AddRow(first))
	ids, err := ledger.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{first, second, first}, ids)
}

func TestPgPurchaseLedger_ListByUser_Empty(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	ledger := NewPgPurchaseLedger(mock, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT package_id FROM user_packages WHERE user_id = \$1 ORDER BY id ASC`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"package_id"}))
	ids, err := ledger.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, ids)
	require.NotNil(t, ids)
}
