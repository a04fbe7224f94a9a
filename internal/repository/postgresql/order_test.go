package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "github.com/ecomshop/order-engine/internal/db/mocks"
	"github.com/ecomshop/order-engine/internal/repository"
	"github.com/ecomshop/order-engine/internal/repository/postgresql"
)

// scanRow satisfies pgx.Row for INSERT ... RETURNING id expectations.
type scanRow struct {
	id  int64
	err error
}

func (r scanRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if idDest, ok := dest[0].(*int64); ok {
			*idDest = r.id
		}
	}
	return nil
}

func TestOrderRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success assigns id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		testOrder := &repository.Order{
			OrderNumber: "ORD-20250301100000-0042-123456",
			Status:      "pending",
			Total:       100.0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		mockDB.EXPECT().ExecQueryRow(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, args ...interface{}) pgx.Row {
				assert.Equal(t, testOrder.OrderNumber, args[0])
				return scanRow{id: 17}
			})

		err := repo.Create(ctx, testOrder)
		require.NoError(t, err)
		assert.Equal(t, int64(17), testOrder.ID)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().ExecQueryRow(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(scanRow{err: expectedErr})

		err := repo.Create(ctx, &repository.Order{OrderNumber: "ORD-1"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestOrderRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("order found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		testOrder := &repository.Order{
			ID:          42,
			OrderNumber: "ORD-1",
			Status:      "processing",
		}

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(int64(42))).
			DoAndReturn(func(_ context.Context, dest *repository.Order, _ string, _ int64) error {
				*dest = *testOrder
				return nil
			})

		order, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, testOrder, order)
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		order, err := repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, order)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		order, err := repo.GetByID(ctx, 42)
		assert.Equal(t, expectedErr, err)
		assert.Nil(t, order)
	})
}

func TestOrderRepo_GetByIDTx(t *testing.T) {
	ctx := context.Background()

	t.Run("locks the row", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(int64(42))).
			DoAndReturn(func(_ context.Context, dest *repository.Order, query string, _ int64) error {
				assert.Contains(t, query, "FOR UPDATE")
				dest.ID = 42
				return nil
			})

		order, err := repo.GetByIDTx(ctx, mockTx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), order.ID)
	})
}

func TestOrderRepo_NumberExistsTx(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("ORD-1")).
			DoAndReturn(func(_ context.Context, dest *int64, query string, _ string) error {
				assert.Contains(t, query, "FOR UPDATE")
				*dest = 7
				return nil
			})

		exists, err := repo.NumberExistsTx(ctx, mockTx, "ORD-1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("free", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		exists, err := repo.NumberExistsTx(ctx, mockTx, "ORD-1")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		exists, err := repo.NumberExistsTx(ctx, mockTx, "ORD-1")
		assert.Equal(t, expectedErr, err)
		assert.False(t, exists)
	})
}

func TestOrderRepo_UpdateTx(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewOrderRepo(mockDB)

	order := &repository.Order{ID: 42, Status: "cancelled"}

	mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, args ...interface{}) (pgconn.CommandTag, error) {
			assert.Equal(t, "cancelled", args[0])
			assert.Equal(t, int64(42), args[len(args)-1])
			return nil, nil
		})

	require.NoError(t, repo.UpdateTx(ctx, mockTx, order))
}

func TestOrderRepo_GetAllActiveOrders(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewOrderRepo(mockDB)

	active := []*repository.Order{
		{ID: 1, Status: "pending"},
		{ID: 2, Status: "shipped"},
	}

	mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, dest *[]*repository.Order, query string, _ ...interface{}) error {
			assert.Contains(t, query, "NOT IN")
			*dest = active
			return nil
		})

	orders, err := repo.GetAllActiveOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, active, orders)
}
