package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"time"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/pkg/errors"
)

func newInventoryRepo(t *testing.T) (*inventoryRepository, sqlmock.Sqlmock) {
	db, mock := newMock(t)
	repo := NewInventoryRepository(db).(*inventoryRepository)
	repo.now = func() time.Time { return fixedTime }
	return repo, mock
}

func TestInventoryRepository_ReduceStock(t *testing.T) {
	t.Run("reduces above minimum", func(t *testing.T) {
		repo, mock := newInventoryRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FROM inventory WHERE id = $1 FOR UPDATE")).
			WithArgs(int64(3)).
			WillReturnRows(inventoryRow(3, "Gauze", 20, 5))
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE inventory SET current_stock = $1 WHERE id = $2 RETURNING")).
			WithArgs(15, int64(3)).
			WillReturnRows(inventoryRow(3, "Gauze", 15, 5))
		mock.ExpectCommit()

		item, err := repo.ReduceStock(context.Background(), 3, 5)
		require.NoError(t, err)
		assert.Equal(t, 15, item.CurrentStock)
		assert.False(t, item.LowStock)
	})

	t.Run("queues low stock event at minimum", func(t *testing.T) {
		repo, mock := newInventoryRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WillReturnRows(inventoryRow(3, "Gauze", 8, 5))
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE inventory SET current_stock")).
			WithArgs(5, int64(3)).
			WillReturnRows(inventoryRow(3, "Gauze", 5, 5))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WithArgs(sqlmock.AnyArg(), model.EventInventoryLowStock, sqlmock.AnyArg(), "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		item, err := repo.ReduceStock(context.Background(), 3, 3)
		require.NoError(t, err)
		assert.Equal(t, 5, item.CurrentStock)
		assert.True(t, item.LowStock)
	})

	t.Run("over-request leaves stock unchanged", func(t *testing.T) {
		repo, mock := newInventoryRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WillReturnRows(inventoryRow(3, "Gauze", 2, 5))
		mock.ExpectRollback()

		_, err := repo.ReduceStock(context.Background(), 3, 3)
		appErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, errors.ErrInsufficientStock, appErr.Code)
		assert.Equal(t, 2, appErr.Details["available"])
	})

	t.Run("reducing to exactly zero is allowed", func(t *testing.T) {
		repo, mock := newInventoryRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WillReturnRows(inventoryRow(3, "Gauze", 4, 0))
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE inventory SET current_stock")).
			WithArgs(0, int64(3)).
			WillReturnRows(inventoryRow(3, "Gauze", 0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		item, err := repo.ReduceStock(context.Background(), 3, 4)
		require.NoError(t, err)
		assert.Zero(t, item.CurrentStock)
	})

	t.Run("missing item", func(t *testing.T) {
		repo, mock := newInventoryRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.ReduceStock(context.Background(), 3, 1)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func TestInventoryRepository_ListLowStock(t *testing.T) {
	repo, mock := newInventoryRepo(t)

	rows := sqlmock.NewRows(inventoryCols).
		AddRow(1, "Tape", "supplies", 0, 3, nil, nil, nil, nil, fixedTime).
		AddRow(2, "Gel", "supplies", 2, 2, "4.00", "MedCo", nil, nil, fixedTime)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE current_stock <= min_stock_level ORDER BY current_stock")).
		WillReturnRows(rows)

	items, err := repo.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[0].UnitPrice)
	require.NotNil(t, items[1].UnitPrice)
	assert.Equal(t, "4.00", items[1].UnitPrice.String())
	for _, item := range items {
		assert.True(t, item.LowStock)
	}
}
