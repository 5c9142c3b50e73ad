package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/transfer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockStockTransferRepository creates a GormStockTransferRepository with a mocked SQL connection
func newMockStockTransferRepository(t *testing.T) (*GormStockTransferRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormStockTransferRepository(gormDB), mock, mockDB
}

func TestGormStockTransferRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing transfer with items", func(t *testing.T) {
		repo, mock, mockDB := newMockStockTransferRepository(t)
		defer mockDB.Close()

		transferID := uuid.New()
		tenantID := uuid.New()
		sourceID := uuid.New()
		targetID := uuid.New()

		transferRows := sqlmock.NewRows([]string{
			"id", "tenant_id", "transfer_number", "source_store_id", "target_store_id",
			"status", "version",
		}).AddRow(
			transferID, tenantID, "TR-2026-00001", sourceID, targetID,
			transfer.TransferStatusInTransit, 2,
		)

		itemRows := sqlmock.NewRows([]string{
			"id", "transfer_id", "product_id", "product_name",
			"quantity", "sent_quantity", "received_quantity",
		}).AddRow(
			uuid.New(), transferID, uuid.New(), "Oat Milk 1L",
			decimal.NewFromInt(24), decimal.NewFromInt(24), decimal.NewFromInt(12),
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_transfers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, transferID, 1).
			WillReturnRows(transferRows)
		mock.ExpectQuery(`SELECT \* FROM "stock_transfer_items" WHERE "stock_transfer_items"\."transfer_id" = \$1`).
			WithArgs(transferID).
			WillReturnRows(itemRows)

		st, err := repo.FindByIDForTenant(context.Background(), tenantID, transferID)

		assert.NoError(t, err)
		require.NotNil(t, st)
		assert.Equal(t, "TR-2026-00001", st.TransferNumber)
		assert.Equal(t, transfer.TransferStatusInTransit, st.Status)
		require.Len(t, st.Items, 1)
		assert.True(t, st.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(12)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing transfer", func(t *testing.T) {
		repo, mock, mockDB := newMockStockTransferRepository(t)
		defer mockDB.Close()

		transferID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_transfers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, transferID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		st, err := repo.FindByIDForTenant(context.Background(), tenantID, transferID)

		assert.Nil(t, st)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStockTransferRepository_FindInbound(t *testing.T) {
	t.Run("only matches in-transit and partially received transfers", func(t *testing.T) {
		repo, mock, mockDB := newMockStockTransferRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		targetID := uuid.New()
		transferID := uuid.New()

		transferRows := sqlmock.NewRows([]string{
			"id", "tenant_id", "transfer_number", "source_store_id", "target_store_id", "status",
		}).AddRow(
			transferID, tenantID, "TR-2026-00003", uuid.New(), targetID,
			transfer.TransferStatusPartialReceived,
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_transfers" WHERE \(tenant_id = \$1 AND target_store_id = \$2 AND status IN \(\$3,\$4\)\).*`).
			WillReturnRows(transferRows)
		mock.ExpectQuery(`SELECT \* FROM "stock_transfer_items" WHERE "stock_transfer_items"\."transfer_id" = \$1`).
			WithArgs(transferID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "transfer_id"}))

		result, err := repo.FindInbound(context.Background(), tenantID, targetID, shared.Filter{})

		assert.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "TR-2026-00003", result[0].TransferNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockTransferRepository_CountByStatus(t *testing.T) {
	t.Run("counts transfers in a status", func(t *testing.T) {
		repo, mock, mockDB := newMockStockTransferRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_transfers" WHERE tenant_id = \$1 AND status = \$2`).
			WithArgs(tenantID, string(transfer.TransferStatusDraft)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.CountByStatus(context.Background(), tenantID, transfer.TransferStatusDraft)

		assert.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})
}

func TestGormStockTransferRepository_GenerateTransferNumber(t *testing.T) {
	t.Run("starts at 1 when no transfers exist for the year", func(t *testing.T) {
		repo, mock, mockDB := newMockStockTransferRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		expected := fmt.Sprintf("TR-%d-00001", time.Now().Year())

		mock.ExpectQuery(`SELECT \* FROM "stock_transfers" WHERE tenant_id = \$1 AND transfer_number LIKE \$2 ORDER BY transfer_number DESC.*`).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_transfers" WHERE tenant_id = \$1 AND transfer_number = \$2`).
			WithArgs(tenantID, expected).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateTransferNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, expected, number)
	})
}
