package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
)

// StockTransferRepository persists stock transfers
type StockTransferRepository interface {
	// FindByIDForTenant finds a transfer by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockTransfer, error)

	// FindByTransferNumber finds a transfer by transfer number for a tenant
	FindByTransferNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (*StockTransfer, error)

	// FindAllForTenant finds all transfers for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockTransfer, error)

	// FindByStatus finds transfers by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status TransferStatus, filter shared.Filter) ([]StockTransfer, error)

	// FindInbound finds transfers addressed to a store that still have
	// quantity in transit
	FindInbound(ctx context.Context, tenantID, targetStoreID uuid.UUID, filter shared.Filter) ([]StockTransfer, error)

	// CountForTenant counts transfers for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts transfers by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status TransferStatus) (int64, error)

	// Save creates or updates a transfer
	Save(ctx context.Context, t *StockTransfer) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, t *StockTransfer) error

	// DeleteForTenant hard-deletes a draft transfer for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateTransferNumber generates a unique transfer number for a tenant
	GenerateTransferNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
