package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
)

// SaleRepository persists completed sales and their per-line returned counters
type SaleRepository interface {
	// FindByIDForTenant finds a sale by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindBySaleNumber finds a sale by sale number for a tenant
	FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*Sale, error)

	// FindAllForTenant finds all sales for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// CountForTenant counts sales for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a sale
	Save(ctx context.Context, sale *Sale) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, sale *Sale) error
}

// SaleReturnRepository persists return drafts and finalized returns
type SaleReturnRepository interface {
	// FindByIDForTenant finds a sale return by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SaleReturn, error)

	// FindByReturnNumber finds a sale return by return number for a tenant
	FindByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (*SaleReturn, error)

	// FindAllForTenant finds all sale returns for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SaleReturn, error)

	// FindBySale finds sale returns raised against a sale
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]SaleReturn, error)

	// FindByStatus finds sale returns by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ReturnStatus, filter shared.Filter) ([]SaleReturn, error)

	// CountForTenant counts sale returns for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts sale returns by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status ReturnStatus) (int64, error)

	// Save creates or updates a sale return
	Save(ctx context.Context, sr *SaleReturn) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, sr *SaleReturn) error

	// DeleteForTenant hard-deletes a draft return for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateReturnNumber generates a unique return number for a tenant
	GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
