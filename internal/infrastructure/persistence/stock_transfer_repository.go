package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/transfer"
	"github.com/posadmin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// StockTransferSortFields contains allowed sort fields for stock transfers
var StockTransferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"status":          true,
	"sent_at":         true,
}

// GormStockTransferRepository implements StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByIDForTenant finds a transfer by ID within a tenant
func (r *GormStockTransferRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*transfer.StockTransfer, error) {
	var m models.StockTransferModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByTransferNumber finds a transfer by transfer number for a tenant
func (r *GormStockTransferRepository) FindByTransferNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (*transfer.StockTransfer, error) {
	var m models.StockTransferModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND transfer_number = ?", tenantID, transferNumber).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForTenant finds all transfers for a tenant with filtering
func (r *GormStockTransferRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]transfer.StockTransfer, error) {
	var ms []models.StockTransferModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StockTransferModel{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByStatus finds transfers by status for a tenant
func (r *GormStockTransferRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status transfer.TransferStatus, filter shared.Filter) ([]transfer.StockTransfer, error) {
	var ms []models.StockTransferModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StockTransferModel{}).
			Preload("Items").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindInbound finds transfers addressed to a store that still have quantity in transit
func (r *GormStockTransferRepository) FindInbound(ctx context.Context, tenantID, targetStoreID uuid.UUID, filter shared.Filter) ([]transfer.StockTransfer, error) {
	var ms []models.StockTransferModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.StockTransferModel{}).
			Preload("Items").
			Where("tenant_id = ? AND target_store_id = ? AND status IN ?",
				tenantID, targetStoreID,
				[]transfer.TransferStatus{transfer.TransferStatusInTransit, transfer.TransferStatusPartialReceived}),
		filter,
	)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// CountForTenant counts transfers for a tenant with optional filters
func (r *GormStockTransferRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StockTransferModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts transfers by status for a tenant
func (r *GormStockTransferRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status transfer.TransferStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockTransferModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a transfer together with its items
func (r *GormStockTransferRepository) Save(ctx context.Context, t *transfer.StockTransfer) error {
	m := models.StockTransferModelFromDomain(t)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return err
		}
		return r.saveItems(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormStockTransferRepository) SaveWithLock(ctx context.Context, t *transfer.StockTransfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.StockTransferModel{}).
			Where("id = ?", t.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != t.Version {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "The transfer has been modified by another user")
		}

		t.Version++
		t.UpdatedAt = time.Now()
		m := models.StockTransferModelFromDomain(t)

		result := tx.Model(&models.StockTransferModel{}).
			Where("id = ? AND version = ?", t.ID, currentVersion).
			Updates(map[string]any{
				"source_store_id": m.SourceStoreID,
				"target_store_id": m.TargetStoreID,
				"status":          m.Status,
				"remark":          m.Remark,
				"sent_at":         m.SentAt,
				"received_at":     m.ReceivedAt,
				"cancelled_at":    m.CancelledAt,
				"cancel_reason":   m.CancelReason,
				"version":         m.Version,
				"updated_at":      m.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "The transfer has been modified by another user")
		}

		return r.saveItems(tx, m)
	})
}

// DeleteForTenant hard-deletes a transfer for a tenant. Only drafts are ever
// deleted; the service gates on CanDelete before calling.
func (r *GormStockTransferRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.StockTransferModel
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("transfer_id = ?", id).Delete(&models.TransferItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.StockTransferModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByTransferNumber checks if a transfer number exists for a tenant
func (r *GormStockTransferRepository) ExistsByTransferNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockTransferModel{}).
		Where("tenant_id = ? AND transfer_number = ?", tenantID, transferNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateTransferNumber generates a unique transfer number for a tenant
// Format: TR-YYYY-NNNNN (e.g., TR-2026-00001)
func (r *GormStockTransferRepository) GenerateTransferNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("TR-%d-", year)

	var last models.StockTransferModel
	err := r.db.WithContext(ctx).
		Model(&models.StockTransferModel{}).
		Where("tenant_id = ? AND transfer_number LIKE ?", tenantID, prefix+"%").
		Order("transfer_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.TransferNumber != "" {
		parts := strings.Split(last.TransferNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	transferNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByTransferNumber(ctx, tenantID, transferNumber)
	if err != nil {
		return "", err
	}
	if exists {
		// If exists, try incrementing until we find a unique one
		for i := 0; i < 100; i++ {
			nextNum++
			transferNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByTransferNumber(ctx, tenantID, transferNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return transferNumber, nil
}

// saveItems reconciles the stock_transfer_items rows with the aggregate's items
func (r *GormStockTransferRepository) saveItems(tx *gorm.DB, m *models.StockTransferModel) error {
	if m.ID == uuid.Nil {
		return nil
	}

	currentItemIDs := make([]uuid.UUID, len(m.Items))
	for i, item := range m.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("transfer_id = ? AND id NOT IN ?", m.ID, currentItemIDs).
			Delete(&models.TransferItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("transfer_id = ?", m.ID).
			Delete(&models.TransferItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.Items {
		m.Items[i].TransferID = m.ID
		if err := tx.Save(&m.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormStockTransferRepository) toDomainSlice(ms []models.StockTransferModel) []transfer.StockTransfer {
	result := make([]transfer.StockTransfer, len(ms))
	for i := range ms {
		result[i] = *ms[i].ToDomain()
	}
	return result
}

// applyFilter applies filter options to the query
func (r *GormStockTransferRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockTransferSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockTransferRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("transfer_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "source_store_id":
			query = query.Where("source_store_id = ?", value)
		case "target_store_id":
			query = query.Where("target_store_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormStockTransferRepository implements StockTransferRepository
var _ transfer.StockTransferRepository = (*GormStockTransferRepository)(nil)
