package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/returns"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// SaleReturnSortFields contains allowed sort fields for sale returns
var SaleReturnSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"return_number": true,
	"customer_name": true,
	"refund_total":  true,
	"status":        true,
	"finalized_at":  true,
}

// GormSaleReturnRepository implements SaleReturnRepository using GORM
type GormSaleReturnRepository struct {
	db *gorm.DB
}

// NewGormSaleReturnRepository creates a new GormSaleReturnRepository
func NewGormSaleReturnRepository(db *gorm.DB) *GormSaleReturnRepository {
	return &GormSaleReturnRepository{db: db}
}

// FindByIDForTenant finds a sale return by ID within a tenant
func (r *GormSaleReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*returns.SaleReturn, error) {
	var m models.SaleReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByReturnNumber finds a sale return by return number for a tenant
func (r *GormSaleReturnRepository) FindByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (*returns.SaleReturn, error) {
	var m models.SaleReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND return_number = ?", tenantID, returnNumber).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForTenant finds all sale returns for a tenant with filtering
func (r *GormSaleReturnRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]returns.SaleReturn, error) {
	var ms []models.SaleReturnModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SaleReturnModel{}).
			Preload("Lines").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindBySale finds sale returns raised against a sale
func (r *GormSaleReturnRepository) FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]returns.SaleReturn, error) {
	var ms []models.SaleReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByStatus finds sale returns by status for a tenant
func (r *GormSaleReturnRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status returns.ReturnStatus, filter shared.Filter) ([]returns.SaleReturn, error) {
	var ms []models.SaleReturnModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SaleReturnModel{}).
			Preload("Lines").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// CountForTenant counts sale returns for a tenant with optional filters
func (r *GormSaleReturnRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.SaleReturnModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts sale returns by status for a tenant
func (r *GormSaleReturnRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status returns.ReturnStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleReturnModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a sale return together with its lines
func (r *GormSaleReturnRepository) Save(ctx context.Context, sr *returns.SaleReturn) error {
	m := models.SaleReturnModelFromDomain(sr)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(m).Error; err != nil {
			return err
		}
		return r.saveLines(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSaleReturnRepository) SaveWithLock(ctx context.Context, sr *returns.SaleReturn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.SaleReturnModel{}).
			Where("id = ?", sr.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != sr.Version {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "The return has been modified by another user")
		}

		sr.Version++
		sr.UpdatedAt = time.Now()
		m := models.SaleReturnModelFromDomain(sr)

		result := tx.Model(&models.SaleReturnModel{}).
			Where("id = ? AND version = ?", sr.ID, currentVersion).
			Updates(map[string]any{
				"sale_id":       m.SaleID,
				"sale_number":   m.SaleNumber,
				"customer_id":   m.CustomerID,
				"customer_name": m.CustomerName,
				"refund_total":  m.RefundTotal,
				"status":        m.Status,
				"allocation":    m.Allocation,
				"remark":        m.Remark,
				"finalized_at":  m.FinalizedAt,
				"voided_at":     m.VoidedAt,
				"void_reason":   m.VoidReason,
				"version":       m.Version,
				"updated_at":    m.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "The return has been modified by another user")
		}

		return r.saveLines(tx, m)
	})
}

// DeleteForTenant hard-deletes a return for a tenant. Only drafts are ever
// deleted; the service gates on CanDelete before calling.
func (r *GormSaleReturnRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.SaleReturnModel
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("return_id = ?", id).Delete(&models.ReturnLineModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.SaleReturnModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByReturnNumber checks if a return number exists for a tenant
func (r *GormSaleReturnRepository) ExistsByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleReturnModel{}).
		Where("tenant_id = ? AND return_number = ?", tenantID, returnNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateReturnNumber generates a unique return number for a tenant
// Format: SR-YYYY-NNNNN (e.g., SR-2026-00001)
func (r *GormSaleReturnRepository) GenerateReturnNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SR-%d-", year)

	var last models.SaleReturnModel
	err := r.db.WithContext(ctx).
		Model(&models.SaleReturnModel{}).
		Where("tenant_id = ? AND return_number LIKE ?", tenantID, prefix+"%").
		Order("return_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.ReturnNumber != "" {
		parts := strings.Split(last.ReturnNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	returnNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByReturnNumber(ctx, tenantID, returnNumber)
	if err != nil {
		return "", err
	}
	if exists {
		// If exists, try incrementing until we find a unique one
		for i := 0; i < 100; i++ {
			nextNum++
			returnNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByReturnNumber(ctx, tenantID, returnNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return returnNumber, nil
}

// saveLines reconciles the sale_return_lines rows with the aggregate's lines
func (r *GormSaleReturnRepository) saveLines(tx *gorm.DB, m *models.SaleReturnModel) error {
	if m.ID == uuid.Nil {
		return nil
	}

	currentLineIDs := make([]uuid.UUID, len(m.Lines))
	for i, line := range m.Lines {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("return_id = ? AND id NOT IN ?", m.ID, currentLineIDs).
			Delete(&models.ReturnLineModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("return_id = ?", m.ID).
			Delete(&models.ReturnLineModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.Lines {
		m.Lines[i].ReturnID = m.ID
		if err := tx.Save(&m.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormSaleReturnRepository) toDomainSlice(ms []models.SaleReturnModel) []returns.SaleReturn {
	result := make([]returns.SaleReturn, len(ms))
	for i := range ms {
		result[i] = *ms[i].ToDomain()
	}
	return result
}

// applyFilter applies filter options to the query
func (r *GormSaleReturnRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleReturnSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSaleReturnRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("return_number ILIKE ? OR customer_name ILIKE ? OR sale_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "sale_id":
			query = query.Where("sale_id = ?", value)
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

// Ensure GormSaleReturnRepository implements SaleReturnRepository
var _ returns.SaleReturnRepository = (*GormSaleReturnRepository)(nil)
