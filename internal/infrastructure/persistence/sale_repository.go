package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/returns"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"sale_number":   true,
	"customer_name": true,
	"total":         true,
	"sold_at":       true,
	"status":        true,
}

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByIDForTenant finds a sale by ID within a tenant
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*returns.Sale, error) {
	var m models.SaleModel
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

// FindBySaleNumber finds a sale by sale number for a tenant
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*returns.Sale, error) {
	var m models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND sale_number = ?", tenantID, saleNumber).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForTenant finds all sales for a tenant with filtering
func (r *GormSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]returns.Sale, error) {
	var ms []models.SaleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SaleModel{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	sales := make([]returns.Sale, len(ms))
	for i := range ms {
		sales[i] = *ms[i].ToDomain()
	}
	return sales, nil
}

// CountForTenant counts sales for a tenant with optional filters
func (r *GormSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a sale together with its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *returns.Sale) error {
	m := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(m).Error; err != nil {
			return err
		}
		return r.saveItems(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *returns.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.SaleModel{}).
			Where("id = ?", sale.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != sale.Version {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "The sale has been modified by another user")
		}

		sale.Version++
		sale.UpdatedAt = time.Now()
		m := models.SaleModelFromDomain(sale)

		result := tx.Model(&models.SaleModel{}).
			Where("id = ? AND version = ?", sale.ID, currentVersion).
			Updates(map[string]any{
				"customer_id":   m.CustomerID,
				"customer_name": m.CustomerName,
				"register_id":   m.RegisterID,
				"subtotal":      m.Subtotal,
				"tax_total":     m.TaxTotal,
				"total":         m.Total,
				"status":        m.Status,
				"sold_at":       m.SoldAt,
				"version":       m.Version,
				"updated_at":    m.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "The sale has been modified by another user")
		}

		return r.saveItems(tx, m)
	})
}

// saveItems reconciles the sale_items rows with the aggregate's current lines
func (r *GormSaleRepository) saveItems(tx *gorm.DB, m *models.SaleModel) error {
	if m.ID == uuid.Nil {
		return nil
	}

	currentItemIDs := make([]uuid.UUID, len(m.Items))
	for i, item := range m.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("sale_id = ? AND id NOT IN ?", m.ID, currentItemIDs).
			Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("sale_id = ?", m.ID).
			Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.Items {
		m.Items[i].SaleID = m.ID
		if err := tx.Save(&m.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSaleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("sale_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "register_id":
			query = query.Where("register_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("sold_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("sold_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ returns.SaleRepository = (*GormSaleRepository)(nil)
