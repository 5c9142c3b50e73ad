package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/returns"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	TenantAggregateModel
	SaleNumber   string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_tenant_number,priority:2"`
	CustomerID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerName string             `gorm:"type:varchar(200);not null"`
	RegisterID   *uuid.UUID         `gorm:"type:uuid;index"`
	Items        []SaleItemModel    `gorm:"foreignKey:SaleID;references:ID"`
	Subtotal     decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal     decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Total        decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Status       returns.SaleStatus `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	SoldAt       time.Time          `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *returns.Sale {
	s := &returns.Sale{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		SaleNumber:   m.SaleNumber,
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		RegisterID:   m.RegisterID,
		Subtotal:     m.Subtotal,
		TaxTotal:     m.TaxTotal,
		Total:        m.Total,
		Status:       m.Status,
		SoldAt:       m.SoldAt,
		Items:        make([]returns.SaleItem, len(m.Items)),
	}
	for i, item := range m.Items {
		s.Items[i] = *item.ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *returns.Sale) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.SaleNumber = s.SaleNumber
	m.CustomerID = s.CustomerID
	m.CustomerName = s.CustomerName
	m.RegisterID = s.RegisterID
	m.Subtotal = s.Subtotal
	m.TaxTotal = s.TaxTotal
	m.Total = s.Total
	m.Status = s.Status
	m.SoldAt = s.SoldAt
	m.Items = make([]SaleItemModel, len(s.Items))
	for i, item := range s.Items {
		m.Items[i] = *SaleItemModelFromDomain(&item)
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *returns.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is the persistence model for the SaleItem entity.
type SaleItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	ProductCode      string          `gorm:"type:varchar(50);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReturnedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineSubtotal     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTax          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineDiscount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit             string          `gorm:"type:varchar(20);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem entity.
func (m *SaleItemModel) ToDomain() *returns.SaleItem {
	return &returns.SaleItem{
		ID:               m.ID,
		SaleID:           m.SaleID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		ProductCode:      m.ProductCode,
		Quantity:         m.Quantity,
		ReturnedQuantity: m.ReturnedQuantity,
		UnitPrice:        m.UnitPrice,
		LineSubtotal:     m.LineSubtotal,
		LineTax:          m.LineTax,
		LineDiscount:     m.LineDiscount,
		LineTotal:        m.LineTotal,
		Unit:             m.Unit,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain SaleItem entity.
func (m *SaleItemModel) FromDomain(i *returns.SaleItem) {
	m.ID = i.ID
	m.SaleID = i.SaleID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.ProductCode = i.ProductCode
	m.Quantity = i.Quantity
	m.ReturnedQuantity = i.ReturnedQuantity
	m.UnitPrice = i.UnitPrice
	m.LineSubtotal = i.LineSubtotal
	m.LineTax = i.LineTax
	m.LineDiscount = i.LineDiscount
	m.LineTotal = i.LineTotal
	m.Unit = i.Unit
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// SaleItemModelFromDomain creates a new persistence model from a domain SaleItem entity.
func SaleItemModelFromDomain(i *returns.SaleItem) *SaleItemModel {
	m := &SaleItemModel{}
	m.FromDomain(i)
	return m
}

// SaleReturnModel is the persistence model for the SaleReturn aggregate root.
// The finalized allocation breakdown is stored as a JSONB column because rows
// are only written once, at finalize, and always read back whole.
type SaleReturnModel struct {
	TenantAggregateModel
	ReturnNumber string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_return_tenant_number,priority:2"`
	SaleID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	SaleNumber   string                 `gorm:"type:varchar(50);not null"`
	CustomerID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	CustomerName string                 `gorm:"type:varchar(200);not null"`
	Lines        []ReturnLineModel      `gorm:"foreignKey:ReturnID;references:ID"`
	RefundTotal  decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Status       returns.ReturnStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Allocation   returns.AllocationRows `gorm:"type:jsonb;default:'[]'"`
	Remark       string                 `gorm:"type:text"`
	FinalizedAt  *time.Time             `gorm:"index"`
	VoidedAt     *time.Time
	VoidReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SaleReturnModel) TableName() string {
	return "sale_returns"
}

// ToDomain converts the persistence model to a domain SaleReturn entity.
func (m *SaleReturnModel) ToDomain() *returns.SaleReturn {
	sr := &returns.SaleReturn{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		ReturnNumber: m.ReturnNumber,
		SaleID:       m.SaleID,
		SaleNumber:   m.SaleNumber,
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		RefundTotal:  m.RefundTotal,
		Status:       m.Status,
		Allocation:   []returns.AllocationRow(m.Allocation),
		Remark:       m.Remark,
		FinalizedAt:  m.FinalizedAt,
		VoidedAt:     m.VoidedAt,
		VoidReason:   m.VoidReason,
		Lines:        make([]returns.ReturnLine, len(m.Lines)),
	}
	for i, line := range m.Lines {
		sr.Lines[i] = *line.ToDomain()
	}
	return sr
}

// FromDomain populates the persistence model from a domain SaleReturn entity.
func (m *SaleReturnModel) FromDomain(sr *returns.SaleReturn) {
	m.FromDomainTenantAggregateRoot(sr.TenantAggregateRoot)
	m.ReturnNumber = sr.ReturnNumber
	m.SaleID = sr.SaleID
	m.SaleNumber = sr.SaleNumber
	m.CustomerID = sr.CustomerID
	m.CustomerName = sr.CustomerName
	m.RefundTotal = sr.RefundTotal
	m.Status = sr.Status
	m.Allocation = returns.AllocationRows(sr.Allocation)
	m.Remark = sr.Remark
	m.FinalizedAt = sr.FinalizedAt
	m.VoidedAt = sr.VoidedAt
	m.VoidReason = sr.VoidReason
	m.Lines = make([]ReturnLineModel, len(sr.Lines))
	for i, line := range sr.Lines {
		m.Lines[i] = *ReturnLineModelFromDomain(&line)
	}
}

// SaleReturnModelFromDomain creates a new persistence model from a domain SaleReturn entity.
func SaleReturnModelFromDomain(sr *returns.SaleReturn) *SaleReturnModel {
	m := &SaleReturnModel{}
	m.FromDomain(sr)
	return m
}

// ReturnLineModel is the persistence model for the ReturnLine entity.
// The captured sold-line decomposition lives in unexported domain fields, so
// it is flattened into dedicated columns here and restored via Rehydrate.
type ReturnLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleItemID     uuid.UUID       `gorm:"type:uuid;not null"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	ProductCode    string          `gorm:"type:varchar(50);not null"`
	SoldQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReturnedBefore decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RequestedQty   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RefundAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SoldSubtotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SoldTax        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SoldDiscount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit           string          `gorm:"type:varchar(20);not null"`
	ReasonCode     string          `gorm:"type:varchar(50)"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnLineModel) TableName() string {
	return "sale_return_lines"
}

// ToDomain converts the persistence model to a domain ReturnLine entity.
func (m *ReturnLineModel) ToDomain() *returns.ReturnLine {
	line := &returns.ReturnLine{
		ID:             m.ID,
		ReturnID:       m.ReturnID,
		SaleItemID:     m.SaleItemID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		ProductCode:    m.ProductCode,
		SoldQuantity:   m.SoldQuantity,
		ReturnedBefore: m.ReturnedBefore,
		RequestedQty:   m.RequestedQty,
		UnitPrice:      m.UnitPrice,
		Subtotal:       m.Subtotal,
		Tax:            m.Tax,
		Discount:       m.Discount,
		RefundAmount:   m.RefundAmount,
		Unit:           m.Unit,
		ReasonCode:     m.ReasonCode,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	line.Rehydrate(m.SoldSubtotal, m.SoldTax, m.SoldDiscount)
	return line
}

// FromDomain populates the persistence model from a domain ReturnLine entity.
func (m *ReturnLineModel) FromDomain(l *returns.ReturnLine) {
	m.ID = l.ID
	m.ReturnID = l.ReturnID
	m.SaleItemID = l.SaleItemID
	m.ProductID = l.ProductID
	m.ProductName = l.ProductName
	m.ProductCode = l.ProductCode
	m.SoldQuantity = l.SoldQuantity
	m.ReturnedBefore = l.ReturnedBefore
	m.RequestedQty = l.RequestedQty
	m.UnitPrice = l.UnitPrice
	m.Subtotal = l.Subtotal
	m.Tax = l.Tax
	m.Discount = l.Discount
	m.RefundAmount = l.RefundAmount
	m.SoldSubtotal = l.SoldSubtotal()
	m.SoldTax = l.SoldTax()
	m.SoldDiscount = l.SoldDiscount()
	m.Unit = l.Unit
	m.ReasonCode = l.ReasonCode
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// ReturnLineModelFromDomain creates a new persistence model from a domain ReturnLine entity.
func ReturnLineModelFromDomain(l *returns.ReturnLine) *ReturnLineModel {
	m := &ReturnLineModel{}
	m.FromDomain(l)
	return m
}
