package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/transfer"
	"github.com/shopspring/decimal"
)

// StockTransferModel is the persistence model for the StockTransfer aggregate root.
type StockTransferModel struct {
	TenantAggregateModel
	TransferNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_transfer_tenant_number,priority:2"`
	SourceStoreID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	TargetStoreID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	Items          []TransferItemModel     `gorm:"foreignKey:TransferID;references:ID"`
	Status         transfer.TransferStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark         string                  `gorm:"type:text"`
	SentAt         *time.Time              `gorm:"index"`
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockTransferModel) TableName() string {
	return "stock_transfers"
}

// ToDomain converts the persistence model to a domain StockTransfer entity.
func (m *StockTransferModel) ToDomain() *transfer.StockTransfer {
	st := &transfer.StockTransfer{
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
		TransferNumber: m.TransferNumber,
		SourceStoreID:  m.SourceStoreID,
		TargetStoreID:  m.TargetStoreID,
		Status:         m.Status,
		Remark:         m.Remark,
		SentAt:         m.SentAt,
		ReceivedAt:     m.ReceivedAt,
		CancelledAt:    m.CancelledAt,
		CancelReason:   m.CancelReason,
		Items:          make([]transfer.TransferItem, len(m.Items)),
	}
	for i, item := range m.Items {
		st.Items[i] = *item.ToDomain()
	}
	return st
}

// FromDomain populates the persistence model from a domain StockTransfer entity.
func (m *StockTransferModel) FromDomain(st *transfer.StockTransfer) {
	m.FromDomainTenantAggregateRoot(st.TenantAggregateRoot)
	m.TransferNumber = st.TransferNumber
	m.SourceStoreID = st.SourceStoreID
	m.TargetStoreID = st.TargetStoreID
	m.Status = st.Status
	m.Remark = st.Remark
	m.SentAt = st.SentAt
	m.ReceivedAt = st.ReceivedAt
	m.CancelledAt = st.CancelledAt
	m.CancelReason = st.CancelReason
	m.Items = make([]TransferItemModel, len(st.Items))
	for i, item := range st.Items {
		m.Items[i] = *TransferItemModelFromDomain(&item)
	}
}

// StockTransferModelFromDomain creates a new persistence model from a domain StockTransfer entity.
func StockTransferModelFromDomain(st *transfer.StockTransfer) *StockTransferModel {
	m := &StockTransferModel{}
	m.FromDomain(st)
	return m
}

// TransferItemModel is the persistence model for the TransferItem entity.
type TransferItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransferID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	ProductCode      string          `gorm:"type:varchar(50);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SentQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Unit             string          `gorm:"type:varchar(20);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransferItemModel) TableName() string {
	return "stock_transfer_items"
}

// ToDomain converts the persistence model to a domain TransferItem entity.
func (m *TransferItemModel) ToDomain() *transfer.TransferItem {
	return &transfer.TransferItem{
		ID:               m.ID,
		TransferID:       m.TransferID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		ProductCode:      m.ProductCode,
		Quantity:         m.Quantity,
		SentQuantity:     m.SentQuantity,
		ReceivedQuantity: m.ReceivedQuantity,
		Unit:             m.Unit,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain TransferItem entity.
func (m *TransferItemModel) FromDomain(i *transfer.TransferItem) {
	m.ID = i.ID
	m.TransferID = i.TransferID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.ProductCode = i.ProductCode
	m.Quantity = i.Quantity
	m.SentQuantity = i.SentQuantity
	m.ReceivedQuantity = i.ReceivedQuantity
	m.Unit = i.Unit
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// TransferItemModelFromDomain creates a new persistence model from a domain TransferItem entity.
func TransferItemModelFromDomain(i *transfer.TransferItem) *TransferItemModel {
	m := &TransferItemModel{}
	m.FromDomain(i)
	return m
}
