package returns

import (
	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeSaleReturnCreated      = "sale_return.created"
	EventTypeSaleReturnLinesUpdated = "sale_return.lines_updated"
	EventTypeSaleReturnFinalized    = "sale_return.finalized"
	EventTypeSaleReturnVoided       = "sale_return.voided"
	EventTypeSaleReturnDeleted      = "sale_return.deleted"

	aggregateTypeSaleReturn = "SaleReturn"
)

// ReturnLineSnapshot is a line as it stood when the event was raised
type ReturnLineSnapshot struct {
	SaleItemID   uuid.UUID       `json:"sale_item_id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	ReasonCode   string          `json:"reason_code"`
}

func snapshotLines(lines []ReturnLine) []ReturnLineSnapshot {
	out := make([]ReturnLineSnapshot, 0, len(lines))
	for _, line := range lines {
		out = append(out, ReturnLineSnapshot{
			SaleItemID:   line.SaleItemID,
			ProductCode:  line.ProductCode,
			ProductName:  line.ProductName,
			RequestedQty: line.RequestedQty,
			RefundAmount: line.RefundAmount,
			ReasonCode:   line.ReasonCode,
		})
	}
	return out
}

// SaleReturnCreatedEvent is raised when a return draft is opened
type SaleReturnCreatedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string    `json:"return_number"`
	SaleID       uuid.UUID `json:"sale_id"`
	SaleNumber   string    `json:"sale_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
}

// NewSaleReturnCreatedEvent creates a SaleReturnCreatedEvent
func NewSaleReturnCreatedEvent(sr *SaleReturn) *SaleReturnCreatedEvent {
	return &SaleReturnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnCreated, aggregateTypeSaleReturn, sr.ID, sr.TenantID),
		ReturnNumber:    sr.ReturnNumber,
		SaleID:          sr.SaleID,
		SaleNumber:      sr.SaleNumber,
		CustomerID:      sr.CustomerID,
	}
}

// SaleReturnLinesUpdatedEvent is raised when a draft's line set changes
type SaleReturnLinesUpdatedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string               `json:"return_number"`
	Lines        []ReturnLineSnapshot `json:"lines"`
	RefundTotal  decimal.Decimal      `json:"refund_total"`
}

// NewSaleReturnLinesUpdatedEvent creates a SaleReturnLinesUpdatedEvent
func NewSaleReturnLinesUpdatedEvent(sr *SaleReturn) *SaleReturnLinesUpdatedEvent {
	return &SaleReturnLinesUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnLinesUpdated, aggregateTypeSaleReturn, sr.ID, sr.TenantID),
		ReturnNumber:    sr.ReturnNumber,
		Lines:           snapshotLines(sr.Lines),
		RefundTotal:     sr.RefundTotal,
	}
}

// SaleReturnFinalizedEvent is raised when a return is committed. It carries
// the full line and allocation snapshot so audit subscribers never read back
// the aggregate.
type SaleReturnFinalizedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string               `json:"return_number"`
	SaleID       uuid.UUID            `json:"sale_id"`
	SaleNumber   string               `json:"sale_number"`
	Lines        []ReturnLineSnapshot `json:"lines"`
	Allocation   []AllocationRow      `json:"allocation"`
	RefundTotal  decimal.Decimal      `json:"refund_total"`
}

// NewSaleReturnFinalizedEvent creates a SaleReturnFinalizedEvent
func NewSaleReturnFinalizedEvent(sr *SaleReturn) *SaleReturnFinalizedEvent {
	allocation := make([]AllocationRow, len(sr.Allocation))
	copy(allocation, sr.Allocation)
	return &SaleReturnFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnFinalized, aggregateTypeSaleReturn, sr.ID, sr.TenantID),
		ReturnNumber:    sr.ReturnNumber,
		SaleID:          sr.SaleID,
		SaleNumber:      sr.SaleNumber,
		Lines:           snapshotLines(sr.Lines),
		Allocation:      allocation,
		RefundTotal:     sr.RefundTotal,
	}
}

// SaleReturnVoidedEvent is raised when a draft is abandoned
type SaleReturnVoidedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string `json:"return_number"`
	Reason       string `json:"reason"`
}

// NewSaleReturnVoidedEvent creates a SaleReturnVoidedEvent
func NewSaleReturnVoidedEvent(sr *SaleReturn) *SaleReturnVoidedEvent {
	return &SaleReturnVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnVoided, aggregateTypeSaleReturn, sr.ID, sr.TenantID),
		ReturnNumber:    sr.ReturnNumber,
		Reason:          sr.VoidReason,
	}
}

// SaleReturnDeletedEvent is raised when a draft is hard-deleted
type SaleReturnDeletedEvent struct {
	shared.BaseDomainEvent
	ReturnNumber string `json:"return_number"`
}

// NewSaleReturnDeletedEvent creates a SaleReturnDeletedEvent
func NewSaleReturnDeletedEvent(sr *SaleReturn) *SaleReturnDeletedEvent {
	return &SaleReturnDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnDeleted, aggregateTypeSaleReturn, sr.ID, sr.TenantID),
		ReturnNumber:    sr.ReturnNumber,
	}
}
