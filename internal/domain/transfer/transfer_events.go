package transfer

import (
	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeTransferCreated   = "stock_transfer.created"
	EventTypeTransferSent      = "stock_transfer.sent"
	EventTypeTransferReceived  = "stock_transfer.received"
	EventTypeTransferCancelled = "stock_transfer.cancelled"
	EventTypeTransferDeleted   = "stock_transfer.deleted"

	aggregateTypeStockTransfer = "StockTransfer"
)

// TransferCreatedEvent is raised when a transfer draft is opened
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string    `json:"transfer_number"`
	SourceStoreID  uuid.UUID `json:"source_store_id"`
	TargetStoreID  uuid.UUID `json:"target_store_id"`
}

// NewTransferCreatedEvent creates a TransferCreatedEvent
func NewTransferCreatedEvent(t *StockTransfer) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCreated, aggregateTypeStockTransfer, t.ID, t.TenantID),
		TransferNumber:  t.TransferNumber,
		SourceStoreID:   t.SourceStoreID,
		TargetStoreID:   t.TargetStoreID,
	}
}

// TransferSentEvent is raised when the transfer leaves the source store
type TransferSentEvent struct {
	shared.BaseDomainEvent
	TransferNumber string          `json:"transfer_number"`
	SourceStoreID  uuid.UUID       `json:"source_store_id"`
	TargetStoreID  uuid.UUID       `json:"target_store_id"`
	TotalSent      decimal.Decimal `json:"total_sent"`
}

// NewTransferSentEvent creates a TransferSentEvent
func NewTransferSentEvent(t *StockTransfer) *TransferSentEvent {
	return &TransferSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferSent, aggregateTypeStockTransfer, t.ID, t.TenantID),
		TransferNumber:  t.TransferNumber,
		SourceStoreID:   t.SourceStoreID,
		TargetStoreID:   t.TargetStoreID,
		TotalSent:       t.TotalSentQuantity(),
	}
}

// TransferReceivedEvent is raised on every receive operation, full or partial
type TransferReceivedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string             `json:"transfer_number"`
	Status         TransferStatus     `json:"status"`
	Lines          []ReceivedLineInfo `json:"lines"`
	TotalRemaining decimal.Decimal    `json:"total_remaining"`
}

// NewTransferReceivedEvent creates a TransferReceivedEvent
func NewTransferReceivedEvent(t *StockTransfer, lines []ReceivedLineInfo) *TransferReceivedEvent {
	return &TransferReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferReceived, aggregateTypeStockTransfer, t.ID, t.TenantID),
		TransferNumber:  t.TransferNumber,
		Status:          t.Status,
		Lines:           lines,
		TotalRemaining:  t.TotalRemainingQuantity(),
	}
}

// TransferCancelledEvent is raised when a draft transfer is abandoned
type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
	Reason         string `json:"reason"`
}

// NewTransferCancelledEvent creates a TransferCancelledEvent
func NewTransferCancelledEvent(t *StockTransfer) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCancelled, aggregateTypeStockTransfer, t.ID, t.TenantID),
		TransferNumber:  t.TransferNumber,
		Reason:          t.CancelReason,
	}
}

// TransferDeletedEvent is raised when a draft transfer is hard-deleted
type TransferDeletedEvent struct {
	shared.BaseDomainEvent
	TransferNumber string `json:"transfer_number"`
}

// NewTransferDeletedEvent creates a TransferDeletedEvent
func NewTransferDeletedEvent(t *StockTransfer) *TransferDeletedEvent {
	return &TransferDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferDeleted, aggregateTypeStockTransfer, t.ID, t.TenantID),
		TransferNumber:  t.TransferNumber,
	}
}
