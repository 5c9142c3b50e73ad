package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/transfer"
	"github.com/shopspring/decimal"
)

// CreateTransferRequest opens a transfer draft between two stores
type CreateTransferRequest struct {
	SourceStoreID uuid.UUID           `json:"source_store_id" binding:"required"`
	TargetStoreID uuid.UUID           `json:"target_store_id" binding:"required"`
	Items         []TransferItemInput `json:"items"`
	Remark        string              `json:"remark"`
	CreatedBy     *uuid.UUID          `json:"-"`
}

// TransferItemInput is one planned line in a create or update request
type TransferItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required"`
	ProductCode string          `json:"product_code"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// UpdateTransferRequest updates draft header fields
type UpdateTransferRequest struct {
	Remark *string `json:"remark"`
}

// ReceiveLineInput names an explicit quantity to receive against one line
type ReceiveLineInput struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReceiveRequest credits received quantities. An empty Lines slice means
// "receive all remaining".
type ReceiveRequest struct {
	Lines          []ReceiveLineInput `json:"lines"`
	IdempotencyKey string             `json:"-"`
}

// CancelRequest abandons a draft transfer
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransferListFilter carries list query parameters
type TransferListFilter struct {
	Page          int
	PageSize      int
	OrderBy       string
	OrderDir      string
	Search        string
	Status        *transfer.TransferStatus
	SourceStoreID *uuid.UUID
	TargetStoreID *uuid.UUID
}

// TransferItemResponse represents a transfer line in API responses
type TransferItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ProductCode      string          `json:"product_code"`
	Quantity         decimal.Decimal `json:"quantity"`
	SentQuantity     decimal.Decimal `json:"sent_quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Remaining        decimal.Decimal `json:"remaining"`
	Unit             string          `json:"unit"`
}

// TransferResponse represents a stock transfer in API responses
type TransferResponse struct {
	ID             uuid.UUID              `json:"id"`
	TenantID       uuid.UUID              `json:"tenant_id"`
	TransferNumber string                 `json:"transfer_number"`
	SourceStoreID  uuid.UUID              `json:"source_store_id"`
	TargetStoreID  uuid.UUID              `json:"target_store_id"`
	Items          []TransferItemResponse `json:"items"`
	ItemCount      int                    `json:"item_count"`
	TotalSent      decimal.Decimal        `json:"total_sent"`
	TotalReceived  decimal.Decimal        `json:"total_received"`
	TotalRemaining decimal.Decimal        `json:"total_remaining"`
	Status         string                 `json:"status"`
	Remark         string                 `json:"remark,omitempty"`
	SentAt         *time.Time             `json:"sent_at,omitempty"`
	ReceivedAt     *time.Time             `json:"received_at,omitempty"`
	CancelledAt    *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason   string                 `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Version        int                    `json:"version"`
}

// TransferListItemResponse represents a transfer row in list responses
type TransferListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	TransferNumber string          `json:"transfer_number"`
	SourceStoreID  uuid.UUID       `json:"source_store_id"`
	TargetStoreID  uuid.UUID       `json:"target_store_id"`
	ItemCount      int             `json:"item_count"`
	TotalSent      decimal.Decimal `json:"total_sent"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	Status         string          `json:"status"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
	ReceivedAt     *time.Time      `json:"received_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReceivedLineResponse reports what one receive operation credited
type ReceivedLineResponse struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

// ReceiveResponse is the result of a receive operation
type ReceiveResponse struct {
	Transfer TransferResponse       `json:"transfer"`
	Received []ReceivedLineResponse `json:"received"`
}

// ToTransferResponse converts a stock transfer to its response form
func ToTransferResponse(t *transfer.StockTransfer) TransferResponse {
	items := make([]TransferItemResponse, len(t.Items))
	for i := range t.Items {
		item := &t.Items[i]
		items[i] = TransferItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			ProductCode:      item.ProductCode,
			Quantity:         item.Quantity,
			SentQuantity:     item.SentQuantity,
			ReceivedQuantity: item.ReceivedQuantity,
			Remaining:        item.RemainingQuantity(),
			Unit:             item.Unit,
		}
	}

	return TransferResponse{
		ID:             t.ID,
		TenantID:       t.TenantID,
		TransferNumber: t.TransferNumber,
		SourceStoreID:  t.SourceStoreID,
		TargetStoreID:  t.TargetStoreID,
		Items:          items,
		ItemCount:      t.ItemCount(),
		TotalSent:      t.TotalSentQuantity(),
		TotalReceived:  t.TotalReceivedQuantity(),
		TotalRemaining: t.TotalRemainingQuantity(),
		Status:         string(t.Status),
		Remark:         t.Remark,
		SentAt:         t.SentAt,
		ReceivedAt:     t.ReceivedAt,
		CancelledAt:    t.CancelledAt,
		CancelReason:   t.CancelReason,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Version:        t.Version,
	}
}

// ToTransferListItemResponses converts transfers to list rows
func ToTransferListItemResponses(items []transfer.StockTransfer) []TransferListItemResponse {
	out := make([]TransferListItemResponse, len(items))
	for i := range items {
		t := &items[i]
		out[i] = TransferListItemResponse{
			ID:             t.ID,
			TransferNumber: t.TransferNumber,
			SourceStoreID:  t.SourceStoreID,
			TargetStoreID:  t.TargetStoreID,
			ItemCount:      t.ItemCount(),
			TotalSent:      t.TotalSentQuantity(),
			TotalRemaining: t.TotalRemainingQuantity(),
			Status:         string(t.Status),
			SentAt:         t.SentAt,
			ReceivedAt:     t.ReceivedAt,
			CreatedAt:      t.CreatedAt,
		}
	}
	return out
}

// ToReceivedLineResponses converts receive results to their response form
func ToReceivedLineResponses(infos []transfer.ReceivedLineInfo) []ReceivedLineResponse {
	out := make([]ReceivedLineResponse, len(infos))
	for i, info := range infos {
		out[i] = ReceivedLineResponse{
			ItemID:      info.ItemID,
			ProductID:   info.ProductID,
			ProductName: info.ProductName,
			ProductCode: info.ProductCode,
			Quantity:    info.Quantity,
			Unit:        info.Unit,
		}
	}
	return out
}
