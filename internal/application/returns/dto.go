package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/returns"
	"github.com/shopspring/decimal"
)

// StartDraftRequest opens a return draft against a completed sale
type StartDraftRequest struct {
	SaleID    uuid.UUID  `json:"sale_id" binding:"required"`
	Remark    string     `json:"remark"`
	CreatedBy *uuid.UUID `json:"-"`
}

// LineEntryInput is one upsert entry in an UpdateLinesRequest
type LineEntryInput struct {
	SaleItemID   uuid.UUID       `json:"sale_item_id" binding:"required"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	ReasonCode   string          `json:"reason_code"`
}

// UpdateLinesRequest upserts draft lines keyed by sale line
type UpdateLinesRequest struct {
	Entries []LineEntryInput `json:"entries" binding:"required,min=1"`
}

// SetLineQuantityRequest applies a stepper edit to one line
type SetLineQuantityRequest struct {
	RequestedQty decimal.Decimal `json:"requested_qty"`
}

// UpdateDraftRequest updates draft header fields
type UpdateDraftRequest struct {
	Remark *string `json:"remark"`
}

// AllocationRowInput is one refund row in a finalize request
type AllocationRowInput struct {
	Method      string          `json:"method" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef string          `json:"external_ref"`
}

// FinalizeRequest commits a draft with its refund breakdown
type FinalizeRequest struct {
	Allocation     []AllocationRowInput `json:"allocation" binding:"required,min=1"`
	IdempotencyKey string               `json:"-"`
}

// VoidRequest abandons a draft
type VoidRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SplitAllocationRequest asks for an even split suggestion
type SplitAllocationRequest struct {
	Parts int `json:"parts" binding:"required,min=1"`
}

// ReturnListFilter carries list query parameters
type ReturnListFilter struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	Search     string
	Status     *returns.ReturnStatus
	SaleID     *uuid.UUID
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// ReturnLineResponse represents a draft line in API responses
type ReturnLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	SaleItemID     uuid.UUID       `json:"sale_item_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductCode    string          `json:"product_code"`
	SoldQuantity   decimal.Decimal `json:"sold_quantity"`
	ReturnedBefore decimal.Decimal `json:"returned_before"`
	Remaining      decimal.Decimal `json:"remaining"`
	RequestedQty   decimal.Decimal `json:"requested_qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Discount       decimal.Decimal `json:"discount"`
	RefundAmount   decimal.Decimal `json:"refund_amount"`
	Unit           string          `json:"unit"`
	ReasonCode     string          `json:"reason_code,omitempty"`
}

// AllocationRowResponse represents a refund row in API responses
type AllocationRowResponse struct {
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef string          `json:"external_ref,omitempty"`
}

// ReturnResponse represents a sale return in API responses
type ReturnResponse struct {
	ID           uuid.UUID               `json:"id"`
	TenantID     uuid.UUID               `json:"tenant_id"`
	ReturnNumber string                  `json:"return_number"`
	SaleID       uuid.UUID               `json:"sale_id"`
	SaleNumber   string                  `json:"sale_number"`
	CustomerID   uuid.UUID               `json:"customer_id"`
	CustomerName string                  `json:"customer_name"`
	Lines        []ReturnLineResponse    `json:"lines"`
	LineCount    int                     `json:"line_count"`
	TotalQty     decimal.Decimal         `json:"total_quantity"`
	RefundTotal  decimal.Decimal         `json:"refund_total"`
	Allocation   []AllocationRowResponse `json:"allocation,omitempty"`
	Status       string                  `json:"status"`
	Remark       string                  `json:"remark,omitempty"`
	FinalizedAt  *time.Time              `json:"finalized_at,omitempty"`
	VoidedAt     *time.Time              `json:"voided_at,omitempty"`
	VoidReason   string                  `json:"void_reason,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	Version      int                     `json:"version"`
}

// ReturnListItemResponse represents a sale return row in list responses
type ReturnListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ReturnNumber string          `json:"return_number"`
	SaleID       uuid.UUID       `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	LineCount    int             `json:"line_count"`
	RefundTotal  decimal.Decimal `json:"refund_total"`
	Status       string          `json:"status"`
	FinalizedAt  *time.Time      `json:"finalized_at,omitempty"`
	VoidedAt     *time.Time      `json:"voided_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StatusSummaryResponse reports per-status counts for the returns list header
type StatusSummaryResponse struct {
	Draft     int64 `json:"draft"`
	Finalized int64 `json:"finalized"`
	Void      int64 `json:"void"`
}

// SaleItemResponse represents a sold line in API responses
type SaleItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ProductCode      string          `json:"product_code"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	Remaining        decimal.Decimal `json:"remaining"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineSubtotal     decimal.Decimal `json:"line_subtotal"`
	LineTax          decimal.Decimal `json:"line_tax"`
	LineDiscount     decimal.Decimal `json:"line_discount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Unit             string          `json:"unit"`
}

// SaleResponse represents a captured sale in API responses
type SaleResponse struct {
	ID           uuid.UUID          `json:"id"`
	SaleNumber   string             `json:"sale_number"`
	CustomerID   uuid.UUID          `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	Items        []SaleItemResponse `json:"items"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
	TaxTotal     decimal.Decimal    `json:"tax_total"`
	Total        decimal.Decimal    `json:"total"`
	Status       string             `json:"status"`
	SoldAt       time.Time          `json:"sold_at"`
}

// ToReturnLineResponse converts a domain line to its response form
func ToReturnLineResponse(line *returns.ReturnLine) ReturnLineResponse {
	return ReturnLineResponse{
		ID:             line.ID,
		SaleItemID:     line.SaleItemID,
		ProductID:      line.ProductID,
		ProductName:    line.ProductName,
		ProductCode:    line.ProductCode,
		SoldQuantity:   line.SoldQuantity,
		ReturnedBefore: line.ReturnedBefore,
		Remaining:      line.Remaining(),
		RequestedQty:   line.RequestedQty,
		UnitPrice:      line.UnitPrice,
		Subtotal:       line.Subtotal,
		Tax:            line.Tax,
		Discount:       line.Discount,
		RefundAmount:   line.RefundAmount,
		Unit:           line.Unit,
		ReasonCode:     line.ReasonCode,
	}
}

// ToAllocationRowResponses converts allocation rows to their response form
func ToAllocationRowResponses(rows []returns.AllocationRow) []AllocationRowResponse {
	out := make([]AllocationRowResponse, len(rows))
	for i, row := range rows {
		out[i] = AllocationRowResponse{
			Method:      string(row.Method),
			Amount:      row.Amount,
			ExternalRef: row.ExternalRef,
		}
	}
	return out
}

// ToReturnResponse converts a sale return to its response form
func ToReturnResponse(sr *returns.SaleReturn) ReturnResponse {
	lines := make([]ReturnLineResponse, len(sr.Lines))
	for i := range sr.Lines {
		lines[i] = ToReturnLineResponse(&sr.Lines[i])
	}

	resp := ReturnResponse{
		ID:           sr.ID,
		TenantID:     sr.TenantID,
		ReturnNumber: sr.ReturnNumber,
		SaleID:       sr.SaleID,
		SaleNumber:   sr.SaleNumber,
		CustomerID:   sr.CustomerID,
		CustomerName: sr.CustomerName,
		Lines:        lines,
		LineCount:    sr.LineCount(),
		TotalQty:     sr.TotalRequestedQuantity(),
		RefundTotal:  sr.RefundTotal,
		Status:       string(sr.Status),
		Remark:       sr.Remark,
		FinalizedAt:  sr.FinalizedAt,
		VoidedAt:     sr.VoidedAt,
		VoidReason:   sr.VoidReason,
		CreatedAt:    sr.CreatedAt,
		UpdatedAt:    sr.UpdatedAt,
		Version:      sr.Version,
	}
	if len(sr.Allocation) > 0 {
		resp.Allocation = ToAllocationRowResponses(sr.Allocation)
	}
	return resp
}

// ToReturnListItemResponses converts sale returns to list rows
func ToReturnListItemResponses(items []returns.SaleReturn) []ReturnListItemResponse {
	out := make([]ReturnListItemResponse, len(items))
	for i := range items {
		sr := &items[i]
		out[i] = ReturnListItemResponse{
			ID:           sr.ID,
			ReturnNumber: sr.ReturnNumber,
			SaleID:       sr.SaleID,
			SaleNumber:   sr.SaleNumber,
			CustomerID:   sr.CustomerID,
			CustomerName: sr.CustomerName,
			LineCount:    sr.LineCount(),
			RefundTotal:  sr.RefundTotal,
			Status:       string(sr.Status),
			FinalizedAt:  sr.FinalizedAt,
			VoidedAt:     sr.VoidedAt,
			CreatedAt:    sr.CreatedAt,
			UpdatedAt:    sr.UpdatedAt,
		}
	}
	return out
}

// ToSaleResponse converts a sale to its response form
func ToSaleResponse(sale *returns.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i := range sale.Items {
		item := &sale.Items[i]
		items[i] = SaleItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			ProductCode:      item.ProductCode,
			Quantity:         item.Quantity,
			ReturnedQuantity: item.ReturnedQuantity,
			Remaining:        item.AvailableForReturn(),
			UnitPrice:        item.UnitPrice,
			LineSubtotal:     item.LineSubtotal,
			LineTax:          item.LineTax,
			LineDiscount:     item.LineDiscount,
			LineTotal:        item.LineTotal,
			Unit:             item.Unit,
		}
	}

	return SaleResponse{
		ID:           sale.ID,
		SaleNumber:   sale.SaleNumber,
		CustomerID:   sale.CustomerID,
		CustomerName: sale.CustomerName,
		Items:        items,
		Subtotal:     sale.Subtotal,
		TaxTotal:     sale.TaxTotal,
		Total:        sale.Total,
		Status:       string(sale.Status),
		SoldAt:       sale.SoldAt,
	}
}
