package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	transferapp "github.com/posadmin/backend/internal/application/transfer"
	"github.com/posadmin/backend/internal/domain/transfer"
	"github.com/shopspring/decimal"
)

// StockTransferHandler handles stock transfer-related API endpoints
type StockTransferHandler struct {
	BaseHandler
	transferService *transferapp.TransferService
}

// NewStockTransferHandler creates a new StockTransferHandler
func NewStockTransferHandler(transferService *transferapp.TransferService) *StockTransferHandler {
	return &StockTransferHandler{
		transferService: transferService,
	}
}

// CreateTransferRequest represents a request to create a transfer draft
//
//	@Description	Request body for creating a stock transfer between stores
type CreateTransferRequest struct {
	SourceStoreID string                 `json:"source_store_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	TargetStoreID string                 `json:"target_store_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Items         []TransferItemRequest  `json:"items"`
	Remark        string                 `json:"remark" example:"Weekly restock"`
}

// TransferItemRequest represents one planned line in a transfer request
//
//	@Description	Planned transfer line
type TransferItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440003"`
	ProductName string  `json:"product_name" binding:"required" example:"Oat Milk 1L"`
	ProductCode string  `json:"product_code" example:"SKU-014"`
	Unit        string  `json:"unit" example:"carton"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0" example:"24"`
}

// UpdateTransferRequest represents a transfer header update
//
//	@Description	Request body for updating transfer header fields (draft only)
type UpdateTransferRequest struct {
	Remark *string `json:"remark" example:"Updated remark"`
}

// UpdateTransferItemsRequest represents a bulk item replacement on a draft
//
//	@Description	Request body for replacing the planned lines of a draft transfer
type UpdateTransferItemsRequest struct {
	Items []TransferItemRequest `json:"items" binding:"required,min=1"`
}

// ReceiveLineRequest names an explicit quantity to receive against one line
//
//	@Description	One received-quantity entry keyed by transfer item
type ReceiveLineRequest struct {
	ItemID   string  `json:"item_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440030"`
	Quantity float64 `json:"quantity" binding:"gte=0" example:"12"`
}

// ReceiveTransferRequest represents a receive operation
//
//	@Description	Request body for receiving goods. An empty lines array receives all remaining.
type ReceiveTransferRequest struct {
	Lines []ReceiveLineRequest `json:"lines"`
}

// CancelTransferRequest represents a request to cancel a transfer
//
//	@Description	Request body for cancelling a draft transfer
type CancelTransferRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Source store out of stock"`
}

// TransferItemResponse represents a transfer line in API responses
//
//	@Description	Stock transfer item response
type TransferItemResponse struct {
	ID               string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440030"`
	ProductID        string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	ProductName      string  `json:"product_name" example:"Oat Milk 1L"`
	ProductCode      string  `json:"product_code" example:"SKU-014"`
	Quantity         float64 `json:"quantity" example:"24"`
	SentQuantity     float64 `json:"sent_quantity" example:"24"`
	ReceivedQuantity float64 `json:"received_quantity" example:"12"`
	Remaining        float64 `json:"remaining" example:"12"`
	Unit             string  `json:"unit" example:"carton"`
}

// StockTransferResponse represents a stock transfer in API responses
//
//	@Description	Stock transfer response
type StockTransferResponse struct {
	ID             string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440010"`
	TenantID       string                 `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TransferNumber string                 `json:"transfer_number" example:"TR-2026-00001"`
	SourceStoreID  string                 `json:"source_store_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TargetStoreID  string                 `json:"target_store_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Items          []TransferItemResponse `json:"items"`
	ItemCount      int                    `json:"item_count" example:"2"`
	TotalSent      float64                `json:"total_sent" example:"36"`
	TotalReceived  float64                `json:"total_received" example:"12"`
	TotalRemaining float64                `json:"total_remaining" example:"24"`
	Status         string                 `json:"status" example:"IN_TRANSIT"`
	Remark         string                 `json:"remark,omitempty" example:"Weekly restock"`
	SentAt         *time.Time             `json:"sent_at,omitempty"`
	ReceivedAt     *time.Time             `json:"received_at,omitempty"`
	CancelledAt    *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason   string                 `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Version        int                    `json:"version" example:"1"`
}

// StockTransferListResponse represents a stock transfer in list responses
//
//	@Description	Stock transfer list item response
type StockTransferListResponse struct {
	ID             string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440010"`
	TransferNumber string     `json:"transfer_number" example:"TR-2026-00001"`
	SourceStoreID  string     `json:"source_store_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TargetStoreID  string     `json:"target_store_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	ItemCount      int        `json:"item_count" example:"2"`
	TotalSent      float64    `json:"total_sent" example:"36"`
	TotalRemaining float64    `json:"total_remaining" example:"24"`
	Status         string     `json:"status" example:"PARTIAL_RECEIVED"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ReceivedLineResponse reports what one receive operation credited
//
//	@Description	Received line response
type ReceivedLineResponse struct {
	ItemID      string  `json:"item_id" example:"550e8400-e29b-41d4-a716-446655440030"`
	ProductID   string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	ProductName string  `json:"product_name" example:"Oat Milk 1L"`
	ProductCode string  `json:"product_code" example:"SKU-014"`
	Quantity    float64 `json:"quantity" example:"12"`
	Unit        string  `json:"unit" example:"carton"`
}

// ReceiveTransferResponse is the result of a receive operation
//
//	@Description	Receive operation response
type ReceiveTransferResponse struct {
	Transfer StockTransferResponse  `json:"transfer"`
	Received []ReceivedLineResponse `json:"received"`
}

// Create godoc
//
//	@ID				createStockTransfer
//	@Summary		Create a stock transfer
//	@Description	Create a stock transfer draft between two stores
//	@Tags			stock-transfers
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string					false	"Tenant ID (optional for dev)"
//	@Param			request		body		CreateTransferRequest	true	"Transfer creation request"
//	@Success		201			{object}	APIResponse[StockTransferResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers [post]
func (h *StockTransferHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sourceStoreID, err := uuid.Parse(req.SourceStoreID)
	if err != nil {
		h.BadRequest(c, "Invalid source store ID format")
		return
	}
	targetStoreID, err := uuid.Parse(req.TargetStoreID)
	if err != nil {
		h.BadRequest(c, "Invalid target store ID format")
		return
	}

	userID, _ := getUserID(c)

	appReq := transferapp.CreateTransferRequest{
		SourceStoreID: sourceStoreID,
		TargetStoreID: targetStoreID,
		Remark:        req.Remark,
	}
	if userID != uuid.Nil {
		appReq.CreatedBy = &userID
	}

	items, err := toTransferItemInputs(req.Items)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	appReq.Items = items

	st, err := h.transferService.Create(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toStockTransferResponse(st))
}

// GetByID godoc
//
//	@ID				getStockTransferById
//	@Summary		Get stock transfer by ID
//	@Description	Retrieve a stock transfer by its ID
//	@Tags			stock-transfers
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Stock Transfer ID"	format(uuid)
//	@Success		200			{object}	APIResponse[StockTransferResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id} [get]
func (h *StockTransferHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	st, err := h.transferService.GetByID(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferResponse(st))
}

// GetByTransferNumber godoc
//
//	@ID				getStockTransferByNumber
//	@Summary		Get stock transfer by transfer number
//	@Description	Retrieve a stock transfer by its transfer number
//	@Tags			stock-transfers
//	@Produce		json
//	@Param			X-Tenant-ID		header		string	false	"Tenant ID (optional for dev)"
//	@Param			transfer_number	path		string	true	"Transfer Number"	example:"TR-2026-00001"
//	@Success		200				{object}	APIResponse[StockTransferResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		401				{object}	dto.ErrorResponse
//	@Failure		404				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/number/{transfer_number} [get]
func (h *StockTransferHandler) GetByTransferNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferNumber := c.Param("transfer_number")
	if transferNumber == "" {
		h.BadRequest(c, "Transfer number is required")
		return
	}

	st, err := h.transferService.GetByTransferNumber(c.Request.Context(), tenantID, transferNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferResponse(st))
}

// List godoc
//
//	@ID				listStockTransfers
//	@Summary		List stock transfers
//	@Description	Retrieve a paginated list of stock transfers with optional filtering
//	@Tags			stock-transfers
//	@Produce		json
//	@Param			X-Tenant-ID		header		string	false	"Tenant ID (optional for dev)"
//	@Param			search			query		string	false	"Search term (transfer number)"
//	@Param			source_store_id	query		string	false	"Source Store ID"	format(uuid)
//	@Param			target_store_id	query		string	false	"Target Store ID"	format(uuid)
//	@Param			status			query		string	false	"Transfer status"	Enums(DRAFT, IN_TRANSIT, PARTIAL_RECEIVED, RECEIVED, CANCELLED)
//	@Param			page			query		int		false	"Page number"		default(1)
//	@Param			page_size		query		int		false	"Page size"			default(20)	maximum(100)
//	@Param			order_by		query		string	false	"Order by field"	default(created_at)
//	@Param			order_dir		query		string	false	"Order direction"	Enums(asc, desc)	default(desc)
//	@Success		200				{object}	APIResponse[[]StockTransferListResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		401				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers [get]
func (h *StockTransferHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, err := parseTransferListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.transferService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toStockTransferListResponses(items), total, filter.Page, filter.PageSize)
}

// ListInbound godoc
//
//	@ID				listInboundStockTransfers
//	@Summary		List inbound transfers for a store
//	@Description	Retrieve transfers headed to one store that still have goods in flight
//	@Tags			stock-transfers
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			store_id	path		string	true	"Target Store ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]StockTransferListResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/inbound/{store_id} [get]
func (h *StockTransferHandler) ListInbound(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	storeID, err := uuid.Parse(c.Param("store_id"))
	if err != nil {
		h.BadRequest(c, "Invalid store ID format")
		return
	}

	filter, err := parseTransferListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := h.transferService.ListInbound(c.Request.Context(), tenantID, storeID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferListResponses(items))
}

// Update godoc
//
//	@ID				updateStockTransfer
//	@Summary		Update transfer header
//	@Description	Update transfer header fields (only allowed in DRAFT status)
//	@Tags			stock-transfers
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string					false	"Tenant ID (optional for dev)"
//	@Param			id			path		string					true	"Stock Transfer ID"	format(uuid)
//	@Param			request		body		UpdateTransferRequest	true	"Transfer update request"
//	@Success		200			{object}	APIResponse[StockTransferResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id} [put]
func (h *StockTransferHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	var req UpdateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	st, err := h.transferService.Update(c.Request.Context(), tenantID, transferID, transferapp.UpdateTransferRequest{
		Remark: req.Remark,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferResponse(st))
}

// UpdateItems godoc
//
//	@ID				updateStockTransferItems
//	@Summary		Replace planned lines
//	@Description	Replace the planned lines of a draft transfer (only allowed in DRAFT status)
//	@Tags			stock-transfers
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string						false	"Tenant ID (optional for dev)"
//	@Param			id			path		string						true	"Stock Transfer ID"	format(uuid)
//	@Param			request		body		UpdateTransferItemsRequest	true	"Item replacement request"
//	@Success		200			{object}	APIResponse[StockTransferResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id}/items [put]
func (h *StockTransferHandler) UpdateItems(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	var req UpdateTransferItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := toTransferItemInputs(req.Items)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	st, err := h.transferService.UpdateItems(c.Request.Context(), tenantID, transferID, items)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferResponse(st))
}

// RemoveItem godoc
//
//	@ID				removeStockTransferItem
//	@Summary		Remove a planned line
//	@Description	Remove one planned line from a draft transfer (only allowed in DRAFT status)
//	@Tags			stock-transfers
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Stock Transfer ID"	format(uuid)
//	@Param			item_id		path		string	true	"Transfer Item ID"	format(uuid)
//	@Success		200			{object}	APIResponse[StockTransferResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id}/items/{item_id} [delete]
func (h *StockTransferHandler) RemoveItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	st, err := h.transferService.RemoveItem(c.Request.Context(), tenantID, transferID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferResponse(st))
}

// Send godoc
//
//	@ID				sendStockTransfer
//	@Summary		Send a transfer
//	@Description	Dispatch a draft transfer, locking its planned quantities as sent
//	@Tags			stock-transfers
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Stock Transfer ID"	format(uuid)
//	@Success		200			{object}	APIResponse[StockTransferResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id}/send [post]
func (h *StockTransferHandler) Send(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	st, err := h.transferService.Send(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferResponse(st))
}

// Receive godoc
//
//	@ID				receiveStockTransfer
//	@Summary		Receive transfer goods
//	@Description	Credit received quantities against a transfer in flight. An empty lines array receives all remaining.
//	@Tags			stock-transfers
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID			header		string					false	"Tenant ID (optional for dev)"
//	@Param			X-Idempotency-Key	header		string					false	"Idempotency key for safe retries"
//	@Param			id					path		string					true	"Stock Transfer ID"	format(uuid)
//	@Param			request				body		ReceiveTransferRequest	true	"Receive request"
//	@Success		200					{object}	APIResponse[ReceiveTransferResponse]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		401					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Failure		409					{object}	dto.ErrorResponse
//	@Failure		422					{object}	dto.ErrorResponse
//	@Failure		500					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id}/receive [post]
func (h *StockTransferHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	var req ReceiveTransferRequest
	// Allow empty body: receive all remaining
	_ = c.ShouldBindJSON(&req)

	appReq := transferapp.ReceiveRequest{
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}
	for _, line := range req.Lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			h.BadRequest(c, "Invalid item ID format")
			return
		}
		appReq.Lines = append(appReq.Lines, transferapp.ReceiveLineInput{
			ItemID:   itemID,
			Quantity: decimal.NewFromFloat(line.Quantity),
		})
	}

	result, err := h.transferService.Receive(c.Request.Context(), tenantID, transferID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toReceiveTransferResponse(result))
}

// Cancel godoc
//
//	@ID				cancelStockTransfer
//	@Summary		Cancel a transfer
//	@Description	Cancel a transfer with a reason (only allowed before any goods are received)
//	@Tags			stock-transfers
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string					false	"Tenant ID (optional for dev)"
//	@Param			id			path		string					true	"Stock Transfer ID"	format(uuid)
//	@Param			request		body		CancelTransferRequest	true	"Cancel request"
//	@Success		200			{object}	APIResponse[StockTransferResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id}/cancel [post]
func (h *StockTransferHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	var req CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	st, err := h.transferService.Cancel(c.Request.Context(), tenantID, transferID, transferapp.CancelRequest{
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStockTransferResponse(st))
}

// Delete godoc
//
//	@ID				deleteStockTransfer
//	@Summary		Delete a stock transfer
//	@Description	Delete a stock transfer (only allowed in DRAFT status)
//	@Tags			stock-transfers
//	@Produce		json
//	@Param			X-Tenant-ID	header	string	false	"Tenant ID (optional for dev)"
//	@Param			id			path	string	true	"Stock Transfer ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/transfers/{id} [delete]
func (h *StockTransferHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	if err := h.transferService.Delete(c.Request.Context(), tenantID, transferID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// parseTransferListFilter extracts list query parameters
func parseTransferListFilter(c *gin.Context) (transferapp.TransferListFilter, error) {
	filter := transferapp.TransferListFilter{
		Page:     1,
		PageSize: 20,
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Search:   c.Query("search"),
	}

	if page, err := parsePositiveInt(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := parsePositiveInt(c.Query("page_size")); err == nil && pageSize > 0 {
		filter.PageSize = min(pageSize, 100)
	}

	if status := c.Query("status"); status != "" {
		s := transfer.TransferStatus(status)
		filter.Status = &s
	}

	if sourceStoreID := c.Query("source_store_id"); sourceStoreID != "" {
		id, err := uuid.Parse(sourceStoreID)
		if err != nil {
			return filter, err
		}
		filter.SourceStoreID = &id
	}

	if targetStoreID := c.Query("target_store_id"); targetStoreID != "" {
		id, err := uuid.Parse(targetStoreID)
		if err != nil {
			return filter, err
		}
		filter.TargetStoreID = &id
	}

	return filter, nil
}

// toTransferItemInputs converts handler item requests to application inputs
func toTransferItemInputs(items []TransferItemRequest) ([]transferapp.TransferItemInput, error) {
	out := make([]transferapp.TransferItemInput, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, transferapp.TransferItemInput{
			ProductID:   productID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Unit:        item.Unit,
			Quantity:    decimal.NewFromFloat(item.Quantity),
		})
	}
	return out, nil
}

// toStockTransferResponse converts application response to handler response
func toStockTransferResponse(st *transferapp.TransferResponse) StockTransferResponse {
	items := make([]TransferItemResponse, len(st.Items))
	for i, item := range st.Items {
		items[i] = TransferItemResponse{
			ID:               item.ID.String(),
			ProductID:        item.ProductID.String(),
			ProductName:      item.ProductName,
			ProductCode:      item.ProductCode,
			Quantity:         item.Quantity.InexactFloat64(),
			SentQuantity:     item.SentQuantity.InexactFloat64(),
			ReceivedQuantity: item.ReceivedQuantity.InexactFloat64(),
			Remaining:        item.Remaining.InexactFloat64(),
			Unit:             item.Unit,
		}
	}

	return StockTransferResponse{
		ID:             st.ID.String(),
		TenantID:       st.TenantID.String(),
		TransferNumber: st.TransferNumber,
		SourceStoreID:  st.SourceStoreID.String(),
		TargetStoreID:  st.TargetStoreID.String(),
		Items:          items,
		ItemCount:      st.ItemCount,
		TotalSent:      st.TotalSent.InexactFloat64(),
		TotalReceived:  st.TotalReceived.InexactFloat64(),
		TotalRemaining: st.TotalRemaining.InexactFloat64(),
		Status:         st.Status,
		Remark:         st.Remark,
		SentAt:         st.SentAt,
		ReceivedAt:     st.ReceivedAt,
		CancelledAt:    st.CancelledAt,
		CancelReason:   st.CancelReason,
		CreatedAt:      st.CreatedAt,
		UpdatedAt:      st.UpdatedAt,
		Version:        st.Version,
	}
}

// toStockTransferListResponses converts application list items to handler responses
func toStockTransferListResponses(items []transferapp.TransferListItemResponse) []StockTransferListResponse {
	out := make([]StockTransferListResponse, len(items))
	for i, item := range items {
		out[i] = StockTransferListResponse{
			ID:             item.ID.String(),
			TransferNumber: item.TransferNumber,
			SourceStoreID:  item.SourceStoreID.String(),
			TargetStoreID:  item.TargetStoreID.String(),
			ItemCount:      item.ItemCount,
			TotalSent:      item.TotalSent.InexactFloat64(),
			TotalRemaining: item.TotalRemaining.InexactFloat64(),
			Status:         item.Status,
			SentAt:         item.SentAt,
			ReceivedAt:     item.ReceivedAt,
			CreatedAt:      item.CreatedAt,
		}
	}
	return out
}

// toReceiveTransferResponse converts a receive result to handler response
func toReceiveTransferResponse(result *transferapp.ReceiveResponse) ReceiveTransferResponse {
	received := make([]ReceivedLineResponse, len(result.Received))
	for i, line := range result.Received {
		received[i] = ReceivedLineResponse{
			ItemID:      line.ItemID.String(),
			ProductID:   line.ProductID.String(),
			ProductName: line.ProductName,
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity.InexactFloat64(),
			Unit:        line.Unit,
		}
	}

	return ReceiveTransferResponse{
		Transfer: toStockTransferResponse(&result.Transfer),
		Received: received,
	}
}
