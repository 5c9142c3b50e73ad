package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	returnsapp "github.com/posadmin/backend/internal/application/returns"
	"github.com/posadmin/backend/internal/domain/returns"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the client-chosen key for retry-safe commits
const IdempotencyKeyHeader = "X-Idempotency-Key"

// SaleReturnHandler handles sale return-related API endpoints
type SaleReturnHandler struct {
	BaseHandler
	returnService *returnsapp.ReturnService
}

// NewSaleReturnHandler creates a new SaleReturnHandler
func NewSaleReturnHandler(returnService *returnsapp.ReturnService) *SaleReturnHandler {
	return &SaleReturnHandler{
		returnService: returnService,
	}
}

// StartDraftRequest represents a request to open a return draft
//
//	@Description	Request body for opening a return draft against a completed sale
type StartDraftRequest struct {
	SaleID string `json:"sale_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Remark string `json:"remark" example:"Customer changed their mind"`
}

// LineEntryRequest represents one line upsert in an UpdateLinesRequest
//
//	@Description	One requested-quantity entry keyed by the sold line
type LineEntryRequest struct {
	SaleItemID   string  `json:"sale_item_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	RequestedQty float64 `json:"requested_qty" binding:"gte=0" example:"2"`
	ReasonCode   string  `json:"reason_code" example:"DAMAGED"`
}

// UpdateLinesRequest represents a bulk line upsert on a draft
//
//	@Description	Request body for upserting draft lines
type UpdateLinesRequest struct {
	Entries []LineEntryRequest `json:"entries" binding:"required,min=1"`
}

// SetLineQuantityRequest represents a single-line quantity edit
//
//	@Description	Request body for a stepper edit on one draft line
type SetLineQuantityRequest struct {
	RequestedQty float64 `json:"requested_qty" binding:"gte=0" example:"3"`
}

// UpdateDraftRequest represents a draft header update
//
//	@Description	Request body for updating draft header fields
type UpdateDraftRequest struct {
	Remark *string `json:"remark" example:"Refund approved by shift lead"`
}

// AllocationRowRequest represents one refund row in a finalize request
//
//	@Description	One refund method row of the allocation
type AllocationRowRequest struct {
	Method      string  `json:"method" binding:"required" example:"CASH"`
	Amount      float64 `json:"amount" binding:"gte=0" example:"29.97"`
	ExternalRef string  `json:"external_ref" example:"txn_9f3b2c"`
}

// FinalizeReturnRequest represents a request to commit a draft
//
//	@Description	Request body for finalizing a return draft
type FinalizeReturnRequest struct {
	Allocation []AllocationRowRequest `json:"allocation" binding:"required,min=1"`
}

// VoidReturnRequest represents a request to abandon a draft
//
//	@Description	Request body for voiding a return draft
type VoidReturnRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Customer kept the goods"`
}

// SplitAllocationRequest represents a request for an even allocation split
//
//	@Description	Request body for suggesting an even refund split
type SplitAllocationRequest struct {
	Parts int `json:"parts" binding:"required,min=1" example:"2"`
}

// ReturnLineResponse represents a draft line in API responses
//
//	@Description	Sale return line response
type ReturnLineResponse struct {
	ID             string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440030"`
	SaleItemID     string  `json:"sale_item_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	ProductID      string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	ProductName    string  `json:"product_name" example:"Espresso Beans 1kg"`
	ProductCode    string  `json:"product_code" example:"SKU-001"`
	SoldQuantity   float64 `json:"sold_quantity" example:"10"`
	ReturnedBefore float64 `json:"returned_before" example:"2"`
	Remaining      float64 `json:"remaining" example:"8"`
	RequestedQty   float64 `json:"requested_qty" example:"5"`
	UnitPrice      float64 `json:"unit_price" example:"15.00"`
	Subtotal       float64 `json:"subtotal" example:"75.00"`
	Tax            float64 `json:"tax" example:"7.50"`
	Discount       float64 `json:"discount" example:"0"`
	RefundAmount   float64 `json:"refund_amount" example:"82.50"`
	Unit           string  `json:"unit" example:"bag"`
	ReasonCode     string  `json:"reason_code,omitempty" example:"DAMAGED"`
}

// AllocationRowResponse represents a refund row in API responses
//
//	@Description	Refund allocation row response
type AllocationRowResponse struct {
	Method      string  `json:"method" example:"CASH"`
	Amount      float64 `json:"amount" example:"29.97"`
	ExternalRef string  `json:"external_ref,omitempty" example:"txn_9f3b2c"`
}

// SaleReturnResponse represents a sale return in API responses
//
//	@Description	Sale return response
type SaleReturnResponse struct {
	ID            string                  `json:"id" example:"550e8400-e29b-41d4-a716-446655440010"`
	TenantID      string                  `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ReturnNumber  string                  `json:"return_number" example:"SR-2026-00001"`
	SaleID        string                  `json:"sale_id" example:"550e8400-e29b-41d4-a716-446655440020"`
	SaleNumber    string                  `json:"sale_number" example:"S-2026-00042"`
	CustomerID    string                  `json:"customer_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	CustomerName  string                  `json:"customer_name" example:"Jane Doe"`
	Lines         []ReturnLineResponse    `json:"lines"`
	LineCount     int                     `json:"line_count" example:"2"`
	TotalQuantity float64                 `json:"total_quantity" example:"7"`
	RefundTotal   float64                 `json:"refund_total" example:"112.47"`
	Allocation    []AllocationRowResponse `json:"allocation,omitempty"`
	Status        string                  `json:"status" example:"DRAFT"`
	Remark        string                  `json:"remark,omitempty" example:"Customer changed their mind"`
	FinalizedAt   *time.Time              `json:"finalized_at,omitempty"`
	VoidedAt      *time.Time              `json:"voided_at,omitempty"`
	VoidReason    string                  `json:"void_reason,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Version       int                     `json:"version" example:"1"`
}

// SaleReturnListResponse represents a sale return in list responses
//
//	@Description	Sale return list item response
type SaleReturnListResponse struct {
	ID           string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440010"`
	ReturnNumber string     `json:"return_number" example:"SR-2026-00001"`
	SaleID       string     `json:"sale_id" example:"550e8400-e29b-41d4-a716-446655440020"`
	SaleNumber   string     `json:"sale_number" example:"S-2026-00042"`
	CustomerID   string     `json:"customer_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	CustomerName string     `json:"customer_name" example:"Jane Doe"`
	LineCount    int        `json:"line_count" example:"2"`
	RefundTotal  float64    `json:"refund_total" example:"112.47"`
	Status       string     `json:"status" example:"FINALIZED"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
	VoidedAt     *time.Time `json:"voided_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ReturnStatusSummaryResponse represents return counts by status
//
//	@Description	Return status summary response
type ReturnStatusSummaryResponse struct {
	Draft     int64 `json:"draft" example:"3"`
	Finalized int64 `json:"finalized" example:"42"`
	Void      int64 `json:"void" example:"2"`
	Total     int64 `json:"total" example:"47"`
}

// StartDraft godoc
//
//	@ID				startSaleReturnDraft
//	@Summary		Open a return draft
//	@Description	Open a return draft against a completed sale, snapshotting its sold lines
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string				false	"Tenant ID (optional for dev)"
//	@Param			request		body		StartDraftRequest	true	"Draft creation request"
//	@Success		201			{object}	APIResponse[SaleReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns [post]
func (h *SaleReturnHandler) StartDraft(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req StartDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	userID, _ := getUserID(c)

	appReq := returnsapp.StartDraftRequest{
		SaleID: saleID,
		Remark: req.Remark,
	}
	if userID != uuid.Nil {
		appReq.CreatedBy = &userID
	}

	sr, err := h.returnService.StartDraft(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toSaleReturnResponse(sr))
}

// GetByID godoc
//
//	@ID				getSaleReturnById
//	@Summary		Get sale return by ID
//	@Description	Retrieve a sale return by its ID
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Sale Return ID"	format(uuid)
//	@Success		200			{object}	APIResponse[SaleReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id} [get]
func (h *SaleReturnHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	sr, err := h.returnService.GetByID(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// GetByReturnNumber godoc
//
//	@ID				getSaleReturnByNumber
//	@Summary		Get sale return by return number
//	@Description	Retrieve a sale return by its return number
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID		header		string	false	"Tenant ID (optional for dev)"
//	@Param			return_number	path		string	true	"Return Number"	example:"SR-2026-00001"
//	@Success		200				{object}	APIResponse[SaleReturnResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		401				{object}	dto.ErrorResponse
//	@Failure		404				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/number/{return_number} [get]
func (h *SaleReturnHandler) GetByReturnNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnNumber := c.Param("return_number")
	if returnNumber == "" {
		h.BadRequest(c, "Return number is required")
		return
	}

	sr, err := h.returnService.GetByReturnNumber(c.Request.Context(), tenantID, returnNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// List godoc
//
//	@ID				listSaleReturns
//	@Summary		List sale returns
//	@Description	Retrieve a paginated list of sale returns with optional filtering
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			search		query		string	false	"Search term (return number, customer name, sale number)"
//	@Param			customer_id	query		string	false	"Customer ID"	format(uuid)
//	@Param			sale_id		query		string	false	"Sale ID"		format(uuid)
//	@Param			status		query		string	false	"Return status"	Enums(DRAFT, FINALIZED, VOID)
//	@Param			start_date	query		string	false	"Start date (ISO 8601)"	format(date-time)
//	@Param			end_date	query		string	false	"End date (ISO 8601)"	format(date-time)
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			page_size	query		int		false	"Page size"			default(20)	maximum(100)
//	@Param			order_by	query		string	false	"Order by field"	default(created_at)
//	@Param			order_dir	query		string	false	"Order direction"	Enums(asc, desc)	default(desc)
//	@Success		200			{object}	APIResponse[[]SaleReturnListResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns [get]
func (h *SaleReturnHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, err := parseReturnListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.returnService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, toSaleReturnListResponses(items), total, filter.Page, filter.PageSize)
}

// ListBySale godoc
//
//	@ID				listSaleReturnsBySale
//	@Summary		List returns for a sale
//	@Description	Retrieve every return opened against one sale, newest first
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			sale_id		path		string	true	"Sale ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]SaleReturnListResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/sale/{sale_id} [get]
func (h *SaleReturnHandler) ListBySale(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	saleID, err := uuid.Parse(c.Param("sale_id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	items, err := h.returnService.ListBySale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnListResponses(items))
}

// GetStatusSummary godoc
//
//	@ID				getSaleReturnStatusSummary
//	@Summary		Get return status summary
//	@Description	Get count of returns by status for the list header
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Success		200			{object}	APIResponse[ReturnStatusSummaryResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/stats/summary [get]
func (h *SaleReturnHandler) GetStatusSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.returnService.StatusSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ReturnStatusSummaryResponse{
		Draft:     summary.Draft,
		Finalized: summary.Finalized,
		Void:      summary.Void,
		Total:     summary.Draft + summary.Finalized + summary.Void,
	})
}

// UpdateDraft godoc
//
//	@ID				updateSaleReturnDraft
//	@Summary		Update draft header
//	@Description	Update draft header fields (only allowed in DRAFT status)
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string				false	"Tenant ID (optional for dev)"
//	@Param			id			path		string				true	"Sale Return ID"	format(uuid)
//	@Param			request		body		UpdateDraftRequest	true	"Draft update request"
//	@Success		200			{object}	APIResponse[SaleReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id} [put]
func (h *SaleReturnHandler) UpdateDraft(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sr, err := h.returnService.UpdateDraft(c.Request.Context(), tenantID, returnID, returnsapp.UpdateDraftRequest{
		Remark: req.Remark,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// UpdateLines godoc
//
//	@ID				updateSaleReturnLines
//	@Summary		Upsert draft lines
//	@Description	Upsert requested quantities on draft lines keyed by sold line (only allowed in DRAFT status)
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string				false	"Tenant ID (optional for dev)"
//	@Param			id			path		string				true	"Sale Return ID"	format(uuid)
//	@Param			request		body		UpdateLinesRequest	true	"Line upsert request"
//	@Success		200			{object}	APIResponse[SaleReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/lines [put]
func (h *SaleReturnHandler) UpdateLines(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req UpdateLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := returnsapp.UpdateLinesRequest{}
	for _, entry := range req.Entries {
		saleItemID, err := uuid.Parse(entry.SaleItemID)
		if err != nil {
			h.BadRequest(c, "Invalid sale item ID format")
			return
		}
		appReq.Entries = append(appReq.Entries, returnsapp.LineEntryInput{
			SaleItemID:   saleItemID,
			RequestedQty: decimal.NewFromFloat(entry.RequestedQty),
			ReasonCode:   entry.ReasonCode,
		})
	}

	sr, err := h.returnService.UpdateLines(c.Request.Context(), tenantID, returnID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// SetLineQuantity godoc
//
//	@ID				setSaleReturnLineQuantity
//	@Summary		Set one line quantity
//	@Description	Apply a stepper edit to a single draft line (only allowed in DRAFT status)
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID		header		string					false	"Tenant ID (optional for dev)"
//	@Param			id				path		string					true	"Sale Return ID"	format(uuid)
//	@Param			sale_item_id	path		string					true	"Sale Item ID"		format(uuid)
//	@Param			request			body		SetLineQuantityRequest	true	"Quantity edit request"
//	@Success		200				{object}	APIResponse[SaleReturnResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		401				{object}	dto.ErrorResponse
//	@Failure		404				{object}	dto.ErrorResponse
//	@Failure		422				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/lines/{sale_item_id} [put]
func (h *SaleReturnHandler) SetLineQuantity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	saleItemID, err := uuid.Parse(c.Param("sale_item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale item ID format")
		return
	}

	var req SetLineQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sr, err := h.returnService.SetLineQuantity(c.Request.Context(), tenantID, returnID, saleItemID, returnsapp.SetLineQuantityRequest{
		RequestedQty: decimal.NewFromFloat(req.RequestedQty),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// RequestAllRemaining godoc
//
//	@ID				requestAllRemainingSaleReturn
//	@Summary		Request all remaining quantities
//	@Description	Set every draft line to its full remaining returnable quantity
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Sale Return ID"	format(uuid)
//	@Success		200			{object}	APIResponse[SaleReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/lines/all [post]
func (h *SaleReturnHandler) RequestAllRemaining(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	sr, err := h.returnService.RequestAllRemaining(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// ClearRequested godoc
//
//	@ID				clearRequestedSaleReturn
//	@Summary		Clear requested quantities
//	@Description	Reset every draft line's requested quantity to zero
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Sale Return ID"	format(uuid)
//	@Success		200			{object}	APIResponse[SaleReturnResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/lines/clear [post]
func (h *SaleReturnHandler) ClearRequested(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	sr, err := h.returnService.ClearRequested(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// RemoveLine godoc
//
//	@ID				removeSaleReturnLine
//	@Summary		Remove a draft line
//	@Description	Remove one line from a draft (only allowed in DRAFT status)
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID		header		string	false	"Tenant ID (optional for dev)"
//	@Param			id				path		string	true	"Sale Return ID"	format(uuid)
//	@Param			sale_item_id	path		string	true	"Sale Item ID"		format(uuid)
//	@Success		200				{object}	APIResponse[SaleReturnResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		401				{object}	dto.ErrorResponse
//	@Failure		404				{object}	dto.ErrorResponse
//	@Failure		422				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/lines/{sale_item_id} [delete]
func (h *SaleReturnHandler) RemoveLine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	saleItemID, err := uuid.Parse(c.Param("sale_item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale item ID format")
		return
	}

	sr, err := h.returnService.RemoveLine(c.Request.Context(), tenantID, returnID, saleItemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// SuggestSplit godoc
//
//	@ID				suggestSaleReturnSplit
//	@Summary		Suggest an even refund split
//	@Description	Split the current refund total evenly into N rows, remainder on the last row
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string					false	"Tenant ID (optional for dev)"
//	@Param			id			path		string					true	"Sale Return ID"	format(uuid)
//	@Param			request		body		SplitAllocationRequest	true	"Split request"
//	@Success		200			{object}	APIResponse[[]AllocationRowResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/allocation/split [post]
func (h *SaleReturnHandler) SuggestSplit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req SplitAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rows, err := h.returnService.SuggestSplit(c.Request.Context(), tenantID, returnID, returnsapp.SplitAllocationRequest{
		Parts: req.Parts,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAllocationRowResponses(rows))
}

// Finalize godoc
//
//	@ID				finalizeSaleReturn
//	@Summary		Finalize a return draft
//	@Description	Commit a draft with its refund allocation, crediting returned quantities back to the sale
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID			header		string					false	"Tenant ID (optional for dev)"
//	@Param			X-Idempotency-Key	header		string					false	"Idempotency key for safe retries"
//	@Param			id					path		string					true	"Sale Return ID"	format(uuid)
//	@Param			request				body		FinalizeReturnRequest	true	"Finalize request"
//	@Success		200					{object}	APIResponse[SaleReturnResponse]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		401					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Failure		409					{object}	dto.ErrorResponse
//	@Failure		422					{object}	dto.ErrorResponse
//	@Failure		500					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/finalize [post]
func (h *SaleReturnHandler) Finalize(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req FinalizeReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := returnsapp.FinalizeRequest{
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}
	for _, row := range req.Allocation {
		appReq.Allocation = append(appReq.Allocation, returnsapp.AllocationRowInput{
			Method:      row.Method,
			Amount:      decimal.NewFromFloat(row.Amount),
			ExternalRef: row.ExternalRef,
		})
	}

	sr, err := h.returnService.Finalize(c.Request.Context(), tenantID, returnID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// Void godoc
//
//	@ID				voidSaleReturn
//	@Summary		Void a return draft
//	@Description	Abandon a draft with a reason (only allowed in DRAFT status)
//	@Tags			sale-returns
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID			header		string				false	"Tenant ID (optional for dev)"
//	@Param			X-Idempotency-Key	header		string				false	"Idempotency key for safe retries"
//	@Param			id					path		string				true	"Sale Return ID"	format(uuid)
//	@Param			request				body		VoidReturnRequest	true	"Void request"
//	@Success		200					{object}	APIResponse[SaleReturnResponse]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		401					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Failure		422					{object}	dto.ErrorResponse
//	@Failure		500					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id}/void [post]
func (h *SaleReturnHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req VoidReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	sr, err := h.returnService.Void(c.Request.Context(), tenantID, returnID, returnsapp.VoidRequest{
		Reason: req.Reason,
	}, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleReturnResponse(sr))
}

// Delete godoc
//
//	@ID				deleteSaleReturn
//	@Summary		Delete a sale return
//	@Description	Delete a sale return (only allowed in DRAFT status)
//	@Tags			sale-returns
//	@Produce		json
//	@Param			X-Tenant-ID	header	string	false	"Tenant ID (optional for dev)"
//	@Param			id			path	string	true	"Sale Return ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		401	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/returns/{id} [delete]
func (h *SaleReturnHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	if err := h.returnService.Delete(c.Request.Context(), tenantID, returnID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// parseReturnListFilter extracts list query parameters
func parseReturnListFilter(c *gin.Context) (returnsapp.ReturnListFilter, error) {
	filter := returnsapp.ReturnListFilter{
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
		s := returns.ReturnStatus(status)
		filter.Status = &s
	}

	if customerID := c.Query("customer_id"); customerID != "" {
		id, err := uuid.Parse(customerID)
		if err != nil {
			return filter, err
		}
		filter.CustomerID = &id
	}

	if saleID := c.Query("sale_id"); saleID != "" {
		id, err := uuid.Parse(saleID)
		if err != nil {
			return filter, err
		}
		filter.SaleID = &id
	}

	if startDate := c.Query("start_date"); startDate != "" {
		t, err := time.Parse(time.RFC3339, startDate)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}

	if endDate := c.Query("end_date"); endDate != "" {
		t, err := time.Parse(time.RFC3339, endDate)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}

	return filter, nil
}

// toSaleReturnResponse converts application response to handler response
func toSaleReturnResponse(sr *returnsapp.ReturnResponse) SaleReturnResponse {
	lines := make([]ReturnLineResponse, len(sr.Lines))
	for i, line := range sr.Lines {
		lines[i] = ReturnLineResponse{
			ID:             line.ID.String(),
			SaleItemID:     line.SaleItemID.String(),
			ProductID:      line.ProductID.String(),
			ProductName:    line.ProductName,
			ProductCode:    line.ProductCode,
			SoldQuantity:   line.SoldQuantity.InexactFloat64(),
			ReturnedBefore: line.ReturnedBefore.InexactFloat64(),
			Remaining:      line.Remaining.InexactFloat64(),
			RequestedQty:   line.RequestedQty.InexactFloat64(),
			UnitPrice:      line.UnitPrice.InexactFloat64(),
			Subtotal:       line.Subtotal.InexactFloat64(),
			Tax:            line.Tax.InexactFloat64(),
			Discount:       line.Discount.InexactFloat64(),
			RefundAmount:   line.RefundAmount.InexactFloat64(),
			Unit:           line.Unit,
			ReasonCode:     line.ReasonCode,
		}
	}

	return SaleReturnResponse{
		ID:            sr.ID.String(),
		TenantID:      sr.TenantID.String(),
		ReturnNumber:  sr.ReturnNumber,
		SaleID:        sr.SaleID.String(),
		SaleNumber:    sr.SaleNumber,
		CustomerID:    sr.CustomerID.String(),
		CustomerName:  sr.CustomerName,
		Lines:         lines,
		LineCount:     sr.LineCount,
		TotalQuantity: sr.TotalQty.InexactFloat64(),
		RefundTotal:   sr.RefundTotal.InexactFloat64(),
		Allocation:    toAllocationRowResponses(sr.Allocation),
		Status:        sr.Status,
		Remark:        sr.Remark,
		FinalizedAt:   sr.FinalizedAt,
		VoidedAt:      sr.VoidedAt,
		VoidReason:    sr.VoidReason,
		CreatedAt:     sr.CreatedAt,
		UpdatedAt:     sr.UpdatedAt,
		Version:       sr.Version,
	}
}

// toAllocationRowResponses converts allocation rows to handler responses
func toAllocationRowResponses(rows []returnsapp.AllocationRowResponse) []AllocationRowResponse {
	if len(rows) == 0 {
		return nil
	}
	out := make([]AllocationRowResponse, len(rows))
	for i, row := range rows {
		out[i] = AllocationRowResponse{
			Method:      row.Method,
			Amount:      row.Amount.InexactFloat64(),
			ExternalRef: row.ExternalRef,
		}
	}
	return out
}

// toSaleReturnListResponses converts application list items to handler responses
func toSaleReturnListResponses(items []returnsapp.ReturnListItemResponse) []SaleReturnListResponse {
	out := make([]SaleReturnListResponse, len(items))
	for i, item := range items {
		out[i] = SaleReturnListResponse{
			ID:           item.ID.String(),
			ReturnNumber: item.ReturnNumber,
			SaleID:       item.SaleID.String(),
			SaleNumber:   item.SaleNumber,
			CustomerID:   item.CustomerID.String(),
			CustomerName: item.CustomerName,
			LineCount:    item.LineCount,
			RefundTotal:  item.RefundTotal.InexactFloat64(),
			Status:       item.Status,
			FinalizedAt:  item.FinalizedAt,
			VoidedAt:     item.VoidedAt,
			CreatedAt:    item.CreatedAt,
			UpdatedAt:    item.UpdatedAt,
		}
	}
	return out
}
