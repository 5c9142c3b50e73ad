package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	returnsapp "github.com/posadmin/backend/internal/application/returns"
)

// SaleHandler handles read-only sale lookup endpoints
type SaleHandler struct {
	BaseHandler
	returnService *returnsapp.ReturnService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(returnService *returnsapp.ReturnService) *SaleHandler {
	return &SaleHandler{
		returnService: returnService,
	}
}

// SaleItemResponse represents a sold line in API responses
//
//	@Description	Sale item response
type SaleItemResponse struct {
	ID               string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440002"`
	ProductID        string  `json:"product_id" example:"550e8400-e29b-41d4-a716-446655440003"`
	ProductName      string  `json:"product_name" example:"Espresso Beans 1kg"`
	ProductCode      string  `json:"product_code" example:"SKU-001"`
	Quantity         float64 `json:"quantity" example:"10"`
	ReturnedQuantity float64 `json:"returned_quantity" example:"2"`
	Remaining        float64 `json:"remaining" example:"8"`
	UnitPrice        float64 `json:"unit_price" example:"15.00"`
	LineSubtotal     float64 `json:"line_subtotal" example:"150.00"`
	LineTax          float64 `json:"line_tax" example:"15.00"`
	LineDiscount     float64 `json:"line_discount" example:"0"`
	LineTotal        float64 `json:"line_total" example:"165.00"`
	Unit             string  `json:"unit" example:"bag"`
}

// SaleResponse represents a captured sale in API responses
//
//	@Description	Sale response
type SaleResponse struct {
	ID           string             `json:"id" example:"550e8400-e29b-41d4-a716-446655440020"`
	SaleNumber   string             `json:"sale_number" example:"S-2026-00042"`
	CustomerID   string             `json:"customer_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	CustomerName string             `json:"customer_name" example:"Jane Doe"`
	Items        []SaleItemResponse `json:"items"`
	Subtotal     float64            `json:"subtotal" example:"150.00"`
	TaxTotal     float64            `json:"tax_total" example:"15.00"`
	Total        float64            `json:"total" example:"165.00"`
	Status       string             `json:"status" example:"COMPLETED"`
	SoldAt       time.Time          `json:"sold_at"`
}

// GetByID godoc
//
//	@ID				getSaleById
//	@Summary		Get sale by ID
//	@Description	Retrieve a captured sale with its per-line returnable windows
//	@Tags			sales
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	false	"Tenant ID (optional for dev)"
//	@Param			id			path		string	true	"Sale ID"	format(uuid)
//	@Success		200			{object}	APIResponse[SaleResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		401			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.returnService.GetSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSaleResponse(sale))
}

// toSaleResponse converts application response to handler response
func toSaleResponse(sale *returnsapp.SaleResponse) SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = SaleItemResponse{
			ID:               item.ID.String(),
			ProductID:        item.ProductID.String(),
			ProductName:      item.ProductName,
			ProductCode:      item.ProductCode,
			Quantity:         item.Quantity.InexactFloat64(),
			ReturnedQuantity: item.ReturnedQuantity.InexactFloat64(),
			Remaining:        item.Remaining.InexactFloat64(),
			UnitPrice:        item.UnitPrice.InexactFloat64(),
			LineSubtotal:     item.LineSubtotal.InexactFloat64(),
			LineTax:          item.LineTax.InexactFloat64(),
			LineDiscount:     item.LineDiscount.InexactFloat64(),
			LineTotal:        item.LineTotal.InexactFloat64(),
			Unit:             item.Unit,
		}
	}

	return SaleResponse{
		ID:           sale.ID.String(),
		SaleNumber:   sale.SaleNumber,
		CustomerID:   sale.CustomerID.String(),
		CustomerName: sale.CustomerName,
		Items:        items,
		Subtotal:     sale.Subtotal.InexactFloat64(),
		TaxTotal:     sale.TaxTotal.InexactFloat64(),
		Total:        sale.Total.InexactFloat64(),
		Status:       sale.Status,
		SoldAt:       sale.SoldAt,
	}
}
