package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a captured sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusRefunded  SaleStatus = "REFUNDED" // Every line fully returned
)

// SaleItem is one sold line of a captured sale. The monetary decomposition
// (subtotal, tax, discount) is frozen at sale time: return refunds are always
// computed as fractions of these captured values, never re-derived from a tax
// table, so a return reconciles exactly against what the customer paid.
type SaleItem struct {
	ID               uuid.UUID
	SaleID           uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	ProductCode      string
	Quantity         decimal.Decimal // Quantity sold
	ReturnedQuantity decimal.Decimal // Cumulative quantity returned by finalized returns
	UnitPrice        decimal.Decimal
	LineSubtotal     decimal.Decimal
	LineTax          decimal.Decimal
	LineDiscount     decimal.Decimal
	LineTotal        decimal.Decimal // Subtotal + tax - discount
	Unit             string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AvailableForReturn returns the quantity of this line not yet returned
func (i *SaleItem) AvailableForReturn() decimal.Decimal {
	remaining := i.Quantity.Sub(i.ReturnedQuantity)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReturned returns true when nothing remains to return on this line
func (i *SaleItem) IsFullyReturned() bool {
	return i.AvailableForReturn().IsZero()
}

// GetUnitPriceMoney returns the unit price as a Money value object
func (i *SaleItem) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}

// Sale is the parent document a return draft is opened against. It is the
// source of truth for sold and already-returned quantities: each time a draft
// is opened, the line snapshots are taken from the current sale state.
type Sale struct {
	shared.TenantAggregateRoot
	SaleNumber   string
	CustomerID   uuid.UUID
	CustomerName string
	RegisterID   *uuid.UUID
	Items        []SaleItem
	Subtotal     decimal.Decimal
	TaxTotal     decimal.Decimal
	Total        decimal.Decimal
	Status       SaleStatus
	SoldAt       time.Time
}

// NewSale creates a captured sale with its line decomposition. Sales enter
// the system already completed; the admin backend never creates open carts.
func NewSale(tenantID uuid.UUID, saleNumber string, customerID uuid.UUID, customerName string) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Sale number cannot be empty")
	}

	return &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleNumber:          saleNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Items:               make([]SaleItem, 0),
		Subtotal:            decimal.Zero,
		TaxTotal:            decimal.Zero,
		Total:               decimal.Zero,
		Status:              SaleStatusCompleted,
		SoldAt:              time.Now(),
	}, nil
}

// AddItem appends a sold line with its captured monetary decomposition
func (s *Sale) AddItem(productID uuid.UUID, productName, productCode, unit string, quantity, unitPrice, lineTax, lineDiscount decimal.Decimal) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeValidation, "Sold quantity must be positive")
	}
	if unitPrice.IsNegative() || lineTax.IsNegative() || lineDiscount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Monetary amounts cannot be negative")
	}

	now := time.Now()
	subtotal := quantity.Mul(unitPrice).Round(valueobject.MinorUnitPlaces)
	item := SaleItem{
		ID:               uuid.New(),
		SaleID:           s.ID,
		ProductID:        productID,
		ProductName:      productName,
		ProductCode:      productCode,
		Quantity:         quantity,
		ReturnedQuantity: decimal.Zero,
		UnitPrice:        unitPrice,
		LineSubtotal:     subtotal,
		LineTax:          lineTax,
		LineDiscount:     lineDiscount,
		LineTotal:        subtotal.Add(lineTax).Sub(lineDiscount),
		Unit:             unit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.Items = append(s.Items, item)
	s.recalculateTotals()
	s.UpdatedAt = now

	return &s.Items[len(s.Items)-1], nil
}

// GetItem returns a sold line by its ID, nil when absent
func (s *Sale) GetItem(itemID uuid.UUID) *SaleItem {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			return &s.Items[idx]
		}
	}
	return nil
}

// ApplyReturn records finalized return quantities against the sold lines.
// Quantities exceeding what remains on a line are rejected: the draft layer
// clamps user input, so an overshoot here means the caller finalized against
// stale line state.
func (s *Sale) ApplyReturn(returned map[uuid.UUID]decimal.Decimal) error {
	for itemID, qty := range returned {
		item := s.GetItem(itemID)
		if item == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Sale line not found: "+itemID.String())
		}
		if qty.IsNegative() {
			return shared.NewDomainError(shared.CodeValidation, "Returned quantity cannot be negative")
		}
		if qty.GreaterThan(item.AvailableForReturn()) {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "Returned quantity exceeds remaining quantity for line "+itemID.String())
		}
	}

	now := time.Now()
	for itemID, qty := range returned {
		item := s.GetItem(itemID)
		item.ReturnedQuantity = item.ReturnedQuantity.Add(qty)
		item.UpdatedAt = now
	}

	if s.allItemsReturned() {
		s.Status = SaleStatusRefunded
	}
	s.UpdatedAt = now

	return nil
}

func (s *Sale) allItemsReturned() bool {
	for idx := range s.Items {
		if !s.Items[idx].IsFullyReturned() {
			return false
		}
	}
	return len(s.Items) > 0
}

func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	total := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.LineSubtotal)
		tax = tax.Add(item.LineTax)
		total = total.Add(item.LineTotal)
	}
	s.Subtotal = subtotal
	s.TaxTotal = tax
	s.Total = total
}

// GetTotalMoney returns the sale total as Money
func (s *Sale) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.Total)
}

// ItemCount returns the number of sold lines
func (s *Sale) ItemCount() int {
	return len(s.Items)
}
