package returns

import (
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReturnLine is one line of a return draft. It snapshots the sold quantity
// and the quantity already returned by earlier finalized returns at the time
// the draft was opened; the requested quantity is the only mutable input and
// is always clamped into [0, Remaining()].
type ReturnLine struct {
	ID             uuid.UUID
	ReturnID       uuid.UUID
	SaleItemID     uuid.UUID // Reference to the sold line (immutable)
	ProductID      uuid.UUID
	ProductName    string
	ProductCode    string
	SoldQuantity   decimal.Decimal // Quantity originally sold (immutable)
	ReturnedBefore decimal.Decimal // Quantity returned prior to this draft (snapshot)
	RequestedQty   decimal.Decimal // Quantity being returned in this draft
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal // Proportional share of the captured line subtotal
	Tax            decimal.Decimal // Proportional share of the captured line tax
	Discount       decimal.Decimal // Proportional share of the captured line discount
	RefundAmount   decimal.Decimal // Subtotal + tax - discount
	Unit           string
	ReasonCode     string // Required whenever RequestedQty > 0
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Captured decomposition of the full sold line, kept so proportional
	// amounts can be recomputed on every quantity edit.
	soldSubtotal decimal.Decimal
	soldTax      decimal.Decimal
	soldDiscount decimal.Decimal
}

// newReturnLine snapshots a sold line into a draft line. The requested
// quantity is clamped into the remaining window rather than rejected.
func newReturnLine(returnID uuid.UUID, saleItem *SaleItem, requestedQty decimal.Decimal, reasonCode string) *ReturnLine {
	now := time.Now()
	line := &ReturnLine{
		ID:             uuid.New(),
		ReturnID:       returnID,
		SaleItemID:     saleItem.ID,
		ProductID:      saleItem.ProductID,
		ProductName:    saleItem.ProductName,
		ProductCode:    saleItem.ProductCode,
		SoldQuantity:   saleItem.Quantity,
		ReturnedBefore: saleItem.ReturnedQuantity,
		UnitPrice:      saleItem.UnitPrice,
		Unit:           saleItem.Unit,
		ReasonCode:     reasonCode,
		CreatedAt:      now,
		UpdatedAt:      now,
		soldSubtotal:   saleItem.LineSubtotal,
		soldTax:        saleItem.LineTax,
		soldDiscount:   saleItem.LineDiscount,
	}
	line.SetRequested(requestedQty)
	return line
}

// Remaining answers how much of this line can still be returned:
// sold quantity minus what was already returned before this draft.
func (l *ReturnLine) Remaining() decimal.Decimal {
	remaining := l.SoldQuantity.Sub(l.ReturnedBefore)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// SetRequested clamps qty into [0, Remaining()] and recomputes the
// proportional amounts. Out-of-range input is corrected, never rejected;
// the clamped value is returned so steppers can reflect it.
func (l *ReturnLine) SetRequested(qty decimal.Decimal) decimal.Decimal {
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	if remaining := l.Remaining(); qty.GreaterThan(remaining) {
		qty = remaining
	}

	l.RequestedQty = qty
	l.recompute()
	l.UpdatedAt = time.Now()

	return qty
}

// SetReasonCode sets the return reason for the line
func (l *ReturnLine) SetReasonCode(code string) {
	l.ReasonCode = code
	l.UpdatedAt = time.Now()
}

// recompute derives the monetary share of the requested quantity as a
// fraction of the captured sold-line amounts. Tax and discount are scaled
// from the captured values, not recomputed from a rate table, so refunds
// reconcile exactly against the original sale.
func (l *ReturnLine) recompute() {
	if l.SoldQuantity.IsZero() || l.RequestedQty.IsZero() {
		l.Subtotal = decimal.Zero
		l.Tax = decimal.Zero
		l.Discount = decimal.Zero
		l.RefundAmount = decimal.Zero
		return
	}

	fraction := l.RequestedQty.Div(l.SoldQuantity)
	l.Subtotal = l.soldSubtotal.Mul(fraction).Round(valueobject.MinorUnitPlaces)
	l.Tax = l.soldTax.Mul(fraction).Round(valueobject.MinorUnitPlaces)
	l.Discount = l.soldDiscount.Mul(fraction).Round(valueobject.MinorUnitPlaces)
	l.RefundAmount = l.Subtotal.Add(l.Tax).Sub(l.Discount)
}

// Rehydrate restores the captured sold-line decomposition after the line was
// loaded from persistence, where only the flattened columns survive.
func (l *ReturnLine) Rehydrate(soldSubtotal, soldTax, soldDiscount decimal.Decimal) {
	l.soldSubtotal = soldSubtotal
	l.soldTax = soldTax
	l.soldDiscount = soldDiscount
}

// SoldSubtotal returns the captured subtotal of the full sold line
func (l *ReturnLine) SoldSubtotal() decimal.Decimal { return l.soldSubtotal }

// SoldTax returns the captured tax of the full sold line
func (l *ReturnLine) SoldTax() decimal.Decimal { return l.soldTax }

// SoldDiscount returns the captured discount of the full sold line
func (l *ReturnLine) SoldDiscount() decimal.Decimal { return l.soldDiscount }

// GetRefundAmountMoney returns the line refund as a Money value object
func (l *ReturnLine) GetRefundAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(l.RefundAmount)
}

// clone returns a deep copy of the line
func (l *ReturnLine) clone() ReturnLine {
	return *l
}
