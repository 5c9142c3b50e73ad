package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the status of a stock transfer
type TransferStatus string

const (
	TransferStatusDraft           TransferStatus = "DRAFT"
	TransferStatusInTransit       TransferStatus = "IN_TRANSIT"
	TransferStatusPartialReceived TransferStatus = "PARTIAL_RECEIVED"
	TransferStatusReceived        TransferStatus = "RECEIVED"  // Terminal
	TransferStatusCancelled       TransferStatus = "CANCELLED" // Terminal, only from draft
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusDraft, TransferStatusInTransit, TransferStatusPartialReceived,
		TransferStatusReceived, TransferStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no transition leaves
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusReceived || s == TransferStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusDraft:
		return target == TransferStatusInTransit || target == TransferStatusCancelled
	case TransferStatusInTransit:
		return target == TransferStatusPartialReceived || target == TransferStatusReceived
	case TransferStatusPartialReceived:
		return target == TransferStatusPartialReceived || target == TransferStatusReceived
	case TransferStatusReceived, TransferStatusCancelled:
		return false
	}
	return false
}

// CanReceive returns true if goods can be received in this status
func (s TransferStatus) CanReceive() bool {
	return s == TransferStatusInTransit || s == TransferStatusPartialReceived
}

// TransferItem is one line of a stock transfer. SentQuantity is frozen when
// the transfer leaves the source store; ReceivedQuantity grows monotonically
// across receive operations and never exceeds SentQuantity.
type TransferItem struct {
	ID               uuid.UUID
	TransferID       uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	ProductCode      string
	Quantity         decimal.Decimal // Quantity planned while in draft
	SentQuantity     decimal.Decimal // Quantity shipped, set on send
	ReceivedQuantity decimal.Decimal // Cumulative quantity received
	Unit             string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RemainingQuantity returns the quantity sent but not yet received
func (i *TransferItem) RemainingQuantity() decimal.Decimal {
	remaining := i.SentQuantity.Sub(i.ReceivedQuantity)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyReceived returns true when nothing remains in transit on this line
func (i *TransferItem) IsFullyReceived() bool {
	return i.RemainingQuantity().IsZero()
}

// addReceived credits qty onto the line, clamped into the remaining window.
// The applied quantity is returned.
func (i *TransferItem) addReceived(qty decimal.Decimal) decimal.Decimal {
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	if remaining := i.RemainingQuantity(); qty.GreaterThan(remaining) {
		qty = remaining
	}
	i.ReceivedQuantity = i.ReceivedQuantity.Add(qty)
	i.UpdatedAt = time.Now()
	return qty
}

// ReceiveLine names a quantity to receive against one transfer line
type ReceiveLine struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// ReceivedLineInfo reports what one receive operation credited to a line
type ReceivedLineInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
}

// StockTransfer moves stock between two stores. Lines are edited in draft,
// frozen on send, and drained by receive operations at the destination until
// every line is fully received.
type StockTransfer struct {
	shared.TenantAggregateRoot
	TransferNumber string
	SourceStoreID  uuid.UUID
	TargetStoreID  uuid.UUID
	Items          []TransferItem
	Status         TransferStatus
	Remark         string
	SentAt         *time.Time
	ReceivedAt     *time.Time // Set when the transfer becomes fully received
	CancelledAt    *time.Time
	CancelReason   string
}

// NewStockTransfer creates a draft transfer between two stores
func NewStockTransfer(tenantID uuid.UUID, transferNumber string, sourceStoreID, targetStoreID uuid.UUID) (*StockTransfer, error) {
	if transferNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Transfer number cannot be empty")
	}
	if sourceStoreID == uuid.Nil || targetStoreID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Source and target stores are required")
	}
	if sourceStoreID == targetStoreID {
		return nil, shared.NewDomainError(shared.CodeValidation, "Source and target stores must differ")
	}

	st := &StockTransfer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TransferNumber:      transferNumber,
		SourceStoreID:       sourceStoreID,
		TargetStoreID:       targetStoreID,
		Items:               make([]TransferItem, 0),
		Status:              TransferStatusDraft,
	}

	st.AddDomainEvent(NewTransferCreatedEvent(st))

	return st, nil
}

// AddItem appends a line to a draft transfer. A second call for the same
// product replaces the planned quantity instead of appending a duplicate.
func (t *StockTransfer) AddItem(productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal) error {
	if t.Status != TransferStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit items of a %s transfer", t.Status))
	}
	if productID == uuid.Nil {
		return shared.NewDomainError(shared.CodeValidation, "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Transfer quantity must be positive")
	}

	now := time.Now()
	for idx := range t.Items {
		if t.Items[idx].ProductID == productID {
			t.Items[idx].Quantity = quantity
			t.Items[idx].UpdatedAt = now
			t.UpdatedAt = now
			return nil
		}
	}

	t.Items = append(t.Items, TransferItem{
		ID:               uuid.New(),
		TransferID:       t.ID,
		ProductID:        productID,
		ProductName:      productName,
		ProductCode:      productCode,
		Quantity:         quantity,
		SentQuantity:     decimal.Zero,
		ReceivedQuantity: decimal.Zero,
		Unit:             unit,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	t.UpdatedAt = now

	return nil
}

// RemoveItem removes a line from a draft transfer
func (t *StockTransfer) RemoveItem(itemID uuid.UUID) error {
	if t.Status != TransferStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit items of a %s transfer", t.Status))
	}

	for idx := range t.Items {
		if t.Items[idx].ID == itemID {
			t.Items = append(t.Items[:idx], t.Items[idx+1:]...)
			t.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError(shared.CodeNotFound, "Transfer item not found")
}

// SetRemark sets the transfer remark
func (t *StockTransfer) SetRemark(remark string) {
	t.Remark = remark
	t.UpdatedAt = time.Now()
}

// Send ships the transfer. The planned quantity of every line is frozen as
// the sent quantity; the line set can no longer change.
func (t *StockTransfer) Send() error {
	if !t.Status.CanTransitionTo(TransferStatusInTransit) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot send transfer in %s status", t.Status))
	}
	if len(t.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Cannot send a transfer with no items")
	}

	now := time.Now()
	for idx := range t.Items {
		t.Items[idx].SentQuantity = t.Items[idx].Quantity
		t.Items[idx].UpdatedAt = now
	}
	t.Status = TransferStatusInTransit
	t.SentAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(NewTransferSentEvent(t))

	return nil
}

// Receive credits received quantities at the destination. An empty line list
// means "receive all remaining". Explicit quantities are clamped into each
// line's remaining window rather than rejected. The transfer becomes
// RECEIVED once nothing remains, PARTIAL_RECEIVED otherwise.
func (t *StockTransfer) Receive(lines []ReceiveLine) ([]ReceivedLineInfo, error) {
	if !t.Status.CanReceive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot receive transfer in %s status", t.Status))
	}

	if len(lines) == 0 {
		lines = t.remainingAsReceiveLines()
	}

	for _, line := range lines {
		if t.GetItem(line.ItemID) == nil {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Transfer item not found: "+line.ItemID.String())
		}
	}

	infos := make([]ReceivedLineInfo, 0, len(lines))
	for _, line := range lines {
		item := t.GetItem(line.ItemID)
		applied := item.addReceived(line.Quantity)
		if applied.IsZero() {
			continue
		}
		infos = append(infos, ReceivedLineInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    applied,
			Unit:        item.Unit,
		})
	}

	now := time.Now()
	if t.isFullyReceived() {
		t.Status = TransferStatusReceived
		t.ReceivedAt = &now
	} else {
		t.Status = TransferStatusPartialReceived
	}
	t.UpdatedAt = now

	t.AddDomainEvent(NewTransferReceivedEvent(t, infos))

	return infos, nil
}

// Cancel abandons the transfer. Allowed only in draft, before any stock moved.
func (t *StockTransfer) Cancel(reason string) error {
	if !t.Status.CanTransitionTo(TransferStatusCancelled) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot cancel transfer in %s status", t.Status))
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeValidation, "Cancel reason is required")
	}

	now := time.Now()
	t.Status = TransferStatusCancelled
	t.CancelledAt = &now
	t.CancelReason = reason
	t.UpdatedAt = now

	t.AddDomainEvent(NewTransferCancelledEvent(t))

	return nil
}

// CanDelete reports whether the transfer may be hard-deleted
func (t *StockTransfer) CanDelete() bool {
	return t.Status == TransferStatusDraft
}

func (t *StockTransfer) remainingAsReceiveLines() []ReceiveLine {
	lines := make([]ReceiveLine, 0, len(t.Items))
	for idx := range t.Items {
		if remaining := t.Items[idx].RemainingQuantity(); remaining.IsPositive() {
			lines = append(lines, ReceiveLine{ItemID: t.Items[idx].ID, Quantity: remaining})
		}
	}
	return lines
}

func (t *StockTransfer) isFullyReceived() bool {
	for idx := range t.Items {
		if !t.Items[idx].IsFullyReceived() {
			return false
		}
	}
	return true
}

// GetItem returns a transfer line by its ID, nil when absent
func (t *StockTransfer) GetItem(itemID uuid.UUID) *TransferItem {
	for idx := range t.Items {
		if t.Items[idx].ID == itemID {
			return &t.Items[idx]
		}
	}
	return nil
}

// TotalSentQuantity returns the sum of sent quantities across lines
func (t *StockTransfer) TotalSentQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.SentQuantity)
	}
	return total
}

// TotalReceivedQuantity returns the sum of received quantities across lines
func (t *StockTransfer) TotalReceivedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.ReceivedQuantity)
	}
	return total
}

// TotalRemainingQuantity returns the quantity still in transit
func (t *StockTransfer) TotalRemainingQuantity() decimal.Decimal {
	total := decimal.Zero
	for idx := range t.Items {
		total = total.Add(t.Items[idx].RemainingQuantity())
	}
	return total
}

// ItemCount returns the number of transfer lines
func (t *StockTransfer) ItemCount() int {
	return len(t.Items)
}

// IsDraft returns true while the transfer is editable
func (t *StockTransfer) IsDraft() bool {
	return t.Status == TransferStatusDraft
}

// IsTerminal returns true when no further transition is possible
func (t *StockTransfer) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// Clone returns a deep copy used for tentative-apply-then-rollback
func (t *StockTransfer) Clone() *StockTransfer {
	copied := *t
	copied.Items = make([]TransferItem, len(t.Items))
	copy(copied.Items, t.Items)
	copied.ClearDomainEvents()
	return &copied
}

// Restore overwrites the aggregate with a previously taken clone
func (t *StockTransfer) Restore(snapshot *StockTransfer) {
	*t = *snapshot.Clone()
}
