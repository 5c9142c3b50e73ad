package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the status of a sale return draft
type ReturnStatus string

const (
	ReturnStatusDraft     ReturnStatus = "DRAFT"
	ReturnStatusFinalized ReturnStatus = "FINALIZED" // Refund issued, stock adjusted
	ReturnStatusVoid      ReturnStatus = "VOID"      // Abandoned without effect
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusDraft, ReturnStatusFinalized, ReturnStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no transition leaves
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusFinalized || s == ReturnStatusVoid
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	switch s {
	case ReturnStatusDraft:
		return target == ReturnStatusFinalized || target == ReturnStatusVoid
	case ReturnStatusFinalized, ReturnStatusVoid:
		return false
	}
	return false
}

// LineInput is one upsert entry for AddOrUpdateLines
type LineInput struct {
	SaleItemID   uuid.UUID
	RequestedQty decimal.Decimal
	ReasonCode   string
}

// SaleReturn is the draft document of one in-progress return. It owns its
// line collection, recomputes the refund total whenever a line changes, and
// gates every mutation on the draft status. Terminal transitions validate
// fully before mutating, so a failed call leaves the draft unchanged.
type SaleReturn struct {
	shared.TenantAggregateRoot
	ReturnNumber string
	SaleID       uuid.UUID // Back-reference to the parent sale (not ownership)
	SaleNumber   string
	CustomerID   uuid.UUID
	CustomerName string
	Lines        []ReturnLine
	RefundTotal  decimal.Decimal
	Status       ReturnStatus
	Allocation   []AllocationRow // Set when the return is finalized
	Remark       string
	FinalizedAt  *time.Time
	VoidedAt     *time.Time
	VoidReason   string
}

// NewSaleReturn opens a return draft against a completed sale. The draft
// starts empty; lines are added or updated as the user edits quantities.
func NewSaleReturn(tenantID uuid.UUID, returnNumber string, sale *Sale) (*SaleReturn, error) {
	if returnNumber == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Return number cannot be empty")
	}
	if len(returnNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Return number cannot exceed 50 characters")
	}
	if sale == nil {
		return nil, shared.NewDomainError(shared.CodeValidation, "Sale cannot be nil")
	}

	sr := &SaleReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReturnNumber:        returnNumber,
		SaleID:              sale.ID,
		SaleNumber:          sale.SaleNumber,
		CustomerID:          sale.CustomerID,
		CustomerName:        sale.CustomerName,
		Lines:               make([]ReturnLine, 0),
		RefundTotal:         decimal.Zero,
		Status:              ReturnStatusDraft,
	}

	sr.AddDomainEvent(NewSaleReturnCreatedEvent(sr))

	return sr, nil
}

// AddOrUpdateLines upserts draft lines keyed by sale line ID: an entry for a
// line already in the draft replaces it, never appends a duplicate. Entries
// are validated before anything is applied, so a rejected batch leaves the
// draft untouched. Requested quantities above a line's remaining window are
// clamped, matching the stepper behavior.
func (r *SaleReturn) AddOrUpdateLines(sale *Sale, entries []LineInput) error {
	if r.Status != ReturnStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit lines of a %s return", r.Status))
	}
	if sale == nil || sale.ID != r.SaleID {
		return shared.NewDomainError(shared.CodeValidation, "Lines must come from the parent sale")
	}

	// Validate the whole batch first
	for _, entry := range entries {
		if entry.RequestedQty.IsNegative() {
			return shared.NewDomainError(shared.CodeValidation, "Requested quantity cannot be negative")
		}
		if entry.RequestedQty.IsPositive() && entry.ReasonCode == "" {
			return shared.NewDomainError(shared.CodeValidation, "Reason code is required when returning quantity")
		}
		if sale.GetItem(entry.SaleItemID) == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Sale line not found: "+entry.SaleItemID.String())
		}
	}

	for _, entry := range entries {
		saleItem := sale.GetItem(entry.SaleItemID)
		if existing := r.GetLineBySaleItem(entry.SaleItemID); existing != nil {
			existing.SetRequested(entry.RequestedQty)
			existing.SetReasonCode(entry.ReasonCode)
		} else {
			line := newReturnLine(r.ID, saleItem, entry.RequestedQty, entry.ReasonCode)
			r.Lines = append(r.Lines, *line)
		}
	}

	r.recalculateRefundTotal()
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewSaleReturnLinesUpdatedEvent(r))

	return nil
}

// SetLineRequested applies a stepper edit to one line, clamping into the
// line's remaining window. The clamped value is returned.
func (r *SaleReturn) SetLineRequested(saleItemID uuid.UUID, qty decimal.Decimal) (decimal.Decimal, error) {
	if r.Status != ReturnStatusDraft {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit lines of a %s return", r.Status))
	}
	line := r.GetLineBySaleItem(saleItemID)
	if line == nil {
		return decimal.Zero, shared.NewDomainError(shared.CodeNotFound, "Return line not found")
	}

	applied := line.SetRequested(qty)
	r.recalculateRefundTotal()
	r.UpdatedAt = time.Now()

	return applied, nil
}

// RequestAllRemaining sets every line's requested quantity to its full
// remaining value ("return all")
func (r *SaleReturn) RequestAllRemaining() error {
	if r.Status != ReturnStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit lines of a %s return", r.Status))
	}

	for idx := range r.Lines {
		r.Lines[idx].SetRequested(r.Lines[idx].Remaining())
	}
	r.recalculateRefundTotal()
	r.UpdatedAt = time.Now()

	return nil
}

// ClearRequested zeroes every line's requested quantity ("clear all")
func (r *SaleReturn) ClearRequested() error {
	if r.Status != ReturnStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit lines of a %s return", r.Status))
	}

	for idx := range r.Lines {
		r.Lines[idx].SetRequested(decimal.Zero)
	}
	r.recalculateRefundTotal()
	r.UpdatedAt = time.Now()

	return nil
}

// RemoveLine removes a line from the draft
func (r *SaleReturn) RemoveLine(saleItemID uuid.UUID) error {
	if r.Status != ReturnStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot remove lines from a %s return", r.Status))
	}

	for idx, line := range r.Lines {
		if line.SaleItemID == saleItemID {
			r.Lines = append(r.Lines[:idx], r.Lines[idx+1:]...)
			r.recalculateRefundTotal()
			r.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError(shared.CodeNotFound, "Return line not found")
}

// SetRemark sets the draft remark
func (r *SaleReturn) SetRemark(remark string) {
	r.Remark = remark
	r.UpdatedAt = time.Now()
}

// Finalize commits the return: the allocation must cover the refund total
// exactly and every returned line must carry a reason code. On success the
// draft becomes FINALIZED, irreversibly.
func (r *SaleReturn) Finalize(allocation *RefundAllocation) error {
	if !r.Status.CanTransitionTo(ReturnStatusFinalized) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot finalize return in %s status", r.Status))
	}
	if allocation == nil {
		return shared.NewDomainError(shared.CodeEmptyAllocation, "Refund allocation is required")
	}
	if r.TotalRequestedQuantity().IsZero() {
		return shared.NewDomainError(shared.CodeValidation, "Cannot finalize a return with no requested quantities")
	}
	for idx := range r.Lines {
		if r.Lines[idx].RequestedQty.IsPositive() && r.Lines[idx].ReasonCode == "" {
			return shared.NewDomainError(shared.CodeValidation, "Reason code is required for line "+r.Lines[idx].ProductCode)
		}
	}
	if !allocation.Target().Amount().Equal(r.RefundTotal) {
		return shared.NewDomainError(shared.CodeAllocationMismatch, "Allocation target does not match the refund total")
	}
	if err := allocation.ValidateForFinalize(); err != nil {
		return err
	}

	now := time.Now()
	r.Status = ReturnStatusFinalized
	r.Allocation = allocation.Rows()
	r.FinalizedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewSaleReturnFinalizedEvent(r))

	return nil
}

// Void abandons the draft without effect. Terminal, irreversible.
func (r *SaleReturn) Void(reason string) error {
	if !r.Status.CanTransitionTo(ReturnStatusVoid) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot void return in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeValidation, "Void reason is required")
	}

	now := time.Now()
	r.Status = ReturnStatusVoid
	r.VoidedAt = &now
	r.VoidReason = reason
	r.UpdatedAt = now

	r.AddDomainEvent(NewSaleReturnVoidedEvent(r))

	return nil
}

// CanDelete reports whether the draft may be hard-deleted. Deleting is not a
// status transition: it is available only while the draft is mutable and
// removes the document entirely.
func (r *SaleReturn) CanDelete() bool {
	return r.Status == ReturnStatusDraft
}

// recalculateRefundTotal sums the quantity-proportional line refunds
func (r *SaleReturn) recalculateRefundTotal() {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.RefundAmount)
	}
	r.RefundTotal = total
}

// GetRefundTotalMoney returns the refund total as Money
func (r *SaleReturn) GetRefundTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(r.RefundTotal)
}

// TotalRequestedQuantity returns the sum of all requested quantities
func (r *SaleReturn) TotalRequestedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.RequestedQty)
	}
	return total
}

// LineCount returns the number of lines in the draft
func (r *SaleReturn) LineCount() int {
	return len(r.Lines)
}

// IsDraft returns true while the return is mutable
func (r *SaleReturn) IsDraft() bool {
	return r.Status == ReturnStatusDraft
}

// IsFinalized returns true once the refund has been committed
func (r *SaleReturn) IsFinalized() bool {
	return r.Status == ReturnStatusFinalized
}

// IsVoid returns true when the draft was abandoned
func (r *SaleReturn) IsVoid() bool {
	return r.Status == ReturnStatusVoid
}

// IsTerminal returns true when no further transition is possible
func (r *SaleReturn) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// GetLineBySaleItem returns the draft line referencing a sold line, nil when absent
func (r *SaleReturn) GetLineBySaleItem(saleItemID uuid.UUID) *ReturnLine {
	for idx := range r.Lines {
		if r.Lines[idx].SaleItemID == saleItemID {
			return &r.Lines[idx]
		}
	}
	return nil
}

// RequestedBySaleItem maps sale line IDs to requested quantities, skipping
// zero-quantity lines. Used when applying a finalized return to the sale.
func (r *SaleReturn) RequestedBySaleItem() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(r.Lines))
	for _, line := range r.Lines {
		if line.RequestedQty.IsPositive() {
			out[line.SaleItemID] = line.RequestedQty
		}
	}
	return out
}

// Clone returns a deep copy used for tentative-apply-then-rollback: the
// service mutates the live aggregate, persists it, and restores the clone
// when the save fails so no partially-applied state is observable.
func (r *SaleReturn) Clone() *SaleReturn {
	copied := *r
	copied.Lines = make([]ReturnLine, len(r.Lines))
	for idx := range r.Lines {
		copied.Lines[idx] = r.Lines[idx].clone()
	}
	copied.Allocation = make([]AllocationRow, len(r.Allocation))
	copy(copied.Allocation, r.Allocation)
	copied.ClearDomainEvents()
	return &copied
}

// Restore overwrites the aggregate with a previously taken clone
func (r *SaleReturn) Restore(snapshot *SaleReturn) {
	*r = *snapshot.Clone()
}
