package returns

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a refund row is settled
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodCard        PaymentMethod = "CARD"
	PaymentMethodStoreCredit PaymentMethod = "STORE_CREDIT"
	PaymentMethodGiftCard    PaymentMethod = "GIFT_CARD"
	PaymentMethodOther       PaymentMethod = "OTHER"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodStoreCredit,
		PaymentMethodGiftCard, PaymentMethodOther:
		return true
	}
	return false
}

// ParsePaymentMethod converts a string into a PaymentMethod
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError(shared.CodeValidation, "Unknown payment method: "+s)
	}
	return m, nil
}

// AllocationRow is one typed slice of the refund total
type AllocationRow struct {
	Method      PaymentMethod   `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef string          `json:"external_ref,omitempty"` // e.g. card transaction id
}

// RefundAllocation splits one refund total across payment methods. Every edit
// keeps the running sum at or below the target so the user can never build a
// breakdown that overshoots; exactness is enforced once at finalize.
// At least one row exists at all times.
type RefundAllocation struct {
	target    valueobject.Money
	rows      []AllocationRow
	updatedAt time.Time
}

// NewRefundAllocation creates an allocation seeded with a single cash row
// carrying the full target, the common single-tender case.
func NewRefundAllocation(target valueobject.Money) (*RefundAllocation, error) {
	if target.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidation, "Refund target cannot be negative")
	}
	return &RefundAllocation{
		target: target.Round(valueobject.MinorUnitPlaces),
		rows: []AllocationRow{
			{Method: PaymentMethodCash, Amount: target.Round(valueobject.MinorUnitPlaces).Amount()},
		},
		updatedAt: time.Now(),
	}, nil
}

// RehydrateRefundAllocation rebuilds an allocation from stored rows.
// Stored amounts are trusted as-is: a reopened draft keeps whatever the user
// last saved, and ValidateForFinalize remains the only gate on exactness.
func RehydrateRefundAllocation(target valueobject.Money, rows []AllocationRow) (*RefundAllocation, error) {
	if len(rows) == 0 {
		return NewRefundAllocation(target)
	}
	copied := make([]AllocationRow, len(rows))
	copy(copied, rows)
	return &RefundAllocation{
		target:    target.Round(valueobject.MinorUnitPlaces),
		rows:      copied,
		updatedAt: time.Now(),
	}, nil
}

// Target returns the amount the rows must sum to
func (a *RefundAllocation) Target() valueobject.Money {
	return a.target
}

// Rows returns a copy of the allocation rows
func (a *RefundAllocation) Rows() []AllocationRow {
	out := make([]AllocationRow, len(a.rows))
	copy(out, a.rows)
	return out
}

// RowCount returns the number of rows
func (a *RefundAllocation) RowCount() int {
	return len(a.rows)
}

// Sum returns the total currently allocated across all rows
func (a *RefundAllocation) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, row := range a.rows {
		sum = sum.Add(row.Amount)
	}
	return sum
}

// Remainder returns target minus the allocated sum
func (a *RefundAllocation) Remainder() decimal.Decimal {
	return a.target.Amount().Sub(a.Sum())
}

// AddRow appends a zero-amount row for the given method
func (a *RefundAllocation) AddRow(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, "Unknown payment method: "+string(method))
	}
	a.rows = append(a.rows, AllocationRow{Method: method, Amount: decimal.Zero})
	a.updatedAt = time.Now()
	return nil
}

// RemoveRow removes the row at index. The last remaining row can never be
// removed: an allocation always has at least one row.
func (a *RefundAllocation) RemoveRow(index int) error {
	if index < 0 || index >= len(a.rows) {
		return shared.NewDomainError(shared.CodeNotFound, "Allocation row not found")
	}
	if len(a.rows) == 1 {
		return shared.NewDomainError(shared.CodeValidation, "Cannot remove the last allocation row")
	}
	a.rows = append(a.rows[:index], a.rows[index+1:]...)
	a.updatedAt = time.Now()
	return nil
}

// SetMethod changes the payment method of a row
func (a *RefundAllocation) SetMethod(index int, method PaymentMethod) error {
	if index < 0 || index >= len(a.rows) {
		return shared.NewDomainError(shared.CodeNotFound, "Allocation row not found")
	}
	if !method.IsValid() {
		return shared.NewDomainError(shared.CodeValidation, "Unknown payment method: "+string(method))
	}
	a.rows[index].Method = method
	a.updatedAt = time.Now()
	return nil
}

// SetExternalRef attaches an external settlement reference to a row
func (a *RefundAllocation) SetExternalRef(index int, ref string) error {
	if index < 0 || index >= len(a.rows) {
		return shared.NewDomainError(shared.CodeNotFound, "Allocation row not found")
	}
	a.rows[index].ExternalRef = ref
	a.updatedAt = time.Now()
	return nil
}

// SetAmount applies a user edit to one row. The value is clamped to >= 0 and,
// when the edit would push the running sum past the target, reduced so the
// sum stays at the target. Only the edited row is adjusted; the other rows
// are left untouched. The applied amount is returned.
func (a *RefundAllocation) SetAmount(index int, value decimal.Decimal) (decimal.Decimal, error) {
	if index < 0 || index >= len(a.rows) {
		return decimal.Zero, shared.NewDomainError(shared.CodeNotFound, "Allocation row not found")
	}

	value = value.Round(valueobject.MinorUnitPlaces)
	if value.IsNegative() {
		value = decimal.Zero
	}

	others := a.Sum().Sub(a.rows[index].Amount)
	if ceiling := a.target.Amount().Sub(others); value.GreaterThan(ceiling) {
		value = ceiling
		if value.IsNegative() {
			value = decimal.Zero
		}
	}

	a.rows[index].Amount = value
	a.updatedAt = time.Now()

	return value, nil
}

// SplitEvenly divides the target into n equal shares truncated to the minor
// currency unit, the last share absorbing the residual so the sum is exact.
// The allocation is resized to n rows; methods of existing rows are kept and
// new rows default to cash.
func (a *RefundAllocation) SplitEvenly(n int) error {
	if n < 1 {
		return shared.NewDomainError(shared.CodeValidation, "Split count must be at least 1")
	}

	shares, err := a.target.Split(n)
	if err != nil {
		return shared.NewDomainError(shared.CodeValidation, err.Error())
	}

	rows := make([]AllocationRow, n)
	for i := range rows {
		if i < len(a.rows) {
			rows[i] = a.rows[i]
		} else {
			rows[i] = AllocationRow{Method: PaymentMethodCash}
		}
		rows[i].Amount = shares[i].Amount()
	}

	a.rows = rows
	a.updatedAt = time.Now()

	return nil
}

// ApplyRemainder adds the currently unallocated remainder onto one row
func (a *RefundAllocation) ApplyRemainder(index int) error {
	if index < 0 || index >= len(a.rows) {
		return shared.NewDomainError(shared.CodeNotFound, "Allocation row not found")
	}

	remainder := a.Remainder()
	if remainder.IsZero() {
		return nil
	}

	amount := a.rows[index].Amount.Add(remainder)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	a.rows[index].Amount = amount
	a.updatedAt = time.Now()

	return nil
}

// ValidateForFinalize checks that the breakdown is committable: at least one
// row, no negative amounts, and a sum exactly equal to the target at minor
// unit precision.
func (a *RefundAllocation) ValidateForFinalize() error {
	if len(a.rows) == 0 {
		return shared.NewDomainError(shared.CodeEmptyAllocation, "Refund allocation has no rows")
	}
	for _, row := range a.rows {
		if !row.Method.IsValid() {
			return shared.NewDomainError(shared.CodeValidation, "Unknown payment method: "+string(row.Method))
		}
		if row.Amount.IsNegative() {
			return shared.NewDomainError(shared.CodeValidation, "Allocation amounts cannot be negative")
		}
	}
	if !a.Sum().Round(valueobject.MinorUnitPlaces).Equal(a.target.Amount().Round(valueobject.MinorUnitPlaces)) {
		return shared.NewDomainError(shared.CodeAllocationMismatch,
			"Allocated "+a.Sum().StringFixed(valueobject.MinorUnitPlaces)+
				" does not match refund total "+a.target.Amount().StringFixed(valueobject.MinorUnitPlaces))
	}
	return nil
}

// AllocationRows is a slice of AllocationRow that implements the GORM
// Scanner/Valuer interfaces for JSONB storage.
type AllocationRows []AllocationRow

// Value implements driver.Valuer for JSONB storage
func (r AllocationRows) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for reading back from JSONB
func (r *AllocationRows) Scan(value interface{}) error {
	if value == nil {
		*r = AllocationRows{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan AllocationRows: unsupported type")
	}

	if len(bytes) == 0 {
		*r = AllocationRows{}
		return nil
	}

	return json.Unmarshal(bytes, r)
}
