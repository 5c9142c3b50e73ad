package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnLine_SetRequested(t *testing.T) {
	sale := createTestSale(t)
	item := &sale.Items[0] // 10 sold, 100.00 subtotal, 8.25 tax, 5.00 discount

	t.Run("clamps negative input to zero", func(t *testing.T) {
		line := newReturnLine(uuid.New(), item, decimal.Zero, "")
		applied := line.SetRequested(decimal.NewFromInt(-3))
		assert.True(t, applied.IsZero())
		assert.True(t, line.RefundAmount.IsZero())
	})

	t.Run("clamps input above remaining", func(t *testing.T) {
		line := newReturnLine(uuid.New(), item, decimal.Zero, "")
		applied := line.SetRequested(decimal.NewFromInt(25))
		assert.True(t, applied.Equal(decimal.NewFromInt(10)))
		assert.True(t, line.RequestedQty.Equal(decimal.NewFromInt(10)))
	})

	t.Run("respects quantity already returned", func(t *testing.T) {
		returned := *item
		returned.ReturnedQuantity = decimal.NewFromInt(6)
		line := newReturnLine(uuid.New(), &returned, decimal.Zero, "")

		assert.True(t, line.Remaining().Equal(decimal.NewFromInt(4)))
		applied := line.SetRequested(decimal.NewFromInt(10))
		assert.True(t, applied.Equal(decimal.NewFromInt(4)))
	})

	t.Run("accepts fractional quantities", func(t *testing.T) {
		line := newReturnLine(uuid.New(), item, decimal.Zero, "")
		applied := line.SetRequested(decimal.RequireFromString("2.5"))
		assert.True(t, applied.Equal(decimal.RequireFromString("2.5")))
	})
}

func TestReturnLine_ProportionalAmounts(t *testing.T) {
	sale := createTestSale(t)
	item := &sale.Items[0] // 10 sold: subtotal 100.00, tax 8.25, discount 5.00

	t.Run("scales captured amounts by the requested fraction", func(t *testing.T) {
		line := newReturnLine(uuid.New(), item, decimal.NewFromInt(3), "DEFECTIVE")

		// 3/10 of each captured component, rounded to cents
		assert.True(t, line.Subtotal.Equal(decimal.RequireFromString("30.00")), "subtotal %s", line.Subtotal)
		assert.True(t, line.Tax.Equal(decimal.RequireFromString("2.48")), "tax %s", line.Tax)
		assert.True(t, line.Discount.Equal(decimal.RequireFromString("1.50")), "discount %s", line.Discount)
		assert.True(t, line.RefundAmount.Equal(decimal.RequireFromString("30.98")), "refund %s", line.RefundAmount)
	})

	t.Run("full quantity refunds the full captured line", func(t *testing.T) {
		line := newReturnLine(uuid.New(), item, decimal.NewFromInt(10), "DEFECTIVE")
		assert.True(t, line.RefundAmount.Equal(decimal.RequireFromString("103.25")))
	})

	t.Run("zero quantity yields zero amounts", func(t *testing.T) {
		line := newReturnLine(uuid.New(), item, decimal.NewFromInt(4), "DEFECTIVE")
		line.SetRequested(decimal.Zero)
		assert.True(t, line.Subtotal.IsZero())
		assert.True(t, line.Tax.IsZero())
		assert.True(t, line.Discount.IsZero())
		assert.True(t, line.RefundAmount.IsZero())
	})
}

func TestReturnLine_Rehydrate(t *testing.T) {
	t.Run("restores captured decomposition for recompute", func(t *testing.T) {
		sale := createTestSale(t)
		line := newReturnLine(uuid.New(), &sale.Items[0], decimal.NewFromInt(2), "DAMAGED")

		// Simulate a load from persistence: the unexported captured fields
		// are gone, only the flattened columns survive.
		loaded := ReturnLine{
			ID:             line.ID,
			ReturnID:       line.ReturnID,
			SaleItemID:     line.SaleItemID,
			SoldQuantity:   line.SoldQuantity,
			ReturnedBefore: line.ReturnedBefore,
			RequestedQty:   line.RequestedQty,
			ReasonCode:     line.ReasonCode,
		}
		loaded.Rehydrate(line.SoldSubtotal(), line.SoldTax(), line.SoldDiscount())

		applied := loaded.SetRequested(decimal.NewFromInt(5))
		require.True(t, applied.Equal(decimal.NewFromInt(5)))
		assert.True(t, loaded.Subtotal.Equal(decimal.RequireFromString("50.00")))
	})
}
