package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDraft(t *testing.T) (*Sale, *SaleReturn) {
	sale := createTestSale(t)
	sr, err := NewSaleReturn(sale.TenantID, "SR-2026-00001", sale)
	require.NoError(t, err)
	return sale, sr
}

func TestNewSaleReturn(t *testing.T) {
	t.Run("opens an empty draft", func(t *testing.T) {
		sale, sr := createTestDraft(t)

		assert.Equal(t, "SR-2026-00001", sr.ReturnNumber)
		assert.Equal(t, sale.ID, sr.SaleID)
		assert.Equal(t, sale.SaleNumber, sr.SaleNumber)
		assert.Equal(t, sale.CustomerID, sr.CustomerID)
		assert.Equal(t, ReturnStatusDraft, sr.Status)
		assert.Equal(t, 0, sr.LineCount())
		assert.True(t, sr.RefundTotal.IsZero())
		assert.True(t, sr.CanDelete())
	})

	t.Run("fails with empty return number", func(t *testing.T) {
		sale := createTestSale(t)
		sr, err := NewSaleReturn(sale.TenantID, "", sale)
		assert.Nil(t, sr)
		assert.Error(t, err)
	})

	t.Run("fails with nil sale", func(t *testing.T) {
		sr, err := NewSaleReturn(uuid.New(), "SR-001", nil)
		assert.Nil(t, sr)
		assert.Error(t, err)
	})

	t.Run("raises created event", func(t *testing.T) {
		_, sr := createTestDraft(t)
		events := sr.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSaleReturnCreated, events[0].EventType())
	})
}

func TestSaleReturn_AddOrUpdateLines(t *testing.T) {
	t.Run("adds lines and computes proportional totals", func(t *testing.T) {
		sale, sr := createTestDraft(t)

		err := sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(3), ReasonCode: "DEFECTIVE"},
			{SaleItemID: sale.Items[1].ID, RequestedQty: decimal.NewFromInt(2), ReasonCode: "WRONG_ITEM"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, sr.LineCount())

		// Line A: 3/10 of (100.00 + 8.25 - 5.00) = 30.98
		// Line B: 2/4 of (100.00 + 9.00) = 54.50
		assert.True(t, sr.RefundTotal.Equal(decimal.RequireFromString("85.48")), "refund total %s", sr.RefundTotal)
	})

	t.Run("second entry for the same line replaces it", func(t *testing.T) {
		sale, sr := createTestDraft(t)

		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(3), ReasonCode: "DEFECTIVE"},
		}))
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(5), ReasonCode: "DAMAGED"},
		}))

		assert.Equal(t, 1, sr.LineCount())
		line := sr.GetLineBySaleItem(sale.Items[0].ID)
		require.NotNil(t, line)
		assert.True(t, line.RequestedQty.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, "DAMAGED", line.ReasonCode)
	})

	t.Run("clamps quantities above the remaining window", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		sale.Items[1].ReturnedQuantity = decimal.NewFromInt(3) // 1 remaining of 4

		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[1].ID, RequestedQty: decimal.NewFromInt(4), ReasonCode: "DEFECTIVE"},
		}))

		line := sr.GetLineBySaleItem(sale.Items[1].ID)
		assert.True(t, line.RequestedQty.Equal(decimal.NewFromInt(1)))
	})

	t.Run("rejects negative quantity without applying the batch", func(t *testing.T) {
		sale, sr := createTestDraft(t)

		err := sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(2), ReasonCode: "DEFECTIVE"},
			{SaleItemID: sale.Items[1].ID, RequestedQty: decimal.NewFromInt(-1), ReasonCode: "DEFECTIVE"},
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, domainCode(t, err))
		assert.Equal(t, 0, sr.LineCount())
	})

	t.Run("rejects positive quantity without a reason", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		err := sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(2)},
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, domainCode(t, err))
	})

	t.Run("rejects unknown sale line", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		err := sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: uuid.New(), RequestedQty: decimal.NewFromInt(1), ReasonCode: "DEFECTIVE"},
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, domainCode(t, err))
	})

	t.Run("rejects edits outside draft", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.Void("duplicate"))

		err := sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(1), ReasonCode: "DEFECTIVE"},
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, domainCode(t, err))
	})
}

func TestSaleReturn_SetLineRequested(t *testing.T) {
	t.Run("returns the clamped value", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(1), ReasonCode: "DEFECTIVE"},
		}))

		applied, err := sr.SetLineRequested(sale.Items[0].ID, decimal.NewFromInt(99))
		require.NoError(t, err)
		assert.True(t, applied.Equal(decimal.NewFromInt(10)))
		assert.True(t, sr.RefundTotal.Equal(decimal.RequireFromString("103.25")))
	})

	t.Run("unknown line", func(t *testing.T) {
		_, sr := createTestDraft(t)
		_, err := sr.SetLineRequested(uuid.New(), decimal.NewFromInt(1))
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, domainCode(t, err))
	})
}

func TestSaleReturn_BulkQuantityOps(t *testing.T) {
	t.Run("request all remaining then clear", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(1), ReasonCode: "DEFECTIVE"},
			{SaleItemID: sale.Items[1].ID, RequestedQty: decimal.NewFromInt(1), ReasonCode: "DEFECTIVE"},
		}))

		require.NoError(t, sr.RequestAllRemaining())
		// Full sale: 212.25
		assert.True(t, sr.RefundTotal.Equal(decimal.RequireFromString("212.25")))
		assert.True(t, sr.TotalRequestedQuantity().Equal(decimal.NewFromInt(14)))

		require.NoError(t, sr.ClearRequested())
		assert.True(t, sr.RefundTotal.IsZero())
		assert.True(t, sr.TotalRequestedQuantity().IsZero())
	})
}

func TestSaleReturn_RemoveLine(t *testing.T) {
	t.Run("removes and recomputes", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(3), ReasonCode: "DEFECTIVE"},
			{SaleItemID: sale.Items[1].ID, RequestedQty: decimal.NewFromInt(2), ReasonCode: "DEFECTIVE"},
		}))

		require.NoError(t, sr.RemoveLine(sale.Items[0].ID))
		assert.Equal(t, 1, sr.LineCount())
		assert.True(t, sr.RefundTotal.Equal(decimal.RequireFromString("54.50")))
	})

	t.Run("unknown line", func(t *testing.T) {
		_, sr := createTestDraft(t)
		err := sr.RemoveLine(uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, domainCode(t, err))
	})
}

func TestSaleReturn_Finalize(t *testing.T) {
	buildDraft := func(t *testing.T) (*Sale, *SaleReturn) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(3), ReasonCode: "DEFECTIVE"},
		}))
		return sale, sr
	}

	t.Run("finalizes with a matching allocation", func(t *testing.T) {
		_, sr := buildDraft(t)
		alloc, err := NewRefundAllocation(sr.GetRefundTotalMoney())
		require.NoError(t, err)

		require.NoError(t, sr.Finalize(alloc))
		assert.Equal(t, ReturnStatusFinalized, sr.Status)
		assert.NotNil(t, sr.FinalizedAt)
		assert.False(t, sr.CanDelete())
		require.Len(t, sr.Allocation, 1)
		assert.True(t, sr.Allocation[0].Amount.Equal(sr.RefundTotal))
	})

	t.Run("rejects mismatched allocation sum", func(t *testing.T) {
		_, sr := buildDraft(t)
		alloc, err := NewRefundAllocation(sr.GetRefundTotalMoney())
		require.NoError(t, err)
		_, err = alloc.SetAmount(0, decimal.RequireFromString("1.00"))
		require.NoError(t, err)

		err = sr.Finalize(alloc)
		require.Error(t, err)
		assert.Equal(t, shared.CodeAllocationMismatch, domainCode(t, err))
		assert.Equal(t, ReturnStatusDraft, sr.Status)
	})

	t.Run("rejects allocation built for a different total", func(t *testing.T) {
		_, sr := buildDraft(t)
		alloc, err := NewRefundAllocation(valueobject.NewMoneyUSD(decimal.RequireFromString("999.00")))
		require.NoError(t, err)

		err = sr.Finalize(alloc)
		require.Error(t, err)
		assert.Equal(t, shared.CodeAllocationMismatch, domainCode(t, err))
	})

	t.Run("rejects nil allocation", func(t *testing.T) {
		_, sr := buildDraft(t)
		err := sr.Finalize(nil)
		require.Error(t, err)
		assert.Equal(t, shared.CodeEmptyAllocation, domainCode(t, err))
	})

	t.Run("rejects draft with nothing requested", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.Zero},
		}))
		alloc, err := NewRefundAllocation(sr.GetRefundTotalMoney())
		require.NoError(t, err)

		err = sr.Finalize(alloc)
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, domainCode(t, err))
	})

	t.Run("terminal states refuse a second transition", func(t *testing.T) {
		_, sr := buildDraft(t)
		alloc, _ := NewRefundAllocation(sr.GetRefundTotalMoney())
		require.NoError(t, sr.Finalize(alloc))

		assert.Error(t, sr.Void("too late"))
		assert.Error(t, sr.Finalize(alloc))
	})

	t.Run("raises finalized event with line and allocation snapshot", func(t *testing.T) {
		_, sr := buildDraft(t)
		sr.ClearDomainEvents()
		alloc, _ := NewRefundAllocation(sr.GetRefundTotalMoney())
		require.NoError(t, sr.Finalize(alloc))

		events := sr.GetDomainEvents()
		require.Len(t, events, 1)
		finalized, ok := events[0].(*SaleReturnFinalizedEvent)
		require.True(t, ok)
		assert.Len(t, finalized.Lines, 1)
		assert.Len(t, finalized.Allocation, 1)
		assert.True(t, finalized.RefundTotal.Equal(sr.RefundTotal))
	})
}

func TestSaleReturn_Void(t *testing.T) {
	t.Run("voids a draft", func(t *testing.T) {
		_, sr := createTestDraft(t)
		require.NoError(t, sr.Void("customer changed mind"))

		assert.Equal(t, ReturnStatusVoid, sr.Status)
		assert.Equal(t, "customer changed mind", sr.VoidReason)
		assert.NotNil(t, sr.VoidedAt)
		assert.True(t, sr.IsTerminal())
		assert.False(t, sr.CanDelete())
	})

	t.Run("requires a reason", func(t *testing.T) {
		_, sr := createTestDraft(t)
		err := sr.Void("")
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, domainCode(t, err))
	})
}

func TestSaleReturn_Clone(t *testing.T) {
	t.Run("restore rolls back a tentative apply", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(3), ReasonCode: "DEFECTIVE"},
		}))

		snapshot := sr.Clone()

		alloc, _ := NewRefundAllocation(sr.GetRefundTotalMoney())
		require.NoError(t, sr.Finalize(alloc))
		require.Equal(t, ReturnStatusFinalized, sr.Status)

		sr.Restore(snapshot)
		assert.Equal(t, ReturnStatusDraft, sr.Status)
		assert.Nil(t, sr.FinalizedAt)
		assert.Empty(t, sr.Allocation)
		assert.Equal(t, 1, sr.LineCount())
	})

	t.Run("clone is independent of the original", func(t *testing.T) {
		sale, sr := createTestDraft(t)
		require.NoError(t, sr.AddOrUpdateLines(sale, []LineInput{
			{SaleItemID: sale.Items[0].ID, RequestedQty: decimal.NewFromInt(3), ReasonCode: "DEFECTIVE"},
		}))

		snapshot := sr.Clone()
		_, err := sr.SetLineRequested(sale.Items[0].ID, decimal.NewFromInt(9))
		require.NoError(t, err)

		assert.True(t, snapshot.Lines[0].RequestedQty.Equal(decimal.NewFromInt(3)))
	})
}

func TestReturnStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    ReturnStatus
		to      ReturnStatus
		allowed bool
	}{
		{ReturnStatusDraft, ReturnStatusFinalized, true},
		{ReturnStatusDraft, ReturnStatusVoid, true},
		{ReturnStatusFinalized, ReturnStatusVoid, false},
		{ReturnStatusFinalized, ReturnStatusDraft, false},
		{ReturnStatusVoid, ReturnStatusDraft, false},
		{ReturnStatusVoid, ReturnStatusFinalized, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}
