package returns

import (
	"context"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/returns"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReturnService drives the sale return workflow: open a draft, edit line
// quantities, split the refund across payment methods, then finalize, void
// or delete. The domain aggregate validates every step; this service wires
// the aggregate to its repositories, the idempotency store and the event bus.
type ReturnService struct {
	returnRepo       returns.SaleReturnRepository
	saleRepo         returns.SaleRepository
	eventPublisher   shared.EventPublisher
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	returnRepo returns.SaleReturnRepository,
	saleRepo returns.SaleRepository,
) *ReturnService {
	return &ReturnService{
		returnRepo:     returnRepo,
		saleRepo:       saleRepo,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
	}
}

// SetEventPublisher sets the event publisher for audit integration
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the store used to deduplicate terminal transitions
func (s *ReturnService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

// StartDraft opens a return draft against a completed sale
func (s *ReturnService) StartDraft(ctx context.Context, tenantID uuid.UUID, req StartDraftRequest) (*ReturnResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, req.SaleID)
	if err != nil {
		return nil, err
	}

	returnNumber, err := s.returnRepo.GenerateReturnNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sr, err := returns.NewSaleReturn(tenantID, returnNumber, sale)
	if err != nil {
		return nil, err
	}

	if req.Remark != "" {
		sr.SetRemark(req.Remark)
	}
	if req.CreatedBy != nil {
		sr.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.returnRepo.Save(ctx, sr); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sr)

	response := ToReturnResponse(sr)
	return &response, nil
}

// GetByID retrieves a sale return by ID
func (s *ReturnService) GetByID(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(sr)
	return &response, nil
}

// GetByReturnNumber retrieves a sale return by return number
func (s *ReturnService) GetByReturnNumber(ctx context.Context, tenantID uuid.UUID, returnNumber string) (*ReturnResponse, error) {
	sr, err := s.returnRepo.FindByReturnNumber(ctx, tenantID, returnNumber)
	if err != nil {
		return nil, err
	}
	response := ToReturnResponse(sr)
	return &response, nil
}

// GetSale retrieves the parent sale with current remaining quantities,
// used when a draft wizard (re)opens
func (s *ReturnService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sale returns with filtering and pagination
func (s *ReturnService) List(ctx context.Context, tenantID uuid.UUID, filter ReturnListFilter) ([]ReturnListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.SaleID != nil {
		domainFilter.Filters["sale_id"] = *filter.SaleID
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	items, err := s.returnRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.returnRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToReturnListItemResponses(items), total, nil
}

// ListBySale retrieves the returns raised against one sale
func (s *ReturnService) ListBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]ReturnListItemResponse, error) {
	items, err := s.returnRepo.FindBySale(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	return ToReturnListItemResponses(items), nil
}

// StatusSummary reports per-status counts for the returns list header
func (s *ReturnService) StatusSummary(ctx context.Context, tenantID uuid.UUID) (*StatusSummaryResponse, error) {
	draft, err := s.returnRepo.CountByStatus(ctx, tenantID, returns.ReturnStatusDraft)
	if err != nil {
		return nil, err
	}
	finalized, err := s.returnRepo.CountByStatus(ctx, tenantID, returns.ReturnStatusFinalized)
	if err != nil {
		return nil, err
	}
	void, err := s.returnRepo.CountByStatus(ctx, tenantID, returns.ReturnStatusVoid)
	if err != nil {
		return nil, err
	}
	return &StatusSummaryResponse{Draft: draft, Finalized: finalized, Void: void}, nil
}

// UpdateLines upserts draft lines against the current state of the parent
// sale and persists the recomputed totals
func (s *ReturnService) UpdateLines(ctx context.Context, tenantID, returnID uuid.UUID, req UpdateLinesRequest) (*ReturnResponse, error) {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, sr.SaleID)
	if err != nil {
		return nil, err
	}

	entries := make([]returns.LineInput, len(req.Entries))
	for i, entry := range req.Entries {
		entries[i] = returns.LineInput{
			SaleItemID:   entry.SaleItemID,
			RequestedQty: entry.RequestedQty,
			ReasonCode:   entry.ReasonCode,
		}
	}

	if err := sr.AddOrUpdateLines(sale, entries); err != nil {
		return nil, err
	}

	if err := s.returnRepo.SaveWithLock(ctx, sr); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sr)

	response := ToReturnResponse(sr)
	return &response, nil
}

// SetLineQuantity applies a stepper edit to one draft line. The response
// reflects the clamped quantity, which may differ from the request.
func (s *ReturnService) SetLineQuantity(ctx context.Context, tenantID, returnID, saleItemID uuid.UUID, req SetLineQuantityRequest) (*ReturnResponse, error) {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}

	if _, err := sr.SetLineRequested(saleItemID, req.RequestedQty); err != nil {
		return nil, err
	}

	if err := s.returnRepo.SaveWithLock(ctx, sr); err != nil {
		return nil, err
	}

	response := ToReturnResponse(sr)
	return &response, nil
}

// RequestAllRemaining sets every draft line to its full remaining quantity
func (s *ReturnService) RequestAllRemaining(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	return s.bulkQuantityOp(ctx, tenantID, returnID, (*returns.SaleReturn).RequestAllRemaining)
}

// ClearRequested zeroes every draft line's requested quantity
func (s *ReturnService) ClearRequested(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	return s.bulkQuantityOp(ctx, tenantID, returnID, (*returns.SaleReturn).ClearRequested)
}

func (s *ReturnService) bulkQuantityOp(ctx context.Context, tenantID, returnID uuid.UUID, op func(*returns.SaleReturn) error) (*ReturnResponse, error) {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	if err := op(sr); err != nil {
		return nil, err
	}
	if err := s.returnRepo.SaveWithLock(ctx, sr); err != nil {
		return nil, err
	}
	response := ToReturnResponse(sr)
	return &response, nil
}

// RemoveLine removes a line from the draft
func (s *ReturnService) RemoveLine(ctx context.Context, tenantID, returnID, saleItemID uuid.UUID) (*ReturnResponse, error) {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}

	if err := sr.RemoveLine(saleItemID); err != nil {
		return nil, err
	}

	if err := s.returnRepo.SaveWithLock(ctx, sr); err != nil {
		return nil, err
	}

	response := ToReturnResponse(sr)
	return &response, nil
}

// UpdateDraft updates draft header fields
func (s *ReturnService) UpdateDraft(ctx context.Context, tenantID, returnID uuid.UUID, req UpdateDraftRequest) (*ReturnResponse, error) {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	if !sr.IsDraft() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Return can only be modified in draft status")
	}

	if req.Remark != nil {
		sr.SetRemark(*req.Remark)
	}

	if err := s.returnRepo.SaveWithLock(ctx, sr); err != nil {
		return nil, err
	}

	response := ToReturnResponse(sr)
	return &response, nil
}

// SuggestSplit proposes an even split of the draft's refund total across n
// rows, last row absorbing the rounding residual
func (s *ReturnService) SuggestSplit(ctx context.Context, tenantID, returnID uuid.UUID, req SplitAllocationRequest) ([]AllocationRowResponse, error) {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}

	alloc, err := returns.NewRefundAllocation(sr.GetRefundTotalMoney())
	if err != nil {
		return nil, err
	}
	if err := alloc.SplitEvenly(req.Parts); err != nil {
		return nil, err
	}

	return ToAllocationRowResponses(alloc.Rows()), nil
}

// Finalize commits the draft: validates the refund breakdown, records the
// returned quantities on the parent sale and marks the return FINALIZED.
// The aggregate mutations are applied optimistically and rolled back from a
// snapshot when a persistence call fails, so a failed finalize leaves both
// documents as they were.
func (s *ReturnService) Finalize(ctx context.Context, tenantID, returnID uuid.UUID, req FinalizeRequest) (*ReturnResponse, error) {
	if done, err := s.alreadyProcessed(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	} else if done {
		return s.GetByID(ctx, tenantID, returnID)
	}

	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, sr.SaleID)
	if err != nil {
		return nil, err
	}

	alloc, err := buildAllocation(sr.GetRefundTotalMoney().Amount(), req.Allocation)
	if err != nil {
		return nil, err
	}

	returnSnapshot := sr.Clone()
	saleSnapshot := *sale
	saleSnapshot.Items = append([]returns.SaleItem(nil), sale.Items...)

	if err := sr.Finalize(alloc); err != nil {
		return nil, err
	}
	if err := sale.ApplyReturn(sr.RequestedBySaleItem()); err != nil {
		sr.Restore(returnSnapshot)
		return nil, err
	}

	if err := s.returnRepo.SaveWithLock(ctx, sr); err != nil {
		sr.Restore(returnSnapshot)
		return nil, err
	}
	if err := s.saleRepo.SaveWithLock(ctx, sale); err != nil {
		sr.Restore(returnSnapshot)
		*sale = saleSnapshot
		return nil, err
	}

	s.markProcessed(ctx, req.IdempotencyKey)
	s.publishEvents(ctx, sr)

	response := ToReturnResponse(sr)
	return &response, nil
}

// Void abandons a draft without touching the parent sale
func (s *ReturnService) Void(ctx context.Context, tenantID, returnID uuid.UUID, req VoidRequest, idempotencyKey string) (*ReturnResponse, error) {
	if done, err := s.alreadyProcessed(ctx, idempotencyKey); err != nil {
		return nil, err
	} else if done {
		return s.GetByID(ctx, tenantID, returnID)
	}

	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}

	snapshot := sr.Clone()
	if err := sr.Void(req.Reason); err != nil {
		return nil, err
	}

	if err := s.returnRepo.SaveWithLock(ctx, sr); err != nil {
		sr.Restore(snapshot)
		return nil, err
	}

	s.markProcessed(ctx, idempotencyKey)
	s.publishEvents(ctx, sr)

	response := ToReturnResponse(sr)
	return &response, nil
}

// Delete hard-deletes a draft return
func (s *ReturnService) Delete(ctx context.Context, tenantID, returnID uuid.UUID) error {
	sr, err := s.returnRepo.FindByIDForTenant(ctx, tenantID, returnID)
	if err != nil {
		return err
	}

	if !sr.CanDelete() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft returns can be deleted")
	}

	if err := s.returnRepo.DeleteForTenant(ctx, tenantID, returnID); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, returns.NewSaleReturnDeletedEvent(sr))
	}

	return nil
}

// buildAllocation turns request rows into a validated-shape RefundAllocation
// against the draft's refund total
func buildAllocation(target decimal.Decimal, rows []AllocationRowInput) (*returns.RefundAllocation, error) {
	domainRows := make([]returns.AllocationRow, len(rows))
	for i, row := range rows {
		method, err := returns.ParsePaymentMethod(row.Method)
		if err != nil {
			return nil, err
		}
		domainRows[i] = returns.AllocationRow{
			Method:      method,
			Amount:      row.Amount,
			ExternalRef: row.ExternalRef,
		}
	}
	return returns.RehydrateRefundAllocation(valueobject.NewMoneyUSD(target), domainRows)
}

func (s *ReturnService) publishEvents(ctx context.Context, sr *returns.SaleReturn) {
	if s.eventPublisher == nil {
		return
	}
	events := sr.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Audit emission is fire-and-forget; a publish failure never fails the
	// committed operation
	_ = s.eventPublisher.Publish(ctx, events...)
	sr.ClearDomainEvents()
}

func (s *ReturnService) alreadyProcessed(ctx context.Context, key string) (bool, error) {
	if key == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return false, nil
	}
	return s.idempotencyStore.IsProcessed(ctx, key)
}

func (s *ReturnService) markProcessed(ctx context.Context, key string) {
	if key == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return
	}
	_, _ = s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
}
