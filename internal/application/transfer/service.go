package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/posadmin/backend/internal/domain/shared"
	"github.com/posadmin/backend/internal/domain/transfer"
)

// TransferService drives the stock transfer workflow: plan lines in draft,
// send, then receive at the destination in one or more steps until the
// transfer is fully received.
type TransferService struct {
	transferRepo     transfer.StockTransferRepository
	eventPublisher   shared.EventPublisher
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
}

// NewTransferService creates a new TransferService
func NewTransferService(transferRepo transfer.StockTransferRepository) *TransferService {
	return &TransferService{
		transferRepo:   transferRepo,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
	}
}

// SetEventPublisher sets the event publisher for audit integration
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore sets the store used to deduplicate receive requests
func (s *TransferService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyCfg = cfg
}

// Create opens a transfer draft, optionally pre-populated with lines
func (s *TransferService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTransferRequest) (*TransferResponse, error) {
	transferNumber, err := s.transferRepo.GenerateTransferNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	st, err := transfer.NewStockTransfer(tenantID, transferNumber, req.SourceStoreID, req.TargetStoreID)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if err := st.AddItem(item.ProductID, item.ProductName, item.ProductCode, item.Unit, item.Quantity); err != nil {
			return nil, err
		}
	}

	if req.Remark != "" {
		st.SetRemark(req.Remark)
	}
	if req.CreatedBy != nil {
		st.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.transferRepo.Save(ctx, st); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, st)

	response := ToTransferResponse(st)
	return &response, nil
}

// GetByID retrieves a transfer by ID
func (s *TransferService) GetByID(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	response := ToTransferResponse(st)
	return &response, nil
}

// GetByTransferNumber retrieves a transfer by transfer number
func (s *TransferService) GetByTransferNumber(ctx context.Context, tenantID uuid.UUID, transferNumber string) (*TransferResponse, error) {
	st, err := s.transferRepo.FindByTransferNumber(ctx, tenantID, transferNumber)
	if err != nil {
		return nil, err
	}
	response := ToTransferResponse(st)
	return &response, nil
}

// List retrieves transfers with filtering and pagination
func (s *TransferService) List(ctx context.Context, tenantID uuid.UUID, filter TransferListFilter) ([]TransferListItemResponse, int64, error) {
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
	if filter.SourceStoreID != nil {
		domainFilter.Filters["source_store_id"] = *filter.SourceStoreID
	}
	if filter.TargetStoreID != nil {
		domainFilter.Filters["target_store_id"] = *filter.TargetStoreID
	}

	items, err := s.transferRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transferRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToTransferListItemResponses(items), total, nil
}

// ListInbound retrieves transfers addressed to a store with quantity still
// in transit, the destination's "to receive" work list
func (s *TransferService) ListInbound(ctx context.Context, tenantID, targetStoreID uuid.UUID, filter TransferListFilter) ([]TransferListItemResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	items, err := s.transferRepo.FindInbound(ctx, tenantID, targetStoreID, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToTransferListItemResponses(items), nil
}

// UpdateItems replaces planned quantities on a draft transfer
func (s *TransferService) UpdateItems(ctx context.Context, tenantID, transferID uuid.UUID, items []TransferItemInput) (*TransferResponse, error) {
	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := st.AddItem(item.ProductID, item.ProductName, item.ProductCode, item.Unit, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.transferRepo.SaveWithLock(ctx, st); err != nil {
		return nil, err
	}

	response := ToTransferResponse(st)
	return &response, nil
}

// RemoveItem removes a line from a draft transfer
func (s *TransferService) RemoveItem(ctx context.Context, tenantID, transferID, itemID uuid.UUID) (*TransferResponse, error) {
	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}

	if err := st.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.transferRepo.SaveWithLock(ctx, st); err != nil {
		return nil, err
	}

	response := ToTransferResponse(st)
	return &response, nil
}

// Update updates draft header fields
func (s *TransferService) Update(ctx context.Context, tenantID, transferID uuid.UUID, req UpdateTransferRequest) (*TransferResponse, error) {
	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}
	if !st.IsDraft() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Transfer can only be modified in draft status")
	}

	if req.Remark != nil {
		st.SetRemark(*req.Remark)
	}

	if err := s.transferRepo.SaveWithLock(ctx, st); err != nil {
		return nil, err
	}

	response := ToTransferResponse(st)
	return &response, nil
}

// Send ships the transfer, freezing its line set
func (s *TransferService) Send(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}

	snapshot := st.Clone()
	if err := st.Send(); err != nil {
		return nil, err
	}

	if err := s.transferRepo.SaveWithLock(ctx, st); err != nil {
		st.Restore(snapshot)
		return nil, err
	}

	s.publishEvents(ctx, st)

	response := ToTransferResponse(st)
	return &response, nil
}

// Receive credits received quantities at the destination. An empty line list
// receives all remaining. Mutations are rolled back from a snapshot when the
// save fails.
func (s *TransferService) Receive(ctx context.Context, tenantID, transferID uuid.UUID, req ReceiveRequest) (*ReceiveResponse, error) {
	if done, err := s.alreadyProcessed(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	} else if done {
		st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
		if err != nil {
			return nil, err
		}
		return &ReceiveResponse{Transfer: ToTransferResponse(st)}, nil
	}

	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}

	lines := make([]transfer.ReceiveLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = transfer.ReceiveLine{ItemID: line.ItemID, Quantity: line.Quantity}
	}

	snapshot := st.Clone()
	infos, err := st.Receive(lines)
	if err != nil {
		return nil, err
	}

	if err := s.transferRepo.SaveWithLock(ctx, st); err != nil {
		st.Restore(snapshot)
		return nil, err
	}

	s.markProcessed(ctx, req.IdempotencyKey)
	s.publishEvents(ctx, st)

	return &ReceiveResponse{
		Transfer: ToTransferResponse(st),
		Received: ToReceivedLineResponses(infos),
	}, nil
}

// Cancel abandons a draft transfer
func (s *TransferService) Cancel(ctx context.Context, tenantID, transferID uuid.UUID, req CancelRequest) (*TransferResponse, error) {
	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return nil, err
	}

	snapshot := st.Clone()
	if err := st.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.transferRepo.SaveWithLock(ctx, st); err != nil {
		st.Restore(snapshot)
		return nil, err
	}

	s.publishEvents(ctx, st)

	response := ToTransferResponse(st)
	return &response, nil
}

// Delete hard-deletes a draft transfer
func (s *TransferService) Delete(ctx context.Context, tenantID, transferID uuid.UUID) error {
	st, err := s.transferRepo.FindByIDForTenant(ctx, tenantID, transferID)
	if err != nil {
		return err
	}

	if !st.CanDelete() {
		return shared.NewDomainError(shared.CodeInvalidState, "Only draft transfers can be deleted")
	}

	if err := s.transferRepo.DeleteForTenant(ctx, tenantID, transferID); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, transfer.NewTransferDeletedEvent(st))
	}

	return nil
}

func (s *TransferService) publishEvents(ctx context.Context, st *transfer.StockTransfer) {
	if s.eventPublisher == nil {
		return
	}
	events := st.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	st.ClearDomainEvents()
}

func (s *TransferService) alreadyProcessed(ctx context.Context, key string) (bool, error) {
	if key == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return false, nil
	}
	return s.idempotencyStore.IsProcessed(ctx, key)
}

func (s *TransferService) markProcessed(ctx context.Context, key string) {
	if key == "" || s.idempotencyStore == nil || !s.idempotencyCfg.Enabled {
		return
	}
	_, _ = s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
}
