package event

import (
	"context"
	"encoding/json"

	"github.com/posadmin/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler records every published domain event as a structured audit
// entry. It subscribes as a wildcard handler so new event types are picked up
// without registration changes.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit handler writing to the given logger
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		logger: logger.Named("audit"),
	}
}

// Handle implements shared.EventHandler
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	// Full event payload for forensics; marshal failures degrade to the
	// envelope fields above rather than dropping the entry.
	if payload, err := json.Marshal(event); err == nil {
		fields = append(fields, zap.ByteString("payload", payload))
	}

	h.logger.Info("domain event", fields...)
	return nil
}

// EventTypes returns nil so the handler receives all event types
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
