package event

import (
	"context"

	"github.com/subflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoggingEventHandler logs every domain event that crosses the bus. It
// subscribes as a wildcard handler and serves as the audit trail for event
// flow in environments without an external consumer.
type LoggingEventHandler struct {
	logger *zap.Logger
}

// NewLoggingEventHandler creates a new LoggingEventHandler
func NewLoggingEventHandler(logger *zap.Logger) *LoggingEventHandler {
	return &LoggingEventHandler{logger: logger}
}

// Handle logs the event
func (h *LoggingEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice so the handler receives all events
func (h *LoggingEventHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*LoggingEventHandler)(nil)
