package events

import (
	"context"
	"log/slog"
)

// AuditHandler writes every domain event to the log.
type AuditHandler struct {
	logger *slog.Logger
}

func NewAuditHandler(logger *slog.Logger) *AuditHandler {
	return &AuditHandler{logger: logger}
}

func (h *AuditHandler) Handle(ctx context.Context, event Event) error {
	attrs := []any{
		"event_id", event.EventID(),
		"event_type", event.EventType(),
		"occurred_at", event.OccurredAt(),
	}

	switch ev := event.(type) {
	case *TimeEntryClosedEvent:
		attrs = append(attrs,
			"org_id", ev.OrgID,
			"actor_id", ev.ActorID,
			"entry_id", ev.EntryID,
			"duration_minutes", ev.DurationMinutes,
			"auto_closed", ev.AutoClosed)
	case interface{ Base() BaseEvent }:
		b := ev.Base()
		attrs = append(attrs, "org_id", b.OrgID, "actor_id", b.ActorID, "data", b.Data)
	default:
		attrs = append(attrs, "payload", event.Payload())
	}

	h.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}

func (h *AuditHandler) RegisterEventHandlers(eventBus *EventBus) {
	eventBus.Subscribe(AllEvents, h.Handle)
	h.logger.Info("audit event handler registered", "handlers", Types)
}
