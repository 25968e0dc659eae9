package audit

import (
	"context"
	"fmt"
	"log/slog"

	"vouch/pkg/requestcontext"
)

// LogAudit logs an event to the structured logger and hands it to publisher.
// attrs are slog-style key/value pairs; they also become the event attributes.
// The "subject" key, when present, fills Event.Subject.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher Publisher, event AuditEvent, attrs ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	args := append(attrs, "event", string(event), "log_type", "audit")

	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}
	if publisher == nil {
		return
	}

	e := Event{
		Category:   event.Category(),
		Timestamp:  requestcontext.Now(ctx),
		Action:     string(event),
		RequestID:  requestID,
		Attributes: make(map[string]string, len(attrs)/2),
	}
	if caller, ok := requestcontext.Caller(ctx); ok {
		e.ActorID = caller.String()
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok || key == "request_id" {
			continue
		}
		val := fmt.Sprint(attrs[i+1])
		if key == "subject" {
			e.Subject = val
			continue
		}
		e.Attributes[key] = val
	}

	if err := publisher.Emit(ctx, e); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}
