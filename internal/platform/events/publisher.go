package events

import (
	"context"
	"log/slog"

	"github.com/velopay/ledger-core/internal/core/domain"
	portssvc "github.com/velopay/ledger-core/internal/core/ports/services"
	"github.com/velopay/ledger-core/internal/middleware"
)

// LogPublisher emits domain events as structured log records. Deployments
// that fan events out to a broker swap this implementation behind the
// EventPublisher port.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher writing to the given base logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Ensure LogPublisher implements the EventPublisher port
var _ portssvc.EventPublisher = (*LogPublisher)(nil)

// Publish logs the event. Publishing is best-effort and never fails the
// business operation that produced the event.
func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) {
	logger := p.logger
	if logger == nil {
		logger = middleware.GetLoggerFromCtx(ctx)
	}

	attrs := []any{
		slog.String("event", event.Name),
		slog.String("entity_id", event.EntityID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	for k, v := range event.Payload {
		attrs = append(attrs, slog.String("payload_"+k, v))
	}
	logger.Info("Domain event", attrs...)
}
