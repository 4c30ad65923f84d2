package services

import (
	"context"

	"github.com/velopay/ledger-core/internal/core/domain"
)

// EventPublisher delivers domain events after the owning database
// transaction commits. Publishing is best-effort; a failed publish never
// fails the business operation.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
