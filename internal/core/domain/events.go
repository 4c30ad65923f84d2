package domain

import "time"

// Domain event names consumed by the payment-workflow orchestrator and the
// notification subsystem.
const (
	EventAccountCreated      = "account.created"
	EventTransactionProcessed = "transaction.processed"
	EventJournalEntryPosted  = "journal_entry.posted"
)

// Event is a fire-and-forget domain event, emitted only after the atomic
// unit it describes has committed. Amounts travel as decimal strings.
type Event struct {
	Name       string            `json:"name"`
	EntityID   string            `json:"entityID"`
	Payload    map[string]string `json:"payload,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// NewEvent builds a domain event stamped with the given time.
func NewEvent(name, entityID string, now time.Time) Event {
	return Event{
		Name:       name,
		EntityID:   entityID,
		Payload:    map[string]string{},
		OccurredAt: now,
	}
}

// With adds a payload field and returns the event for chaining.
func (e Event) With(key, value string) Event {
	if e.Payload == nil {
		e.Payload = map[string]string{}
	}
	e.Payload[key] = value
	return e
}
