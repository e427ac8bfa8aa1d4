package domain

import (
	"context"
	"strings"
	"time"
)

// ConcludedSuffix terminates the ledger message written for a concluded event.
// Feedback and rating check for it instead of reading the event status, so they
// observe conclusion only once the consumer has drained the concluded fact.
const ConcludedSuffix = "- concluded"

// ConcludedLedgerMessage is the fixed text stored for concluded facts.
const ConcludedLedgerMessage = "Event has ended " + ConcludedSuffix

// Ledger entry kinds (the queue the fact was drained from).
const (
	LedgerKindJoined       = "joined"
	LedgerKindLeft         = "left"
	LedgerKindNotification = "notification"
	LedgerKindConcluded    = "concluded"
)

// LedgerEntry is the chat-visible projection of a lifecycle fact. Append-only.
type LedgerEntry struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// IsConcludedMarker reports whether the entry is the concluded sentinel.
func (e *LedgerEntry) IsConcludedMarker() bool {
	return e.Kind == LedgerKindConcluded && strings.HasSuffix(e.Message, ConcludedSuffix)
}

// LedgerRepository persists ledger entries.
type LedgerRepository interface {
	// Append stores the entry unless its MessageID was already stored. It reports
	// whether a row was inserted.
	Append(ctx context.Context, entry *LedgerEntry) (bool, error)
	HasConcludedMarker(ctx context.Context, eventID string) (bool, error)
	DeleteByEventID(ctx context.Context, eventID string) (int64, error)
}

// Delivery is one message drained from a broker queue.
type Delivery struct {
	Queue     string
	MessageID string
	Body      []byte
}

// LedgerService turns drained facts into ledger entries.
type LedgerService interface {
	Handle(ctx context.Context, d Delivery) error
	IsConcluded(ctx context.Context, eventID string) (bool, error)
}
