package domain

import (
	"context"
	"time"
)

// Broker queue names. All queues are durable and messages are persistent.
const (
	QueueEventJoined           = "event_joined"
	QueueUserLeftEvent         = "user_left_event"
	QueueNotification          = "notification"
	QueueEventConcluded        = "event_concluded"
	QueueReputationConcluded   = "reputation_event_concluded"
	QueueEventDeleted          = "event_deleted"
	NotificationTypeNewMessage = "new_message"
)

// Fact messages emitted by the lifecycle manager.
const (
	MessageUserJoined     = "User joined the event"
	MessageUserLeft       = "User left the event"
	MessageEventUpdated   = "Event details were updated"
	MessageEventConcluded = "Event was concluded"
)

// ParticipantRef is the participant identity carried in notification facts.
type ParticipantRef struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// LifecycleFact is an immutable message describing a lifecycle transition.
// Optional fields are omitted from the wire payload when empty so each queue
// carries its documented shape.
type LifecycleFact struct {
	// MessageID travels as the broker message id, not in the body. Facts fanned out
	// to several queues share one id so the ledger stores them once.
	MessageID string `json:"-"`

	Type         string           `json:"type,omitempty"`
	EventID      string           `json:"event_id"`
	EventName    string           `json:"event_name,omitempty"`
	UserID       string           `json:"user_id,omitempty"`
	UserName     string           `json:"user_name,omitempty"`
	Message      string           `json:"message,omitempty"`
	Timestamp    *time.Time       `json:"timestamp,omitempty"`
	Participants []ParticipantRef `json:"participants,omitempty"`
}

// NewMembershipFact builds the event_joined / user_left_event payload.
func NewMembershipFact(event *Event, userID, userName, message string) LifecycleFact {
	return LifecycleFact{
		EventID:   event.ID,
		EventName: event.Name,
		UserID:    userID,
		UserName:  userName,
		Message:   message,
	}
}

// NewNotificationFact builds the notification payload addressed to participants.
func NewNotificationFact(event *Event, userID, userName, message string, participants []*Participant, at time.Time) LifecycleFact {
	refs := make([]ParticipantRef, 0, len(participants))
	for _, p := range participants {
		refs = append(refs, p.Ref())
	}
	ts := at.UTC()
	return LifecycleFact{
		Type:         NotificationTypeNewMessage,
		EventID:      event.ID,
		EventName:    event.Name,
		UserID:       userID,
		UserName:     userName,
		Message:      message,
		Timestamp:    &ts,
		Participants: refs,
	}
}

// NewDeletedFact builds the event_deleted payload, which carries only the id.
func NewDeletedFact(eventID string) LifecycleFact {
	return LifecycleFact{EventID: eventID}
}

// Publisher delivers a fact to a named durable queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, fact LifecycleFact) error
}
