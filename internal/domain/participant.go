package domain

import (
	"context"
	"time"
)

// Participant is a user who joined an event. The event owner is always one.
// swagger:model Participant
type Participant struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"-"`
	Rating    *float64  `json:"rating"`
	JoinedAt  time.Time `json:"joined_at"`
}

// NewParticipant returns a Participant for the given user joining now.
func NewParticipant(eventID string, user *Principal, now time.Time) *Participant {
	return &Participant{
		EventID:   eventID,
		UserID:    user.UserID,
		UserName:  user.Name,
		UserEmail: user.Email,
		JoinedAt:  now,
	}
}

// Ref returns the public identity of the participant as carried in facts.
func (p *Participant) Ref() ParticipantRef {
	return ParticipantRef{UserID: p.UserID, UserName: p.UserName}
}

// ParticipantRepository defines storage operations for event participants.
type ParticipantRepository interface {
	// Add returns ErrAlreadyJoined when the (event, user) pair exists.
	Add(ctx context.Context, p *Participant) error
	Get(ctx context.Context, eventID, userID string) (*Participant, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Participant, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	// Remove returns ErrNotFound when no row was deleted.
	Remove(ctx context.Context, eventID, userID string) error
	SetRating(ctx context.Context, eventID, userID string, rating float64) error
}
