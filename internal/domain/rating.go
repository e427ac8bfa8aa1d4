package domain

import (
	"context"
	"time"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// EventRating is one star rating a participant gave another for an event.
type EventRating struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	RaterID   string    `json:"rater_id"`
	RatedID   string    `json:"rated_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAverage is the all-time average of ratings a user received.
// swagger:model UserAverage
type UserAverage struct {
	UserID       string  `json:"user_id"`
	Average      float64 `json:"average"`
	RatingsCount int     `json:"ratings_count"`
}

// RatingResult is returned after a rating lands.
// swagger:model RatingResult
type RatingResult struct {
	EventID      string      `json:"event_id"`
	RatedID      string      `json:"rated_id"`
	Rating       int         `json:"rating"`
	EventAverage float64     `json:"event_average"`
	UserAverage  UserAverage `json:"user_average"`
}

// RatingRepository stores ratings and per-user averages.
type RatingRepository interface {
	// LockRatedUser serializes rating writes for one rated user until the
	// surrounding transaction ends.
	LockRatedUser(ctx context.Context, ratedID string) error
	// Insert returns ErrDuplicateRating when the (event, rater, rated) tuple exists.
	Insert(ctx context.Context, r *EventRating) error
	EventAverage(ctx context.Context, eventID, ratedID string) (float64, error)
	// GlobalAverage averages every rating the user received across events.
	GlobalAverage(ctx context.Context, ratedID string) (float64, int, error)
	SaveUserAverage(ctx context.Context, avg *UserAverage) error
	GetUserAverage(ctx context.Context, userID string) (*UserAverage, error)
}

// RatingService is the rating averaging service.
type RatingService interface {
	RateUser(ctx context.Context, raterID, eventID, ratedID string, rating int) (*RatingResult, error)
	GetUserAverage(ctx context.Context, userID string) (*UserAverage, error)
}
