package domain

import (
	"context"
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an event. The only transition is
// in_progress -> concluded.
type EventStatus string

const (
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusConcluded  EventStatus = "concluded"
)

// MinParticipants is the smallest capacity an event may have.
const MinParticipants = 2

// WeatherSnapshot is the forecast cached on an event at creation or update time.
// swagger:model WeatherSnapshot
type WeatherSnapshot struct {
	TemperatureC  float64   `json:"temperature_c"`
	WindSpeedKmh  float64   `json:"wind_speed_kmh"`
	Precipitation float64   `json:"precipitation_mm"`
	WeatherCode   int       `json:"weather_code"`
	Description   string    `json:"description"`
	ForecastFor   time.Time `json:"forecast_for"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Event represents a group sporting activity.
// swagger:model Event
type Event struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	SportID         int              `json:"sport_id"`
	StartsAt        time.Time        `json:"starts_at"`
	Place           string           `json:"place"`
	Latitude        *float64         `json:"latitude"`
	Longitude       *float64         `json:"longitude"`
	MaxParticipants int              `json:"max_participants"`
	Status          EventStatus      `json:"status"`
	OwnerID         string           `json:"owner_id"`
	OwnerName       string           `json:"owner_name"`
	Weather         *WeatherSnapshot `json:"weather,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// WeatherError is set when the weather lookup failed; it is never stored.
	WeatherError string `json:"weather_error,omitempty"`
}

// IsConcluded reports whether the event reached its terminal status.
func (e *Event) IsConcluded() bool {
	return e.Status == EventStatusConcluded
}

// HasCoordinates reports whether both latitude and longitude are set.
func (e *Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// NewEvent returns an in-progress Event. ID is set by the repository on create.
func NewEvent(name string, sportID int, startsAt time.Time, place string, maxParticipants int, ownerID, ownerName string, now time.Time) *Event {
	return &Event{
		Name:            name,
		SportID:         sportID,
		StartsAt:        startsAt,
		Place:           place,
		MaxParticipants: maxParticipants,
		Status:          EventStatusInProgress,
		OwnerID:         ownerID,
		OwnerName:       ownerName,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CreateEventInput carries the fields accepted when creating an event.
type CreateEventInput struct {
	Name            string
	SportID         int
	StartsAt        time.Time
	Place           string
	MaxParticipants int
	Latitude        *float64
	Longitude       *float64
}

// EventPatch is a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Name            *string
	SportID         *int
	StartsAt        *time.Time
	Place           *string
	MaxParticipants *int
	Latitude        *float64
	Longitude       *float64
	Weather         *WeatherSnapshot
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.SportID == nil && p.StartsAt == nil && p.Place == nil &&
		p.MaxParticipants == nil && p.Latitude == nil && p.Longitude == nil && p.Weather == nil
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate locks the event row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	// ListByOwnerID returns one page of the owner's events, newest first, and the
	// owner's total event count.
	ListByOwnerID(ctx context.Context, ownerID string, params PaginationParams) ([]*Event, int, error)
	ListInProgressStartedBefore(ctx context.Context, before time.Time) ([]*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	// MarkConcluded flips status to concluded. It returns false when the event was
	// already concluded.
	MarkConcluded(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// EventService is the event lifecycle manager.
type EventService interface {
	CreateEvent(ctx context.Context, owner *Principal, in CreateEventInput) (*Event, error)
	JoinEvent(ctx context.Context, eventID string, user *Principal) (*Participant, error)
	LeaveEvent(ctx context.Context, eventID string, user *Principal) error
	KickParticipant(ctx context.Context, eventID, byUserID, targetUserID string) error
	UpdateEvent(ctx context.Context, eventID, ownerID string, patch EventPatch) (*Event, error)
	ConcludeByCreator(ctx context.Context, eventID, ownerID string) (*Event, error)
	ConcludeByAdmin(ctx context.Context, eventID string, admin *Principal) (*Event, error)
	ConcludeStale(ctx context.Context, olderThan time.Duration) (int, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
	ListMyEvents(ctx context.Context, ownerID string, params PaginationParams) ([]*Event, int, error)
	ListParticipants(ctx context.Context, eventID, callerID string) ([]*Participant, error)
}

// Validate returns one message per invalid field.
func (in CreateEventInput) Validate() []string {
	var errs []string
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, "name is required")
	}
	if in.SportID <= 0 {
		errs = append(errs, "sport_id must be a positive integer")
	}
	if in.StartsAt.IsZero() {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(in.Place) == "" {
		errs = append(errs, "place is required")
	}
	if in.MaxParticipants < MinParticipants {
		errs = append(errs, "max_participants must be at least 2")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		errs = append(errs, "latitude and longitude must be provided together")
	}
	return append(errs, validateCoordinates(in.Latitude, in.Longitude)...)
}

// Validate returns one message per invalid field that is set.
func (p EventPatch) Validate() []string {
	var errs []string
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if p.SportID != nil && *p.SportID <= 0 {
		errs = append(errs, "sport_id must be a positive integer")
	}
	if p.StartsAt != nil && p.StartsAt.IsZero() {
		errs = append(errs, "date must not be empty")
	}
	if p.Place != nil && strings.TrimSpace(*p.Place) == "" {
		errs = append(errs, "place must not be empty")
	}
	if p.MaxParticipants != nil && *p.MaxParticipants < MinParticipants {
		errs = append(errs, "max_participants must be at least 2")
	}
	return append(errs, validateCoordinates(p.Latitude, p.Longitude)...)
}

// MovesEvent reports whether the patch changes the time or location of the event.
func (p EventPatch) MovesEvent() bool {
	return p.StartsAt != nil || p.Latitude != nil || p.Longitude != nil
}

func validateCoordinates(lat, lng *float64) []string {
	var errs []string
	if lat != nil && (*lat < -90 || *lat > 90) {
		errs = append(errs, "latitude must be between -90 and 90")
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		errs = append(errs, "longitude must be between -180 and 180")
	}
	return errs
}
