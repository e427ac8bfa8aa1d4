package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"teamup/internal/delivery/http/helpers"
	"teamup/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testUser = &domain.Principal{UserID: "user-123", Name: "Ann"}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err          error
	event        *domain.Event
	events       []*domain.Event
	total        int
	participant  *domain.Participant
	participants []*domain.Participant

	lastEventID   string
	lastCallerID  string
	lastTargetID  string
	lastPrincipal *domain.Principal
	lastInput     domain.CreateEventInput
	lastPatch     domain.EventPatch
	lastPage      domain.PaginationParams
}

func (f *fakeEventService) CreateEvent(ctx context.Context, owner *domain.Principal, in domain.CreateEventInput) (*domain.Event, error) {
	f.lastPrincipal, f.lastInput = owner, in
	if f.err != nil {
		return nil, f.err
	}
	e := domain.NewEvent(in.Name, in.SportID, in.StartsAt, in.Place, in.MaxParticipants, owner.UserID, owner.Name, time.Now())
	e.ID = "ev-created"
	return e, nil
}

func (f *fakeEventService) JoinEvent(ctx context.Context, eventID string, user *domain.Principal) (*domain.Participant, error) {
	f.lastEventID, f.lastPrincipal = eventID, user
	return f.participant, f.err
}

func (f *fakeEventService) LeaveEvent(ctx context.Context, eventID string, user *domain.Principal) error {
	f.lastEventID, f.lastPrincipal = eventID, user
	return f.err
}

func (f *fakeEventService) KickParticipant(ctx context.Context, eventID, byUserID, targetUserID string) error {
	f.lastEventID, f.lastCallerID, f.lastTargetID = eventID, byUserID, targetUserID
	return f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastEventID, f.lastCallerID, f.lastPatch = eventID, ownerID, patch
	return f.event, f.err
}

func (f *fakeEventService) ConcludeByCreator(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.lastEventID, f.lastCallerID = eventID, ownerID
	return f.event, f.err
}

func (f *fakeEventService) ConcludeByAdmin(ctx context.Context, eventID string, admin *domain.Principal) (*domain.Event, error) {
	f.lastEventID, f.lastPrincipal = eventID, admin
	return f.event, f.err
}

func (f *fakeEventService) ConcludeStale(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	f.lastEventID, f.lastCallerID = eventID, ownerID
	return f.err
}

func (f *fakeEventService) ListMyEvents(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastCallerID = ownerID
	f.lastPage = params
	return f.events, f.total, f.err
}

func (f *fakeEventService) ListParticipants(ctx context.Context, eventID, callerID string) ([]*domain.Participant, error) {
	f.lastEventID, f.lastCallerID = eventID, callerID
	return f.participants, f.err
}

type fakeReputationService struct {
	err        error
	reputation *domain.UserReputation
	view       *domain.ReputationView

	lastRaterID, lastEventID, lastRatedID, lastAttribute string
}

func (f *fakeReputationService) GiveFeedback(ctx context.Context, raterID, eventID, ratedID, attribute string) (*domain.UserReputation, error) {
	f.lastRaterID, f.lastEventID, f.lastRatedID, f.lastAttribute = raterID, eventID, ratedID, attribute
	return f.reputation, f.err
}

func (f *fakeReputationService) ShowReputation(ctx context.Context, userID string) (*domain.ReputationView, error) {
	f.lastRatedID = userID
	return f.view, f.err
}

type fakeRatingService struct {
	err     error
	result  *domain.RatingResult
	average *domain.UserAverage

	lastRaterID, lastEventID, lastRatedID string
	lastRating                            int
}

func (f *fakeRatingService) RateUser(ctx context.Context, raterID, eventID, ratedID string, rating int) (*domain.RatingResult, error) {
	f.lastRaterID, f.lastEventID, f.lastRatedID, f.lastRating = raterID, eventID, ratedID, rating
	return f.result, f.err
}

func (f *fakeRatingService) GetUserAverage(ctx context.Context, userID string) (*domain.UserAverage, error) {
	f.lastRatedID = userID
	return f.average, f.err
}

// decodeEnvelope decodes the response envelope and, when data is non-nil, its data field.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) helpers.APIResponse {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw), "response must be valid JSON envelope")
	if data != nil {
		require.Nil(t, raw.Error, "success response must have error nil")
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return helpers.APIResponse{Data: raw.Data, Error: raw.Error}
}
