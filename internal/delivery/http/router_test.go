package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamup/internal/delivery/http/controllers"
	"teamup/internal/delivery/http/middleware"
	"teamup/internal/domain"
)

// recordingEventService records which operation a route reached.
type recordingEventService struct {
	domain.EventService
	called string
}

func (s *recordingEventService) ListMyEvents(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	s.called = "ListMyEvents"
	return []*domain.Event{}, 0, nil
}

func (s *recordingEventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	s.called = "UpdateEvent:" + eventID
	return &domain.Event{ID: eventID}, nil
}

func (s *recordingEventService) KickParticipant(ctx context.Context, eventID, byUserID, targetUserID string) error {
	s.called = "KickParticipant:" + eventID + ":" + targetUserID
	return nil
}

func (s *recordingEventService) ConcludeByAdmin(ctx context.Context, eventID string, admin *domain.Principal) (*domain.Event, error) {
	s.called = "ConcludeByAdmin:" + eventID
	return &domain.Event{ID: eventID}, nil
}

type staticGatekeeper struct{}

func (staticGatekeeper) Authenticate(ctx context.Context, header string) (*domain.Principal, error) {
	if header != "Bearer ok" {
		return nil, domain.ErrMissingToken
	}
	return &domain.Principal{UserID: "user-123", IsAdmin: true}, nil
}

func TestNewRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := &recordingEventService{}
	router := NewRouter(
		controllers.NewEventController(logger, svc),
		controllers.NewReputationController(logger, nil),
		controllers.NewRatingController(logger, nil),
		middleware.RequireAuth(staticGatekeeper{}, logger),
	)

	tests := []struct {
		method, path, body string
		wantCalled         string
		wantStatus         int
	}{
		{http.MethodGet, "/events/mine", "", "ListMyEvents", http.StatusOK},
		{http.MethodPut, "/events/ev-9", `{"name":"Renamed"}`, "UpdateEvent:ev-9", http.StatusOK},
		{http.MethodDelete, "/events/ev-9/participants/user-b", "", "KickParticipant:ev-9:user-b", http.StatusNoContent},
		{http.MethodPut, "/admin/events/ev-9/conclude", "", "ConcludeByAdmin:ev-9", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			svc.called = ""
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer ok")
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantCalled, svc.called)
		})
	}

	t.Run("auth required", func(t *testing.T) {
		svc.called = ""
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/mine", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, svc.called)
	})

	t.Run("health is public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/events/ev-9", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}
