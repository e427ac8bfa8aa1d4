package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"teamup/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// auth wraps every API handler; only /health and /swagger/ are public.
func NewRouter(
	events *controllers.EventController,
	reputation *controllers.ReputationController,
	ratings *controllers.RatingController,
	auth func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", auth(events.CreateEvent))
	mux.HandleFunc("GET /events/mine", auth(events.ListMyEvents))
	mux.HandleFunc("PUT /events/{eventID}", auth(events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(events.DeleteEvent))
	mux.HandleFunc("PUT /events/{eventID}/conclude", auth(events.ConcludeEvent))
	mux.HandleFunc("PUT /admin/events/{eventID}/conclude", auth(events.AdminConcludeEvent))

	// Participants
	mux.HandleFunc("POST /events/{eventID}/join", auth(events.JoinEvent))
	mux.HandleFunc("POST /events/{eventID}/leave", auth(events.LeaveEvent))
	mux.HandleFunc("GET /events/{eventID}/participants", auth(events.ListParticipants))
	mux.HandleFunc("DELETE /events/{eventID}/participants/{userID}", auth(events.KickParticipant))

	// Reputation and ratings
	mux.HandleFunc("POST /events/{eventID}/feedback", auth(reputation.GiveFeedback))
	mux.HandleFunc("GET /reputation/{userID}", auth(reputation.ShowReputation))
	mux.HandleFunc("POST /events/{eventID}/rate", auth(ratings.RateUser))
	mux.HandleFunc("GET /users/{userID}/average-rating", auth(ratings.GetUserAverage))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
