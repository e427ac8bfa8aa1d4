package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"teamup/internal/delivery/http/helpers"
	"teamup/internal/domain"
)

// RateUserRequest is the request body for POST /events/{eventID}/rate.
type RateUserRequest struct {
	UserID string `json:"user_id"`
	Rating int    `json:"rating"`
}

// Validate implements Validator.
func (q RateUserRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(q.UserID) == "" {
		errs = append(errs, "user_id is required")
	}
	if q.Rating < domain.MinRating || q.Rating > domain.MaxRating {
		errs = append(errs, fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	return errs
}

// RatingSuccessResponse is the success envelope for POST /events/{eventID}/rate (201).
type RatingSuccessResponse struct {
	Data  *domain.RatingResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// UserAverageSuccessResponse is the success envelope for GET /users/{userID}/average-rating (200).
type UserAverageSuccessResponse struct {
	Data  *domain.UserAverage `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type RatingController struct {
	Logger  *slog.Logger
	Service domain.RatingService
}

func NewRatingController(logger *slog.Logger, svc domain.RatingService) *RatingController {
	return &RatingController{
		Logger:  logger,
		Service: svc,
	}
}

// RateUser godoc
// @Summary Rate a teammate
// @Description Both users must have participated in the concluded event. One rating per rater, event and rated user.
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body RateUserRequest true "Rated user and rating (1-5)"
// @Success 201 {object} controllers.RatingSuccessResponse "data contains the event and overall averages"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not participants)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (self, duplicate, not concluded)"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/{eventID}/rate [post]
func (c *RatingController) RateUser(w http.ResponseWriter, r *http.Request) {
	var req RateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rater, ok := principal(w, r)
	if !ok {
		return
	}
	result, err := c.Service.RateUser(r.Context(), rater.UserID, r.PathValue("eventID"), req.UserID, req.Rating)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// GetUserAverage godoc
// @Summary Get a user's average rating
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.UserAverageSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/{userID}/average-rating [get]
func (c *RatingController) GetUserAverage(w http.ResponseWriter, r *http.Request) {
	avg, err := c.Service.GetUserAverage(r.Context(), r.PathValue("userID"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, avg)
}
