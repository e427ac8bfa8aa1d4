package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"teamup/internal/delivery/http/helpers"
	"teamup/internal/domain"
)

// GiveFeedbackRequest is the request body for POST /events/{eventID}/feedback.
type GiveFeedbackRequest struct {
	UserID    string `json:"user_id"`
	Attribute string `json:"attribute"`
}

// Validate implements Validator.
func (g GiveFeedbackRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(g.UserID) == "" {
		errs = append(errs, "user_id is required")
	}
	if strings.TrimSpace(g.Attribute) == "" {
		errs = append(errs, "attribute is required")
	}
	return errs
}

// ReputationSuccessResponse is the success envelope for POST /events/{eventID}/feedback (201).
type ReputationSuccessResponse struct {
	Data  *domain.UserReputation `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ReputationViewSuccessResponse is the success envelope for GET /reputation/{userID} (200).
type ReputationViewSuccessResponse struct {
	Data  *domain.ReputationView `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type ReputationController struct {
	Logger  *slog.Logger
	Service domain.ReputationService
}

func NewReputationController(logger *slog.Logger, svc domain.ReputationService) *ReputationController {
	return &ReputationController{
		Logger:  logger,
		Service: svc,
	}
}

// GiveFeedback godoc
// @Summary Give feedback to a teammate
// @Description Records one attribute for a teammate of a concluded event. Positive attributes (good_teammate, friendly, team_player) add 3 to the score, negative ones (toxic, bad_sport, afk) subtract 5. The score stays within 0..100.
// @Tags reputation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body GiveFeedbackRequest true "Rated user and attribute"
// @Success 201 {object} controllers.ReputationSuccessResponse "data contains the rated user's reputation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (self, duplicate, not concluded)"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /events/{eventID}/feedback [post]
func (c *ReputationController) GiveFeedback(w http.ResponseWriter, r *http.Request) {
	var req GiveFeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rater, ok := principal(w, r)
	if !ok {
		return
	}
	rep, err := c.Service.GiveFeedback(r.Context(), rater.UserID, r.PathValue("eventID"), req.UserID, req.Attribute)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rep)
}

// ShowReputation godoc
// @Summary Show a user's reputation
// @Description Returns score, counters and badges. Users without feedback have the default score of 70.
// @Tags reputation
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.ReputationViewSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /reputation/{userID} [get]
func (c *ReputationController) ShowReputation(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.ShowReputation(r.Context(), r.PathValue("userID"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}
