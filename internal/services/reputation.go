package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"teamup/internal/domain"
)

type reputationService struct {
	feedbackRepo   domain.FeedbackRepository
	ledgerRepo     domain.LedgerRepository
	tx             domain.TxManager
	contextTimeout time.Duration
	now            func() time.Time
}

func NewReputationService(feedbackRepo domain.FeedbackRepository,
	ledgerRepo domain.LedgerRepository,
	tx domain.TxManager,
	timeout time.Duration,
) domain.ReputationService {
	return &reputationService{
		feedbackRepo:   feedbackRepo,
		ledgerRepo:     ledgerRepo,
		tx:             tx,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// GiveFeedback records one attribute for ratedID and returns the updated
// reputation. Conclusion is read from the ledger, so feedback opens only after
// the concluded fact has been consumed.
func (s *reputationService) GiveFeedback(ctx context.Context, raterID, eventID, ratedID, attribute string) (*domain.UserReputation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(ratedID) == "" {
		return nil, domain.NewValidationError([]string{"user_id is required"})
	}
	if raterID == ratedID {
		return nil, domain.ErrSelfFeedback
	}
	attr, err := domain.ParseAttribute(attribute)
	if err != nil {
		return nil, err
	}
	concluded, err := s.ledgerRepo.HasConcludedMarker(ctx, eventID)
	if err != nil {
		return nil, wrap("check ledger", err)
	}
	if !concluded {
		return nil, domain.ErrNotConcluded
	}

	var rep *domain.UserReputation
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		err := s.feedbackRepo.Insert(ctx, &domain.EventFeedback{
			EventID:   eventID,
			RaterID:   raterID,
			RatedID:   ratedID,
			Attribute: attr,
			Delta:     attr.Delta(),
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}
		rep, err = s.feedbackRepo.ApplyToReputation(ctx, ratedID, attr)
		return err
	})
	if err != nil {
		return nil, wrap("give feedback", err)
	}
	return rep, nil
}

func (s *reputationService) ShowReputation(ctx context.Context, userID string) (*domain.ReputationView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rep, err := s.feedbackRepo.GetReputation(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, wrap("get reputation", err)
		}
		rep = domain.NewUserReputation(userID)
	}
	return &domain.ReputationView{UserReputation: rep, Badges: rep.Badges()}, nil
}
