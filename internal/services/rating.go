package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamup/internal/domain"
)

type ratingService struct {
	ratingRepo      domain.RatingRepository
	participantRepo domain.ParticipantRepository
	ledgerRepo      domain.LedgerRepository
	tx              domain.TxManager
	contextTimeout  time.Duration
	now             func() time.Time
}

func NewRatingService(ratingRepo domain.RatingRepository,
	participantRepo domain.ParticipantRepository,
	ledgerRepo domain.LedgerRepository,
	tx domain.TxManager,
	timeout time.Duration,
) domain.RatingService {
	return &ratingService{
		ratingRepo:      ratingRepo,
		participantRepo: participantRepo,
		ledgerRepo:      ledgerRepo,
		tx:              tx,
		contextTimeout:  timeout,
		now:             time.Now,
	}
}

func (s *ratingService) RateUser(ctx context.Context, raterID, eventID, ratedID string, rating int) (*domain.RatingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, domain.NewValidationError([]string{fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)})
	}
	if raterID == ratedID {
		return nil, domain.ErrSelfRating
	}
	concluded, err := s.ledgerRepo.HasConcludedMarker(ctx, eventID)
	if err != nil {
		return nil, wrap("check ledger", err)
	}
	if !concluded {
		return nil, domain.ErrNotConcluded
	}
	for _, userID := range []string{raterID, ratedID} {
		if _, err := s.participantRepo.Get(ctx, eventID, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrForbidden
			}
			return nil, wrap("get participant", err)
		}
	}

	result := &domain.RatingResult{EventID: eventID, RatedID: ratedID, Rating: rating}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		// Both averages are recomputed from rows, so a concurrent rating of the
		// same user must not commit between our insert and our upsert.
		if err := s.ratingRepo.LockRatedUser(ctx, ratedID); err != nil {
			return err
		}
		err := s.ratingRepo.Insert(ctx, &domain.EventRating{
			EventID:   eventID,
			RaterID:   raterID,
			RatedID:   ratedID,
			Rating:    rating,
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}
		eventAvg, err := s.ratingRepo.EventAverage(ctx, eventID, ratedID)
		if err != nil {
			return err
		}
		if err := s.participantRepo.SetRating(ctx, eventID, ratedID, eventAvg); err != nil {
			return err
		}
		avg, count, err := s.ratingRepo.GlobalAverage(ctx, ratedID)
		if err != nil {
			return err
		}
		result.EventAverage = eventAvg
		result.UserAverage = domain.UserAverage{UserID: ratedID, Average: avg, RatingsCount: count}
		return s.ratingRepo.SaveUserAverage(ctx, &result.UserAverage)
	})
	if err != nil {
		return nil, wrap("rate user", err)
	}
	return result, nil
}

func (s *ratingService) GetUserAverage(ctx context.Context, userID string) (*domain.UserAverage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	avg, err := s.ratingRepo.GetUserAverage(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.UserAverage{UserID: userID}, nil
		}
		return nil, wrap("get average rating", err)
	}
	return avg, nil
}
