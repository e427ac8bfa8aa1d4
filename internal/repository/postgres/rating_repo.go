package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teamup/internal/domain"
)

type ratingRepository struct {
	DB *sql.DB
}

func NewRatingRepository(db *sql.DB) domain.RatingRepository {
	return &ratingRepository{
		DB: db,
	}
}

func (r *ratingRepository) LockRatedUser(ctx context.Context, ratedID string) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('rating:' || $1))`, ratedID)
	return err
}

func (r *ratingRepository) Insert(ctx context.Context, rt *domain.EventRating) error {
	query := `
		INSERT INTO event_ratings (event_id, rater_id, rated_id, rating, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, rt.EventID, rt.RaterID, rt.RatedID, rt.Rating, rt.CreatedAt).Scan(&rt.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRating
		}
		return err
	}
	return nil
}

func (r *ratingRepository) EventAverage(ctx context.Context, eventID, ratedID string) (float64, error) {
	query := `SELECT COALESCE(AVG(rating), 0)::float8 FROM event_ratings WHERE event_id = $1 AND rated_id = $2`
	var avg float64
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, ratedID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *ratingRepository) GlobalAverage(ctx context.Context, ratedID string) (float64, int, error) {
	query := `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM event_ratings WHERE rated_id = $1`
	var avg float64
	var count int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, ratedID).Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

func (r *ratingRepository) SaveUserAverage(ctx context.Context, avg *domain.UserAverage) error {
	query := `
		INSERT INTO user_average_ratings (user_id, average, ratings_count, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			average = EXCLUDED.average,
			ratings_count = EXCLUDED.ratings_count,
			updated_at = NOW()
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, avg.UserID, avg.Average, avg.RatingsCount)
	return err
}

func (r *ratingRepository) GetUserAverage(ctx context.Context, userID string) (*domain.UserAverage, error) {
	query := `SELECT user_id, average::float8, ratings_count FROM user_average_ratings WHERE user_id = $1`
	avg := &domain.UserAverage{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, userID).Scan(&avg.UserID, &avg.Average, &avg.RatingsCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return avg, nil
}
