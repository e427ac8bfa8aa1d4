package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"teamup/internal/domain"
)

// attributeColumns maps each attribute to its counter column in user_reputations.
var attributeColumns = map[domain.Attribute]string{
	domain.AttributeGoodTeammate: "good_teammate_count",
	domain.AttributeFriendly:     "friendly_count",
	domain.AttributeTeamPlayer:   "team_player_count",
	domain.AttributeToxic:        "toxic_count",
	domain.AttributeBadSport:     "bad_sport_count",
	domain.AttributeAFK:          "afk_count",
}

const reputationColumns = `user_id, score, good_teammate_count, friendly_count, team_player_count,
		toxic_count, bad_sport_count, afk_count, updated_at`

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepository(db *sql.DB) domain.FeedbackRepository {
	return &feedbackRepository{
		DB: db,
	}
}

func (r *feedbackRepository) Insert(ctx context.Context, fb *domain.EventFeedback) error {
	query := `
		INSERT INTO event_feedbacks (event_id, rater_id, rated_id, attribute, delta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		fb.EventID, fb.RaterID, fb.RatedID, string(fb.Attribute), fb.Delta, fb.CreatedAt,
	).Scan(&fb.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateFeedback
		}
		return err
	}
	return nil
}

func (r *feedbackRepository) ApplyToReputation(ctx context.Context, userID string, a domain.Attribute) (*domain.UserReputation, error) {
	column, ok := attributeColumns[a]
	if !ok {
		return nil, domain.ErrUnknownAttribute
	}
	query := fmt.Sprintf(`
		INSERT INTO user_reputations (user_id, score, %[1]s, updated_at)
		VALUES ($1, LEAST($5, GREATEST($4, $3 + $2)), 1, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			score = LEAST($5, GREATEST($4, user_reputations.score + $2)),
			%[1]s = user_reputations.%[1]s + 1,
			updated_at = NOW()
		RETURNING %[2]s
	`, column, reputationColumns)
	return scanReputation(conn(ctx, r.DB).QueryRowContext(ctx, query,
		userID, a.Delta(), domain.DefaultReputationScore, domain.MinReputationScore, domain.MaxReputationScore,
	))
}

func (r *feedbackRepository) GetReputation(ctx context.Context, userID string) (*domain.UserReputation, error) {
	query := `SELECT ` + reputationColumns + ` FROM user_reputations WHERE user_id = $1`
	rep, err := scanReputation(conn(ctx, r.DB).QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

func scanReputation(row rowScanner) (*domain.UserReputation, error) {
	rep := &domain.UserReputation{}
	err := row.Scan(&rep.UserID, &rep.Score, &rep.GoodTeammateCount, &rep.FriendlyCount, &rep.TeamPlayerCount,
		&rep.ToxicCount, &rep.BadSportCount, &rep.AFKCount, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}
