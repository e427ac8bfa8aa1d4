package postgres

import (
	"context"
	"database/sql"
	"errors"

	"teamup/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{
		DB: db,
	}
}

func (r *participantRepository) Add(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO event_participants (event_id, user_id, user_name, user_email, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, p.EventID, p.UserID, p.UserName, p.UserEmail, p.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyJoined
		}
		return err
	}
	return nil
}

func (r *participantRepository) Get(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	query := `
		SELECT event_id, user_id, user_name, user_email, rating, joined_at
		FROM event_participants
		WHERE event_id = $1 AND user_id = $2
	`
	p, err := scanParticipant(conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `
		SELECT event_id, user_id, user_name, user_email, rating, joined_at
		FROM event_participants
		WHERE event_id = $1
		ORDER BY joined_at, user_id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	p := &domain.Participant{}
	var rating sql.NullFloat64
	if err := row.Scan(&p.EventID, &p.UserID, &p.UserName, &p.UserEmail, &rating, &p.JoinedAt); err != nil {
		return nil, err
	}
	if rating.Valid {
		p.Rating = &rating.Float64
	}
	return p, nil
}

func (r *participantRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM event_participants WHERE event_id = $1`
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *participantRepository) Remove(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *participantRepository) SetRating(ctx context.Context, eventID, userID string, rating float64) error {
	query := `UPDATE event_participants SET rating = $1 WHERE event_id = $2 AND user_id = $3`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, rating, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}
