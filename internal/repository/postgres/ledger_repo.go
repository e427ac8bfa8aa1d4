package postgres

import (
	"context"
	"database/sql"

	"teamup/internal/domain"
)

type ledgerRepository struct {
	DB *sql.DB
}

func NewLedgerRepository(db *sql.DB) domain.LedgerRepository {
	return &ledgerRepository{
		DB: db,
	}
}

func (r *ledgerRepository) Append(ctx context.Context, e *domain.LedgerEntry) (bool, error) {
	query := `
		INSERT INTO ledger_entries (id, message_id, event_id, kind, user_id, user_name, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (message_id) DO NOTHING
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.ID, e.MessageID, e.EventID, e.Kind, e.UserID, e.UserName, e.Message, e.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *ledgerRepository) HasConcludedMarker(ctx context.Context, eventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries
			WHERE event_id = $1 AND kind = $2 AND message LIKE '%' || $3
		)
	`
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, domain.LedgerKindConcluded, domain.ConcludedSuffix).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ledgerRepository) DeleteByEventID(ctx context.Context, eventID string) (int64, error) {
	query := `DELETE FROM ledger_entries WHERE event_id = $1`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, eventID)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
