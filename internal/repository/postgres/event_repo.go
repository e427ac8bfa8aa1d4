package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamup/internal/domain"
)

const eventColumns = `id, name, sport_id, starts_at, place, latitude, longitude, max_participants,
		status, owner_id, owner_name, weather, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var latNull, lngNull sql.NullFloat64
	var status string
	var weather []byte
	if err := row.Scan(
		&e.ID, &e.Name, &e.SportID, &e.StartsAt, &e.Place, &latNull, &lngNull, &e.MaxParticipants,
		&status, &e.OwnerID, &e.OwnerName, &weather, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	if latNull.Valid {
		e.Latitude = &latNull.Float64
	}
	if lngNull.Valid {
		e.Longitude = &lngNull.Float64
	}
	if len(weather) > 0 {
		var w domain.WeatherSnapshot
		if err := json.Unmarshal(weather, &w); err != nil {
			return nil, fmt.Errorf("decode weather: %w", err)
		}
		e.Weather = &w
	}
	return e, nil
}

func encodeWeather(w *domain.WeatherSnapshot) (any, error) {
	if w == nil {
		return nil, nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode weather: %w", err)
	}
	return b, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	weather, err := encodeWeather(e.Weather)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (name, sport_id, starts_at, place, latitude, longitude, max_participants,
			status, owner_id, owner_name, weather, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.Name, e.SportID, e.StartsAt, e.Place, e.Latitude, e.Longitude, e.MaxParticipants,
		string(e.Status), e.OwnerID, e.OwnerName, weather, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *eventRepository) get(ctx context.Context, query, id string) (*domain.Event, error) {
	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE owner_id = $1 ORDER BY starts_at DESC, id LIMIT $2 OFFSET $3`
	events, err := r.list(ctx, query, ownerID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListInProgressStartedBefore(ctx context.Context, before time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = 'in_progress' AND starts_at < $1 ORDER BY starts_at`
	return r.list(ctx, query, before)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.SportID != nil {
		set("sport_id", *patch.SportID)
	}
	if patch.StartsAt != nil {
		set("starts_at", *patch.StartsAt)
	}
	if patch.Place != nil {
		set("place", *patch.Place)
	}
	if patch.MaxParticipants != nil {
		set("max_participants", *patch.MaxParticipants)
	}
	if patch.Latitude != nil {
		set("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		set("longitude", *patch.Longitude)
	}
	if patch.Weather != nil {
		weather, err := encodeWeather(patch.Weather)
		if err != nil {
			return nil, err
		}
		set("weather", weather)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) MarkConcluded(ctx context.Context, id string) (bool, error) {
	query := `UPDATE events SET status = 'concluded', updated_at = NOW() WHERE id = $1 AND status = 'in_progress'`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		if isMalformedID(err) {
			return false, domain.ErrEventNotFound
		}
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		if isMalformedID(err) {
			return domain.ErrEventNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
