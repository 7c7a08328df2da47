package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shoreline_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `
	id, name, city, country, latitude, longitude,
	occurred_at, attendee_count, kilograms_collected, notes, created_at`

// Repository provides database operations for cleanup events.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new cleanup events repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (CleanupEvent, error) {
	var e CleanupEvent
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.City,
		&e.Country,
		&e.Latitude,
		&e.Longitude,
		&e.OccurredAt,
		&e.AttendeeCount,
		&e.KilogramsCollected,
		&e.Notes,
		&e.CreatedAt,
	)
	if err != nil {
		return CleanupEvent{}, err
	}
	return e, nil
}

// Create records a new cleanup event.
func (r *Repository) Create(ctx context.Context, params CreateEventParams) (CleanupEvent, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cleanup_events (
			name, city, country, latitude, longitude,
			occurred_at, attendee_count, kilograms_collected, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+eventColumns,
		params.Name,
		params.City,
		params.Country,
		params.Latitude,
		params.Longitude,
		params.OccurredAt,
		params.AttendeeCount,
		params.KilogramsCollected,
		params.Notes,
	)
	return scanEvent(row)
}

// GetByID retrieves a single cleanup event.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (CleanupEvent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM cleanup_events
		WHERE id = $1`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CleanupEvent{}, apperr.NotFound("cleanup event not found")
		}
		return CleanupEvent{}, err
	}
	return event, nil
}

// List returns a filtered, paginated page of events, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argPos := 1

	if params.City != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(city) = LOWER($%d)", argPos))
		args = append(args, params.City)
		argPos++
	}
	if params.Since != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", argPos))
		args = append(args, *params.Since)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM cleanup_events WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM cleanup_events
		WHERE %s
		ORDER BY occurred_at DESC
		LIMIT $%d OFFSET $%d`, eventColumns, where, argPos, argPos+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	events := make([]CleanupEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return ListResult{}, err
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return ListResult{}, rows.Err()
	}

	return ListResult{Events: events, Total: total}, nil
}

// CountNear returns how many events since the given time fall within radiusKm
// of the point. Uses the earthdistance extension, same as partner matching.
func (r *Repository) CountNear(ctx context.Context, lat, lon, radiusKm float64, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM cleanup_events
		WHERE occurred_at >= $1
			AND earth_distance(ll_to_earth($2, $3), ll_to_earth(latitude, longitude)) <= ($4 * 1000.0)`,
		since, lat, lon, radiusKm,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListLocationsSince returns the coordinates of all events recorded since the
// given time.
func (r *Repository) ListLocationsSince(ctx context.Context, since time.Time) ([]EventLocation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT latitude, longitude
		FROM cleanup_events
		WHERE occurred_at >= $1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]EventLocation, 0)
	for rows.Next() {
		var loc EventLocation
		if err := rows.Scan(&loc.Latitude, &loc.Longitude); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return locations, nil
}
