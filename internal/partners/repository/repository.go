package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shoreline_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const partnerColumns = `
	id, name, email, phone, city, country, latitude, longitude,
	service_radius_km, active, source_prospect_id, notes, created_at, updated_at`

// Repository provides database operations for partners.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new partners repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (Partner, error) {
	var p Partner
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.City,
		&p.Country,
		&p.Latitude,
		&p.Longitude,
		&p.ServiceRadiusKm,
		&p.Active,
		&p.SourceProspectID,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Partner{}, err
	}
	return p, nil
}

// Create registers a new partner.
func (r *Repository) Create(ctx context.Context, params CreatePartnerParams) (Partner, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO partners (
			name, email, phone, city, country, latitude, longitude,
			service_radius_km, active, source_prospect_id, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+partnerColumns,
		params.Name,
		strings.ToLower(params.Email),
		params.Phone,
		params.City,
		params.Country,
		params.Latitude,
		params.Longitude,
		params.ServiceRadiusKm,
		params.Active,
		params.SourceProspectID,
		params.Notes,
	)
	return scanPartner(row)
}

// GetByID retrieves a single partner.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Partner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+partnerColumns+`
		FROM partners
		WHERE id = $1`, id)

	partner, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound("partner not found")
		}
		return Partner{}, err
	}
	return partner, nil
}

// ExistsByEmail reports whether a partner with the given email exists.
func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM partners WHERE email = $1)`,
		strings.ToLower(email),
	).Scan(&exists)
	return exists, err
}

// List returns a filtered, paginated page of partners.
func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	conditions := []string{"1=1"}
	args := []any{}
	argPos := 1

	if params.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *params.Active)
		argPos++
	}
	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(city) LIKE $%d)", argPos, argPos))
		args = append(args, "%"+strings.ToLower(params.Search)+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM partners WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return ListResult{}, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM partners
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, partnerColumns, where, argPos, argPos+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	partners := make([]Partner, 0)
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return ListResult{}, err
		}
		partners = append(partners, partner)
	}
	if rows.Err() != nil {
		return ListResult{}, rows.Err()
	}

	return ListResult{Partners: partners, Total: total}, nil
}

// Update applies the non-nil fields to the partner and returns the updated
// row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdatePartnerParams) (Partner, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE partners SET
			phone = COALESCE($2, phone),
			latitude = COALESCE($3, latitude),
			longitude = COALESCE($4, longitude),
			service_radius_km = COALESCE($5, service_radius_km),
			active = COALESCE($6, active),
			notes = COALESCE($7, notes),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+partnerColumns,
		id,
		params.Phone,
		params.Latitude,
		params.Longitude,
		params.ServiceRadiusKm,
		params.Active,
		params.Notes,
	)

	partner, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound("partner not found")
		}
		return Partner{}, err
	}
	return partner, nil
}

// ListActiveCoverage returns the footprints of all active partners with known
// coordinates.
func (r *Repository) ListActiveCoverage(ctx context.Context) ([]Coverage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT latitude, longitude, service_radius_km
		FROM partners
		WHERE active = true
			AND latitude IS NOT NULL AND longitude IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coverage := make([]Coverage, 0)
	for rows.Next() {
		var c Coverage
		if err := rows.Scan(&c.Latitude, &c.Longitude, &c.ServiceRadiusKm); err != nil {
			return nil, err
		}
		coverage = append(coverage, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return coverage, nil
}
