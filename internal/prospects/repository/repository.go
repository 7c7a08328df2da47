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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shoreline_portal_backend/internal/prospects/domain"
)

const prospectNotFoundMsg = "prospect not found"

const prospectColumns = `
	id, name, normalized_name, email, phone, city, normalized_city,
	region, country, latitude, longitude, population, source, notes,
	fit_score, score_breakdown, scored_at,
	status, cadence_step, next_eligible_at, last_contacted_at, version,
	created_at, updated_at`

// Repository provides database operations for prospects.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new prospects repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspect(row rowScanner) (Prospect, error) {
	var p Prospect
	var status string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.NormalizedName,
		&p.Email,
		&p.Phone,
		&p.City,
		&p.NormalizedCity,
		&p.Region,
		&p.Country,
		&p.Latitude,
		&p.Longitude,
		&p.Population,
		&p.Source,
		&p.Notes,
		&p.FitScore,
		&p.ScoreBreakdown,
		&p.ScoredAt,
		&status,
		&p.CadenceStep,
		&p.NextEligibleAt,
		&p.LastContactedAt,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Prospect{}, err
	}
	p.Status, err = domain.ParseStatus(status)
	if err != nil {
		return Prospect{}, fmt.Errorf("scan prospect %s: %w", p.ID, err)
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, params CreateProspectParams) (Prospect, error) {
	query := `
		INSERT INTO prospects (
			id, name, normalized_name, email, phone, city, normalized_city,
			region, country, latitude, longitude, population, source, notes,
			status, cadence_step, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14,
			$15, 0, 1, now(), now()
		)
		RETURNING ` + prospectColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		params.Name,
		domain.NormalizeIdentity(params.Name),
		params.Email,
		params.Phone,
		params.City,
		domain.NormalizeIdentity(params.City),
		params.Region,
		params.Country,
		params.Latitude,
		params.Longitude,
		params.Population,
		params.Source,
		params.Notes,
		domain.StatusNew.String(),
	)
	prospect, err := scanProspect(row)
	if err != nil {
		return Prospect{}, fmt.Errorf("create prospect: %w", err)
	}
	return prospect, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE id = $1`

	prospect, err := scanProspect(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, apperr.NotFound(prospectNotFoundMsg)
		}
		return Prospect{}, fmt.Errorf("get prospect: %w", err)
	}
	return prospect, nil
}

func (r *Repository) FindByIdentity(ctx context.Context, normalizedName, normalizedCity string) (Prospect, error) {
	query := `SELECT ` + prospectColumns + `
		FROM prospects
		WHERE normalized_name = $1 AND normalized_city = $2`

	prospect, err := scanProspect(r.pool.QueryRow(ctx, query, normalizedName, normalizedCity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, apperr.NotFound(prospectNotFoundMsg)
		}
		return Prospect{}, fmt.Errorf("find prospect by identity: %w", err)
	}
	return prospect, nil
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM prospects WHERE lower(email) = lower($1))`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check prospect email: %w", err)
	}
	return exists, nil
}

var listSortColumns = map[string]string{
	"name":       "name",
	"city":       "city",
	"fit_score":  "fit_score",
	"status":     "status",
	"created_at": "created_at",
}

func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 200 {
		params.PageSize = 50
	}

	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Status != nil {
		where = append(where, "status = "+arg(params.Status.String()))
	}
	if params.MinScore != nil {
		where = append(where, "fit_score >= "+arg(*params.MinScore))
	}
	if params.Search != "" {
		p := arg("%" + strings.ToLower(params.Search) + "%")
		where = append(where, fmt.Sprintf("(normalized_name LIKE %s OR normalized_city LIKE %s OR lower(email) LIKE %s)", p, p, p))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT count(*) FROM prospects WHERE ` + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count prospects: %w", err)
	}

	sortBy, ok := listSortColumns[params.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM prospects WHERE %s ORDER BY %s %s NULLS LAST LIMIT %s OFFSET %s`,
		prospectColumns, whereClause, sortBy, sortOrder,
		arg(params.PageSize), arg((params.Page-1)*params.PageSize),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list prospects: %w", err)
	}
	defer rows.Close()

	items := []Prospect{}
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("list prospects: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list prospects: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProspectStatus, expectedVersion int) (Prospect, error) {
	query := `
		UPDATE prospects
		SET status = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING ` + prospectColumns

	prospect, err := scanProspect(r.pool.QueryRow(ctx, query, id, expectedVersion, status.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, r.versionConflict(ctx, id)
		}
		return Prospect{}, fmt.Errorf("update prospect status: %w", err)
	}
	return prospect, nil
}

func (r *Repository) ResetCadence(ctx context.Context, id uuid.UUID, expectedVersion int) (Prospect, error) {
	query := `
		UPDATE prospects
		SET status = $3, cadence_step = 0, next_eligible_at = NULL,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING ` + prospectColumns

	prospect, err := scanProspect(r.pool.QueryRow(ctx, query, id, expectedVersion, domain.StatusNew.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Prospect{}, r.versionConflict(ctx, id)
		}
		return Prospect{}, fmt.Errorf("reset prospect cadence: %w", err)
	}
	return prospect, nil
}

// versionConflict distinguishes a missing row from a stale version.
func (r *Repository) versionConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM prospects WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check prospect exists: %w", err)
	}
	if !exists {
		return apperr.NotFound(prospectNotFoundMsg)
	}
	return domain.ConcurrentModificationError{ProspectID: id}
}

func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, score int, breakdown map[string]float64, scoredAt time.Time) error {
	query := `
		UPDATE prospects
		SET fit_score = $2, score_breakdown = $3, scored_at = $4,
			status = CASE WHEN status = $5 THEN $6 ELSE status END,
			updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, score, breakdown, scoredAt,
		domain.StatusNew.String(), domain.StatusScored.String())
	if err != nil {
		return fmt.Errorf("update prospect score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(prospectNotFoundMsg)
	}
	return nil
}

func (r *Repository) ListForScoring(ctx context.Context) ([]Prospect, error) {
	query := `SELECT ` + prospectColumns + `
		FROM prospects
		WHERE status NOT IN ($1, $2, $3, $4)
			AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query,
		domain.StatusResponded.String(),
		domain.StatusConverted.String(),
		domain.StatusRejected.String(),
		domain.StatusUnreachable.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list prospects for scoring: %w", err)
	}
	defer rows.Close()

	var items []Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("list prospects for scoring: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *Repository) ListDueFollowUps(ctx context.Context, now time.Time, maxSteps, limit int) ([]Prospect, error) {
	query := `SELECT ` + prospectColumns + `
		FROM prospects
		WHERE status = $1
			AND cadence_step >= 1
			AND cadence_step < $2
			AND (next_eligible_at IS NULL OR next_eligible_at <= $3)
		ORDER BY next_eligible_at ASC NULLS FIRST, created_at ASC
		LIMIT $4`

	rows, err := r.pool.Query(ctx, query,
		domain.StatusContacted.String(),
		maxSteps,
		now,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due follow-ups: %w", err)
	}
	defer rows.Close()

	var items []Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("list due follow-ups: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CommitSend appends the sent email and advances the cadence atomically. The
// version condition revalidates eligibility at commit time, so a prospect
// updated between read and commit rolls back untouched.
func (r *Repository) CommitSend(ctx context.Context, params CommitSendParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin send commit: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE prospects
		SET status = $3, cadence_step = $4, next_eligible_at = $5,
			last_contacted_at = $6, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2`,
		params.ProspectID,
		params.ExpectedVersion,
		domain.StatusContacted.String(),
		params.Step,
		params.NextEligibleAt,
		params.SentAt,
	)
	if err != nil {
		return fmt.Errorf("advance cadence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ConcurrentModificationError{ProspectID: params.ProspectID}
	}

	if err := insertOutreachEmail(ctx, tx, params.Email); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit send: %w", err)
	}
	return nil
}

func (r *Repository) RecordFailedAttempt(ctx context.Context, email OutreachEmail) error {
	return insertOutreachEmail(ctx, r.pool, email)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertOutreachEmail(ctx context.Context, db execer, email OutreachEmail) error {
	query := `
		INSERT INTO prospect_outreach_emails (
			id, prospect_id, step, intent, subject, html_body,
			outcome, failure_reason, triggered_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	id := email.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := email.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.Exec(ctx, query,
		id,
		email.ProspectID,
		email.Step,
		email.Intent,
		email.Subject,
		email.HTMLBody,
		email.Outcome.String(),
		email.FailureReason,
		email.TriggeredBy,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert outreach email: %w", err)
	}
	return nil
}

func (r *Repository) ListOutreachEmails(ctx context.Context, prospectID uuid.UUID) ([]OutreachEmail, error) {
	query := `
		SELECT id, prospect_id, step, intent, subject, html_body,
			outcome, failure_reason, triggered_by, created_at
		FROM prospect_outreach_emails
		WHERE prospect_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, prospectID)
	if err != nil {
		return nil, fmt.Errorf("list outreach emails: %w", err)
	}
	defer rows.Close()

	items := []OutreachEmail{}
	for rows.Next() {
		var e OutreachEmail
		var outcome string
		if err := rows.Scan(
			&e.ID,
			&e.ProspectID,
			&e.Step,
			&e.Intent,
			&e.Subject,
			&e.HTMLBody,
			&outcome,
			&e.FailureReason,
			&e.TriggeredBy,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list outreach emails: %w", err)
		}
		e.Outcome, err = domain.ParseOutcome(outcome)
		if err != nil {
			return nil, fmt.Errorf("list outreach emails: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
