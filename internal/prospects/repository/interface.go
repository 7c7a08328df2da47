package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/prospects/domain"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// ProspectReader provides read-only access to prospect data.
type ProspectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Prospect, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
	FindByIdentity(ctx context.Context, normalizedName, normalizedCity string) (Prospect, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProspectWriter provides write operations for prospect management.
type ProspectWriter interface {
	Create(ctx context.Context, params CreateProspectParams) (Prospect, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProspectStatus, expectedVersion int) (Prospect, error)
	ResetCadence(ctx context.Context, id uuid.UUID, expectedVersion int) (Prospect, error)
}

// ScoreWriter persists scoring results.
type ScoreWriter interface {
	// UpdateScore stores the fit score and its breakdown. Prospects still
	// in the New status are promoted to Scored as part of the same write.
	UpdateScore(ctx context.Context, id uuid.UUID, score int, breakdown map[string]float64, scoredAt time.Time) error
	// ListForScoring returns all non-terminal prospects that have
	// coordinates, so the whole pipeline can be rescored.
	ListForScoring(ctx context.Context) ([]Prospect, error)
}

// CadenceStore manages the outreach cadence lifecycle. CommitSend is the only
// path that advances a prospect's cadence step.
type CadenceStore interface {
	// ListDueFollowUps returns prospects whose next cadence step is due at
	// the given instant, oldest eligibility first.
	ListDueFollowUps(ctx context.Context, now time.Time, maxSteps, limit int) ([]Prospect, error)
	// CommitSend appends the outreach log row and advances the cadence in
	// one transaction. Returns domain.ConcurrentModificationError when the
	// prospect changed since ExpectedVersion was read.
	CommitSend(ctx context.Context, params CommitSendParams) error
	// RecordFailedAttempt appends a failed-outcome log row without
	// touching the prospect's cadence.
	RecordFailedAttempt(ctx context.Context, email OutreachEmail) error
}

// OutreachLogReader provides access to the append-only outreach history.
type OutreachLogReader interface {
	ListOutreachEmails(ctx context.Context, prospectID uuid.UUID) ([]OutreachEmail, error)
}

// =====================================
// Composite Interface
// =====================================

// ProspectsRepository defines the complete interface for prospect data
// operations. Composed of smaller, focused interfaces for testability.
type ProspectsRepository interface {
	ProspectReader
	ProspectWriter
	ScoreWriter
	CadenceStore
	OutreachLogReader
}

// Ensure Repository implements ProspectsRepository
var _ ProspectsRepository = (*Repository)(nil)
