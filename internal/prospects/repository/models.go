package repository

import (
	"time"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/prospects/domain"
)

// Prospect is a candidate community organization in the outreach pipeline.
type Prospect struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	Email          string
	Phone          *string
	City           string
	NormalizedCity string
	Region         *string
	Country        string
	Latitude       *float64
	Longitude      *float64
	Population     *int
	Source         string
	Notes          *string

	FitScore       *int
	ScoreBreakdown map[string]float64
	ScoredAt       *time.Time

	Status          domain.ProspectStatus
	CadenceStep     int
	NextEligibleAt  *time.Time
	LastContactedAt *time.Time
	Version         int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OutreachEmail is one row of the append-only outreach log. Rows are written
// for delivered sends and for failed attempts alike; the log is never updated.
type OutreachEmail struct {
	ID            uuid.UUID
	ProspectID    uuid.UUID
	Step          int
	Intent        string
	Subject       string
	HTMLBody      string
	Outcome       domain.DeliveryOutcome
	FailureReason *string
	TriggeredBy   *uuid.UUID
	CreatedAt     time.Time
}

// CreateProspectParams carries the fields needed to insert a new prospect.
type CreateProspectParams struct {
	Name       string
	Email      string
	Phone      *string
	City       string
	Region     *string
	Country    string
	Latitude   *float64
	Longitude  *float64
	Population *int
	Source     string
	Notes      *string
}

// CommitSendParams records a delivered outreach email and advances the
// prospect's cadence in a single transaction. ExpectedVersion is the version
// the caller read before generating content; a mismatch aborts the commit.
type CommitSendParams struct {
	ProspectID      uuid.UUID
	ExpectedVersion int
	Step            int
	NextEligibleAt  time.Time
	SentAt          time.Time
	Email           OutreachEmail
}

type ListParams struct {
	Status    *domain.ProspectStatus
	MinScore  *int
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

type ListResult struct {
	Items      []Prospect
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}
