package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateProspectRequest struct {
	Name       string   `json:"name" validate:"required,min=2,max=200"`
	Email      string   `json:"email" validate:"required,email"`
	Phone      *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	City       string   `json:"city" validate:"required,max=120"`
	Region     *string  `json:"region,omitempty" validate:"omitempty,max=120"`
	Country    string   `json:"country" validate:"required,max=120"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Population *int     `json:"population,omitempty" validate:"omitempty,min=0"`
	Notes      *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ListProspectsRequest struct {
	Status    string `form:"status" validate:"omitempty,max=30"`
	MinScore  *int   `form:"minScore" validate:"omitempty,min=0,max=100"`
	Search    string `form:"search" validate:"omitempty,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=name city fit_score status created_at"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

type CadenceStateResponse struct {
	Phase      string     `json:"phase"`
	NextStep   int        `json:"nextStep,omitempty"`
	EligibleAt *time.Time `json:"eligibleAt,omitempty"`
}

type ProspectResponse struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Phone           *string              `json:"phone,omitempty"`
	City            string               `json:"city"`
	Region          *string              `json:"region,omitempty"`
	Country         string               `json:"country"`
	Latitude        *float64             `json:"latitude,omitempty"`
	Longitude       *float64             `json:"longitude,omitempty"`
	Population      *int                 `json:"population,omitempty"`
	Source          string               `json:"source"`
	Notes           *string              `json:"notes,omitempty"`
	Status          string               `json:"status"`
	FitScore        *int                 `json:"fitScore,omitempty"`
	ScoreBreakdown  map[string]float64   `json:"scoreBreakdown,omitempty"`
	ScoredAt        *time.Time           `json:"scoredAt,omitempty"`
	CadenceStep     int                  `json:"cadenceStep"`
	Cadence         CadenceStateResponse `json:"cadence"`
	NextEligibleAt  *time.Time           `json:"nextEligibleAt,omitempty"`
	LastContactedAt *time.Time           `json:"lastContactedAt,omitempty"`
	Version         int                  `json:"version"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type ListProspectsResponse struct {
	Items      []ProspectResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

type ScoreResponse struct {
	ProspectID uuid.UUID          `json:"prospectId"`
	Score      int                `json:"score"`
	Breakdown  map[string]float64 `json:"breakdown"`
	Version    string             `json:"version"`
	ScoredAt   time.Time          `json:"scoredAt"`
}

type RescoreResponse struct {
	Scored int `json:"scored"`
	Failed int `json:"failed"`
}

type DraftResponse struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
	Intent   string `json:"intent"`
}

type SendResponse struct {
	ProspectID uuid.UUID `json:"prospectId"`
	Step       int       `json:"step"`
	Intent     string    `json:"intent"`
	Subject    string    `json:"subject"`
	SentAt     time.Time `json:"sentAt"`
}

type SendBatchRequest struct {
	ProspectIDs []uuid.UUID `json:"prospectIds" validate:"required,min=1,max=500,dive,required"`
}

type BatchItemResponse struct {
	ProspectID uuid.UUID `json:"prospectId"`
	Outcome    string    `json:"outcome"`
	Step       int       `json:"step,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

type BatchResponse struct {
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
	Items     []BatchItemResponse `json:"items"`
}

type OutreachEmailResponse struct {
	ID            uuid.UUID  `json:"id"`
	Step          int        `json:"step"`
	Intent        string     `json:"intent"`
	Subject       string     `json:"subject"`
	HTMLBody      string     `json:"htmlBody"`
	Outcome       string     `json:"outcome"`
	FailureReason *string    `json:"failureReason,omitempty"`
	TriggeredBy   *uuid.UUID `json:"triggeredBy,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type HistoryResponse struct {
	Emails  []OutreachEmailResponse `json:"emails"`
	Cadence CadenceStateResponse    `json:"cadence"`
}

type UpdateStatusRequest struct {
	Version int `json:"version" validate:"required,min=1"`
}

type CoverageGapResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	EventCount int     `json:"eventCount"`
}

type DiscoverRequest struct {
	Criteria      string `json:"criteria"`
	MaxCandidates int    `json:"maxCandidates" validate:"omitempty,min=1,max=10"`
}

type DiscoveryCandidateResponse struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	City       string   `json:"city"`
	Region     *string  `json:"region,omitempty"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Population *int     `json:"population,omitempty"`
}

type DiscoveryResponse struct {
	Candidates       []DiscoveryCandidateResponse `json:"candidates"`
	Rationale        string                       `json:"rationale"`
	ClustersExamined int                          `json:"clustersExamined"`
	SkippedInvalid   int                          `json:"skippedInvalid"`
}

type ImportRowRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      *string  `json:"phone,omitempty"`
	City       string   `json:"city"`
	Region     *string  `json:"region,omitempty"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Population *int     `json:"population,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

type ImportRowsRequest struct {
	Source string             `json:"source" validate:"omitempty,oneof=import discovery"`
	Rows   []ImportRowRequest `json:"rows" validate:"required,min=1,max=500"`
}
