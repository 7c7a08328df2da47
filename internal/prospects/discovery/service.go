// Package discovery proposes new prospect organizations for uncovered
// activity clusters.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shoreline_portal_backend/internal/prospects/gap"
	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/validator"
)

const (
	// maxClustersPerRun caps how many gap clusters feed the prompt.
	maxClustersPerRun = 5
	// defaultMaxCandidates bounds the suggestion list when the request
	// leaves it unset.
	defaultMaxCandidates = 10
)

// GapFinder is the slice of gap analysis discovery needs.
type GapFinder interface {
	FindCoverageGaps(ctx context.Context) ([]gap.Cluster, error)
}

// Request describes one discovery run. Criteria is free text from the admin
// steering the search; coverage gaps are added as context automatically.
type Request struct {
	Criteria      string
	MaxCandidates int
}

// Candidate is one suggested organization. Candidates are proposals only;
// nothing is persisted until an admin routes them through the import path,
// which applies the usual deduplication.
type Candidate struct {
	Name       string   `json:"name" validate:"required,min=2"`
	Email      string   `json:"email" validate:"required,email"`
	City       string   `json:"city" validate:"required"`
	Region     *string  `json:"region"`
	Country    string   `json:"country" validate:"required"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Population *int     `json:"population"`
}

// Result is the proposal list plus the model's reasoning for it.
type Result struct {
	Candidates       []Candidate
	Rationale        string
	ClustersExamined int
	SkippedInvalid   int
}

// Service asks the text model for partner candidates matching admin criteria.
type Service struct {
	gaps     GapFinder
	ai       ports.TextGenerator
	validate *validator.Validator
	log      *logger.Logger
}

// New creates a new discovery service.
func New(gaps GapFinder, ai ports.TextGenerator, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{gaps: gaps, ai: ai, validate: validate, log: log}
}

// modelOutput is the JSON shape the model is instructed to return.
type modelOutput struct {
	Rationale  string      `json:"rationale"`
	Candidates []Candidate `json:"candidates"`
}

// DiscoverProspects gathers current coverage gaps, combines them with the
// request criteria and returns the model's candidate list with its rationale.
// Malformed suggestions are dropped and counted; valid ones are returned
// as-is, never written to storage.
func (s *Service) DiscoverProspects(ctx context.Context, req Request) (Result, error) {
	clusters, err := s.gaps.FindCoverageGaps(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(clusters) > maxClustersPerRun {
		clusters = clusters[:maxClustersPerRun]
	}

	maxCandidates := req.MaxCandidates
	if maxCandidates <= 0 || maxCandidates > defaultMaxCandidates {
		maxCandidates = defaultMaxCandidates
	}

	raw, err := s.ai.Generate(ctx, buildPrompt(req.Criteria, clusters, maxCandidates))
	if err != nil {
		return Result{}, fmt.Errorf("discovery generation: %w", err)
	}

	var output modelOutput
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &output); err != nil {
		return Result{}, fmt.Errorf("parse discovery output: %w", err)
	}
	if len(output.Candidates) > maxCandidates {
		output.Candidates = output.Candidates[:maxCandidates]
	}

	result := Result{
		Rationale:        output.Rationale,
		ClustersExamined: len(clusters),
	}
	for _, c := range output.Candidates {
		if err := s.validate.Struct(c); err != nil {
			result.SkippedInvalid++
			s.log.Warn("discovery candidate rejected", "name", c.Name, "error", err)
			continue
		}
		c.Email = strings.ToLower(c.Email)
		result.Candidates = append(result.Candidates, c)
	}

	s.log.Info("discovery run complete",
		"clusters", result.ClustersExamined,
		"candidates", len(result.Candidates),
		"invalid", result.SkippedInvalid,
	)
	return result, nil
}

func buildPrompt(criteria string, clusters []gap.Cluster, maxCandidates int) string {
	var b strings.Builder
	b.WriteString("You are researching community partners for a coastal cleanup platform.\n\n")

	if strings.TrimSpace(criteria) != "" {
		fmt.Fprintf(&b, "Search criteria from the outreach team: %s\n\n", strings.TrimSpace(criteria))
	}

	if len(clusters) > 0 {
		b.WriteString("Areas with recent cleanup activity but no partner organization:\n")
		for _, cluster := range clusters {
			fmt.Fprintf(&b, "- %d events near latitude %.4f, longitude %.4f\n",
				cluster.EventCount, cluster.Centroid.Lat, cluster.Centroid.Lon)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `Suggest up to %d real-sounding local community organizations (environmental
groups, neighborhood associations, scouting clubs) matching the criteria and
close to the listed areas, that could host cleanup events. For each, provide
a plausible public contact email on the organization's own domain. Explain
your reasoning in one short paragraph.

Respond with ONLY a JSON object in this exact shape:
{"rationale": "...", "candidates": [{"name": "...", "email": "...", "city": "...",
 "region": "...", "country": "...", "latitude": 0.0, "longitude": 0.0, "population": 0}]}`,
		maxCandidates)
	return b.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
