// Package scoring computes prospect fit scores from activity, geography, and
// contact-history signals.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/geo"
	"shoreline_portal_backend/platform/logger"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "2026-v1"

	// activityLookbackDays bounds how far back event activity counts.
	activityLookbackDays = 180

	// activitySaturation is the event count at which the activity factor
	// maxes out.
	activitySaturation = 12

	// proximityMaxKm is the distance at which the proximity factor
	// reaches zero.
	proximityMaxKm = 50.0

	// coverageGapMaxKm is the distance beyond a partner's service edge at
	// which the gap factor maxes out.
	coverageGapMaxKm = 40.0

	// populationLogCeiling: a population of 10^6 scores 100.
	populationLogCeiling = 6.0

	// neutralScore is used when a signal is unavailable, so missing data
	// neither rewards nor punishes a prospect.
	neutralScore = 50.0

	// contactStepPenalty and contactRecencyPenalty shape the
	// contact-history factor.
	contactStepPenalty    = 20.0
	contactRecencyPenalty = 20.0
	contactRecencyWindow  = 30 * 24 * time.Hour
)

// Breakdown keys exposed through the API.
const (
	FactorActivityDensity = "activity_density"
	FactorProximity       = "proximity"
	FactorCoverageGap     = "coverage_gap"
	FactorPopulation      = "population"
	FactorContactHistory  = "contact_history"
)

// Result holds scoring output and factor details.
type Result struct {
	ProspectID uuid.UUID
	Score      int
	Breakdown  map[string]float64
	Version    string
	ScoredAt   time.Time
}

// RecalcSummary reports the outcome of a full-pipeline rescore.
type RecalcSummary struct {
	Scored int
	Failed int
}

// Repository is the slice of prospect storage scoring needs.
type Repository interface {
	repository.ProspectReader
	repository.ScoreWriter
}

// Service computes prospect fit scores.
type Service struct {
	repo     Repository
	activity ports.ActivityReader
	partners ports.PartnerCoverageReader
	settings config.OutreachSettings
	log      *logger.Logger
}

// New creates a new scoring service.
func New(repo Repository, activity ports.ActivityReader, partners ports.PartnerCoverageReader, settings config.OutreachSettings, log *logger.Logger) *Service {
	return &Service{repo: repo, activity: activity, partners: partners, settings: settings, log: log}
}

// ScoreProspect computes and persists the fit score for a single prospect.
func (s *Service) ScoreProspect(ctx context.Context, id uuid.UUID) (*Result, error) {
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.compute(ctx, prospect)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateScore(ctx, id, result.Score, result.Breakdown, result.ScoredAt); err != nil {
		return nil, err
	}
	return result, nil
}

// RecalculateAll rescores every non-terminal prospect. Individual failures
// are logged and counted; the sweep continues. triggeredBy is the admin who
// requested the sweep, nil for scheduled runs.
func (s *Service) RecalculateAll(ctx context.Context, triggeredBy *uuid.UUID) (RecalcSummary, error) {
	prospects, err := s.repo.ListForScoring(ctx)
	if err != nil {
		return RecalcSummary{}, err
	}

	var summary RecalcSummary
	for _, p := range prospects {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		result, err := s.compute(ctx, p)
		if err == nil {
			err = s.repo.UpdateScore(ctx, p.ID, result.Score, result.Breakdown, result.ScoredAt)
		}
		if err != nil {
			summary.Failed++
			s.log.Error("prospect rescore failed", "prospect_id", p.ID, "error", err)
			continue
		}
		summary.Scored++
	}

	actor := "scheduler"
	if triggeredBy != nil {
		actor = triggeredBy.String()
	}
	s.log.Info("rescore sweep complete",
		"scored", summary.Scored,
		"failed", summary.Failed,
		"triggered_by", actor,
	)
	return summary, nil
}

func (s *Service) compute(ctx context.Context, p repository.Prospect) (*Result, error) {
	factors := map[string]float64{}

	activityScore := neutralScore
	proximityScore := neutralScore
	gapScore := neutralScore

	if p.Latitude != nil && p.Longitude != nil {
		origin := geo.Point{Lat: *p.Latitude, Lon: *p.Longitude}

		count, err := s.activity.CountEventsNear(ctx, origin.Lat, origin.Lon, s.settings.ActivityRadiusKm, activityLookbackDays)
		if err != nil {
			return nil, fmt.Errorf("count nearby events: %w", err)
		}
		activityScore = scoreActivityDensity(count)

		locations, err := s.activity.ListEventLocations(ctx, activityLookbackDays)
		if err != nil {
			return nil, fmt.Errorf("list event locations: %w", err)
		}
		proximityScore = scoreProximity(origin, locations)

		coverage, err := s.partners.ListActiveCoverage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list partner coverage: %w", err)
		}
		gapScore = scoreCoverageGap(origin, coverage)
	}

	factors[FactorActivityDensity] = activityScore
	factors[FactorProximity] = proximityScore
	factors[FactorCoverageGap] = gapScore
	factors[FactorPopulation] = scorePopulation(p.Population)
	factors[FactorContactHistory] = scoreContactHistory(p.CadenceStep, p.LastContactedAt, time.Now().UTC())

	score := weightedScore(factors, s.settings.Weights)

	return &Result{
		ProspectID: p.ID,
		Score:      score,
		Breakdown:  factors,
		Version:    scoreVersion,
		ScoredAt:   time.Now().UTC(),
	}, nil
}

// scoreActivityDensity saturates at activitySaturation events.
func scoreActivityDensity(count int) float64 {
	if count <= 0 {
		return 0
	}
	if count >= activitySaturation {
		return 100
	}
	return 100 * float64(count) / float64(activitySaturation)
}

// scoreProximity rewards prospects close to existing event activity. With no
// recorded events the signal is neutral.
func scoreProximity(origin geo.Point, locations []ports.EventLocation) float64 {
	if len(locations) == 0 {
		return neutralScore
	}
	nearest := math.MaxFloat64
	for _, loc := range locations {
		d := geo.DistanceKm(origin, geo.Point{Lat: loc.Latitude, Lon: loc.Longitude})
		if d < nearest {
			nearest = d
		}
	}
	if nearest >= proximityMaxKm {
		return 0
	}
	return 100 * (1 - nearest/proximityMaxKm)
}

// scoreCoverageGap rewards prospects far from any active partner's service
// area. A prospect inside a partner's radius scores zero; with no partners at
// all, everywhere is a gap.
func scoreCoverageGap(origin geo.Point, coverage []ports.PartnerCoverage) float64 {
	if len(coverage) == 0 {
		return 100
	}
	nearestEdge := math.MaxFloat64
	for _, c := range coverage {
		d := geo.DistanceKm(origin, geo.Point{Lat: c.Latitude, Lon: c.Longitude}) - c.ServiceRadiusKm
		if d < nearestEdge {
			nearestEdge = d
		}
	}
	if nearestEdge <= 0 {
		return 0
	}
	if nearestEdge >= coverageGapMaxKm {
		return 100
	}
	return 100 * nearestEdge / coverageGapMaxKm
}

// scorePopulation uses a log scale so a town of 10k and a metro of 1M both
// land on a meaningful part of the range. Missing data is neutral.
func scorePopulation(population *int) float64 {
	if population == nil || *population <= 0 {
		return neutralScore
	}
	score := 100 * math.Log10(float64(*population)) / populationLogCeiling
	return clampFloat(score, 0, 100)
}

// scoreContactHistory favors prospects that have not been contacted, with an
// extra penalty for contact inside the recency window.
func scoreContactHistory(cadenceStep int, lastContactedAt *time.Time, now time.Time) float64 {
	score := 100 - contactStepPenalty*float64(cadenceStep)
	if lastContactedAt != nil && now.Sub(*lastContactedAt) < contactRecencyWindow {
		score -= contactRecencyPenalty
	}
	return clampFloat(score, 0, 100)
}

// weightedScore combines normalized factors into the final 0-100 fit score.
func weightedScore(factors map[string]float64, w config.ScoringWeights) int {
	weights := map[string]float64{
		FactorActivityDensity: w.ActivityDensity,
		FactorProximity:       w.Proximity,
		FactorCoverageGap:     w.CoverageGap,
		FactorPopulation:      w.Population,
		FactorContactHistory:  w.ContactHistory,
	}

	var sum, totalWeight float64
	for key, weight := range weights {
		if weight <= 0 {
			continue
		}
		sum += factors[key] * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return clampScore(sum / totalWeight)
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func clampFloat(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
