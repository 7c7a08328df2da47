package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/geo"
	"shoreline_portal_backend/platform/logger"
)

func TestScoreActivityDensity(t *testing.T) {
	if got := scoreActivityDensity(0); got != 0 {
		t.Fatalf("zero events: got %v, want 0", got)
	}
	if got := scoreActivityDensity(activitySaturation); got != 100 {
		t.Fatalf("saturated: got %v, want 100", got)
	}
	if got := scoreActivityDensity(activitySaturation * 3); got != 100 {
		t.Fatalf("over saturation: got %v, want 100", got)
	}
	half := scoreActivityDensity(activitySaturation / 2)
	if half <= 0 || half >= 100 {
		t.Fatalf("half saturation: got %v, want inside (0,100)", half)
	}
}

func TestScoreProximity(t *testing.T) {
	origin := geo.Point{Lat: 52.0, Lon: 4.0}

	if got := scoreProximity(origin, nil); got != neutralScore {
		t.Fatalf("no events: got %v, want neutral %v", got, neutralScore)
	}

	atOrigin := []ports.EventLocation{{Latitude: 52.0, Longitude: 4.0}}
	if got := scoreProximity(origin, atOrigin); got != 100 {
		t.Fatalf("event at origin: got %v, want 100", got)
	}

	// Roughly 111 km north, well past the proximity cutoff.
	far := []ports.EventLocation{{Latitude: 53.0, Longitude: 4.0}}
	if got := scoreProximity(origin, far); got != 0 {
		t.Fatalf("distant event: got %v, want 0", got)
	}
}

func TestScoreCoverageGap(t *testing.T) {
	origin := geo.Point{Lat: 52.0, Lon: 4.0}

	if got := scoreCoverageGap(origin, nil); got != 100 {
		t.Fatalf("no partners: got %v, want 100", got)
	}

	covered := []ports.PartnerCoverage{{Latitude: 52.0, Longitude: 4.0, ServiceRadiusKm: 10}}
	if got := scoreCoverageGap(origin, covered); got != 0 {
		t.Fatalf("inside partner radius: got %v, want 0", got)
	}

	// Partner about 111 km away with a small radius leaves a wide gap.
	remote := []ports.PartnerCoverage{{Latitude: 53.0, Longitude: 4.0, ServiceRadiusKm: 5}}
	if got := scoreCoverageGap(origin, remote); got != 100 {
		t.Fatalf("remote partner: got %v, want 100", got)
	}
}

func TestScorePopulation(t *testing.T) {
	if got := scorePopulation(nil); got != neutralScore {
		t.Fatalf("missing population: got %v, want neutral", got)
	}

	million := 1_000_000
	if got := scorePopulation(&million); got != 100 {
		t.Fatalf("1M population: got %v, want 100", got)
	}

	town := 10_000
	small := scorePopulation(&town)
	if small <= 0 || small >= 100 {
		t.Fatalf("town population: got %v, want inside (0,100)", small)
	}
	if small >= scorePopulation(&million) {
		t.Fatalf("town %v should score below metro", small)
	}
}

func TestScoreContactHistory(t *testing.T) {
	now := time.Now().UTC()

	if got := scoreContactHistory(0, nil, now); got != 100 {
		t.Fatalf("never contacted: got %v, want 100", got)
	}

	recent := now.Add(-24 * time.Hour)
	fresh := scoreContactHistory(1, &recent, now)
	old := now.Add(-90 * 24 * time.Hour)
	stale := scoreContactHistory(1, &old, now)
	if fresh >= stale {
		t.Fatalf("recent contact (%v) should score below stale contact (%v)", fresh, stale)
	}

	if got := scoreContactHistory(10, &recent, now); got != 0 {
		t.Fatalf("heavily contacted: got %v, want clamp to 0", got)
	}
}

func TestWeightedScore(t *testing.T) {
	factors := map[string]float64{
		FactorActivityDensity: 100,
		FactorProximity:       100,
		FactorCoverageGap:     100,
		FactorPopulation:      100,
		FactorContactHistory:  100,
	}
	weights := config.DefaultOutreachSettings().Weights
	if got := weightedScore(factors, weights); got != 100 {
		t.Fatalf("all factors at max: got %d, want 100", got)
	}

	factors[FactorCoverageGap] = 0
	if got := weightedScore(factors, weights); got >= 100 {
		t.Fatalf("dropping a factor should lower the score, got %d", got)
	}

	if got := weightedScore(factors, config.ScoringWeights{}); got != 0 {
		t.Fatalf("zero weights: got %d, want 0", got)
	}
}

type fakeScoringRepo struct {
	repository.ProspectsRepository

	prospect repository.Prospect
	saved    map[uuid.UUID]int
}

func (f *fakeScoringRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Prospect, error) {
	return f.prospect, nil
}

func (f *fakeScoringRepo) ListForScoring(_ context.Context) ([]repository.Prospect, error) {
	return []repository.Prospect{f.prospect}, nil
}

func (f *fakeScoringRepo) UpdateScore(_ context.Context, id uuid.UUID, score int, _ map[string]float64, _ time.Time) error {
	if f.saved == nil {
		f.saved = map[uuid.UUID]int{}
	}
	f.saved[id] = score
	return nil
}

type fakeActivity struct {
	count     int
	locations []ports.EventLocation
}

func (f *fakeActivity) CountEventsNear(context.Context, float64, float64, float64, int) (int, error) {
	return f.count, nil
}

func (f *fakeActivity) ListEventLocations(context.Context, int) ([]ports.EventLocation, error) {
	return f.locations, nil
}

type fakeCoverage struct {
	coverage []ports.PartnerCoverage
}

func (f *fakeCoverage) ListActiveCoverage(context.Context) ([]ports.PartnerCoverage, error) {
	return f.coverage, nil
}

func TestScoreProspectPersistsResult(t *testing.T) {
	lat, lon := 52.0, 4.0
	pop := 250_000
	prospect := repository.Prospect{
		ID:         uuid.New(),
		Latitude:   &lat,
		Longitude:  &lon,
		Population: &pop,
	}

	repo := &fakeScoringRepo{prospect: prospect}
	activity := &fakeActivity{
		count:     activitySaturation,
		locations: []ports.EventLocation{{Latitude: 52.01, Longitude: 4.01}},
	}

	svc := New(repo, activity, &fakeCoverage{}, config.DefaultOutreachSettings(), logger.New("test"))

	result, err := svc.ScoreProspect(context.Background(), prospect.ID)
	if err != nil {
		t.Fatalf("ScoreProspect: %v", err)
	}
	if result.Score <= 0 || result.Score > 100 {
		t.Fatalf("score out of range: %d", result.Score)
	}
	if len(result.Breakdown) != 5 {
		t.Fatalf("expected 5 breakdown factors, got %d", len(result.Breakdown))
	}
	if saved, ok := repo.saved[prospect.ID]; !ok || saved != result.Score {
		t.Fatalf("score not persisted: saved=%v result=%d", repo.saved, result.Score)
	}
}

func TestRecalculateAllCountsOutcomes(t *testing.T) {
	lat, lon := 52.0, 4.0
	repo := &fakeScoringRepo{prospect: repository.Prospect{
		ID:        uuid.New(),
		Latitude:  &lat,
		Longitude: &lon,
	}}

	svc := New(repo, &fakeActivity{count: 3}, &fakeCoverage{}, config.DefaultOutreachSettings(), logger.New("test"))

	actorID := uuid.New()
	summary, err := svc.RecalculateAll(context.Background(), &actorID)
	if err != nil {
		t.Fatalf("RecalculateAll: %v", err)
	}
	if summary.Scored != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
