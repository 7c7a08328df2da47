package gap

import (
	"context"
	"testing"

	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/logger"
)

type stubActivity struct {
	locations []ports.EventLocation
}

func (s *stubActivity) CountEventsNear(context.Context, float64, float64, float64, int) (int, error) {
	return len(s.locations), nil
}

func (s *stubActivity) ListEventLocations(context.Context, int) ([]ports.EventLocation, error) {
	return s.locations, nil
}

type stubPartners struct {
	coverage []ports.PartnerCoverage
}

func (s *stubPartners) ListActiveCoverage(context.Context) ([]ports.PartnerCoverage, error) {
	return s.coverage, nil
}

// Two tight clumps of events roughly 111 km apart, plus one stray point.
func clumpedLocations() []ports.EventLocation {
	return []ports.EventLocation{
		{Latitude: 52.00, Longitude: 4.00},
		{Latitude: 52.01, Longitude: 4.01},
		{Latitude: 52.02, Longitude: 4.00},
		{Latitude: 52.00, Longitude: 4.02},

		{Latitude: 53.00, Longitude: 4.00},
		{Latitude: 53.01, Longitude: 4.01},
		{Latitude: 53.02, Longitude: 4.02},

		{Latitude: 55.00, Longitude: 9.00},
	}
}

func testSettings() config.OutreachSettings {
	s := config.DefaultOutreachSettings()
	s.CoverageRadiusKm = 15
	s.MinClusterEvents = 3
	return s
}

func TestFindCoverageGapsClustersAndSorts(t *testing.T) {
	analyzer := New(&stubActivity{locations: clumpedLocations()}, &stubPartners{}, testSettings(), logger.New("test"))

	gaps, err := analyzer.FindCoverageGaps(context.Background())
	if err != nil {
		t.Fatalf("FindCoverageGaps: %v", err)
	}

	// The stray single event never reaches MinClusterEvents.
	if len(gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %d: %+v", len(gaps), gaps)
	}
	if gaps[0].EventCount < gaps[1].EventCount {
		t.Fatalf("gaps not sorted by event count: %+v", gaps)
	}
	if gaps[0].EventCount != 4 || gaps[1].EventCount != 3 {
		t.Fatalf("unexpected cluster sizes: %+v", gaps)
	}
}

func TestFindCoverageGapsExcludesCoveredClusters(t *testing.T) {
	partners := &stubPartners{coverage: []ports.PartnerCoverage{
		// Sits on top of the southern clump.
		{Latitude: 52.01, Longitude: 4.01, ServiceRadiusKm: 20},
	}}
	analyzer := New(&stubActivity{locations: clumpedLocations()}, partners, testSettings(), logger.New("test"))

	gaps, err := analyzer.FindCoverageGaps(context.Background())
	if err != nil {
		t.Fatalf("FindCoverageGaps: %v", err)
	}
	if len(gaps) != 1 {
		t.Fatalf("expected 1 uncovered gap, got %d: %+v", len(gaps), gaps)
	}
	if gaps[0].EventCount != 3 {
		t.Fatalf("wrong cluster survived: %+v", gaps)
	}
}

func TestFindCoverageGapsNoEvents(t *testing.T) {
	analyzer := New(&stubActivity{}, &stubPartners{}, testSettings(), logger.New("test"))

	gaps, err := analyzer.FindCoverageGaps(context.Background())
	if err != nil {
		t.Fatalf("FindCoverageGaps: %v", err)
	}
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps, got %+v", gaps)
	}
}
