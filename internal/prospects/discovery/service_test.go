package discovery

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"shoreline_portal_backend/internal/prospects/gap"
	"shoreline_portal_backend/platform/geo"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/validator"
)

type stubGaps struct {
	clusters []gap.Cluster
}

func (s *stubGaps) FindCoverageGaps(context.Context) ([]gap.Cluster, error) {
	return s.clusters, nil
}

type stubAI struct {
	output string
	prompt string
}

func (s *stubAI) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.output, nil
}

const twoCandidates = `{
	"rationale": "Both groups already organize beach activities near the uncovered dunes.",
	"candidates": [
		{"name": "Duinwacht Scheveningen", "email": "Info@duinwacht.nl", "city": "Den Haag",
		 "region": "Zuid-Holland", "country": "NL", "latitude": 52.1, "longitude": 4.27, "population": 550000},
		{"name": "Strandvrienden Kijkduin", "email": "contact@strandvrienden.nl", "city": "Den Haag",
		 "region": "Zuid-Holland", "country": "NL", "latitude": 52.06, "longitude": 4.22, "population": 550000}
	]
}`

func newService(gaps *stubGaps, ai *stubAI) *Service {
	return New(gaps, ai, validator.New(), logger.New("test"))
}

func TestDiscoverProspectsProposesCandidates(t *testing.T) {
	gaps := &stubGaps{clusters: []gap.Cluster{{Centroid: geo.Point{Lat: 52.1, Lon: 4.3}, EventCount: 6}}}
	ai := &stubAI{output: twoCandidates}

	result, err := newService(gaps, ai).DiscoverProspects(context.Background(), Request{Criteria: "scouting clubs near The Hague"})
	if err != nil {
		t.Fatalf("DiscoverProspects: %v", err)
	}
	if len(result.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(result.Candidates))
	}
	if result.Candidates[0].Email != "info@duinwacht.nl" {
		t.Fatalf("email not lowercased: %q", result.Candidates[0].Email)
	}
	if result.Rationale == "" {
		t.Fatalf("missing rationale")
	}
	if result.ClustersExamined != 1 {
		t.Fatalf("clusters examined = %d, want 1", result.ClustersExamined)
	}
	if !strings.Contains(ai.prompt, "scouting clubs near The Hague") {
		t.Fatalf("criteria not included in prompt")
	}
	if !strings.Contains(ai.prompt, "6 events near latitude 52.1000") {
		t.Fatalf("gap cluster context not included in prompt")
	}
}

func TestDiscoverProspectsRejectsInvalidCandidates(t *testing.T) {
	bad := `{"rationale": "r", "candidates": [{"name": "X", "email": "not-an-email", "city": "", "country": ""}]}`

	result, err := newService(&stubGaps{}, &stubAI{output: bad}).DiscoverProspects(context.Background(), Request{})
	if err != nil {
		t.Fatalf("DiscoverProspects: %v", err)
	}
	if len(result.Candidates) != 0 || result.SkippedInvalid != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDiscoverProspectsCapsCandidateCount(t *testing.T) {
	var entries []string
	for i := 0; i < 4; i++ {
		entries = append(entries,
			fmt.Sprintf(`{"name": "Kustgroep %d", "email": "info%d@example.org", "city": "Zandvoort", "country": "NL"}`, i, i))
	}
	output := `{"rationale": "r", "candidates": [` + strings.Join(entries, ",") + `]}`

	result, err := newService(&stubGaps{}, &stubAI{output: output}).DiscoverProspects(context.Background(), Request{MaxCandidates: 2})
	if err != nil {
		t.Fatalf("DiscoverProspects: %v", err)
	}
	if len(result.Candidates) != 2 {
		t.Fatalf("got %d candidates, want cap of 2", len(result.Candidates))
	}
}

func TestDiscoverProspectsBadModelOutput(t *testing.T) {
	if _, err := newService(&stubGaps{}, &stubAI{output: "sorry, no"}).DiscoverProspects(context.Background(), Request{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDiscoverProspectsNoGaps(t *testing.T) {
	result, err := newService(&stubGaps{}, &stubAI{output: `{"rationale": "nothing uncovered", "candidates": []}`}).
		DiscoverProspects(context.Background(), Request{})
	if err != nil {
		t.Fatalf("DiscoverProspects: %v", err)
	}
	if result.ClustersExamined != 0 || len(result.Candidates) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
