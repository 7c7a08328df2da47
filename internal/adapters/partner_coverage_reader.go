package adapters

import (
	"context"
	"fmt"

	partnersvc "shoreline_portal_backend/internal/partners/service"
	"shoreline_portal_backend/internal/prospects/ports"
)

// PartnerCoverageReader adapts the partners service for the prospects domain,
// satisfying ports.PartnerCoverageReader.
type PartnerCoverageReader struct {
	svc *partnersvc.Service
}

// NewPartnerCoverageReader creates a new partner coverage adapter.
func NewPartnerCoverageReader(svc *partnersvc.Service) *PartnerCoverageReader {
	return &PartnerCoverageReader{svc: svc}
}

func (a *PartnerCoverageReader) ListActiveCoverage(ctx context.Context) ([]ports.PartnerCoverage, error) {
	coverage, err := a.svc.ListActiveCoverage(ctx)
	if err != nil {
		return nil, fmt.Errorf("partner coverage adapter: %w", err)
	}

	result := make([]ports.PartnerCoverage, 0, len(coverage))
	for _, c := range coverage {
		result = append(result, ports.PartnerCoverage{
			Latitude:        c.Latitude,
			Longitude:       c.Longitude,
			ServiceRadiusKm: c.ServiceRadiusKm,
		})
	}
	return result, nil
}

var _ ports.PartnerCoverageReader = (*PartnerCoverageReader)(nil)
