package adapters

import (
	"context"
	"fmt"

	cleanupsvc "shoreline_portal_backend/internal/cleanupevents/service"
	"shoreline_portal_backend/internal/prospects/ports"
)

// ActivityReader adapts the cleanup events service for the prospects domain,
// satisfying ports.ActivityReader.
type ActivityReader struct {
	svc *cleanupsvc.Service
}

// NewActivityReader creates a new cleanup activity adapter.
func NewActivityReader(svc *cleanupsvc.Service) *ActivityReader {
	return &ActivityReader{svc: svc}
}

func (a *ActivityReader) CountEventsNear(ctx context.Context, lat, lon, radiusKm float64, lookbackDays int) (int, error) {
	count, err := a.svc.CountNear(ctx, lat, lon, radiusKm, lookbackDays)
	if err != nil {
		return 0, fmt.Errorf("activity adapter: count events: %w", err)
	}
	return count, nil
}

func (a *ActivityReader) ListEventLocations(ctx context.Context, lookbackDays int) ([]ports.EventLocation, error) {
	locations, err := a.svc.RecentLocations(ctx, lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("activity adapter: list locations: %w", err)
	}

	result := make([]ports.EventLocation, 0, len(locations))
	for _, loc := range locations {
		result = append(result, ports.EventLocation{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}
	return result, nil
}

var _ ports.ActivityReader = (*ActivityReader)(nil)
