package ports

import "context"

// EventLocation is a cleanup event's coordinates as seen by the prospects
// domain. Defined here, not by the cleanupevents domain.
type EventLocation struct {
	Latitude  float64
	Longitude float64
}

// ActivityReader exposes cleanup-event activity to scoring and gap analysis.
// The implementation is provided by the composition root and wraps the
// cleanupevents service.
type ActivityReader interface {
	// CountEventsNear returns the number of events within radiusKm of the
	// given point over the lookback window.
	CountEventsNear(ctx context.Context, lat, lon, radiusKm float64, lookbackDays int) (int, error)

	// ListEventLocations returns the coordinates of all events recorded
	// within the lookback window.
	ListEventLocations(ctx context.Context, lookbackDays int) ([]EventLocation, error)
}
