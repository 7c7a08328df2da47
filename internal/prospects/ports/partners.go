package ports

import "context"

// PartnerCoverage is the slice of partner data the prospects domain needs:
// where an active partner sits and how far its service area reaches.
type PartnerCoverage struct {
	Latitude        float64
	Longitude       float64
	ServiceRadiusKm float64
}

// PartnerCoverageReader lists the coverage footprints of active partners.
// The implementation wraps the partners service; prospects never imports the
// partners domain directly.
type PartnerCoverageReader interface {
	ListActiveCoverage(ctx context.Context) ([]PartnerCoverage, error)
}
