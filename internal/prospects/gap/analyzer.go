// Package gap finds geographic clusters of cleanup-event activity that no
// active partner's service area reaches.
package gap

import (
	"context"
	"sort"

	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/geo"
	"shoreline_portal_backend/platform/logger"
)

// gapLookbackDays bounds how far back event activity is considered.
const gapLookbackDays = 180

// Cluster is a group of nearby cleanup events with no partner coverage.
type Cluster struct {
	Centroid   geo.Point
	EventCount int
}

// Analyzer groups event activity into clusters and filters out the ones
// already served by a partner.
type Analyzer struct {
	activity ports.ActivityReader
	partners ports.PartnerCoverageReader
	settings config.OutreachSettings
	log      *logger.Logger
}

// New creates a new gap analyzer.
func New(activity ports.ActivityReader, partners ports.PartnerCoverageReader, settings config.OutreachSettings, log *logger.Logger) *Analyzer {
	return &Analyzer{activity: activity, partners: partners, settings: settings, log: log}
}

// FindCoverageGaps returns uncovered activity clusters, busiest first.
func (a *Analyzer) FindCoverageGaps(ctx context.Context) ([]Cluster, error) {
	locations, err := a.activity.ListEventLocations(ctx, gapLookbackDays)
	if err != nil {
		return nil, err
	}

	clusters := clusterLocations(locations, a.settings.CoverageRadiusKm)

	coverage, err := a.partners.ListActiveCoverage(ctx)
	if err != nil {
		return nil, err
	}

	gaps := filterAndSortClusters(clusters, coverage, a.settings.MinClusterEvents)
	a.log.Info("coverage gap analysis complete",
		"events", len(locations),
		"clusters", len(clusters),
		"gaps", len(gaps),
	)
	return gaps, nil
}

type runningCluster struct {
	sumLat float64
	sumLon float64
	count  int
}

func (c *runningCluster) centroid() geo.Point {
	return geo.Point{Lat: c.sumLat / float64(c.count), Lon: c.sumLon / float64(c.count)}
}

func (c *runningCluster) add(p geo.Point) {
	c.sumLat += p.Lat
	c.sumLon += p.Lon
	c.count++
}

// clusterLocations greedily assigns each event to the first cluster whose
// running centroid is within radiusKm, starting a new cluster otherwise.
// Order-dependent but cheap, which is fine at event-log scale.
func clusterLocations(locations []ports.EventLocation, radiusKm float64) []*runningCluster {
	var clusters []*runningCluster
	for _, loc := range locations {
		p := geo.Point{Lat: loc.Latitude, Lon: loc.Longitude}
		var home *runningCluster
		for _, c := range clusters {
			if geo.DistanceKm(p, c.centroid()) <= radiusKm {
				home = c
				break
			}
		}
		if home == nil {
			home = &runningCluster{}
			clusters = append(clusters, home)
		}
		home.add(p)
	}
	return clusters
}

func filterAndSortClusters(clusters []*runningCluster, coverage []ports.PartnerCoverage, minEvents int) []Cluster {
	gaps := make([]Cluster, 0, len(clusters))
	for _, c := range clusters {
		if c.count < minEvents {
			continue
		}
		centroid := c.centroid()
		if coveredByPartner(centroid, coverage) {
			continue
		}
		gaps = append(gaps, Cluster{Centroid: centroid, EventCount: c.count})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].EventCount > gaps[j].EventCount
	})
	return gaps
}

func coveredByPartner(p geo.Point, coverage []ports.PartnerCoverage) bool {
	for _, c := range coverage {
		if geo.DistanceKm(p, geo.Point{Lat: c.Latitude, Lon: c.Longitude}) <= c.ServiceRadiusKm {
			return true
		}
	}
	return false
}
