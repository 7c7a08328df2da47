// Package service provides cleanup event recording and the activity queries
// that feed prospect scoring and gap analysis.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/cleanupevents/repository"
	"shoreline_portal_backend/internal/cleanupevents/transport"
	"shoreline_portal_backend/platform/apperr"
	"shoreline_portal_backend/platform/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Service provides business logic for cleanup events.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new cleanup events service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create records a new cleanup event.
func (s *Service) Create(ctx context.Context, req transport.CreateEventRequest) (transport.EventResponse, error) {
	occurredAt, err := time.Parse(time.RFC3339, req.OccurredAt)
	if err != nil {
		return transport.EventResponse{}, apperr.Validation("occurredAt must be an RFC 3339 timestamp")
	}
	if occurredAt.After(time.Now().Add(24 * time.Hour)) {
		return transport.EventResponse{}, apperr.Validation("occurredAt cannot be in the future")
	}

	event, err := s.repo.Create(ctx, repository.CreateEventParams{
		Name:               req.Name,
		City:               req.City,
		Country:            req.Country,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		OccurredAt:         occurredAt,
		AttendeeCount:      req.AttendeeCount,
		KilogramsCollected: req.KilogramsCollected,
		Notes:              req.Notes,
	})
	if err != nil {
		return transport.EventResponse{}, err
	}

	s.log.Info("cleanup event recorded", "eventId", event.ID, "city", event.City)
	return mapEvent(event), nil
}

// GetByID retrieves a single cleanup event.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.EventResponse{}, err
	}
	return mapEvent(event), nil
}

// List returns a filtered, paginated list of events.
func (s *Service) List(ctx context.Context, req transport.ListEventsRequest) (transport.ListEventsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		City:     req.City,
		Page:     page,
		PageSize: pageSize,
	}
	if req.Days != nil {
		since := time.Now().AddDate(0, 0, -*req.Days)
		params.Since = &since
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListEventsResponse{}, err
	}

	events := make([]transport.EventResponse, 0, len(result.Events))
	for _, event := range result.Events {
		events = append(events, mapEvent(event))
	}

	return transport.ListEventsResponse{
		Events:   events,
		Total:    result.Total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// CountNear returns the number of events within radiusKm of the point over
// the lookback window.
func (s *Service) CountNear(ctx context.Context, lat, lon, radiusKm float64, lookbackDays int) (int, error) {
	since := time.Now().AddDate(0, 0, -lookbackDays)
	return s.repo.CountNear(ctx, lat, lon, radiusKm, since)
}

// RecentLocations returns the coordinates of all events within the lookback
// window.
func (s *Service) RecentLocations(ctx context.Context, lookbackDays int) ([]repository.EventLocation, error) {
	since := time.Now().AddDate(0, 0, -lookbackDays)
	return s.repo.ListLocationsSince(ctx, since)
}

func mapEvent(e repository.CleanupEvent) transport.EventResponse {
	return transport.EventResponse{
		ID:                 e.ID,
		Name:               e.Name,
		City:               e.City,
		Country:            e.Country,
		Latitude:           e.Latitude,
		Longitude:          e.Longitude,
		OccurredAt:         e.OccurredAt,
		AttendeeCount:      e.AttendeeCount,
		KilogramsCollected: e.KilogramsCollected,
		Notes:              e.Notes,
		CreatedAt:          e.CreatedAt,
	}
}
