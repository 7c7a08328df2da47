package repository

import (
	"time"

	"github.com/google/uuid"
)

// CleanupEvent is a recorded cleanup activity at a coastal location.
type CleanupEvent struct {
	ID                 uuid.UUID
	Name               string
	City               string
	Country            string
	Latitude           float64
	Longitude          float64
	OccurredAt         time.Time
	AttendeeCount      int
	KilogramsCollected *float64
	Notes              *string
	CreatedAt          time.Time
}

// EventLocation is the coordinate pair of one recorded event.
type EventLocation struct {
	Latitude  float64
	Longitude float64
}

// CreateEventParams contains the fields needed to record an event.
type CreateEventParams struct {
	Name               string
	City               string
	Country            string
	Latitude           float64
	Longitude          float64
	OccurredAt         time.Time
	AttendeeCount      int
	KilogramsCollected *float64
	Notes              *string
}

// ListParams contains filtering and pagination for event listing.
type ListParams struct {
	City     string
	Since    *time.Time
	Page     int
	PageSize int
}

// ListResult contains a page of events plus the total match count.
type ListResult struct {
	Events []CleanupEvent
	Total  int
}
