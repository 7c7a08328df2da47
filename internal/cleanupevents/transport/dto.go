package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Name               string   `json:"name" validate:"required,min=2,max=200"`
	City               string   `json:"city" validate:"required,max=120"`
	Country            string   `json:"country" validate:"required,max=120"`
	Latitude           float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude          float64  `json:"longitude" validate:"gte=-180,lte=180"`
	OccurredAt         string   `json:"occurredAt" validate:"required"`
	AttendeeCount      int      `json:"attendeeCount" validate:"min=0"`
	KilogramsCollected *float64 `json:"kilogramsCollected,omitempty" validate:"omitempty,gte=0"`
	Notes              *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ListEventsRequest struct {
	City     string `form:"city" validate:"omitempty,max=120"`
	Days     *int   `form:"days" validate:"omitempty,min=1,max=3650"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

type EventResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	City               string    `json:"city"`
	Country            string    `json:"country"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	OccurredAt         time.Time `json:"occurredAt"`
	AttendeeCount      int       `json:"attendeeCount"`
	KilogramsCollected *float64  `json:"kilogramsCollected,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

type ListEventsResponse struct {
	Events   []EventResponse `json:"events"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}
