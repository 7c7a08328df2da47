// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"shoreline_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Prospect Domain Events
// =============================================================================

// ProspectConverted is published when an admin marks a prospect as converted.
// The partners module subscribes to create the corresponding partner record.
type ProspectConverted struct {
	BaseEvent
	ProspectID uuid.UUID `json:"prospectId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	City       string    `json:"city"`
	Country    string    `json:"country"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	ActorID    uuid.UUID `json:"actorId"`
}

func (e ProspectConverted) EventName() string { return "prospects.prospect.converted" }

// ProspectResponded is published when a prospect reply is recorded, halting
// its outreach cadence.
type ProspectResponded struct {
	BaseEvent
	ProspectID  uuid.UUID `json:"prospectId"`
	RespondedAt time.Time `json:"respondedAt"`
}

func (e ProspectResponded) EventName() string { return "prospects.prospect.responded" }

// OutreachEmailSent is published after each delivered cadence email.
type OutreachEmailSent struct {
	BaseEvent
	ProspectID uuid.UUID `json:"prospectId"`
	Step       int       `json:"step"`
	Subject    string    `json:"subject"`
}

func (e OutreachEmailSent) EventName() string { return "prospects.outreach.email_sent" }
