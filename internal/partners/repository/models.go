package repository

import (
	"time"

	"github.com/google/uuid"
)

// Partner is an organization actively hosting cleanup activity in its area.
type Partner struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Phone            *string
	City             string
	Country          string
	Latitude         *float64
	Longitude        *float64
	ServiceRadiusKm  float64
	Active           bool
	SourceProspectID *uuid.UUID
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Coverage is the footprint of one active partner with known coordinates.
type Coverage struct {
	Latitude        float64
	Longitude       float64
	ServiceRadiusKm float64
}

// CreatePartnerParams contains the fields needed to register a partner.
type CreatePartnerParams struct {
	Name             string
	Email            string
	Phone            *string
	City             string
	Country          string
	Latitude         *float64
	Longitude        *float64
	ServiceRadiusKm  float64
	Active           bool
	SourceProspectID *uuid.UUID
	Notes            *string
}

// UpdatePartnerParams contains the mutable partner fields. Nil fields are
// left unchanged.
type UpdatePartnerParams struct {
	Phone           *string
	Latitude        *float64
	Longitude       *float64
	ServiceRadiusKm *float64
	Active          *bool
	Notes           *string
}

// ListParams contains filtering and pagination for partner listing.
type ListParams struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// ListResult contains a page of partners plus the total match count.
type ListResult struct {
	Partners []Partner
	Total    int
}
