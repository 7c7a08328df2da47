package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreatePartnerRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=200"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	City            string   `json:"city" validate:"required,max=120"`
	Country         string   `json:"country" validate:"required,max=120"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	ServiceRadiusKm *float64 `json:"serviceRadiusKm,omitempty" validate:"omitempty,gt=0,lte=500"`
	Notes           *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdatePartnerRequest struct {
	Phone           *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	ServiceRadiusKm *float64 `json:"serviceRadiusKm,omitempty" validate:"omitempty,gt=0,lte=500"`
	Active          *bool    `json:"active,omitempty"`
	Notes           *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ListPartnersRequest struct {
	Active   *bool  `form:"active"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

type PartnerResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            *string    `json:"phone,omitempty"`
	City             string     `json:"city"`
	Country          string     `json:"country"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	ServiceRadiusKm  float64    `json:"serviceRadiusKm"`
	Active           bool       `json:"active"`
	SourceProspectID *uuid.UUID `json:"sourceProspectId,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type ListPartnersResponse struct {
	Partners []PartnerResponse `json:"partners"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}
