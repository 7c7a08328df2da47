// Package service provides partner management and the conversion flow that
// turns an outreach prospect into an active partner.
package service

import (
	"context"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/events"
	"shoreline_portal_backend/internal/partners/repository"
	"shoreline_portal_backend/internal/partners/transport"
	"shoreline_portal_backend/platform/apperr"
	"shoreline_portal_backend/platform/logger"
)

const (
	defaultServiceRadiusKm = 25.0

	defaultPageSize = 20
	maxPageSize     = 200
)

// WelcomeMailer sends the onboarding email to a freshly converted partner.
type WelcomeMailer interface {
	SendPartnerWelcomeEmail(ctx context.Context, toEmail, partnerName, city string) error
}

// Service provides business logic for partner management.
type Service struct {
	repo   *repository.Repository
	mailer WelcomeMailer
	log    *logger.Logger
}

// New creates a new partners service.
func New(repo *repository.Repository, mailer WelcomeMailer, log *logger.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, log: log}
}

// Create registers a manually entered partner.
func (s *Service) Create(ctx context.Context, req transport.CreatePartnerRequest) (transport.PartnerResponse, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	if exists {
		return transport.PartnerResponse{}, apperr.Conflict("a partner with this email already exists")
	}

	radius := defaultServiceRadiusKm
	if req.ServiceRadiusKm != nil {
		radius = *req.ServiceRadiusKm
	}

	partner, err := s.repo.Create(ctx, repository.CreatePartnerParams{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		City:            req.City,
		Country:         req.Country,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ServiceRadiusKm: radius,
		Active:          true,
		Notes:           req.Notes,
	})
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	s.log.Info("partner created", "partnerId", partner.ID, "city", partner.City)
	return mapPartner(partner), nil
}

// CreateFromProspect registers the partner record for a converted outreach
// prospect and sends the welcome email. Called from the ProspectConverted
// event handler; a duplicate email means the partner already exists and the
// event is treated as delivered.
func (s *Service) CreateFromProspect(ctx context.Context, ev events.ProspectConverted) error {
	exists, err := s.repo.ExistsByEmail(ctx, ev.Email)
	if err != nil {
		return err
	}
	if exists {
		s.log.Warn("converted prospect already registered as partner",
			"prospectId", ev.ProspectID, "email", ev.Email)
		return nil
	}

	prospectID := ev.ProspectID
	partner, err := s.repo.Create(ctx, repository.CreatePartnerParams{
		Name:             ev.Name,
		Email:            ev.Email,
		Phone:            ev.Phone,
		City:             ev.City,
		Country:          ev.Country,
		Latitude:         ev.Latitude,
		Longitude:        ev.Longitude,
		ServiceRadiusKm:  defaultServiceRadiusKm,
		Active:           true,
		SourceProspectID: &prospectID,
	})
	if err != nil {
		return err
	}

	s.log.Info("partner created from converted prospect",
		"partnerId", partner.ID, "prospectId", ev.ProspectID)

	if err := s.mailer.SendPartnerWelcomeEmail(ctx, partner.Email, partner.Name, partner.City); err != nil {
		// Delivery failure must not roll back the conversion.
		s.log.Error("failed to send partner welcome email",
			"partnerId", partner.ID, "error", err)
	}

	return nil
}

// GetByID retrieves a single partner.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartner(partner), nil
}

// List returns a filtered, paginated list of partners.
func (s *Service) List(ctx context.Context, req transport.ListPartnersRequest) (transport.ListPartnersResponse, error) {
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

	result, err := s.repo.List(ctx, repository.ListParams{
		Active:   req.Active,
		Search:   req.Search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return transport.ListPartnersResponse{}, err
	}

	partners := make([]transport.PartnerResponse, 0, len(result.Partners))
	for _, partner := range result.Partners {
		partners = append(partners, mapPartner(partner))
	}

	return transport.ListPartnersResponse{
		Partners: partners,
		Total:    result.Total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update applies partial changes to a partner.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdatePartnerRequest) (transport.PartnerResponse, error) {
	partner, err := s.repo.Update(ctx, id, repository.UpdatePartnerParams{
		Phone:           req.Phone,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ServiceRadiusKm: req.ServiceRadiusKm,
		Active:          req.Active,
		Notes:           req.Notes,
	})
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return mapPartner(partner), nil
}

// ListActiveCoverage returns the footprints of all active partners with known
// coordinates.
func (s *Service) ListActiveCoverage(ctx context.Context) ([]repository.Coverage, error) {
	return s.repo.ListActiveCoverage(ctx)
}

func mapPartner(p repository.Partner) transport.PartnerResponse {
	return transport.PartnerResponse{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		Phone:            p.Phone,
		City:             p.City,
		Country:          p.Country,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		ServiceRadiusKm:  p.ServiceRadiusKm,
		Active:           p.Active,
		SourceProspectID: p.SourceProspectID,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
