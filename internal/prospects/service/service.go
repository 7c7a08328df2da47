// Package service provides prospect lifecycle management: creation, listing,
// and the manual status transitions admins drive from the review queue.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/events"
	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/internal/prospects/transport"
	"shoreline_portal_backend/platform/apperr"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/phone"
)

const sourceManual = "manual"

// Service provides business logic for prospect management.
type Service struct {
	repo     repository.ProspectsRepository
	eventBus events.Bus
	settings config.OutreachSettings
	log      *logger.Logger
}

// New creates a new prospects service.
func New(repo repository.ProspectsRepository, eventBus events.Bus, settings config.OutreachSettings, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, settings: settings, log: log}
}

// Create registers a manually entered prospect. Duplicate identities, by
// normalized name and city or by email, are rejected with a conflict.
func (s *Service) Create(ctx context.Context, req transport.CreateProspectRequest) (transport.ProspectResponse, error) {
	_, err := s.repo.FindByIdentity(ctx,
		domain.NormalizeIdentity(req.Name), domain.NormalizeIdentity(req.City))
	if err == nil {
		return transport.ProspectResponse{}, apperr.Conflict("a prospect with this name and city already exists")
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		return transport.ProspectResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	if exists {
		return transport.ProspectResponse{}, apperr.Conflict("a prospect with this email already exists")
	}

	var phoneNumber *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		normalized := phone.NormalizeE164ForRegion(*req.Phone, req.Country)
		phoneNumber = &normalized
	}

	created, err := s.repo.Create(ctx, repository.CreateProspectParams{
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Phone:      phoneNumber,
		City:       strings.TrimSpace(req.City),
		Region:     req.Region,
		Country:    strings.TrimSpace(req.Country),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Population: req.Population,
		Notes:      req.Notes,
		Source:     sourceManual,
	})
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	return s.mapProspect(created), nil
}

// GetByID returns a single prospect with its resolved cadence state.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ProspectResponse, error) {
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	return s.mapProspect(prospect), nil
}

// List returns a filtered, paginated prospect listing.
func (s *Service) List(ctx context.Context, req transport.ListProspectsRequest) (transport.ListProspectsResponse, error) {
	params := repository.ListParams{
		MinScore:  req.MinScore,
		Search:    req.Search,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return transport.ListProspectsResponse{}, apperr.Validation(err.Error())
		}
		params.Status = &status
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListProspectsResponse{}, err
	}

	items := make([]transport.ProspectResponse, len(result.Items))
	for i, p := range result.Items {
		items[i] = s.mapProspect(p)
	}
	return transport.ListProspectsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// MarkResponded records a prospect reply, halting its cadence.
func (s *Service) MarkResponded(ctx context.Context, id uuid.UUID, version int) (transport.ProspectResponse, error) {
	updated, err := s.transition(ctx, id, domain.StatusResponded, version)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	s.eventBus.Publish(ctx, events.ProspectResponded{
		BaseEvent:   events.NewBaseEvent(),
		ProspectID:  updated.ID,
		RespondedAt: time.Now().UTC(),
	})
	return s.mapProspect(updated), nil
}

// Convert marks a prospect as a won partner and announces it so the partners
// module can create the partner record.
func (s *Service) Convert(ctx context.Context, id uuid.UUID, version int, actorID uuid.UUID) (transport.ProspectResponse, error) {
	updated, err := s.transition(ctx, id, domain.StatusConverted, version)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	s.eventBus.Publish(ctx, events.ProspectConverted{
		BaseEvent:  events.NewBaseEvent(),
		ProspectID: updated.ID,
		Name:       updated.Name,
		Email:      updated.Email,
		Phone:      updated.Phone,
		City:       updated.City,
		Country:    updated.Country,
		Latitude:   updated.Latitude,
		Longitude:  updated.Longitude,
		ActorID:    actorID,
	})
	s.log.Info("prospect converted", "prospect_id", updated.ID, "actor_id", actorID)
	return s.mapProspect(updated), nil
}

// Reject dismisses a prospect from the pipeline.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, version int) (transport.ProspectResponse, error) {
	updated, err := s.transition(ctx, id, domain.StatusRejected, version)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	return s.mapProspect(updated), nil
}

// MarkUnreachable flags a prospect whose contact details bounce.
func (s *Service) MarkUnreachable(ctx context.Context, id uuid.UUID, version int) (transport.ProspectResponse, error) {
	updated, err := s.transition(ctx, id, domain.StatusUnreachable, version)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	return s.mapProspect(updated), nil
}

// ResetCadence re-opens a closed prospect: status back to New, cadence
// rewound to step zero. The outreach log is untouched.
func (s *Service) ResetCadence(ctx context.Context, id uuid.UUID, version int) (transport.ProspectResponse, error) {
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	if !domain.CanTransition(prospect.Status, domain.StatusNew) {
		return transport.ProspectResponse{}, apperr.Validation(
			fmt.Sprintf("cannot reset a prospect in status %s", prospect.Status))
	}

	updated, err := s.repo.ResetCadence(ctx, id, version)
	if err != nil {
		return transport.ProspectResponse{}, mapConflict(err)
	}
	s.log.Info("prospect cadence reset", "prospect_id", id)
	return s.mapProspect(updated), nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to domain.ProspectStatus, version int) (repository.Prospect, error) {
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Prospect{}, err
	}
	if !domain.CanTransition(prospect.Status, to) {
		return repository.Prospect{}, apperr.Validation(
			fmt.Sprintf("cannot transition prospect from %s to %s", prospect.Status, to))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, to, version)
	if err != nil {
		return repository.Prospect{}, mapConflict(err)
	}
	return updated, nil
}

// mapConflict translates the optimistic-concurrency error into the transport
// vocabulary so stale admin tabs get a 409.
func mapConflict(err error) error {
	var conflict domain.ConcurrentModificationError
	if errors.As(err, &conflict) {
		return apperr.Conflict("prospect was modified by someone else; reload and retry")
	}
	return err
}

func (s *Service) mapProspect(p repository.Prospect) transport.ProspectResponse {
	state := domain.ResolveCadence(p.Status, p.CadenceStep, p.NextEligibleAt, s.settings.MaxSteps, time.Now().UTC())

	cadence := transport.CadenceStateResponse{Phase: state.Phase.String()}
	if state.Phase == domain.PhaseEligible {
		cadence.NextStep = state.NextStep
	}
	if state.Phase == domain.PhaseAwaiting {
		eligibleAt := state.EligibleAt
		cadence.EligibleAt = &eligibleAt
	}

	return transport.ProspectResponse{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		City:            p.City,
		Region:          p.Region,
		Country:         p.Country,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Population:      p.Population,
		Source:          p.Source,
		Notes:           p.Notes,
		Status:          p.Status.String(),
		FitScore:        p.FitScore,
		ScoreBreakdown:  p.ScoreBreakdown,
		ScoredAt:        p.ScoredAt,
		CadenceStep:     p.CadenceStep,
		Cadence:         cadence,
		NextEligibleAt:  p.NextEligibleAt,
		LastContactedAt: p.LastContactedAt,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
