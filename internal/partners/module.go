// Package partners provides the community partner bounded context module.
package partners

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shoreline_portal_backend/internal/events"
	apphttp "shoreline_portal_backend/internal/http"
	"shoreline_portal_backend/internal/partners/handler"
	"shoreline_portal_backend/internal/partners/repository"
	"shoreline_portal_backend/internal/partners/service"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/validator"
)

// Module is the partners bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the partners module.
func NewModule(pool *pgxpool.Pool, mailer service.WelcomeMailer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, mailer, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "partners"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts partner routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/partners")
	m.handler.RegisterRoutes(group)
}

// RegisterHandlers subscribes to the prospect domain events this module
// reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ProspectConverted{}.EventName(), m)
	m.log.Info("partners module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ProspectConverted:
		return m.service.CreateFromProspect(ctx, e)
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

var _ events.Handler = (*Module)(nil)
