// Package cleanupevents provides the cleanup activity bounded context module.
package cleanupevents

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"shoreline_portal_backend/internal/cleanupevents/handler"
	"shoreline_portal_backend/internal/cleanupevents/repository"
	"shoreline_portal_backend/internal/cleanupevents/service"
	apphttp "shoreline_portal_backend/internal/http"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/validator"
)

// Module is the cleanup events bounded context module implementing
// http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the cleanup events module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cleanupevents"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts cleanup event routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/cleanup-events")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
