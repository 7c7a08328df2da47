// Package prospects provides the prospect outreach bounded context module.
package prospects

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"shoreline_portal_backend/internal/events"
	apphttp "shoreline_portal_backend/internal/http"
	"shoreline_portal_backend/internal/prospects/content"
	"shoreline_portal_backend/internal/prospects/discovery"
	"shoreline_portal_backend/internal/prospects/gap"
	"shoreline_portal_backend/internal/prospects/handler"
	"shoreline_portal_backend/internal/prospects/importer"
	"shoreline_portal_backend/internal/prospects/outreach"
	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/internal/prospects/scoring"
	"shoreline_portal_backend/internal/prospects/service"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/validator"
)

// Module is the prospects bounded context module implementing http.Module.
type Module struct {
	handler      *handler.Handler
	service      *service.Service
	scorer       *scoring.Service
	orchestrator *outreach.Orchestrator
	discovery    *discovery.Service
}

// Deps carries the cross-context capabilities the prospects module needs.
// The composition root provides implementations wrapping the other modules
// and the configured AI and mail backends.
type Deps struct {
	Pool     *pgxpool.Pool
	EventBus events.Bus
	AI       ports.TextGenerator
	Sender   ports.OutreachSender
	Activity ports.ActivityReader
	Partners ports.PartnerCoverageReader
	Settings config.OutreachSettings
	Val      *validator.Validator
	Log      *logger.Logger
}

// NewModule creates and initializes the prospects module with all its
// dependencies.
func NewModule(deps Deps) *Module {
	repo := repository.New(deps.Pool)

	svc := service.New(repo, deps.EventBus, deps.Settings, deps.Log)
	scorer := scoring.New(repo, deps.Activity, deps.Partners, deps.Settings, deps.Log)
	drafter := content.New(deps.AI, deps.Log)
	orch := outreach.New(repo, drafter, deps.Sender, deps.Activity, deps.Settings, deps.Log)
	gaps := gap.New(deps.Activity, deps.Partners, deps.Settings, deps.Log)
	discoverySvc := discovery.New(gaps, deps.AI, deps.Val, deps.Log)
	csvImporter := importer.New(repo, deps.Val, deps.Log)

	h := handler.New(svc, scorer, orch, gaps, discoverySvc, csvImporter, deps.Val)

	return &Module{
		handler:      h,
		service:      svc,
		scorer:       scorer,
		orchestrator: orch,
		discovery:    discoverySvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "prospects"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Scorer returns the scoring service, used by the scheduler worker.
func (m *Module) Scorer() *scoring.Service {
	return m.scorer
}

// Orchestrator returns the outreach orchestrator, used by the scheduler
// worker.
func (m *Module) Orchestrator() *outreach.Orchestrator {
	return m.orchestrator
}

// Discovery returns the discovery service.
func (m *Module) Discovery() *discovery.Service {
	return m.discovery
}

// RegisterRoutes mounts prospect routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/prospects")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
