// Package handler exposes the prospects bounded context over HTTP.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shoreline_portal_backend/internal/prospects/discovery"
	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/gap"
	"shoreline_portal_backend/internal/prospects/importer"
	"shoreline_portal_backend/internal/prospects/outreach"
	"shoreline_portal_backend/internal/prospects/scoring"
	"shoreline_portal_backend/internal/prospects/service"
	"shoreline_portal_backend/internal/prospects/transport"
	"shoreline_portal_backend/platform/apperr"
	"shoreline_portal_backend/platform/httpkit"
	"shoreline_portal_backend/platform/phone"
	"shoreline_portal_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid prospect id"

	// maxImportBytes bounds CSV uploads.
	maxImportBytes = 10 << 20
)

// Handler handles HTTP requests for prospects.
type Handler struct {
	svc       *service.Service
	scorer    *scoring.Service
	orch      *outreach.Orchestrator
	gaps      *gap.Analyzer
	discovery *discovery.Service
	importer  *importer.Importer
	val       *validator.Validator
}

// New creates a new prospects handler.
func New(
	svc *service.Service,
	scorer *scoring.Service,
	orch *outreach.Orchestrator,
	gaps *gap.Analyzer,
	discoverySvc *discovery.Service,
	csvImporter *importer.Importer,
	val *validator.Validator,
) *Handler {
	return &Handler{
		svc:       svc,
		scorer:    scorer,
		orch:      orch,
		gaps:      gaps,
		discovery: discoverySvc,
		importer:  csvImporter,
		val:       val,
	}
}

// RegisterRoutes registers prospect routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)

	rg.POST("/import", h.Import)
	rg.POST("/discover", h.Discover)
	rg.GET("/gaps", h.CoverageGaps)

	rg.POST("/rescore", h.RescoreAll)
	rg.POST("/:id/score", h.Score)

	rg.GET("/:id/outreach/history", h.OutreachHistory)
	rg.GET("/:id/outreach/preview", h.PreviewOutreach)
	rg.POST("/:id/outreach/send", h.SendOutreach)
	rg.POST("/outreach/batch", h.SendOutreachBatch)
	rg.POST("/outreach/process-due", h.ProcessDueFollowUps)

	rg.POST("/:id/response", h.MarkResponded)
	rg.POST("/:id/convert", h.Convert)
	rg.POST("/:id/reject", h.Reject)
	rg.POST("/:id/unreachable", h.MarkUnreachable)
	rg.POST("/:id/reset-cadence", h.ResetCadence)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListProspectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req)
	if handleDomainError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, created)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	prospect, err := h.svc.GetByID(c.Request.Context(), id)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, prospect)
}

func (h *Handler) Import(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		h.importRows(c)
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "missing file upload", err.Error())
		return
	}
	defer file.Close()

	report, err := h.importer.Import(c.Request.Context(), http.MaxBytesReader(c.Writer, file, maxImportBytes))
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

// importRows accepts already-structured rows, typically discovery candidates
// an admin decided to keep.
func (h *Handler) importRows(c *gin.Context) {
	var req transport.ImportRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	source := req.Source
	if source == "" {
		source = "import"
	}

	rows := make([]importer.Row, 0, len(req.Rows))
	for _, r := range req.Rows {
		row := importer.Row{
			Name:       r.Name,
			Email:      strings.ToLower(r.Email),
			City:       r.City,
			Region:     r.Region,
			Country:    r.Country,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
			Population: r.Population,
			Notes:      r.Notes,
		}
		if r.Phone != nil && *r.Phone != "" {
			normalized := phone.NormalizeE164ForRegion(*r.Phone, r.Country)
			row.Phone = &normalized
		}
		rows = append(rows, row)
	}

	report, err := h.importer.ImportRows(c.Request.Context(), rows, source)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) Discover(c *gin.Context) {
	var req transport.DiscoverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	result, err := h.discovery.DiscoverProspects(c.Request.Context(), discovery.Request{
		Criteria:      req.Criteria,
		MaxCandidates: req.MaxCandidates,
	})
	if handleDomainError(c, err) {
		return
	}

	candidates := make([]transport.DiscoveryCandidateResponse, 0, len(result.Candidates))
	for _, cand := range result.Candidates {
		candidates = append(candidates, transport.DiscoveryCandidateResponse{
			Name:       cand.Name,
			Email:      cand.Email,
			City:       cand.City,
			Region:     cand.Region,
			Country:    cand.Country,
			Latitude:   cand.Latitude,
			Longitude:  cand.Longitude,
			Population: cand.Population,
		})
	}
	httpkit.OK(c, transport.DiscoveryResponse{
		Candidates:       candidates,
		Rationale:        result.Rationale,
		ClustersExamined: result.ClustersExamined,
		SkippedInvalid:   result.SkippedInvalid,
	})
}

func (h *Handler) CoverageGaps(c *gin.Context) {
	clusters, err := h.gaps.FindCoverageGaps(c.Request.Context())
	if handleDomainError(c, err) {
		return
	}

	gaps := make([]transport.CoverageGapResponse, len(clusters))
	for i, cluster := range clusters {
		gaps[i] = transport.CoverageGapResponse{
			Latitude:   cluster.Centroid.Lat,
			Longitude:  cluster.Centroid.Lon,
			EventCount: cluster.EventCount,
		}
	}
	httpkit.OK(c, gaps)
}

func (h *Handler) RescoreAll(c *gin.Context) {
	actorID := httpkit.MustGetIdentity(c).UserID()
	summary, err := h.scorer.RecalculateAll(c.Request.Context(), &actorID)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, transport.RescoreResponse{Scored: summary.Scored, Failed: summary.Failed})
}

func (h *Handler) Score(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.scorer.ScoreProspect(c.Request.Context(), id)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, transport.ScoreResponse{
		ProspectID: result.ProspectID,
		Score:      result.Score,
		Breakdown:  result.Breakdown,
		Version:    result.Version,
		ScoredAt:   result.ScoredAt,
	})
}

func (h *Handler) OutreachHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	history, err := h.orch.GetHistory(c.Request.Context(), id)
	if handleDomainError(c, err) {
		return
	}

	emails := make([]transport.OutreachEmailResponse, len(history.Emails))
	for i, e := range history.Emails {
		emails[i] = transport.OutreachEmailResponse{
			ID:            e.ID,
			Step:          e.Step,
			Intent:        e.Intent,
			Subject:       e.Subject,
			HTMLBody:      e.HTMLBody,
			Outcome:       e.Outcome.String(),
			FailureReason: e.FailureReason,
			TriggeredBy:   e.TriggeredBy,
			CreatedAt:     e.CreatedAt,
		}
	}

	cadence := transport.CadenceStateResponse{Phase: history.Cadence.Phase.String()}
	if history.Cadence.Phase == domain.PhaseEligible {
		cadence.NextStep = history.Cadence.NextStep
	}
	if history.Cadence.Phase == domain.PhaseAwaiting {
		eligibleAt := history.Cadence.EligibleAt
		cadence.EligibleAt = &eligibleAt
	}

	httpkit.OK(c, transport.HistoryResponse{Emails: emails, Cadence: cadence})
}

func (h *Handler) PreviewOutreach(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	draft, err := h.orch.Preview(c.Request.Context(), id)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, transport.DraftResponse{
		Subject:  draft.Subject,
		HTMLBody: draft.HTMLBody,
		Intent:   draft.Intent,
	})
}

func (h *Handler) SendOutreach(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor := actorID(c)

	result, err := h.orch.SendNext(c.Request.Context(), id, actor)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, transport.SendResponse{
		ProspectID: result.ProspectID,
		Step:       result.Step,
		Intent:     result.Intent,
		Subject:    result.Subject,
		SentAt:     result.SentAt,
	})
}

func (h *Handler) SendOutreachBatch(c *gin.Context) {
	var req transport.SendBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.orch.SendBatch(c.Request.Context(), req.ProspectIDs, actorID(c))
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, mapBatchResponse(result))
}

func (h *Handler) ProcessDueFollowUps(c *gin.Context) {
	result, err := h.orch.ProcessDueFollowUps(c.Request.Context())
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, mapBatchResponse(result))
}

func (h *Handler) MarkResponded(c *gin.Context) {
	h.mutateStatus(c, func(id uuid.UUID, version int) (transport.ProspectResponse, error) {
		return h.svc.MarkResponded(c.Request.Context(), id, version)
	})
}

func (h *Handler) Convert(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	h.mutateStatus(c, func(id uuid.UUID, version int) (transport.ProspectResponse, error) {
		return h.svc.Convert(c.Request.Context(), id, version, identity.UserID())
	})
}

func (h *Handler) Reject(c *gin.Context) {
	h.mutateStatus(c, func(id uuid.UUID, version int) (transport.ProspectResponse, error) {
		return h.svc.Reject(c.Request.Context(), id, version)
	})
}

func (h *Handler) MarkUnreachable(c *gin.Context) {
	h.mutateStatus(c, func(id uuid.UUID, version int) (transport.ProspectResponse, error) {
		return h.svc.MarkUnreachable(c.Request.Context(), id, version)
	})
}

func (h *Handler) ResetCadence(c *gin.Context) {
	h.mutateStatus(c, func(id uuid.UUID, version int) (transport.ProspectResponse, error) {
		return h.svc.ResetCadence(c.Request.Context(), id, version)
	})
}

func (h *Handler) mutateStatus(c *gin.Context, mutate func(uuid.UUID, int) (transport.ProspectResponse, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := mutate(id, req.Version)
	if handleDomainError(c, err) {
		return
	}
	httpkit.OK(c, updated)
}

// mapBatchResponse converts a batch run's aggregate result into its
// transport representation.
func mapBatchResponse(result outreach.BatchResult) transport.BatchResponse {
	items := make([]transport.BatchItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, transport.BatchItemResponse{
			ProspectID: item.ProspectID,
			Outcome:    string(item.Outcome),
			Step:       item.Step,
			Reason:     item.Reason,
		})
	}
	return transport.BatchResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
		Items:     items,
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// actorID returns the authenticated user's ID, nil for unauthenticated
// callers (scheduler-internal routes).
func actorID(c *gin.Context) *uuid.UUID {
	identity := httpkit.GetIdentity(c)
	if identity == nil || !identity.IsAuthenticated() {
		return nil
	}
	id := identity.UserID()
	return &id
}

// handleDomainError translates the outreach error taxonomy into transport
// errors before falling back to the shared apperr mapping.
func handleDomainError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var (
		notDue    domain.NotDueError
		terminal  domain.AlreadyTerminalError
		conflict  domain.ConcurrentModificationError
		genErr    domain.ContentGenerationError
		transport domain.TransportError
		valErr    domain.ValidationError
	)
	switch {
	case errors.As(err, &notDue):
		return httpkit.HandleError(c, apperr.Conflict(notDue.Error()))
	case errors.As(err, &terminal):
		return httpkit.HandleError(c, apperr.Conflict(terminal.Error()))
	case errors.As(err, &conflict):
		return httpkit.HandleError(c, apperr.Conflict(conflict.Error()))
	case errors.As(err, &genErr):
		return httpkit.HandleError(c, apperr.Unavailable(genErr.Error()))
	case errors.As(err, &transport):
		return httpkit.HandleError(c, apperr.Unavailable(transport.Error()))
	case errors.As(err, &valErr):
		return httpkit.HandleError(c, apperr.Validation(valErr.Error()))
	}
	return httpkit.HandleError(c, err)
}
