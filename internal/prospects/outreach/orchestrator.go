// Package outreach runs the multi-step email cadence against scored
// prospects.
package outreach

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"shoreline_portal_backend/internal/prospects/content"
	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/logger"
)

// Drafter produces the email content for a cadence step.
type Drafter interface {
	GenerateDraft(ctx context.Context, prospect repository.Prospect, step int, nearbyEventCount int) (content.Draft, error)
}

// Repository is the slice of prospect storage the orchestrator needs.
type Repository interface {
	repository.ProspectReader
	repository.CadenceStore
	repository.OutreachLogReader
}

// SendResult describes one completed send.
type SendResult struct {
	ProspectID uuid.UUID
	Step       int
	Intent     string
	Subject    string
	SentAt     time.Time
}

// ItemOutcome classifies one prospect's result within a batch.
type ItemOutcome string

const (
	ItemSent    ItemOutcome = "sent"
	ItemFailed  ItemOutcome = "failed"
	ItemSkipped ItemOutcome = "skipped"
)

// ItemResult is the per-prospect detail of a batch run.
type ItemResult struct {
	ProspectID uuid.UUID
	Outcome    ItemOutcome
	Step       int
	Reason     string
}

// BatchResult aggregates a batch run. Skipped covers prospects that were not
// due, already terminal, exhausted, or concurrently modified.
type BatchResult struct {
	Succeeded int
	Failed    int
	Skipped   int
	Items     []ItemResult
}

// History is a prospect's outreach log plus its resolved cadence position.
type History struct {
	Emails  []repository.OutreachEmail
	Cadence domain.CadenceState
}

// Orchestrator coordinates draft generation, delivery, and cadence
// bookkeeping.
type Orchestrator struct {
	repo     Repository
	drafter  Drafter
	sender   ports.OutreachSender
	activity ports.ActivityReader
	settings config.OutreachSettings
	limiter  *rate.Limiter
	log      *logger.Logger

	// now is swapped in tests.
	now func() time.Time
}

// New creates a new outreach orchestrator.
func New(repo Repository, drafter Drafter, sender ports.OutreachSender, activity ports.ActivityReader, settings config.OutreachSettings, log *logger.Logger) *Orchestrator {
	interval := time.Minute
	if settings.SendRatePerMinute > 0 {
		interval = time.Minute / time.Duration(settings.SendRatePerMinute)
	}
	return &Orchestrator{
		repo:     repo,
		drafter:  drafter,
		sender:   sender,
		activity: activity,
		settings: settings,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Preview generates the next step's draft without sending or recording
// anything.
func (o *Orchestrator) Preview(ctx context.Context, prospectID uuid.UUID) (content.Draft, error) {
	prospect, err := o.repo.GetByID(ctx, prospectID)
	if err != nil {
		return content.Draft{}, err
	}

	state, err := o.eligibleState(prospect, o.now())
	if err != nil {
		// A waiting prospect can still be previewed at its upcoming step.
		var notDue domain.NotDueError
		if !errors.As(err, &notDue) || prospect.CadenceStep >= o.settings.MaxSteps {
			return content.Draft{}, err
		}
		state = domain.CadenceState{Phase: domain.PhaseEligible, NextStep: prospect.CadenceStep + 1}
	}

	return o.drafter.GenerateDraft(ctx, prospect, state.NextStep, o.nearbyEvents(ctx, prospect))
}

// SendNext sends the prospect's next cadence step. triggeredBy is nil for
// scheduler-driven sends.
func (o *Orchestrator) SendNext(ctx context.Context, prospectID uuid.UUID, triggeredBy *uuid.UUID) (SendResult, error) {
	prospect, err := o.repo.GetByID(ctx, prospectID)
	if err != nil {
		return SendResult{}, err
	}
	return o.send(ctx, prospect, triggeredBy)
}

func (o *Orchestrator) send(ctx context.Context, prospect repository.Prospect, triggeredBy *uuid.UUID) (SendResult, error) {
	now := o.now()
	state, err := o.eligibleState(prospect, now)
	if err != nil {
		return SendResult{}, err
	}
	step := state.NextStep

	draft, err := o.drafter.GenerateDraft(ctx, prospect, step, o.nearbyEvents(ctx, prospect))
	if err != nil {
		o.recordFailure(ctx, prospect, step, draft, triggeredBy, err)
		o.log.OutreachEvent(prospect.ID.String(), step, domain.OutcomeFailed.String(), err.Error())
		return SendResult{}, err
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return SendResult{}, err
	}

	if err := o.sender.SendOutreachEmail(ctx, prospect.Email, draft.Subject, draft.HTMLBody); err != nil {
		err = domain.TransportError{Recipient: prospect.Email, Err: err}
		o.recordFailure(ctx, prospect, step, draft, triggeredBy, err)
		o.log.OutreachEvent(prospect.ID.String(), step, domain.OutcomeFailed.String(), err.Error())
		return SendResult{}, err
	}

	sentAt := o.now()
	err = o.repo.CommitSend(ctx, repository.CommitSendParams{
		ProspectID:      prospect.ID,
		ExpectedVersion: prospect.Version,
		Step:            step,
		NextEligibleAt:  domain.NextEligibleAt(step, sentAt, o.settings.FollowUpOffsetDays, o.settings.ExhaustAfterDays, o.settings.MaxSteps),
		SentAt:          sentAt,
		Email: repository.OutreachEmail{
			ProspectID:  prospect.ID,
			Step:        step,
			Intent:      draft.Intent,
			Subject:     draft.Subject,
			HTMLBody:    draft.HTMLBody,
			Outcome:     domain.OutcomeSent,
			TriggeredBy: triggeredBy,
			CreatedAt:   sentAt,
		},
	})
	if err != nil {
		// The email went out but the prospect moved underneath us; the
		// cadence stays untouched and the conflict surfaces as a skip.
		o.log.OutreachEvent(prospect.ID.String(), step, domain.OutcomeFailed.String(), err.Error())
		return SendResult{}, err
	}

	o.log.OutreachEvent(prospect.ID.String(), step, domain.OutcomeSent.String(), "")
	return SendResult{
		ProspectID: prospect.ID,
		Step:       step,
		Intent:     draft.Intent,
		Subject:    draft.Subject,
		SentAt:     sentAt,
	}, nil
}

// eligibleState validates that the prospect can receive its next step now.
func (o *Orchestrator) eligibleState(prospect repository.Prospect, now time.Time) (domain.CadenceState, error) {
	if prospect.Status == domain.StatusNew {
		return domain.CadenceState{}, domain.ValidationError{Field: "status", Reason: "prospect has not been scored yet"}
	}

	state := domain.ResolveCadence(prospect.Status, prospect.CadenceStep, prospect.NextEligibleAt, o.settings.MaxSteps, now)
	switch state.Phase {
	case domain.PhaseHalted:
		return domain.CadenceState{}, domain.AlreadyTerminalError{ProspectID: prospect.ID, Status: prospect.Status}
	case domain.PhaseExhausted:
		return domain.CadenceState{}, domain.AlreadyTerminalError{ProspectID: prospect.ID, Status: prospect.Status, Exhausted: true}
	case domain.PhaseAwaiting:
		return domain.CadenceState{}, domain.NotDueError{ProspectID: prospect.ID, EligibleAt: state.EligibleAt}
	}
	return state, nil
}

func (o *Orchestrator) recordFailure(ctx context.Context, prospect repository.Prospect, step int, draft content.Draft, triggeredBy *uuid.UUID, cause error) {
	reason := cause.Error()
	intent := draft.Intent
	if intent == "" {
		if si, err := domain.IntentForStep(step); err == nil {
			intent = string(si)
		}
	}
	err := o.repo.RecordFailedAttempt(ctx, repository.OutreachEmail{
		ProspectID:    prospect.ID,
		Step:          step,
		Intent:        intent,
		Subject:       draft.Subject,
		HTMLBody:      draft.HTMLBody,
		Outcome:       domain.OutcomeFailed,
		FailureReason: &reason,
		TriggeredBy:   triggeredBy,
		CreatedAt:     o.now(),
	})
	if err != nil {
		o.log.Error("failed to record outreach attempt", "prospect_id", prospect.ID, "error", err)
	}
}

// SendBatch sends the next step to each prospect concurrently, bounded by
// MaxConcurrency and the shared send rate limiter.
func (o *Orchestrator) SendBatch(ctx context.Context, prospectIDs []uuid.UUID, triggeredBy *uuid.UUID) (BatchResult, error) {
	var mu sync.Mutex
	result := BatchResult{Items: make([]ItemResult, 0, len(prospectIDs))}

	g, gctx := errgroup.WithContext(ctx)
	limit := o.settings.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, id := range prospectIDs {
		id := id
		g.Go(func() error {
			item := o.sendOne(gctx, id, triggeredBy)

			mu.Lock()
			defer mu.Unlock()
			result.Items = append(result.Items, item)
			switch item.Outcome {
			case ItemSent:
				result.Succeeded++
			case ItemFailed:
				result.Failed++
			default:
				result.Skipped++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func (o *Orchestrator) sendOne(ctx context.Context, id uuid.UUID, triggeredBy *uuid.UUID) ItemResult {
	sent, err := o.SendNext(ctx, id, triggeredBy)
	if err == nil {
		return ItemResult{ProspectID: id, Outcome: ItemSent, Step: sent.Step}
	}

	item := ItemResult{ProspectID: id, Reason: err.Error()}
	var (
		notDue   domain.NotDueError
		terminal domain.AlreadyTerminalError
		conflict domain.ConcurrentModificationError
	)
	switch {
	case errors.As(err, &notDue), errors.As(err, &terminal), errors.As(err, &conflict):
		item.Outcome = ItemSkipped
	default:
		item.Outcome = ItemFailed
	}
	return item
}

// ProcessDueFollowUps finds every prospect whose next step is due and sends
// it. This is the scheduler entry point.
func (o *Orchestrator) ProcessDueFollowUps(ctx context.Context) (BatchResult, error) {
	due, err := o.repo.ListDueFollowUps(ctx, o.now(), o.settings.MaxSteps, o.settings.BatchSize)
	if err != nil {
		return BatchResult{}, err
	}
	if len(due) == 0 {
		return BatchResult{}, nil
	}

	ids := make([]uuid.UUID, len(due))
	for i, p := range due {
		ids[i] = p.ID
	}

	result, err := o.SendBatch(ctx, ids, nil)
	o.log.Info("follow-up sweep complete",
		"due", len(due),
		"sent", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return result, err
}

// GetHistory returns the full outreach log and the prospect's current cadence
// position.
func (o *Orchestrator) GetHistory(ctx context.Context, prospectID uuid.UUID) (History, error) {
	prospect, err := o.repo.GetByID(ctx, prospectID)
	if err != nil {
		return History{}, err
	}
	emails, err := o.repo.ListOutreachEmails(ctx, prospectID)
	if err != nil {
		return History{}, err
	}
	return History{
		Emails:  emails,
		Cadence: domain.ResolveCadence(prospect.Status, prospect.CadenceStep, prospect.NextEligibleAt, o.settings.MaxSteps, o.now()),
	}, nil
}

func (o *Orchestrator) nearbyEvents(ctx context.Context, prospect repository.Prospect) int {
	if prospect.Latitude == nil || prospect.Longitude == nil {
		return 0
	}
	count, err := o.activity.CountEventsNear(ctx, *prospect.Latitude, *prospect.Longitude, o.settings.ActivityRadiusKm, activityLookback)
	if err != nil {
		o.log.Warn("nearby event count unavailable", "prospect_id", prospect.ID, "error", err)
		return 0
	}
	return count
}

// activityLookback mirrors the scoring window so prompts and scores describe
// the same activity.
const activityLookback = 180
