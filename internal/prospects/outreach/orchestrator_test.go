package outreach

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"shoreline_portal_backend/internal/prospects/content"
	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/apperr"
	"shoreline_portal_backend/platform/config"
	"shoreline_portal_backend/platform/logger"
)

// fakeRepo is an in-memory, version-checking stand-in for the pgx repository.
type fakeRepo struct {
	repository.ProspectsRepository

	mu        sync.Mutex
	prospects map[uuid.UUID]repository.Prospect
	emails    []repository.OutreachEmail
}

func newFakeRepo(prospects ...repository.Prospect) *fakeRepo {
	f := &fakeRepo{prospects: map[uuid.UUID]repository.Prospect{}}
	for _, p := range prospects {
		f.prospects[p.ID] = p
	}
	return f
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prospects[id]
	if !ok {
		return repository.Prospect{}, apperr.NotFound("prospect not found")
	}
	return p, nil
}

func (f *fakeRepo) ListDueFollowUps(_ context.Context, now time.Time, maxSteps, limit int) ([]repository.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []repository.Prospect
	for _, p := range f.prospects {
		if p.Status != domain.StatusContacted {
			continue
		}
		if p.CadenceStep < 1 || p.CadenceStep >= maxSteps {
			continue
		}
		if p.NextEligibleAt != nil && p.NextEligibleAt.After(now) {
			continue
		}
		due = append(due, p)
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (f *fakeRepo) CommitSend(_ context.Context, params repository.CommitSendParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prospects[params.ProspectID]
	if !ok || p.Version != params.ExpectedVersion {
		return domain.ConcurrentModificationError{ProspectID: params.ProspectID}
	}
	next := params.NextEligibleAt
	sent := params.SentAt
	p.Status = domain.StatusContacted
	p.CadenceStep = params.Step
	p.NextEligibleAt = &next
	p.LastContactedAt = &sent
	p.Version++
	f.prospects[params.ProspectID] = p
	f.emails = append(f.emails, params.Email)
	return nil
}

func (f *fakeRepo) RecordFailedAttempt(_ context.Context, email repository.OutreachEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, email)
	return nil
}

func (f *fakeRepo) ListOutreachEmails(_ context.Context, prospectID uuid.UUID) ([]repository.OutreachEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.OutreachEmail
	for _, e := range f.emails {
		if e.ProspectID == prospectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) get(id uuid.UUID) repository.Prospect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prospects[id]
}

func (f *fakeRepo) bumpVersion(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.prospects[id]
	p.Version++
	f.prospects[id] = p
}

type fakeDrafter struct {
	err   error
	calls int
}

func (f *fakeDrafter) GenerateDraft(_ context.Context, _ repository.Prospect, step, _ int) (content.Draft, error) {
	f.calls++
	if f.err != nil {
		return content.Draft{}, f.err
	}
	intent, _ := domain.IntentForStep(step)
	return content.Draft{
		Subject:  fmt.Sprintf("Step %d subject", step),
		HTMLBody: "<p>Hello</p>",
		Intent:   string(intent),
	}, nil
}

type fakeSender struct {
	mu         sync.Mutex
	recipients []string
	err        error
	beforeSend func() // runs before each send, for races
}

func (f *fakeSender) SendOutreachEmail(_ context.Context, to, _, _ string) error {
	if f.beforeSend != nil {
		f.beforeSend()
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipients = append(f.recipients, to)
	return nil
}

type noActivity struct{}

func (noActivity) CountEventsNear(context.Context, float64, float64, float64, int) (int, error) {
	return 0, nil
}

func (noActivity) ListEventLocations(context.Context, int) ([]ports.EventLocation, error) {
	return nil, nil
}

func fastSettings() config.OutreachSettings {
	s := config.DefaultOutreachSettings()
	s.SendRatePerMinute = 60000
	s.MaxConcurrency = 4
	return s
}

func newOrchestrator(repo *fakeRepo, drafter Drafter, sender *fakeSender) *Orchestrator {
	return New(repo, drafter, sender, noActivity{}, fastSettings(), logger.New("test"))
}

func scoredProspect() repository.Prospect {
	score := 80
	return repository.Prospect{
		ID:       uuid.New(),
		Name:     "Green Shores Collective",
		Email:    "info@greenshores.example",
		City:     "Den Haag",
		Country:  "NL",
		Status:   domain.StatusScored,
		FitScore: &score,
		Version:  1,
	}
}

func TestSendNextSendsFirstStep(t *testing.T) {
	p := scoredProspect()
	repo := newFakeRepo(p)
	sender := &fakeSender{}
	orch := newOrchestrator(repo, &fakeDrafter{}, sender)

	result, err := orch.SendNext(context.Background(), p.ID, nil)
	if err != nil {
		t.Fatalf("SendNext: %v", err)
	}
	if result.Step != 1 {
		t.Fatalf("step = %d, want 1", result.Step)
	}
	if len(sender.recipients) != 1 || sender.recipients[0] != p.Email {
		t.Fatalf("unexpected recipients %v", sender.recipients)
	}

	updated := repo.get(p.ID)
	if updated.CadenceStep != 1 || updated.Status != domain.StatusContacted {
		t.Fatalf("cadence not advanced: %+v", updated)
	}
	if updated.Version != p.Version+1 {
		t.Fatalf("version = %d, want %d", updated.Version, p.Version+1)
	}
	if updated.NextEligibleAt == nil {
		t.Fatal("next eligibility not set")
	}
	wantNext := updated.LastContactedAt.AddDate(0, 0, fastSettings().FollowUpOffsetDays[0])
	if !updated.NextEligibleAt.Equal(wantNext) {
		t.Fatalf("next eligible at %v, want %v", updated.NextEligibleAt, wantNext)
	}

	emails, _ := repo.ListOutreachEmails(context.Background(), p.ID)
	if len(emails) != 1 || emails[0].Outcome != domain.OutcomeSent {
		t.Fatalf("unexpected outreach log %+v", emails)
	}
}

func TestSendNextRejectsUnscoredProspect(t *testing.T) {
	p := scoredProspect()
	p.Status = domain.StatusNew
	p.FitScore = nil
	repo := newFakeRepo(p)
	orch := newOrchestrator(repo, &fakeDrafter{}, &fakeSender{})

	_, err := orch.SendNext(context.Background(), p.ID, nil)
	var valErr domain.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.get(p.ID).CadenceStep != 0 {
		t.Fatal("cadence advanced for unscored prospect")
	}
}

func TestSendNextNotDue(t *testing.T) {
	p := scoredProspect()
	p.Status = domain.StatusContacted
	p.CadenceStep = 1
	future := time.Now().UTC().Add(48 * time.Hour)
	p.NextEligibleAt = &future
	repo := newFakeRepo(p)
	sender := &fakeSender{}
	orch := newOrchestrator(repo, &fakeDrafter{}, sender)

	_, err := orch.SendNext(context.Background(), p.ID, nil)
	var notDue domain.NotDueError
	if !errors.As(err, &notDue) {
		t.Fatalf("expected NotDueError, got %v", err)
	}
	if !notDue.EligibleAt.Equal(future) {
		t.Fatalf("eligible at %v, want %v", notDue.EligibleAt, future)
	}
	if len(sender.recipients) != 0 {
		t.Fatal("email sent while not due")
	}
	emails, _ := repo.ListOutreachEmails(context.Background(), p.ID)
	if len(emails) != 0 {
		t.Fatalf("log written for not-due prospect: %+v", emails)
	}
}

func TestSendNextHaltsOnTerminalStatus(t *testing.T) {
	for _, status := range []domain.ProspectStatus{
		domain.StatusResponded, domain.StatusConverted, domain.StatusRejected, domain.StatusUnreachable,
	} {
		t.Run(status.String(), func(t *testing.T) {
			p := scoredProspect()
			p.Status = status
			orch := newOrchestrator(newFakeRepo(p), &fakeDrafter{}, &fakeSender{})

			_, err := orch.SendNext(context.Background(), p.ID, nil)
			var terminal domain.AlreadyTerminalError
			if !errors.As(err, &terminal) {
				t.Fatalf("expected AlreadyTerminalError, got %v", err)
			}
			if terminal.Exhausted {
				t.Fatal("terminal status misreported as exhausted")
			}
		})
	}
}

func TestSendNextExhaustedCadence(t *testing.T) {
	p := scoredProspect()
	p.Status = domain.StatusContacted
	p.CadenceStep = fastSettings().MaxSteps
	past := time.Now().UTC().Add(-time.Hour)
	p.NextEligibleAt = &past
	orch := newOrchestrator(newFakeRepo(p), &fakeDrafter{}, &fakeSender{})

	_, err := orch.SendNext(context.Background(), p.ID, nil)
	var terminal domain.AlreadyTerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("expected AlreadyTerminalError, got %v", err)
	}
	if !terminal.Exhausted {
		t.Fatal("expected exhausted cadence")
	}
}

func TestSendNextRecordsContentFailure(t *testing.T) {
	p := scoredProspect()
	repo := newFakeRepo(p)
	drafter := &fakeDrafter{err: domain.ContentGenerationError{Step: 1, Err: errors.New("model down")}}
	sender := &fakeSender{}
	orch := newOrchestrator(repo, drafter, sender)

	_, err := orch.SendNext(context.Background(), p.ID, nil)
	var genErr domain.ContentGenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected ContentGenerationError, got %v", err)
	}
	if len(sender.recipients) != 0 {
		t.Fatal("email sent despite draft failure")
	}

	emails, _ := repo.ListOutreachEmails(context.Background(), p.ID)
	if len(emails) != 1 || emails[0].Outcome != domain.OutcomeFailed {
		t.Fatalf("expected one failed log row, got %+v", emails)
	}
	if emails[0].FailureReason == nil {
		t.Fatal("failure reason missing")
	}
	if repo.get(p.ID).CadenceStep != 0 {
		t.Fatal("cadence advanced despite draft failure")
	}
}

func TestSendNextRecordsTransportFailure(t *testing.T) {
	p := scoredProspect()
	repo := newFakeRepo(p)
	orch := newOrchestrator(repo, &fakeDrafter{}, &fakeSender{err: errors.New("smtp refused")})

	_, err := orch.SendNext(context.Background(), p.ID, nil)
	var transport domain.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.Recipient != p.Email {
		t.Fatalf("recipient = %q, want %q", transport.Recipient, p.Email)
	}

	emails, _ := repo.ListOutreachEmails(context.Background(), p.ID)
	if len(emails) != 1 || emails[0].Outcome != domain.OutcomeFailed {
		t.Fatalf("expected one failed log row, got %+v", emails)
	}
	if repo.get(p.ID).CadenceStep != 0 {
		t.Fatal("cadence advanced despite transport failure")
	}
}

func TestSendNextDetectsConcurrentModification(t *testing.T) {
	p := scoredProspect()
	repo := newFakeRepo(p)
	sender := &fakeSender{}
	// Another writer updates the prospect between draft and commit.
	sender.beforeSend = func() { repo.bumpVersion(p.ID) }
	orch := newOrchestrator(repo, &fakeDrafter{}, sender)

	_, err := orch.SendNext(context.Background(), p.ID, nil)
	var conflict domain.ConcurrentModificationError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConcurrentModificationError, got %v", err)
	}
	if repo.get(p.ID).CadenceStep != 0 {
		t.Fatal("cadence advanced despite conflict")
	}
}

func TestSendBatchAggregatesOutcomes(t *testing.T) {
	due := scoredProspect()
	terminal := scoredProspect()
	terminal.Status = domain.StatusConverted
	waiting := scoredProspect()
	waiting.Status = domain.StatusContacted
	waiting.CadenceStep = 1
	future := time.Now().UTC().Add(24 * time.Hour)
	waiting.NextEligibleAt = &future

	repo := newFakeRepo(due, terminal, waiting)
	orch := newOrchestrator(repo, &fakeDrafter{}, &fakeSender{})

	result, err := orch.SendBatch(context.Background(), []uuid.UUID{due.ID, terminal.ID, waiting.ID}, nil)
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if result.Succeeded != 1 || result.Skipped != 2 || result.Failed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 item results, got %d", len(result.Items))
	}
}

func TestProcessDueFollowUpsSendsOnlyDue(t *testing.T) {
	// Legacy contacted row without a horizon counts as immediately due.
	due1 := scoredProspect()
	due1.Status = domain.StatusContacted
	due1.CadenceStep = 1

	due2 := scoredProspect()
	due2.Status = domain.StatusContacted
	due2.CadenceStep = 2
	past := time.Now().UTC().Add(-time.Hour)
	due2.NextEligibleAt = &past

	notDue := scoredProspect()
	notDue.Status = domain.StatusContacted
	notDue.CadenceStep = 1
	future := time.Now().UTC().Add(time.Hour)
	notDue.NextEligibleAt = &future

	neverContacted := scoredProspect()

	repo := newFakeRepo(due1, due2, notDue, neverContacted)
	sender := &fakeSender{}
	orch := newOrchestrator(repo, &fakeDrafter{}, sender)

	result, err := orch.ProcessDueFollowUps(context.Background())
	if err != nil {
		t.Fatalf("ProcessDueFollowUps: %v", err)
	}
	if result.Succeeded != 2 {
		t.Fatalf("sent %d, want 2: %+v", result.Succeeded, result)
	}
	if repo.get(due1.ID).CadenceStep != 2 {
		t.Fatalf("due1 step = %d, want 2", repo.get(due1.ID).CadenceStep)
	}
	if repo.get(due2.ID).CadenceStep != 3 {
		t.Fatalf("due2 step = %d, want 3", repo.get(due2.ID).CadenceStep)
	}
	if repo.get(notDue.ID).CadenceStep != 1 {
		t.Fatal("not-due prospect was contacted")
	}
	if repo.get(neverContacted.ID).CadenceStep != 0 {
		t.Fatal("first send must stay admin-initiated, not swept by the periodic run")
	}
}

func TestProcessDueFollowUpsBackToBackSendsEachStepOnce(t *testing.T) {
	p := scoredProspect()
	p.Status = domain.StatusContacted
	p.CadenceStep = 1
	past := time.Now().UTC().Add(-time.Hour)
	p.NextEligibleAt = &past

	repo := newFakeRepo(p)
	orch := newOrchestrator(repo, &fakeDrafter{}, &fakeSender{})

	first, err := orch.ProcessDueFollowUps(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := orch.ProcessDueFollowUps(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.Succeeded != 1 || second.Succeeded != 0 {
		t.Fatalf("succeeded %d then %d, want 1 then 0", first.Succeeded, second.Succeeded)
	}

	emails, _ := repo.ListOutreachEmails(context.Background(), p.ID)
	if len(emails) != 1 {
		t.Fatalf("got %d outreach rows, want 1", len(emails))
	}
	steps := map[int]int{}
	for _, e := range emails {
		steps[e.Step]++
	}
	if steps[2] != 1 {
		t.Fatalf("step 2 sent %d times, want exactly once: %+v", steps[2], emails)
	}
}

func TestPreviewDoesNotRecordAnything(t *testing.T) {
	p := scoredProspect()
	repo := newFakeRepo(p)
	sender := &fakeSender{}
	orch := newOrchestrator(repo, &fakeDrafter{}, sender)

	draft, err := orch.Preview(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if draft.Subject == "" {
		t.Fatal("empty preview draft")
	}
	if len(sender.recipients) != 0 {
		t.Fatal("preview sent an email")
	}
	emails, _ := repo.ListOutreachEmails(context.Background(), p.ID)
	if len(emails) != 0 {
		t.Fatal("preview wrote to the outreach log")
	}
	if repo.get(p.ID).CadenceStep != 0 {
		t.Fatal("preview advanced the cadence")
	}
}

func TestGetHistoryReportsCadencePhase(t *testing.T) {
	p := scoredProspect()
	repo := newFakeRepo(p)
	orch := newOrchestrator(repo, &fakeDrafter{}, &fakeSender{})

	if _, err := orch.SendNext(context.Background(), p.ID, nil); err != nil {
		t.Fatalf("SendNext: %v", err)
	}

	history, err := orch.GetHistory(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history.Emails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(history.Emails))
	}
	if history.Cadence.Phase != domain.PhaseAwaiting {
		t.Fatalf("phase = %v, want awaiting", history.Cadence.Phase)
	}
}
