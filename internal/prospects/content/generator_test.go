package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/logger"
)

type stubGenerator struct {
	output string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.output, s.err
}

func testProspect() repository.Prospect {
	region := "Zuid-Holland"
	return repository.Prospect{
		Name:    "Green Shores Collective",
		City:    "Den Haag",
		Region:  &region,
		Country: "NL",
	}
}

func TestGenerateDraftParsesModelOutput(t *testing.T) {
	ai := &stubGenerator{output: `{"subject": "Join us", "htmlBody": "<p>Hello</p>"}`}
	gen := New(ai, logger.New("test"))

	draft, err := gen.GenerateDraft(context.Background(), testProspect(), 1, 5)
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	if draft.Subject != "Join us" || draft.HTMLBody != "<p>Hello</p>" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
	if draft.Intent != string(domain.IntentInitial) {
		t.Fatalf("intent = %q, want %q", draft.Intent, domain.IntentInitial)
	}
	if !strings.Contains(ai.prompt, "Green Shores Collective") {
		t.Fatalf("prompt missing prospect name:\n%s", ai.prompt)
	}
	if !strings.Contains(ai.prompt, "email 1") {
		t.Fatalf("prompt missing step number:\n%s", ai.prompt)
	}
}

func TestGenerateDraftStripsCodeFence(t *testing.T) {
	ai := &stubGenerator{output: "```json\n{\"subject\": \"Hi\", \"htmlBody\": \"<p>x</p>\"}\n```"}
	gen := New(ai, logger.New("test"))

	draft, err := gen.GenerateDraft(context.Background(), testProspect(), 2, 0)
	if err != nil {
		t.Fatalf("GenerateDraft: %v", err)
	}
	if draft.Subject != "Hi" {
		t.Fatalf("unexpected subject %q", draft.Subject)
	}
}

func TestGenerateDraftWrapsModelFailure(t *testing.T) {
	ai := &stubGenerator{err: errors.New("model unavailable")}
	gen := New(ai, logger.New("test"))

	_, err := gen.GenerateDraft(context.Background(), testProspect(), 1, 0)
	var genErr domain.ContentGenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected ContentGenerationError, got %v", err)
	}
	if genErr.Step != 1 {
		t.Fatalf("step = %d, want 1", genErr.Step)
	}
}

func TestGenerateDraftRejectsMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"not json":      "here is your email!",
		"empty subject": `{"subject": " ", "htmlBody": "<p>x</p>"}`,
		"empty body":    `{"subject": "Hi", "htmlBody": ""}`,
	}
	for name, output := range cases {
		t.Run(name, func(t *testing.T) {
			gen := New(&stubGenerator{output: output}, logger.New("test"))
			_, err := gen.GenerateDraft(context.Background(), testProspect(), 1, 0)
			var genErr domain.ContentGenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected ContentGenerationError, got %v", err)
			}
		})
	}
}

func TestGenerateDraftRejectsInvalidStep(t *testing.T) {
	gen := New(&stubGenerator{}, logger.New("test"))
	if _, err := gen.GenerateDraft(context.Background(), testProspect(), 0, 0); err == nil {
		t.Fatal("expected error for step 0")
	}
	if _, err := gen.GenerateDraft(context.Background(), testProspect(), 5, 0); err == nil {
		t.Fatal("expected error for step beyond cadence")
	}
}
