// Package content drafts personalized outreach emails with the configured
// text-generation model.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/ports"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/logger"
)

// Draft is a generated outreach email, ready to send.
type Draft struct {
	Subject  string
	HTMLBody string
	Intent   string
}

// Generator turns a prospect and a cadence step into an email draft.
type Generator struct {
	ai  ports.TextGenerator
	log *logger.Logger
}

// New creates a new content generator.
func New(ai ports.TextGenerator, log *logger.Logger) *Generator {
	return &Generator{ai: ai, log: log}
}

// modelDraft is the JSON shape the model is instructed to return.
type modelDraft struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
}

// GenerateDraft produces the email for the given cadence step. Any model or
// parse failure is wrapped in domain.ContentGenerationError so callers can
// record the attempt as failed without advancing the cadence.
func (g *Generator) GenerateDraft(ctx context.Context, prospect repository.Prospect, step int, nearbyEventCount int) (Draft, error) {
	intent, err := domain.IntentForStep(step)
	if err != nil {
		return Draft{}, domain.ContentGenerationError{Step: step, Err: err}
	}

	prompt := buildPrompt(prospect, step, intent, nearbyEventCount)

	raw, err := g.ai.Generate(ctx, prompt)
	if err != nil {
		return Draft{}, domain.ContentGenerationError{Step: step, Err: err}
	}

	var parsed modelDraft
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		g.log.Error("outreach draft parse failed", "step", step, "error", err)
		return Draft{}, domain.ContentGenerationError{Step: step, Err: fmt.Errorf("parse model output: %w", err)}
	}
	if strings.TrimSpace(parsed.Subject) == "" || strings.TrimSpace(parsed.HTMLBody) == "" {
		return Draft{}, domain.ContentGenerationError{Step: step, Err: fmt.Errorf("model returned empty subject or body")}
	}

	return Draft{
		Subject:  strings.TrimSpace(parsed.Subject),
		HTMLBody: parsed.HTMLBody,
		Intent:   string(intent),
	}, nil
}

func buildPrompt(p repository.Prospect, step int, intent domain.StepIntent, nearbyEventCount int) string {
	var region string
	if p.Region != nil {
		region = *p.Region
	}

	return fmt.Sprintf(`You are the outreach coordinator for a coastal cleanup platform that
connects volunteers with local community organizations.

Write outreach email %d of an email sequence to this prospective partner organization.
The intent of this email is: %s.

Organization: %s
City: %s
Region: %s
Country: %s
Cleanup events held near them recently: %d
Emails already sent to them: %d

Guidelines:
- Warm, concise, and specific to their local area.
- Reference the local cleanup activity when the count is above zero.
- One clear call to action: a short intro call about becoming a partner.
- No placeholders like [Name]; write a complete, sendable email.
- Body must be simple HTML using only <p>, <br>, <strong> and <a> tags.

Respond with ONLY a JSON object in this exact shape:
{"subject": "...", "htmlBody": "..."}`,
		step, intent,
		p.Name, p.City, region, p.Country,
		nearbyEventCount, p.CadenceStep,
	)
}

// stripCodeFence tolerates models that wrap JSON in a markdown fence despite
// instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
