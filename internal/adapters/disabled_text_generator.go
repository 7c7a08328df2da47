package adapters

import (
	"context"
	"errors"

	"shoreline_portal_backend/internal/prospects/ports"
)

// DisabledTextGenerator stands in for the AI client when no API key is
// configured. Content generation and discovery fail with a clear error
// instead of a nil dereference; the rest of the pipeline keeps working.
type DisabledTextGenerator struct{}

func NewDisabledTextGenerator() DisabledTextGenerator {
	return DisabledTextGenerator{}
}

func (DisabledTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("text generation is not configured")
}

var _ ports.TextGenerator = DisabledTextGenerator{}
