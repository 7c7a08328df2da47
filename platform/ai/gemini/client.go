// Package gemini provides a thin text-generation client over the Google
// GenAI API. This is part of the platform layer and contains no business
// logic; prompt construction and response parsing belong to the callers.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Client generates text using a Gemini model. It is stateless between calls
// and safe for concurrent use.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// Config holds client settings.
type Config struct {
	APIKey string
	// Model defaults to gemini-2.0-flash.
	Model string
	// Timeout is applied per Generate call; the upstream API has no
	// guaranteed latency bound.
	Timeout time.Duration
}

// NewClient creates a Gemini-backed text generation client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

// Generate produces text for the given prompt. The response is returned
// verbatim; callers own any structural parsing.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}

	return text, nil
}
