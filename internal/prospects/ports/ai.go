// Package ports defines the interfaces that the prospects domain requires from
// external systems. These interfaces form the Anti-Corruption Layer (ACL),
// ensuring prospects only knows about the data it needs, formatted the way it
// wants.
package ports

import "context"

// TextGenerator produces model-generated text for a prompt. The implementation
// is provided by the composition root and wraps the configured AI backend, so
// the prospects domain never depends on a concrete model client.
type TextGenerator interface {
	// Generate returns the raw model output for the given prompt.
	// Implementations are expected to enforce their own timeout.
	Generate(ctx context.Context, prompt string) (string, error)
}
