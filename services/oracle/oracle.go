package oracle

import "context"

// TextOracle is the external generative service the dialogue engine leans on
// for intent labeling, structured extraction, confirmation detection and
// grounded answer generation. Failures are expected and must be handled by
// callers with deterministic fallbacks.
type TextOracle interface {
	// Complete runs an instruction under the given system role and returns raw text.
	Complete(ctx context.Context, system, prompt string) (string, error)
	// Embed maps text into a fixed-dimension vector.
	Embed(ctx context.Context, text string) ([]float32, error)
}
