package ai

import "context"

// Generator turns a prompt into raw model text.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}
