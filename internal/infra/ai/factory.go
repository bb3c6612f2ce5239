// Package ai selects the text-generation provider from configuration.
package ai

import (
	"github.com/rotisserie/eris"

	"github.com/bryanwahyu/inspecta/internal/config"
	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
	"github.com/bryanwahyu/inspecta/internal/infra/ai/anthropic"
	"github.com/bryanwahyu/inspecta/internal/infra/ai/openai"
)

// NewGenerator builds the configured provider. A missing API key is not an
// error here; the generator answers ErrServiceUnavailable on use instead.
func NewGenerator(cfg config.AIConfig) (domai.Generator, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			MaxAttempts: cfg.MaxAttempts,
		}), nil
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			MaxAttempts: cfg.MaxAttempts,
		}), nil
	default:
		return nil, eris.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}
