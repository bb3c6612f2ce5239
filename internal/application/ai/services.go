package ai

import (
	"context"
	"strings"

	"github.com/bryanwahyu/inspecta/internal/application"
	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
	"github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

// Service implements the three /ai modes.
type Service struct {
	client  domai.Generator
	batcher *Batcher
}

func NewService(client domai.Generator, batcher *Batcher) *Service {
	return &Service{client: client, batcher: batcher}
}

// Prompt forwards a free-form prompt. An empty model uses the provider default.
func (s *Service) Prompt(ctx context.Context, model, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", application.Invalid("prompt is required")
	}
	return s.client.Generate(ctx, model, text)
}

// Summarize writes an executive summary from inspection context.
func (s *Service) Summarize(ctx context.Context, model, details string) (string, error) {
	if strings.TrimSpace(details) == "" {
		return "", application.Invalid("context is required")
	}
	return s.client.Generate(ctx, model, SummaryPrompt(details))
}

// EnrichFindings degrades failed chunks and only fails when the provider has
// no credential; see Batcher.
func (s *Service) EnrichFindings(ctx context.Context, findings []inspections.EnrichmentRequest) ([]inspections.Enrichment, error) {
	return s.batcher.Enrich(ctx, findings)
}
