package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
	"github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

// DefaultBatchSize is the number of findings per generator call.
const DefaultBatchSize = 20

// Chunk outcomes reported to a ChunkObserver.
const (
	ChunkOK       = "ok"
	ChunkDegraded = "degraded"
)

// ChunkObserver receives one call per processed chunk.
type ChunkObserver interface {
	ObserveChunk(outcome string, size int, elapsed time.Duration)
}

// Batcher enriches findings in fixed-size chunks, one generator call per
// chunk. A failing chunk degrades to empty enrichments and never affects
// the other chunks. A generator without credentials fails the whole batch.
type Batcher struct {
	Generator domai.Generator
	Model     string
	// Size is the chunk size; <= 0 means DefaultBatchSize.
	Size int
	// Concurrency > 1 runs chunks in parallel. Output order is unchanged.
	Concurrency int
	Observer    ChunkObserver
}

// Enrich returns one result slice per chunk concatenated in input order.
// Ids the generator leaves out of a successful reply are absent. The only
// error returned is domai.ErrServiceUnavailable.
func (b *Batcher) Enrich(ctx context.Context, findings []inspections.EnrichmentRequest) ([]inspections.Enrichment, error) {
	if len(findings) == 0 {
		return []inspections.Enrichment{}, nil
	}

	chunks := Chunks(findings, b.size())
	results := make([][]inspections.Enrichment, len(chunks))

	if b.Concurrency <= 1 {
		for i, chunk := range chunks {
			r, err := b.enrichChunk(ctx, i, chunk)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.Concurrency)
		for i, chunk := range chunks {
			g.Go(func() error {
				r, err := b.enrichChunk(gctx, i, chunk)
				results[i] = r
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]inspections.Enrichment, 0, len(findings))
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (b *Batcher) enrichChunk(ctx context.Context, idx int, chunk []inspections.EnrichmentRequest) ([]inspections.Enrichment, error) {
	start := time.Now()
	raw, err := b.Generator.Generate(ctx, b.Model, EnrichmentPrompt(chunk))
	if errors.Is(err, domai.ErrServiceUnavailable) {
		return nil, err
	}
	if err == nil {
		var parsed []inspections.Enrichment
		if parsed, err = ParseEnrichments(raw); err == nil {
			b.observe(ChunkOK, len(chunk), start)
			return parsed, nil
		}
	}

	zap.L().Warn("enrichment chunk degraded",
		zap.Int("chunk", idx),
		zap.Int("size", len(chunk)),
		zap.Error(err),
	)
	b.observe(ChunkDegraded, len(chunk), start)
	return emptyEnrichments(chunk), nil
}

func (b *Batcher) observe(outcome string, size int, start time.Time) {
	if b.Observer != nil {
		b.Observer.ObserveChunk(outcome, size, time.Since(start))
	}
}

func (b *Batcher) size() int {
	if b.Size <= 0 {
		return DefaultBatchSize
	}
	return b.Size
}

func emptyEnrichments(chunk []inspections.EnrichmentRequest) []inspections.Enrichment {
	out := make([]inspections.Enrichment, len(chunk))
	for i, f := range chunk {
		out[i] = inspections.Enrichment{ID: f.ID}
	}
	return out
}

// Chunks splits items into consecutive slices of at most size elements.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
