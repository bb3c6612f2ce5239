package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	domai "github.com/bryanwahyu/inspecta/internal/domain/ai"
	"github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var idPattern = regexp.MustCompile(`\[id: ([^\]]+)\]`)

// fakeGenerator echoes every id in the prompt back as an enrichment unless
// reply overrides it for the given call number (1-based).
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	reply   func(call int, ids []string) (string, error)
}

func (f *fakeGenerator) Generate(_ context.Context, _, p string) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()

	var ids []string
	for _, m := range idPattern.FindAllStringSubmatch(p, -1) {
		ids = append(ids, m[1])
	}
	if f.reply != nil {
		return f.reply(call, ids)
	}
	return echo(ids), nil
}

func echo(ids []string) string {
	items := make([]map[string]string, len(ids))
	for i, id := range ids {
		items[i] = map[string]string{"id": id, "description_ai": "mejorado " + id, "recommendations": "a | b"}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func makeFindings(n int) []inspections.EnrichmentRequest {
	out := make([]inspections.EnrichmentRequest, n)
	for i := range out {
		out[i] = inspections.EnrichmentRequest{ID: fmt.Sprintf("f%02d", i+1), ItemLabel: "item", Description: "desc"}
	}
	return out
}

func ids(es []inspections.Enrichment) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func mustEnrich(t *testing.T, b *Batcher, in []inspections.EnrichmentRequest) []inspections.Enrichment {
	t.Helper()
	out, err := b.Enrich(context.Background(), in)
	require.NoError(t, err)
	return out
}

func TestEnrich_EmptyInputNoCalls(t *testing.T) {
	gen := &fakeGenerator{}
	b := &Batcher{Generator: gen}

	out := mustEnrich(t, b, nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, 0, gen.calls)
}

func TestEnrich_ChunkCountAndMembership(t *testing.T) {
	for _, n := range []int{1, 19, 20, 21, 40, 45, 61} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			gen := &fakeGenerator{}
			b := &Batcher{Generator: gen, Size: 20}
			in := makeFindings(n)

			out := mustEnrich(t, b, in)

			wantChunks := (n + 19) / 20
			require.Equal(t, wantChunks, gen.calls)
			for i, p := range gen.prompts {
				got := idPattern.FindAllStringSubmatch(p, -1)
				end := min(20*i+20, n)
				require.Len(t, got, end-20*i)
				for j, m := range got {
					assert.Equal(t, in[20*i+j].ID, m[1])
				}
			}
			require.Len(t, out, n)
			for i := range in {
				assert.Equal(t, in[i].ID, out[i].ID)
			}
		})
	}
}

func TestEnrich_FailedMiddleChunkDegrades(t *testing.T) {
	gen := &fakeGenerator{reply: func(call int, ids []string) (string, error) {
		if call == 2 {
			return "", errors.New("boom")
		}
		return echo(ids), nil
	}}
	b := &Batcher{Generator: gen}

	out := mustEnrich(t, b, makeFindings(45))

	require.Equal(t, 3, gen.calls)
	require.Len(t, out, 45)
	for i, e := range out {
		assert.Equal(t, fmt.Sprintf("f%02d", i+1), e.ID)
		if i >= 20 && i < 40 {
			assert.Empty(t, e.DescriptionAI, e.ID)
			assert.Empty(t, e.Recommendations, e.ID)
		} else {
			assert.Equal(t, "mejorado "+e.ID, e.DescriptionAI)
		}
	}
}

func TestEnrich_UnparsableAndNonArrayDegrade(t *testing.T) {
	for name, reply := range map[string]string{
		"invalid json": "lo siento, no puedo",
		"object":       `{"id":"f01","description_ai":"x"}`,
		"fenced obj":   "```json\n{\"results\": []}\n```",
	} {
		t.Run(name, func(t *testing.T) {
			gen := &fakeGenerator{reply: func(int, []string) (string, error) { return reply, nil }}
			out := mustEnrich(t, &Batcher{Generator: gen}, makeFindings(3))

			assert.Equal(t, []inspections.Enrichment{{ID: "f01"}, {ID: "f02"}, {ID: "f03"}}, out)
		})
	}
}

func TestEnrich_FencedReplyMatchesPlain(t *testing.T) {
	in := makeFindings(4)
	plain := mustEnrich(t, &Batcher{Generator: &fakeGenerator{}}, in)

	fenced := &fakeGenerator{reply: func(_ int, ids []string) (string, error) {
		return "```json\n" + echo(ids) + "\n```", nil
	}}
	got := mustEnrich(t, &Batcher{Generator: fenced}, in)

	assert.Equal(t, plain, got)
}

func TestEnrich_OmittedIdsAreAbsent(t *testing.T) {
	gen := &fakeGenerator{reply: func(_ int, ids []string) (string, error) {
		return echo(ids[:1]), nil
	}}
	out := mustEnrich(t, &Batcher{Generator: gen}, makeFindings(3))

	assert.Equal(t, []string{"f01"}, ids(out))
}

func TestEnrich_ConcurrentKeepsOrder(t *testing.T) {
	gen := &fakeGenerator{reply: func(call int, ids []string) (string, error) {
		// later calls finish first
		time.Sleep(time.Duration(10-call) * time.Millisecond)
		if ids[0] == "f21" {
			return "", errors.New("chunk two down")
		}
		return echo(ids), nil
	}}
	b := &Batcher{Generator: gen, Size: 10, Concurrency: 4}
	in := makeFindings(45)

	out := mustEnrich(t, b, in)

	require.Equal(t, 5, gen.calls)
	require.Len(t, out, 45)
	for i, e := range out {
		assert.Equal(t, in[i].ID, e.ID)
	}
	assert.Empty(t, out[20].DescriptionAI)
	assert.Equal(t, "mejorado f01", out[0].DescriptionAI)
}

func TestEnrich_MissingCredentialFailsBatch(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprint(concurrency), func(t *testing.T) {
			gen := &fakeGenerator{reply: func(int, []string) (string, error) {
				return "", domai.ErrServiceUnavailable
			}}
			b := &Batcher{Generator: gen, Size: 10, Concurrency: concurrency}

			out, err := b.Enrich(context.Background(), makeFindings(25))

			assert.ErrorIs(t, err, domai.ErrServiceUnavailable)
			assert.Nil(t, out)
		})
	}
}

func TestEnrich_MissingCredentialStopsSequentialRun(t *testing.T) {
	gen := &fakeGenerator{reply: func(int, []string) (string, error) {
		return "", domai.ErrServiceUnavailable
	}}

	_, err := (&Batcher{Generator: gen, Size: 10}).Enrich(context.Background(), makeFindings(25))

	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveChunk(outcome string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestEnrich_ReportsChunkOutcomes(t *testing.T) {
	gen := &fakeGenerator{reply: func(call int, ids []string) (string, error) {
		if call == 1 {
			return "nope", nil
		}
		return echo(ids), nil
	}}
	obs := &recordingObserver{}
	mustEnrich(t, &Batcher{Generator: gen, Size: 2, Observer: obs}, makeFindings(3))

	assert.Equal(t, []string{ChunkDegraded, ChunkOK}, obs.outcomes)
}

func TestChunks(t *testing.T) {
	assert.Empty(t, Chunks([]int{}, 20))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunks([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}, {2}}, Chunks([]int{1, 2}, 0))
}
