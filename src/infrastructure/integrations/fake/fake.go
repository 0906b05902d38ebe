// Package fake is the deterministic in-process provider double. It is the
// fail-closed target for unrecognized provider configuration, so a
// misconfigured environment never reaches a live backend by accident.
package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"docvault/src/core/rag"
)

const DefaultDimensions = 64

// Provider implements both provider contracts without any network calls.
// Embeddings are a normalized bag-of-words hash, so texts sharing words
// produce geometrically close vectors and retrieval behaves sensibly in
// tests.
type Provider struct {
	dims       int
	embedModel string
	genModel   string
}

// NewProvider builds the double. A non-positive dimensionality falls back
// to DefaultDimensions.
func NewProvider(cfg rag.ProviderConfig) *Provider {
	dims := cfg.EmbeddingDimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Provider{
		dims:       dims,
		embedModel: "fake-embedder",
		genModel:   "fake-generator",
	}
}

func (p *Provider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, rag.E(rag.KindInvalidInput, rag.StageEmbedding, "text is empty")
	}

	vec := make([]float32, p.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%p.dims] += 1
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	} else {
		// Text with no indexable words still gets a valid unit vector.
		vec[0] = 1
	}

	return vec, nil
}

func (p *Provider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (p *Provider) Dimensions() int {
	return p.dims
}

func (p *Provider) CheckAvailability(ctx context.Context) bool {
	return true
}

// Embedder returns the embedding-side view of the provider.
func (p *Provider) Embedder() rag.EmbeddingProvider { return embedder{p} }

// Generator returns the generation-side view of the provider.
func (p *Provider) Generator() rag.GenerationProvider { return generator{p} }

type embedder struct{ *Provider }

func (e embedder) ModelName() string { return e.embedModel }

type generator struct{ *Provider }

func (g generator) ModelName() string { return g.genModel }

func (p *Provider) Generate(ctx context.Context, prompt string, opts rag.GenerateOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", rag.E(rag.KindInvalidInput, rag.StageGeneration, "prompt is empty")
	}
	// Deterministic, visibly synthetic output.
	return fmt.Sprintf("[%s] %s", p.genModel, firstLine(prompt)), nil
}

func (p *Provider) Classify(ctx context.Context, text string) (rag.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return rag.Classification{}, rag.E(rag.KindInvalidInput, rag.StageGeneration, "text is empty")
	}
	return rag.Classification{Category: rag.DefaultCategory, Confidence: 1, Tags: []string{}}, nil
}

func (p *Provider) Summarize(ctx context.Context, text string) (rag.Summary, error) {
	if strings.TrimSpace(text) == "" {
		return rag.Summary{}, rag.E(rag.KindInvalidInput, rag.StageGeneration, "text is empty")
	}
	return rag.Summary{Summary: firstLine(text), KeyPoints: []string{}}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
