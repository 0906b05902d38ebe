package ollama

import (
	"context"
	"strings"

	"docvault/src/core/rag"
)

// Provider adapts the Ollama client to the core provider contracts. Ollama
// has no native batch embedding endpoint, so batches are processed
// sequentially in input order.
type Provider struct {
	client     *Client
	embedModel string
	genModel   string
	dims       int
}

// NewProvider builds a Provider from the resolved configuration.
func NewProvider(client *Client, cfg rag.ProviderConfig) *Provider {
	return &Provider{
		client:     client,
		embedModel: cfg.EmbeddingModel,
		genModel:   cfg.GenerationModel,
		dims:       cfg.EmbeddingDimensions,
	}
}

func (p *Provider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, rag.E(rag.KindInvalidInput, rag.StageEmbedding, "text is empty")
	}

	vec, err := p.client.GetEmbedding(ctx, p.embedModel, text)
	if err != nil {
		return nil, rag.WrapErr(rag.KindUpstream, rag.StageEmbedding, "ollama embedding failed", err)
	}
	if len(vec) == 0 {
		return nil, rag.E(rag.KindInvalidResponse, rag.StageEmbedding, "ollama returned an empty embedding")
	}
	if p.dims > 0 && len(vec) != p.dims {
		return nil, rag.Ef(rag.KindInvalidResponse, rag.StageEmbedding,
			"ollama returned a %d-dimensional vector, expected %d", len(vec), p.dims)
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
	return p.client.Ping(ctx) == nil
}

// Embedder returns the embedding-side view of the provider. The views
// exist because the two contracts both name a model, and one backend
// serves both with different models.
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

	model := opts.Model
	if model == "" {
		model = p.genModel
	}

	options := map[string]interface{}{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}

	text, err := p.client.Generate(ctx, model, "", prompt, options)
	if err != nil {
		return "", rag.WrapErr(rag.KindUpstream, rag.StageGeneration, "ollama generation failed", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", rag.E(rag.KindInvalidResponse, rag.StageGeneration, "ollama returned an empty response")
	}
	return text, nil
}

func (p *Provider) Classify(ctx context.Context, text string) (rag.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return rag.Classification{}, rag.E(rag.KindInvalidInput, rag.StageGeneration, "text is empty")
	}

	raw, err := p.Generate(ctx, rag.ClassifyPrompt(text), rag.GenerateOptions{Temperature: 0})
	if err != nil {
		return rag.Classification{}, err
	}
	return rag.ParseClassification(raw), nil
}

func (p *Provider) Summarize(ctx context.Context, text string) (rag.Summary, error) {
	if strings.TrimSpace(text) == "" {
		return rag.Summary{}, rag.E(rag.KindInvalidInput, rag.StageGeneration, "text is empty")
	}

	raw, err := p.Generate(ctx, rag.SummarizePrompt(text), rag.GenerateOptions{Temperature: 0})
	if err != nil {
		return rag.Summary{}, err
	}
	return rag.ParseSummary(raw), nil
}
