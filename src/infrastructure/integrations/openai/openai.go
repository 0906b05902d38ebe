// Package openai integrates a cloud-hosted, OpenAI-compatible backend for
// embeddings and text generation.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"docvault/src/core/rag"
)

// Config holds the backend connection settings.
type Config struct {
	APIKey  string
	BaseURL string
}

// Provider implements the core embedding and generation contracts over the
// OpenAI API. Embeddings use the native batch endpoint.
type Provider struct {
	client     *openai.Client
	embedModel openai.EmbeddingModel
	genModel   string
	dims       int
	temp       float64
	maxTokens  int
}

// NewProvider builds a Provider from connection settings and the resolved
// provider configuration.
func NewProvider(cfg Config, pcfg rag.ProviderConfig) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client:     openai.NewClientWithConfig(clientCfg),
		embedModel: openai.EmbeddingModel(pcfg.EmbeddingModel),
		genModel:   pcfg.GenerationModel,
		dims:       pcfg.EmbeddingDimensions,
		temp:       pcfg.Temperature,
		maxTokens:  pcfg.MaxTokens,
	}
}

func (p *Provider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *Provider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, rag.E(rag.KindInvalidInput, rag.StageEmbedding, "text is empty")
		}
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          p.embedModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if p.dims > 0 {
		req.Dimensions = p.dims
	}

	resp, err := p.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, wrapAPIError(rag.StageEmbedding, "embedding request failed", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, rag.Ef(rag.KindInvalidResponse, rag.StageEmbedding,
			"embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	// Responses carry an index; place by it so output order matches input
	// order regardless of response order.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, rag.Ef(rag.KindInvalidResponse, rag.StageEmbedding,
				"embedding response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, rag.Ef(rag.KindInvalidResponse, rag.StageEmbedding,
				"embedding response missing vector for input %d", i)
		}
		if p.dims > 0 && len(vec) != p.dims {
			return nil, rag.Ef(rag.KindInvalidResponse, rag.StageEmbedding,
				"embedding has length %d, expected %d", len(vec), p.dims)
		}
	}

	return vectors, nil
}

func (p *Provider) Dimensions() int {
	return p.dims
}

func (p *Provider) CheckAvailability(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Embedder returns the embedding-side view of the provider.
func (p *Provider) Embedder() rag.EmbeddingProvider { return embedder{p} }

// Generator returns the generation-side view of the provider.
func (p *Provider) Generator() rag.GenerationProvider { return generator{p} }

type embedder struct{ *Provider }

func (e embedder) ModelName() string { return string(e.embedModel) }

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
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(opts.Temperature),
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapAPIError(rag.StageGeneration, "chat completion failed", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", rag.E(rag.KindInvalidResponse, rag.StageGeneration, "chat completion returned no content")
	}

	return resp.Choices[0].Message.Content, nil
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

// wrapAPIError maps API errors onto the core taxonomy, keeping the
// upstream status and message for operators.
func wrapAPIError(stage rag.Stage, msg string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return rag.WrapErr(rag.KindUpstream, stage,
			fmt.Sprintf("%s: API error %d: %s", msg, apiErr.HTTPStatusCode, apiErr.Message), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return rag.WrapErr(rag.KindUpstream, stage,
			fmt.Sprintf("%s: HTTP %d", msg, reqErr.HTTPStatusCode), err)
	}
	return rag.WrapErr(rag.KindUpstream, stage, msg, err)
}
