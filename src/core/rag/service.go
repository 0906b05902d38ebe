package rag

import (
	"context"
	"strings"
	"time"

	"docvault/src/infrastructure/log"
)

// NoContextAnswer is returned when retrieval matches nothing. Zero results
// is a valid terminal state, not an error.
const NoContextAnswer = "No relevant information was found in the available documents."

const defaultStageTimeout = 30 * time.Second

// Service is the RAG orchestrator: it answers questions against an
// organization's corpus, or against a single document, by composing the
// embedding provider, the vector store gateway, the prompt builder, and the
// generation provider. Providers are passed in explicitly so tests can
// substitute the deterministic double without process-wide mutation.
type Service struct {
	embedder     EmbeddingProvider
	generator    GenerationProvider
	store        VectorStore
	cfg          ProviderConfig
	stageTimeout time.Duration
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithStageTimeout bounds each external call (embedding, retrieval,
// generation). On expiry the stage fails typed rather than hanging.
func WithStageTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.stageTimeout = d
		}
	}
}

// NewService wires the orchestrator.
func NewService(embedder EmbeddingProvider, generator GenerationProvider, store VectorStore, cfg ProviderConfig, opts ...ServiceOption) *Service {
	s := &Service{
		embedder:     embedder,
		generator:    generator,
		store:        store,
		cfg:          cfg,
		stageTimeout: defaultStageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerQuestion answers against the organization's whole corpus. topK <= 0
// selects the provider-dependent default.
func (s *Service) AnswerQuestion(ctx context.Context, question, organizationID string, topK int) (*Answer, error) {
	return s.answer(ctx, question, organizationID, "", topK)
}

// AnswerQuestionInDocument answers against a single document within the
// organization scope.
func (s *Service) AnswerQuestionInDocument(ctx context.Context, question, organizationID, documentID string, topK int) (*Answer, error) {
	if documentID == "" {
		return nil, E(KindInvalidInput, StageRetrieval, "document id is required")
	}
	return s.answer(ctx, question, organizationID, documentID, topK)
}

func (s *Service) answer(ctx context.Context, question, organizationID, documentID string, topK int) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, E(KindInvalidInput, StageRetrieval, "question is empty")
	}
	if organizationID == "" {
		return nil, E(KindInvalidInput, StageRetrieval, "organization id is required")
	}
	if topK <= 0 {
		topK = s.cfg.DefaultTopK()
	}

	// Query embedding. A failure here fails the request; retrieval with a
	// degenerate placeholder vector would silently return the same arbitrary
	// chunks for every failed query.
	embedCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	vector, err := s.embedder.GenerateEmbedding(embedCtx, question)
	cancel()
	if err != nil {
		return nil, WrapErr(KindUpstream, StageEmbedding, "failed to embed question", err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	results, err := s.store.Query(queryCtx, vector, organizationID, documentID, topK)
	cancel()
	if err != nil {
		return nil, WrapErr(KindInternal, StageRetrieval, "vector query failed", err)
	}

	if len(results) == 0 {
		log.Debug("no chunks matched question",
			"organization_id", organizationID, "document_id", documentID)
		answer := &Answer{
			Answer:  NoContextAnswer,
			Sources: []string{},
			Chunks:  []SearchResult{},
		}
		if documentID != "" {
			// The scoped variant names the document it searched even when
			// that document held nothing relevant.
			answer.Sources = []string{documentID}
		}
		return answer, nil
	}

	sources := dedupeSources(results)
	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}

	prompt, err := BuildPrompt(question, contents)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	// Low temperature biases the generator toward faithfulness to the
	// retrieved fragments.
	text, err := s.generator.Generate(genCtx, prompt, GenerateOptions{
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	cancel()
	if err != nil {
		return nil, WrapErr(KindUpstream, StageGeneration, "failed to generate answer", err)
	}

	return &Answer{
		Answer:  text,
		Sources: sources,
		Chunks:  results,
	}, nil
}

// dedupeSources collects contributing document IDs preserving first-seen
// order, which is retrieval rank.
func dedupeSources(results []SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.DocumentID]; ok {
			continue
		}
		seen[r.DocumentID] = struct{}{}
		sources = append(sources, r.DocumentID)
	}
	return sources
}
