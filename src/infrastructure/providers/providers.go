// Package providers resolves which provider backend is active from
// configuration and caches a process-wide handle for each contract.
package providers

import (
	"net/http"
	"sync"
	"time"

	"docvault/src/core/rag"
	"docvault/src/infrastructure/integrations/fake"
	"docvault/src/infrastructure/integrations/ollama"
	"docvault/src/infrastructure/integrations/openai"
	"docvault/src/infrastructure/log"
)

const defaultHTTPTimeout = 60 * time.Second

// Config carries everything the selector needs to construct any backend.
type Config struct {
	Provider      rag.ProviderConfig
	OllamaURL     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	HTTPTimeout   time.Duration
}

// Selector performs the kind → implementation dispatch once and hands out
// the same instance afterwards. The instances are read-only after
// construction and safe for concurrent use.
type Selector struct {
	cfg Config

	once      sync.Once
	embedding rag.EmbeddingProvider
	generator rag.GenerationProvider
}

// NewSelector builds a Selector; backends are constructed lazily on first
// use.
func NewSelector(cfg Config) *Selector {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	return &Selector{cfg: cfg}
}

// EmbeddingProvider returns the active embedding backend.
func (s *Selector) EmbeddingProvider() rag.EmbeddingProvider {
	s.resolve()
	return s.embedding
}

// GenerationProvider returns the active generation backend.
func (s *Selector) GenerationProvider() rag.GenerationProvider {
	s.resolve()
	return s.generator
}

func (s *Selector) resolve() {
	s.once.Do(func() {
		switch s.cfg.Provider.Kind {
		case rag.ProviderCloud:
			p := openai.NewProvider(openai.Config{
				APIKey:  s.cfg.OpenAIAPIKey,
				BaseURL: s.cfg.OpenAIBaseURL,
			}, s.cfg.Provider)
			s.embedding, s.generator = p.Embedder(), p.Generator()
		case rag.ProviderLocal:
			client := ollama.NewClient(s.cfg.OllamaURL, &http.Client{
				Timeout: s.cfg.HTTPTimeout,
			})
			p := ollama.NewProvider(client, s.cfg.Provider)
			s.embedding, s.generator = p.Embedder(), p.Generator()
		case rag.ProviderTest:
			p := fake.NewProvider(s.cfg.Provider)
			s.embedding, s.generator = p.Embedder(), p.Generator()
		default:
			// Unknown configuration fails closed to the in-process double
			// rather than defaulting to a live, billable backend.
			log.Info("unknown provider kind, falling back to test double",
				"kind", string(s.cfg.Provider.Kind))
			p := fake.NewProvider(s.cfg.Provider)
			s.embedding, s.generator = p.Embedder(), p.Generator()
		}
	})
}
