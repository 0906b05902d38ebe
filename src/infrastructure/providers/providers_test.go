package providers_test

import (
	"context"
	"testing"

	"docvault/src/core/rag"
	"docvault/src/infrastructure/providers"
)

func TestSelectorFallsBackToTestDouble(t *testing.T) {
	tests := []struct {
		name string
		kind rag.ProviderKind
	}{
		{name: "unknown kind", kind: rag.ProviderKind("experimental")},
		{name: "empty kind", kind: rag.ProviderKind("")},
		{name: "test double kind", kind: rag.ProviderTest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := providers.NewSelector(providers.Config{
				Provider: rag.ProviderConfig{Kind: tt.kind},
			})

			embedder := s.EmbeddingProvider()
			generator := s.GenerationProvider()

			if got := embedder.ModelName(); got != "fake-embedder" {
				t.Errorf("embedding model = %q, want fake-embedder", got)
			}
			if got := generator.ModelName(); got != "fake-generator" {
				t.Errorf("generation model = %q, want fake-generator", got)
			}

			// The double must actually work without any network.
			vec, err := embedder.GenerateEmbedding(context.Background(), "hello world")
			if err != nil {
				t.Fatalf("GenerateEmbedding() error = %v", err)
			}
			if len(vec) != embedder.Dimensions() {
				t.Errorf("vector length = %d, want %d", len(vec), embedder.Dimensions())
			}
		})
	}
}

func TestSelectorResolvesLocalKind(t *testing.T) {
	s := providers.NewSelector(providers.Config{
		Provider:  rag.ProviderConfig{Kind: rag.ProviderLocal, EmbeddingModel: "nomic-embed-text", GenerationModel: "llama3.2"},
		OllamaURL: "http://localhost:11434/api",
	})

	if got := s.EmbeddingProvider().ModelName(); got != "nomic-embed-text" {
		t.Errorf("embedding model = %q, want nomic-embed-text", got)
	}
	if got := s.GenerationProvider().ModelName(); got != "llama3.2" {
		t.Errorf("generation model = %q, want llama3.2", got)
	}
}

func TestSelectorReturnsSameInstance(t *testing.T) {
	s := providers.NewSelector(providers.Config{
		Provider: rag.ProviderConfig{Kind: rag.ProviderTest},
	})

	if s.EmbeddingProvider() != s.EmbeddingProvider() {
		t.Errorf("EmbeddingProvider() returned different instances")
	}
	if s.GenerationProvider() != s.GenerationProvider() {
		t.Errorf("GenerationProvider() returned different instances")
	}
}
