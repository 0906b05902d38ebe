// Package rag is the retrieval-augmented generation core: it turns extracted
// document text into embedded chunks, runs organization-scoped similarity
// retrieval, and synthesizes grounded answers with traceable sources.
package rag

import "time"

// Chunk is a contiguous slice of one document's extracted text together
// with its embedding vector. Chunks are created in bulk during document
// processing and replaced wholesale on reprocessing, never mutated.
type Chunk struct {
	DocumentID     string
	OrganizationID string
	Index          int
	Content        string
	WordCount      int
	CharCount      int
	CreatedAt      time.Time
	Embedding      []float32
}

// SearchResult pairs a retrieved chunk with its similarity score. The score
// scale is index-defined; treat it as an opaque ordering key, not a
// probability.
type SearchResult struct {
	DocumentID string
	Index      int
	Content    string
	Score      float64
}

// Answer is the orchestrator's output: the generated answer text, the
// de-duplicated document IDs that contributed context, and the underlying
// per-chunk results for citation.
type Answer struct {
	Answer  string         `json:"answer"`
	Sources []string       `json:"sources"`
	Chunks  []SearchResult `json:"chunks"`
}

// ProviderKind selects which provider backend is active.
type ProviderKind string

const (
	ProviderCloud ProviderKind = "cloud"
	ProviderLocal ProviderKind = "local"
	ProviderTest  ProviderKind = "test-double"
)

// ProviderConfig is resolved once at wiring time and read-only afterwards.
// EmbeddingDimensions is authoritative: it is the single source of truth
// for validating any vector before it reaches a similarity query.
type ProviderConfig struct {
	Kind                ProviderKind
	EmbeddingModel      string
	EmbeddingDimensions int
	GenerationModel     string
	Temperature         float64
	MaxTokens           int
	TopKLocal           int
	TopKCloud           int
}

// DefaultTopK returns the retrieval breadth for the active backend: wide
// for large-context cloud models, narrow for constrained local ones.
func (c ProviderConfig) DefaultTopK() int {
	switch c.Kind {
	case ProviderCloud:
		if c.TopKCloud > 0 {
			return c.TopKCloud
		}
		return 6
	default:
		if c.TopKLocal > 0 {
			return c.TopKLocal
		}
		return 3
	}
}
