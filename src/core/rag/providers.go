package rag

import "context"

// EmbeddingProvider turns text into fixed-length vectors. Implementations
// must return typed errors: KindInvalidInput for empty text, KindUpstream
// for network/auth/rate-limit failures, KindInvalidResponse for empty or
// malformed vectors. Callers never receive a silently-wrong vector.
type EmbeddingProvider interface {
	// GenerateEmbedding embeds a single text.
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// GenerateEmbeddings embeds a batch, returning exactly one vector per
	// input in input order. Backends without native batching process
	// sequentially; a count mismatch is KindInvalidResponse, not a partial
	// success.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions is the declared length of every vector this provider emits.
	Dimensions() int
	// ModelName identifies the embedding model.
	ModelName() string
	// CheckAvailability reports whether the backend is reachable.
	CheckAvailability(ctx context.Context) bool
}

// GenerateOptions tune a single generation call. Model overrides the
// configured default when non-empty.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

// Classification is the structured result of classifying a text.
// Confidence is clamped to [0,1] and Tags is capped by the parser.
type Classification struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Tags       []string `json:"tags"`
}

// Summary is the structured result of summarizing a text.
type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

// GenerationProvider turns prompts into text. Classify and Summarize parse
// JSON out of a free-form response best-effort and degrade to safe defaults
// instead of propagating parse failures.
type GenerationProvider interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Classify(ctx context.Context, text string) (Classification, error)
	Summarize(ctx context.Context, text string) (Summary, error)
	ModelName() string
	CheckAvailability(ctx context.Context) bool
}

// VectorStore is the gateway to the external vector index. Every query
// carries organizationID as a hard filter; documentID, when non-empty, is
// ANDed in. Results come back best score first and callers must not
// re-sort them.
type VectorStore interface {
	// InsertChunks bulk-inserts embedded chunks.
	InsertChunks(ctx context.Context, chunks []Chunk) error
	// DeleteChunks removes all chunks for a document and returns how many
	// were removed.
	DeleteChunks(ctx context.Context, documentID string) (int, error)
	// Query runs a filtered similarity search. It rejects an empty
	// organizationID, an empty vector, or a vector whose length differs
	// from the active provider's dimensionality, before touching the index.
	Query(ctx context.Context, vector []float32, organizationID, documentID string, topK int) ([]SearchResult, error)
}

// ChunkRepository mirrors chunk metadata (no vectors) in relational
// storage for listing and audit. It is optional: a nil repository skips
// the mirror.
type ChunkRepository interface {
	ReplaceForDocument(ctx context.Context, documentID string, chunks []Chunk) error
	DeleteByDocumentID(ctx context.Context, documentID string) error
}
