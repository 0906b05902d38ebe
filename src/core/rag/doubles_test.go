package rag_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"docvault/src/core/rag"
)

// stubEmbedder returns fixed-size vectors whose first element encodes the
// input order, so tests can check vector-to-chunk pairing.
type stubEmbedder struct {
	dims    int
	err     error
	batches [][]string
	mu      sync.Mutex
}

func newStubEmbedder(dims int) *stubEmbedder {
	return &stubEmbedder{dims: dims}
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *stubEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	s.batches = append(s.batches, texts)
	s.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, s.dims)
		v[0] = float32(len(text))
		vectors[i] = v
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int                        { return s.dims }
func (s *stubEmbedder) ModelName() string                      { return "stub-embedder" }
func (s *stubEmbedder) CheckAvailability(context.Context) bool { return true }

// stubGenerator records prompts and counts calls.
type stubGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, opts rag.GenerateOptions) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Classify(ctx context.Context, text string) (rag.Classification, error) {
	return rag.Classification{Category: rag.DefaultCategory, Confidence: 1, Tags: []string{}}, nil
}

func (s *stubGenerator) Summarize(ctx context.Context, text string) (rag.Summary, error) {
	return rag.Summary{Summary: text, KeyPoints: []string{}}, nil
}

func (s *stubGenerator) ModelName() string                      { return "stub-generator" }
func (s *stubGenerator) CheckAvailability(context.Context) bool { return true }

// memoryStore is an in-memory VectorStore. Query returns canned results or,
// when none are set, the stored chunks for the requested scope in insertion
// order.
type memoryStore struct {
	mu       sync.Mutex
	chunks   map[string][]rag.Chunk
	results  []rag.SearchResult
	queryErr error

	lastVector   []float32
	lastOrgID    string
	lastDocID    string
	lastTopK     int
	queryCount   int
	deleteCounts map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		chunks:       make(map[string][]rag.Chunk),
		deleteCounts: make(map[string]int),
	}
}

func (m *memoryStore) InsertChunks(ctx context.Context, chunks []rag.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		if c.OrganizationID == "" {
			return fmt.Errorf("chunk without organization id")
		}
		m.chunks[c.DocumentID] = append(m.chunks[c.DocumentID], c)
	}
	return nil
}

func (m *memoryStore) DeleteChunks(ctx context.Context, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.chunks[documentID])
	delete(m.chunks, documentID)
	m.deleteCounts[documentID]++
	return n, nil
}

func (m *memoryStore) Query(ctx context.Context, vector []float32, organizationID, documentID string, topK int) ([]rag.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCount++
	m.lastVector = vector
	m.lastOrgID = organizationID
	m.lastDocID = documentID
	m.lastTopK = topK

	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if m.results != nil {
		return m.results, nil
	}

	var out []rag.SearchResult
	for docID, chunks := range m.chunks {
		if documentID != "" && docID != documentID {
			continue
		}
		for _, c := range chunks {
			if c.OrganizationID != organizationID {
				continue
			}
			out = append(out, rag.SearchResult{
				DocumentID: c.DocumentID,
				Index:      c.Index,
				Content:    c.Content,
				Score:      1,
			})
		}
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func joinWords(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(parts, " ")
}
