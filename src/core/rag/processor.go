package rag

import (
	"context"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"docvault/src/core/chunker"
	"docvault/src/infrastructure/log"
)

const (
	defaultEmbedBatchSize = 16
	defaultEmbedWorkers   = 4
)

// ProcessResult reports what one processing pass produced.
type ProcessResult struct {
	ChunksCreated int           `json:"chunks_created"`
	ChunksDeleted int           `json:"chunks_deleted"`
	Dimensions    int           `json:"dimensions"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Processor turns one document's extracted text into embedded chunks and
// persists them. Reprocessing replaces the prior chunk set with a
// delete-then-insert; old and new chunks are never interleaved. Concurrent
// reprocessing of the same document is the caller's responsibility to
// serialize.
type Processor struct {
	embedder  EmbeddingProvider
	store     VectorStore
	records   ChunkRepository // optional metadata mirror, may be nil
	chunkOpts chunker.Options
	batchSize int
	workers   int
}

// ProcessorOption customizes a Processor.
type ProcessorOption func(*Processor)

// WithEmbedBatchSize sets how many chunks go into one embedding request.
func WithEmbedBatchSize(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithEmbedWorkers bounds the embedding worker pool. Size it to respect the
// active provider's rate limits.
func WithEmbedWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewProcessor wires a Processor. records may be nil to skip the relational
// metadata mirror.
func NewProcessor(embedder EmbeddingProvider, store VectorStore, records ChunkRepository, chunkOpts chunker.Options, opts ...ProcessorOption) *Processor {
	p := &Processor{
		embedder:  embedder,
		store:     store,
		records:   records,
		chunkOpts: chunkOpts,
		batchSize: defaultEmbedBatchSize,
		workers:   defaultEmbedWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process chunks text, embeds every chunk, and replaces the document's
// stored chunk set. The delete and insert are not atomic: a crash in
// between leaves the document with zero chunks, which reads as "needs
// reprocessing", never as a mixed old/new state.
func (p *Processor) Process(ctx context.Context, documentID, organizationID, text string) (*ProcessResult, error) {
	started := time.Now()

	if documentID == "" {
		return nil, E(KindInvalidInput, StageChunking, "document id is required")
	}
	if organizationID == "" {
		return nil, E(KindInvalidInput, StageChunking, "organization id is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, E(KindInvalidInput, StageChunking, "document text is empty")
	}

	pieces := chunker.Split(text, p.chunkOpts)
	if len(pieces) == 0 {
		return nil, E(KindInvalidInput, StageChunking, "document text produced no chunks")
	}

	vectors, err := p.embedChunks(ctx, pieces)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chunks := make([]Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = Chunk{
			DocumentID:     documentID,
			OrganizationID: organizationID,
			Index:          i,
			Content:        content,
			WordCount:      len(strings.Fields(content)),
			CharCount:      len(content),
			CreatedAt:      now,
			Embedding:      vectors[i],
		}
	}

	deleted, err := p.store.DeleteChunks(ctx, documentID)
	if err != nil {
		return nil, WrapErr(KindInternal, StageStorage, "failed to delete prior chunks", err)
	}

	// Chunk object IDs are deterministic, so a retried batch insert is
	// idempotent.
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(300*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.store.InsertChunks(ctx, chunks); err != nil {
			if IsKind(err, KindInvalidInput) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, WrapErr(KindInternal, StageStorage, "failed to insert chunks", err)
	}

	if p.records != nil {
		if err := p.records.ReplaceForDocument(ctx, documentID, chunks); err != nil {
			// The vector store is authoritative; a failed metadata mirror is
			// logged, not fatal.
			log.Error(err, "failed to mirror chunk metadata", "document_id", documentID)
		}
	}

	log.Info("processed document",
		"document_id", documentID,
		"organization_id", organizationID,
		"chunks", len(chunks),
		"elapsed", time.Since(started).String())

	return &ProcessResult{
		ChunksCreated: len(chunks),
		ChunksDeleted: deleted,
		Dimensions:    p.embedder.Dimensions(),
		Elapsed:       time.Since(started),
	}, nil
}

// DeleteChunks removes every stored chunk for a document and returns the
// number removed from the vector store.
func (p *Processor) DeleteChunks(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, E(KindInvalidInput, StageStorage, "document id is required")
	}

	count, err := p.store.DeleteChunks(ctx, documentID)
	if err != nil {
		return 0, WrapErr(KindInternal, StageStorage, "failed to delete chunks", err)
	}

	if p.records != nil {
		if err := p.records.DeleteByDocumentID(ctx, documentID); err != nil {
			log.Error(err, "failed to delete chunk metadata", "document_id", documentID)
		}
	}

	return count, nil
}

// embedChunks embeds pieces in batches, requesting independent batches
// concurrently up to the worker limit. Output order matches input order.
func (p *Processor) embedChunks(ctx context.Context, pieces []string) ([][]float32, error) {
	vectors := make([][]float32, len(pieces))
	dims := p.embedder.Dimensions()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for start := 0; start < len(pieces); start += p.batchSize {
		start := start
		end := start + p.batchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		g.Go(func() error {
			batch, err := p.embedder.GenerateEmbeddings(ctx, pieces[start:end])
			if err != nil {
				return WrapErr(KindUpstream, StageEmbedding, "failed to embed chunk batch", err)
			}
			if len(batch) != end-start {
				return Ef(KindInvalidResponse, StageEmbedding,
					"embedding batch returned %d vectors for %d inputs", len(batch), end-start)
			}
			for i, vec := range batch {
				if len(vec) != dims {
					return Ef(KindInvalidResponse, StageEmbedding,
						"embedding length %d does not match declared dimensionality %d", len(vec), dims)
				}
				vectors[start+i] = vec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
