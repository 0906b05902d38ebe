// Package weaviate is the vector store gateway. It owns the chunk class
// schema, bulk writes, and filtered similarity queries against a Weaviate
// index.
package weaviate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"docvault/src/core/rag"
)

const (
	// DefaultClassName is the Weaviate class holding document chunks.
	DefaultClassName = "DocumentChunk"

	// overfetchFactor widens the underlying approximate search beyond topK
	// before truncation, trading latency for recall.
	overfetchFactor = 10
)

// chunkNamespace seeds deterministic chunk object IDs so a retried batch
// insert overwrites rather than duplicates.
var chunkNamespace = uuid.MustParse("8d6a1e36-52fc-45f0-9c1e-6a3b1d9c7b42")

// ChunkIndex implements rag.VectorStore over a Weaviate class.
type ChunkIndex struct {
	client     *weaviate.Client
	className  string
	dimensions int
}

// NewChunkIndex wires a gateway. dimensions is the authoritative vector
// length from ProviderConfig; every query vector is validated against it.
func NewChunkIndex(client *weaviate.Client, className string, dimensions int) *ChunkIndex {
	if className == "" {
		className = DefaultClassName
	}
	return &ChunkIndex{
		client:     client,
		className:  className,
		dimensions: dimensions,
	}
}

// EnsureSchema creates the chunk class when it does not exist yet.
func (g *ChunkIndex) EnsureSchema(ctx context.Context) error {
	exists, err := g.classExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %w", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      g.className,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}, Description: "The chunk text"},
			{Name: "documentId", DataType: []string{"text"}, Description: "Owning document"},
			{Name: "organizationId", DataType: []string{"text"}, Description: "Owning organization"},
			{Name: "chunkIndex", DataType: []string{"int"}, Description: "Position within the document"},
			{Name: "wordCount", DataType: []string{"int"}},
			{Name: "charCount", DataType: []string{"int"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
	}

	if err := g.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create Weaviate class: %w", err)
	}
	return nil
}

func (g *ChunkIndex) classExists(ctx context.Context) (bool, error) {
	schema, err := g.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == g.className {
			return true, nil
		}
	}
	return false, nil
}

// InsertChunks bulk-inserts chunks with deterministic object IDs derived
// from documentID and position.
func (g *ChunkIndex) InsertChunks(ctx context.Context, chunks []rag.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	objs := make([]*models.Object, len(chunks))
	for i, chunk := range chunks {
		if chunk.OrganizationID == "" {
			return rag.E(rag.KindInvalidInput, rag.StageStorage, "chunk is missing organization id")
		}
		id := uuid.NewSHA1(chunkNamespace, []byte(chunk.DocumentID+"#"+strconv.Itoa(chunk.Index)))
		objs[i] = &models.Object{
			Class: g.className,
			ID:    strfmt.UUID(id.String()),
			Properties: map[string]interface{}{
				"content":        chunk.Content,
				"documentId":     chunk.DocumentID,
				"organizationId": chunk.OrganizationID,
				"chunkIndex":     chunk.Index,
				"wordCount":      chunk.WordCount,
				"charCount":      chunk.CharCount,
				"createdAt":      chunk.CreatedAt.Format(time.RFC3339),
			},
			Vector: chunk.Embedding,
		}
	}

	resp, err := g.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx)
	if err != nil {
		return rag.WrapErr(rag.KindInternal, rag.StageStorage, "failed to batch insert chunks", err)
	}
	if len(resp) == 0 {
		return rag.E(rag.KindInternal, rag.StageStorage, "batch insert returned no results")
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return rag.Ef(rag.KindInternal, rag.StageStorage,
				"batch insert rejected object: %s", r.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// DeleteChunks removes every chunk of a document and returns the count
// removed.
func (g *ChunkIndex) DeleteChunks(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, rag.E(rag.KindInvalidInput, rag.StageStorage, "document id is required")
	}

	where := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)

	resp, err := g.client.Batch().ObjectsBatchDeleter().
		WithClassName(g.className).
		WithWhere(where).
		WithOutput("minimal").
		Do(ctx)
	if err != nil {
		return 0, rag.WrapErr(rag.KindInternal, rag.StageStorage, "failed to batch delete chunks", err)
	}

	if resp == nil || resp.Results == nil {
		return 0, nil
	}
	return int(resp.Results.Successful), nil
}

// Query runs an organization-scoped nearVector search, optionally narrowed
// to one document, and returns results best score first.
func (g *ChunkIndex) Query(ctx context.Context, vector []float32, organizationID, documentID string, topK int) ([]rag.SearchResult, error) {
	if organizationID == "" {
		return nil, rag.E(rag.KindInvalidInput, rag.StageRetrieval, "organization id is required")
	}
	if len(vector) == 0 {
		return nil, rag.E(rag.KindInvalidInput, rag.StageRetrieval, "query vector is empty")
	}
	// The load-bearing guard: vectors from a different embedding model have
	// a different geometry and must never reach the index.
	if len(vector) != g.dimensions {
		return nil, rag.Ef(rag.KindInvalidInput, rag.StageRetrieval,
			"query vector has length %d, index expects %d", len(vector), g.dimensions)
	}
	if topK <= 0 {
		topK = 1
	}

	where := g.scopeFilter(organizationID, documentID)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "chunkIndex"},
		{Name: "_additional { id distance certainty }"},
	}

	nearVector := g.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	result, err := g.client.GraphQL().Get().
		WithClassName(g.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithWhere(where).
		WithLimit(topK * overfetchFactor).
		Do(ctx)
	if err != nil {
		return nil, rag.WrapErr(rag.KindInternal, rag.StageRetrieval, "failed to query vectors", err)
	}
	if len(result.Errors) > 0 {
		return nil, rag.Ef(rag.KindInternal, rag.StageRetrieval,
			"vector query returned errors: %s", result.Errors[0].Message)
	}

	results := hitsFromResponse(result, g.className)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// scopeFilter always includes the organization term; the document term is
// ANDed in when present.
func (g *ChunkIndex) scopeFilter(organizationID, documentID string) *filters.WhereBuilder {
	org := filters.Where().
		WithPath([]string{"organizationId"}).
		WithOperator(filters.Equal).
		WithValueText(organizationID)

	if documentID == "" {
		return org
	}

	doc := filters.Where().
		WithPath([]string{"documentId"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)

	return filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{org, doc})
}

// hitsFromResponse maps the raw GraphQL payload into typed results,
// preserving the index's best-first ordering.
func hitsFromResponse(result *models.GraphQLResponse, className string) []rag.SearchResult {
	var results []rag.SearchResult

	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return results
	}
	objects, ok := data[className].([]interface{})
	if !ok {
		return results
	}

	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		hit := rag.SearchResult{}
		if content, ok := objMap["content"].(string); ok {
			hit.Content = content
		}
		if docID, ok := objMap["documentId"].(string); ok {
			hit.DocumentID = docID
		}
		if idx, ok := objMap["chunkIndex"].(float64); ok {
			hit.Index = int(idx)
		}

		if additional, ok := objMap["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				hit.Score = certainty
			} else if distance, ok := additional["distance"].(float64); ok {
				// Not every distance metric reports certainty; fall back to
				// an inverted distance so higher still means more relevant.
				hit.Score = 1 - distance
			}
		}

		results = append(results, hit)
	}

	return results
}
