package job

import (
	"context"
	"encoding/json"
	"fmt"

	"docvault/src/core/rag"
	"docvault/src/infrastructure/log"
)

const TaskTypeProcessDocument = "process_document"

// ProcessDocumentPayload carries one document's extracted text to the
// worker.
type ProcessDocumentPayload struct {
	DocumentID     string `json:"document_id"`
	OrganizationID string `json:"organization_id"`
	Text           string `json:"text"`
}

// ProcessTask executes document processing jobs against the RAG processor.
type ProcessTask struct {
	processor *rag.Processor
}

func NewProcessTask(processor *rag.Processor) *ProcessTask {
	return &ProcessTask{processor: processor}
}

func (t *ProcessTask) HandleProcessDocument(ctx context.Context, payload json.RawMessage) error {
	var p ProcessDocumentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to unmarshal process payload: %w", err)
	}

	result, err := t.processor.Process(ctx, p.DocumentID, p.OrganizationID, p.Text)
	if err != nil {
		return fmt.Errorf("failed to process document %s: %w", p.DocumentID, err)
	}

	log.Info("processed document job",
		"document_id", p.DocumentID,
		"chunks", result.ChunksCreated,
		"dimensions", result.Dimensions)
	return nil
}
