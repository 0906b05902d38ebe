// Package chunkctrl mirrors chunk metadata in PostgreSQL. Vectors live in
// the vector index; these rows exist for listing, counting and audit.
package chunkctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"docvault/src/core/rag"
)

type ChunkRecord struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	DocumentID     string    `gorm:"not null;index" json:"document_id"`
	OrganizationID string    `gorm:"not null;index" json:"organization_id"`
	ChunkIndex     int       `gorm:"not null;column:chunk_index" json:"chunk_index"`
	WordCount      int       `gorm:"not null" json:"word_count"`
	CharCount      int       `gorm:"not null" json:"char_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ChunkService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewChunkService(db *gorm.DB) (*ChunkService, error) {
	// Initialize snowflake node
	node, err := snowflake.NewNode(2) // Node number 2 for chunk records
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &ChunkService{
		db:        db,
		snowflake: node,
	}, nil
}

// ReplaceForDocument swaps the document's metadata rows for the new chunk
// set in one transaction, matching the vector store's delete-then-insert.
func (s *ChunkService) ReplaceForDocument(ctx context.Context, documentID string, chunks []rag.Chunk) error {
	records := make([]ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = ChunkRecord{
			ID:             s.snowflake.Generate().Int64(),
			DocumentID:     chunk.DocumentID,
			OrganizationID: chunk.OrganizationID,
			ChunkIndex:     chunk.Index,
			WordCount:      chunk.WordCount,
			CharCount:      chunk.CharCount,
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&ChunkRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete chunk records: %v", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to create chunk records: %v", err)
		}
		return nil
	})
}

func (s *ChunkService) DeleteByDocumentID(ctx context.Context, documentID string) error {
	result := s.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&ChunkRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete chunk records: %v", result.Error)
	}
	return nil
}

func (s *ChunkService) GetByDocumentID(ctx context.Context, documentID string) ([]ChunkRecord, error) {
	var records []ChunkRecord
	result := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index asc").
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get chunk records: %v", result.Error)
	}
	return records, nil
}

func (s *ChunkService) CountByOrganizationID(ctx context.Context, organizationID string) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&ChunkRecord{}).
		Where("organization_id = ?", organizationID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count chunk records: %v", result.Error)
	}
	return count, nil
}
