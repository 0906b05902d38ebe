package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docvault/src/core/rag"
)

// PostgresJobRepository persists jobs in the shared PostgreSQL instance.
// The jobs table is migrated externally alongside the chunk tables.
type PostgresJobRepository struct {
	db *gorm.DB
}

func NewPostgresJobRepository(db *gorm.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

// Create inserts a new job row in the pending state and returns it with
// the database-assigned ID.
func (r *PostgresJobRepository) Create(ctx context.Context, taskType string, payload json.RawMessage) (*Job, error) {
	job := &Job{
		TaskType: taskType,
		Payload:  payload,
		Status:   JobStatusPending,
	}

	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, rag.WrapErr(rag.KindInternal, rag.StageStorage, "failed to create job", err)
	}

	return job, nil
}

// Get fetches a job by ID. A missing row returns (nil, nil) so callers can
// distinguish absence from a storage failure.
func (r *PostgresJobRepository) Get(ctx context.Context, id int) (*Job, error) {
	var job Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, rag.WrapErr(rag.KindInternal, rag.StageStorage, fmt.Sprintf("failed to load job %d", id), err)
	}

	return &job, nil
}

// UpdateStatus transitions a job and records the failure message, if any.
func (r *PostgresJobRepository) UpdateStatus(ctx context.Context, id int, status JobStatus, errMsg *string) error {
	result := r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": status,
		"error":  errMsg,
	})
	if result.Error != nil {
		return rag.WrapErr(rag.KindInternal, rag.StageStorage, fmt.Sprintf("failed to update job %d", id), result.Error)
	}
	if result.RowsAffected == 0 {
		return rag.Ef(rag.KindNotFound, rag.StageStorage, "job %d not found", id)
	}

	return nil
}
