package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

// JobTrigger wakes whatever executes pending jobs
type JobTrigger interface {
	TriggerIngest()
}

type IngestJobService interface {
	// Enqueue records a pending job and wakes the worker
	Enqueue(ctx context.Context, jsonPath, videoPath string, source models.IngestSource) (*models.IngestJob, error)
	// EnqueueUnique is Enqueue unless a pending, running or completed job has the same descriptor hash
	EnqueueUnique(ctx context.Context, jsonPath, videoPath string, source models.IngestSource) (*models.IngestJob, bool, error)
	// RunNow records a running job and executes it synchronously
	RunNow(ctx context.Context, jsonPath, videoPath string, source models.IngestSource, progress ProgressFunc) (*models.IngestJob, *dto.IngestResult, error)

	// ClaimPending marks up to limit pending jobs as running and returns the ones this caller owns
	ClaimPending(ctx context.Context, limit int) ([]models.IngestJob, error)
	// Execute runs a claimed job to completion and records its outcome
	Execute(ctx context.Context, job *models.IngestJob, progress ProgressFunc) (*dto.IngestResult, error)

	GetJob(ctx context.Context, id uuid.UUID) (*models.IngestJob, error)
	ListJobs(ctx context.Context, page, limit int) ([]models.IngestJob, int64, error)
}
