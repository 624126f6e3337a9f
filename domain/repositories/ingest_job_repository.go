package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

type IngestJobRepository interface {
	Create(ctx context.Context, job *models.IngestJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.IngestJob, error)
	List(ctx context.Context, offset, limit int) ([]models.IngestJob, int64, error)
	GetPendingJobs(ctx context.Context, limit int) ([]models.IngestJob, error)
	// FindLiveByHash returns a pending, running or completed job for the descriptor hash
	FindLiveByHash(ctx context.Context, hash string) (*models.IngestJob, error)
	// ClaimPending moves a pending job to running; false means another worker got it first
	ClaimPending(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, total, processed, skipped int) error
	Complete(ctx context.Context, id uuid.UUID, videoID uuid.UUID, result string) error
	Fail(ctx context.Context, id uuid.UUID, message string) error

	CountByStatus(ctx context.Context) (map[models.IngestJobStatus]int64, error)
	// CountStaleRunning counts running jobs started before the given time
	CountStaleRunning(ctx context.Context, startedBefore time.Time) (int64, error)
}
