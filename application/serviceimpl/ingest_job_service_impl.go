package serviceimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

type IngestJobServiceImpl struct {
	fs            afero.Fs
	jobRepo       repositories.IngestJobRepository
	ingestService services.IngestService
	trigger       services.JobTrigger
}

// NewIngestJobService wires the job queue; trigger may be nil when nothing consumes pending jobs
func NewIngestJobService(
	fs afero.Fs,
	jobRepo repositories.IngestJobRepository,
	ingestService services.IngestService,
	trigger services.JobTrigger,
) services.IngestJobService {
	return &IngestJobServiceImpl{
		fs:            fs,
		jobRepo:       jobRepo,
		ingestService: ingestService,
		trigger:       trigger,
	}
}

// newJob checks the inputs and fills title and descriptor hash
func (s *IngestJobServiceImpl) newJob(jsonPath, videoPath string, source models.IngestSource) (*models.IngestJob, error) {
	if err := checkInput(s.fs, jsonPath, "JSON"); err != nil {
		return nil, err
	}
	if err := checkInput(s.fs, videoPath, "video"); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	return &models.IngestJob{
		Source:         source,
		JSONPath:       jsonPath,
		VideoPath:      videoPath,
		Title:          filepath.Base(videoPath),
		DescriptorHash: descriptorHash(data),
		Status:         models.IngestJobStatusPending,
	}, nil
}

func (s *IngestJobServiceImpl) Enqueue(ctx context.Context, jsonPath, videoPath string, source models.IngestSource) (*models.IngestJob, error) {
	job, err := s.newJob(jsonPath, videoPath, source)
	if err != nil {
		return nil, err
	}
	return job, s.enqueue(ctx, job)
}

func (s *IngestJobServiceImpl) EnqueueUnique(ctx context.Context, jsonPath, videoPath string, source models.IngestSource) (*models.IngestJob, bool, error) {
	job, err := s.newJob(jsonPath, videoPath, source)
	if err != nil {
		return nil, false, err
	}

	live, err := s.jobRepo.FindLiveByHash(ctx, job.DescriptorHash)
	if err != nil {
		return nil, false, err
	}
	if live != nil {
		return live, false, nil
	}

	if err := s.enqueue(ctx, job); err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (s *IngestJobServiceImpl) enqueue(ctx context.Context, job *models.IngestJob) error {
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create ingest job: %w", err)
	}

	logger.Ingest("job_enqueued", "Ingest job queued", map[string]interface{}{
		"job_id": job.ID.String(),
		"title":  job.Title,
		"source": job.Source,
	})

	if s.trigger != nil {
		s.trigger.TriggerIngest()
	}
	return nil
}

func (s *IngestJobServiceImpl) RunNow(ctx context.Context, jsonPath, videoPath string, source models.IngestSource, progress services.ProgressFunc) (*models.IngestJob, *dto.IngestResult, error) {
	job, err := s.newJob(jsonPath, videoPath, source)
	if err != nil {
		return nil, nil, err
	}

	// Created as running so that a worker polling the same database never picks it up
	now := time.Now()
	job.Status = models.IngestJobStatusRunning
	job.StartedAt = &now
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, nil, fmt.Errorf("failed to create ingest job: %w", err)
	}

	result, err := s.Execute(ctx, job, progress)
	return job, result, err
}

func (s *IngestJobServiceImpl) ClaimPending(ctx context.Context, limit int) ([]models.IngestJob, error) {
	pending, err := s.jobRepo.GetPendingJobs(ctx, limit)
	if err != nil {
		return nil, err
	}

	claimed := make([]models.IngestJob, 0, len(pending))
	for _, job := range pending {
		ok, err := s.jobRepo.ClaimPending(ctx, job.ID)
		if err != nil {
			return claimed, err
		}
		if !ok {
			continue
		}
		now := time.Now()
		job.Status = models.IngestJobStatusRunning
		job.StartedAt = &now
		claimed = append(claimed, job)
	}
	return claimed, nil
}

func (s *IngestJobServiceImpl) Execute(ctx context.Context, job *models.IngestJob, progress services.ProgressFunc) (*dto.IngestResult, error) {
	// Progress rows are written off the ingestion goroutine: the ingestion transaction
	// may hold the only connection (SQLite), so a synchronous write there would deadlock.
	updates := make(chan services.IngestProgress, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range updates {
			if err := s.jobRepo.UpdateProgress(context.Background(), job.ID, p.Total, p.Processed, p.Skipped); err != nil {
				logger.WorkerError("job_progress_failed", "Failed to persist job progress", err, map[string]interface{}{
					"job_id": job.ID.String(),
				})
			}
		}
	}()

	var latest services.IngestProgress
	result, err := s.ingestService.Ingest(ctx, services.IngestRequest{
		JSONPath:  job.JSONPath,
		VideoPath: job.VideoPath,
		Source:    job.Source,
	}, func(p services.IngestProgress) {
		latest = p
		// Latest value wins; a stale pending update is replaced
		select {
		case updates <- p:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- p:
			default:
			}
		}
		if progress != nil {
			progress(p)
		}
	})

	close(updates)
	wg.Wait()

	job.TotalItems = latest.Total
	job.ProcessedItems = latest.Processed
	job.SkippedItems = latest.Skipped

	if err != nil {
		if failErr := s.jobRepo.Fail(context.Background(), job.ID, err.Error()); failErr != nil {
			logger.WorkerError("job_fail_update_failed", "Failed to mark job as failed", failErr, map[string]interface{}{
				"job_id": job.ID.String(),
			})
		}
		job.Status = models.IngestJobStatusFailed
		job.LastError = err.Error()
		return nil, err
	}

	resultJSON, mErr := json.Marshal(result)
	if mErr != nil {
		return nil, fmt.Errorf("failed to encode ingest result: %w", mErr)
	}

	if err := s.jobRepo.UpdateProgress(ctx, job.ID, latest.Total, latest.Processed, result.Skipped()); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Complete(ctx, job.ID, result.VideoID, string(resultJSON)); err != nil {
		return nil, fmt.Errorf("failed to complete ingest job: %w", err)
	}

	now := time.Now()
	videoID := result.VideoID
	job.Status = models.IngestJobStatusCompleted
	job.VideoID = &videoID
	job.Result = string(resultJSON)
	job.SkippedItems = result.Skipped()
	job.CompletedAt = &now

	return result, nil
}

func (s *IngestJobServiceImpl) GetJob(ctx context.Context, id uuid.UUID) (*models.IngestJob, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (s *IngestJobServiceImpl) ListJobs(ctx context.Context, page, limit int) ([]models.IngestJob, int64, error) {
	offset, limit := paginate(page, limit)
	return s.jobRepo.List(ctx, offset, limit)
}
