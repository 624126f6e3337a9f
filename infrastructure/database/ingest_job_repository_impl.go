package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type IngestJobRepositoryImpl struct {
	db *gorm.DB
}

func NewIngestJobRepository(db *gorm.DB) repositories.IngestJobRepository {
	return &IngestJobRepositoryImpl{db: db}
}

func (r *IngestJobRepositoryImpl) Create(ctx context.Context, job *models.IngestJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *IngestJobRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.IngestJob, error) {
	var job models.IngestJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *IngestJobRepositoryImpl) List(ctx context.Context, offset, limit int) ([]models.IngestJob, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.IngestJob{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.IngestJob
	err := query.Find(&jobs).Error
	return jobs, total, err
}

// GetPendingJobs returns the oldest pending jobs first
func (r *IngestJobRepositoryImpl) GetPendingJobs(ctx context.Context, limit int) ([]models.IngestJob, error) {
	var jobs []models.IngestJob
	err := r.db.WithContext(ctx).
		Where("status = ?", models.IngestJobStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *IngestJobRepositoryImpl) FindLiveByHash(ctx context.Context, hash string) (*models.IngestJob, error) {
	var jobs []models.IngestJob
	err := r.db.WithContext(ctx).
		Where("descriptor_hash = ?", hash).
		Where("status IN ?", []models.IngestJobStatus{
			models.IngestJobStatusPending,
			models.IngestJobStatusRunning,
			models.IngestJobStatusCompleted,
		}).
		Order("created_at DESC").
		Limit(1).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

func (r *IngestJobRepositoryImpl) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.IngestJob{}).
		Where("id = ? AND status = ?", id, models.IngestJobStatusPending).
		Updates(map[string]interface{}{
			"status":     models.IngestJobStatusRunning,
			"started_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *IngestJobRepositoryImpl) UpdateProgress(ctx context.Context, id uuid.UUID, total, processed, skipped int) error {
	return r.db.WithContext(ctx).
		Model(&models.IngestJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_items":     total,
			"processed_items": processed,
			"skipped_items":   skipped,
			"updated_at":      time.Now(),
		}).Error
}

func (r *IngestJobRepositoryImpl) Complete(ctx context.Context, id uuid.UUID, videoID uuid.UUID, result string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.IngestJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.IngestJobStatusCompleted,
			"video_id":     videoID,
			"result":       result,
			"last_error":   "",
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

func (r *IngestJobRepositoryImpl) Fail(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.IngestJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.IngestJobStatusFailed,
			"last_error":   message,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

func (r *IngestJobRepositoryImpl) CountByStatus(ctx context.Context) (map[models.IngestJobStatus]int64, error) {
	var rows []struct {
		Status models.IngestJobStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.IngestJob{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.IngestJobStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *IngestJobRepositoryImpl) CountStaleRunning(ctx context.Context, startedBefore time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IngestJob{}).
		Where("status = ? AND started_at < ?", models.IngestJobStatusRunning, startedBefore).
		Count(&count).Error
	return count, err
}
