package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type DetectionRepositoryImpl struct {
	db *gorm.DB
}

func NewDetectionRepository(db *gorm.DB) repositories.DetectionRepository {
	return &DetectionRepositoryImpl{db: db}
}

func (r *DetectionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Detection, error) {
	var detection models.Detection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&detection).Error
	if err != nil {
		return nil, err
	}
	return &detection, nil
}

// ListByFrame returns the detections of a frame joined with the external track id
func (r *DetectionRepositoryImpl) ListByFrame(ctx context.Context, frameID uuid.UUID) ([]models.FrameDetection, error) {
	var detections []models.FrameDetection
	err := r.db.WithContext(ctx).
		Table("detections").
		Select(`detections.tracking_id, tracks.track_id, detections.class_id, detections.bbox,
			detections.confidence, detections.world_speed, detections.latitude, detections.longitude`).
		Joins("JOIN tracks ON tracks.id = detections.tracking_id").
		Where("detections.frame_id = ?", frameID).
		Order("tracks.track_id").
		Scan(&detections).Error
	return detections, err
}

func (r *DetectionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Detection{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
