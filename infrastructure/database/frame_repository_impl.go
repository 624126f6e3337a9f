package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type FrameRepositoryImpl struct {
	db *gorm.DB
}

func NewFrameRepository(db *gorm.DB) repositories.FrameRepository {
	return &FrameRepositoryImpl{db: db}
}

func (r *FrameRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Frame, error) {
	var frame models.Frame
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&frame).Error
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

func (r *FrameRepositoryImpl) List(ctx context.Context, filter repositories.FrameFilter, offset, limit int) ([]models.Frame, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Frame{})
	if filter.VideoID != nil {
		query = query.Where("video_id = ?", *filter.VideoID)
	}
	if filter.FrameIndex != nil {
		query = query.Where("frame_index = ?", *filter.FrameIndex)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("video_id, frame_index").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var frames []models.Frame
	err := query.Find(&frames).Error
	return frames, total, err
}

func (r *FrameRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var frame models.Frame
		if err := tx.Where("id = ?", id).First(&frame).Error; err != nil {
			return err
		}
		if err := tx.Where("frame_id = ?", id).Delete(&models.Detection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&frame).Error
	})
}
