package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type IntersectionRepositoryImpl struct {
	db *gorm.DB
}

func NewIntersectionRepository(db *gorm.DB) repositories.IntersectionRepository {
	return &IntersectionRepositoryImpl{db: db}
}

// views selects intersections together with the external ids of both tracks
func (r *IntersectionRepositoryImpl) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("intersections").
		Select("intersections.*, t1.track_id AS track_id1, t2.track_id AS track_id2").
		Joins("JOIN tracks t1 ON t1.id = intersections.track1_id").
		Joins("JOIN tracks t2 ON t2.id = intersections.track2_id")
}

func (r *IntersectionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.IntersectionView, error) {
	var views []models.IntersectionView
	err := r.views(ctx).Where("intersections.id = ?", id).Limit(1).Scan(&views).Error
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &views[0], nil
}

func (r *IntersectionRepositoryImpl) List(ctx context.Context, filter repositories.IntersectionFilter, offset, limit int) ([]models.IntersectionView, int64, error) {
	where := func(query *gorm.DB) *gorm.DB {
		if filter.VideoID != nil {
			query = query.Where("intersections.video_id = ?", *filter.VideoID)
		}
		if filter.Track1ID != nil {
			query = query.Where("intersections.track1_id = ?", *filter.Track1ID)
		}
		if filter.Track2ID != nil {
			query = query.Where("intersections.track2_id = ?", *filter.Track2ID)
		}
		return query
	}

	var total int64
	if err := where(r.db.WithContext(ctx).Model(&models.Intersection{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := where(r.views(ctx)).
		Order("intersections.timestamp ASC, intersections.frame_index ASC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var views []models.IntersectionView
	err := query.Scan(&views).Error
	return views, total, err
}

func (r *IntersectionRepositoryImpl) TimeRange(ctx context.Context, videoID uuid.UUID, start, end float64) ([]models.IntersectionView, error) {
	var views []models.IntersectionView
	err := r.views(ctx).
		Where("intersections.video_id = ?", videoID).
		Where("intersections.timestamp >= ? AND intersections.timestamp <= ?", start, end).
		Order("intersections.timestamp ASC, intersections.frame_index ASC").
		Scan(&views).Error
	return views, err
}

func (r *IntersectionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Intersection{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
