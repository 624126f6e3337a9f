package database

import (
	"context"
	"iter"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

type TrackRepositoryImpl struct {
	db *gorm.DB
}

func NewTrackRepository(db *gorm.DB) repositories.TrackRepository {
	return &TrackRepositoryImpl{db: db}
}

func (r *TrackRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	var track models.Track
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&track).Error
	if err != nil {
		return nil, err
	}
	return &track, nil
}

func (r *TrackRepositoryImpl) List(ctx context.Context, filter repositories.TrackFilter, offset, limit int) ([]models.Track, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Track{})
	if filter.VideoID != nil {
		query = query.Where("video_id = ?", *filter.VideoID)
	}
	if filter.TrackID != nil {
		query = query.Where("track_id = ?", *filter.TrackID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("video_id, track_id").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var tracks []models.Track
	err := query.Find(&tracks).Error
	return tracks, total, err
}

func (r *TrackRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var track models.Track
		if err := tx.Where("id = ?", id).First(&track).Error; err != nil {
			return err
		}
		if err := tx.Where("tracking_id = ?", id).Delete(&models.Detection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("track1_id = ? OR track2_id = ?", id, id).Delete(&models.Intersection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&track).Error
	})
}

// PositionsAt keeps the historical semantics: the "last" values are AVG over every
// detection up to the cutoff, not the most recent detection.
func (r *TrackRepositoryImpl) PositionsAt(ctx context.Context, videoID uuid.UUID, cutoff float64) ([]models.TrackPosition, error) {
	var positions []models.TrackPosition
	err := r.db.WithContext(ctx).
		Table("detections").
		Select(`detections.tracking_id AS tracking_id,
			tracks.track_id AS track_id,
			AVG(detections.latitude) AS last_latitude,
			AVG(detections.longitude) AS last_longitude,
			AVG(detections.world_speed) AS last_speed`).
		Joins("JOIN frames ON frames.id = detections.frame_id").
		Joins("JOIN tracks ON tracks.id = detections.tracking_id").
		Where("frames.video_id = ? AND frames.timestamp <= ?", videoID, cutoff).
		Group("detections.tracking_id, tracks.track_id").
		Order("tracks.track_id").
		Scan(&positions).Error
	return positions, err
}

func (r *TrackRepositoryImpl) Trajectory(ctx context.Context, trackingID uuid.UUID) iter.Seq2[models.TrajectoryPoint, error] {
	return func(yield func(models.TrajectoryPoint, error) bool) {
		rows, err := r.db.WithContext(ctx).
			Table("detections").
			Select("frames.timestamp, detections.latitude, detections.longitude, detections.world_speed").
			Joins("JOIN frames ON frames.id = detections.frame_id").
			Where("detections.tracking_id = ?", trackingID).
			Order("frames.timestamp ASC, frames.frame_index ASC, detections.id ASC").
			Rows()
		if err != nil {
			yield(models.TrajectoryPoint{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var point models.TrajectoryPoint
			if err := rows.Scan(&point.Timestamp, &point.Latitude, &point.Longitude, &point.WorldSpeed); err != nil {
				yield(models.TrajectoryPoint{}, err)
				return
			}
			if !yield(point, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.TrajectoryPoint{}, err)
		}
	}
}
