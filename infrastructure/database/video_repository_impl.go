package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
)

// Aggregates are computed with correlated subqueries so the two counts do not multiply each other
const videoStatsSelect = `videos.*,
	(SELECT COUNT(*) FROM tracks WHERE tracks.video_id = videos.id) AS tracking_count,
	(SELECT COUNT(*) FROM frames WHERE frames.video_id = videos.id) AS frame_count`

type VideoRepositoryImpl struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) repositories.VideoRepository {
	return &VideoRepositoryImpl{db: db}
}

func (r *VideoRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepositoryImpl) GetByTitle(ctx context.Context, title string) (*models.Video, error) {
	var video models.Video
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepositoryImpl) GetStatsByID(ctx context.Context, id uuid.UUID) (*models.VideoStats, error) {
	var videos []models.VideoStats
	err := r.db.WithContext(ctx).
		Table("videos").
		Select(videoStatsSelect).
		Where("videos.id = ?", id).
		Limit(1).
		Scan(&videos).Error
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &videos[0], nil
}

// likeEscaper makes LIKE wildcards in a search term match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *VideoRepositoryImpl) ListWithStats(ctx context.Context, search string, offset, limit int) ([]models.VideoStats, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Table("videos")
		if search != "" {
			query = query.Where(`LOWER(videos.title) LIKE LOWER(?) ESCAPE '\'`, "%"+likeEscaper.Replace(search)+"%")
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base().
		Select(videoStatsSelect).
		Order("videos.created_at DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var videos []models.VideoStats
	err := query.Scan(&videos).Error
	return videos, total, err
}

func (r *VideoRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var video models.Video
		if err := tx.Where("id = ?", id).First(&video).Error; err != nil {
			return err
		}

		frameIDs := tx.Model(&models.Frame{}).Select("id").Where("video_id = ?", id)
		trackIDs := tx.Model(&models.Track{}).Select("id").Where("video_id = ?", id)

		// Dependency order: detections, intersections, frames, tracks, video
		if err := tx.Where("frame_id IN (?) OR tracking_id IN (?)", frameIDs, trackIDs).Delete(&models.Detection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.Intersection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.Frame{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.Track{}).Error; err != nil {
			return err
		}
		return tx.Delete(&video).Error
	})
}
