package serviceimpl

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

type VideoServiceImpl struct {
	videoRepo repositories.VideoRepository
	trackRepo repositories.TrackRepository
	storage   services.AssetStorage
}

func NewVideoService(
	videoRepo repositories.VideoRepository,
	trackRepo repositories.TrackRepository,
	storage services.AssetStorage,
) services.VideoService {
	return &VideoServiceImpl{
		videoRepo: videoRepo,
		trackRepo: trackRepo,
		storage:   storage,
	}
}

func (s *VideoServiceImpl) ListVideos(ctx context.Context, search string, page, limit int) ([]models.VideoStats, int64, error) {
	offset, limit := paginate(page, limit)
	return s.videoRepo.ListWithStats(ctx, search, offset, limit)
}

func (s *VideoServiceImpl) GetVideo(ctx context.Context, id uuid.UUID) (*models.VideoStats, error) {
	video, err := s.videoRepo.GetStatsByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return video, nil
}

func (s *VideoServiceImpl) TrackPositions(ctx context.Context, videoID uuid.UUID, cutoff float64) ([]models.TrackPosition, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		return nil, notFound(err)
	}

	positions, err := s.trackRepo.PositionsAt(ctx, videoID, cutoff)
	if err != nil {
		logger.QueryError("track_positions_failed", "Failed to aggregate track positions", err, map[string]interface{}{
			"video_id": videoID.String(),
			"cutoff":   cutoff,
		})
		return nil, err
	}

	logger.Query("track_positions", "Track positions aggregated", map[string]interface{}{
		"video_id": videoID.String(),
		"cutoff":   cutoff,
		"tracks":   len(positions),
	})
	return positions, nil
}

func (s *VideoServiceImpl) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}

	if err := s.videoRepo.Delete(ctx, id); err != nil {
		return notFound(err)
	}

	// The rows are gone; a leftover file is only logged
	if err := s.storage.Remove(ctx, video.FilePath); err != nil {
		logger.StorageError("video_asset_orphaned", "Video deleted but its asset could not be removed", err, map[string]interface{}{
			"video_id": id.String(),
			"file":     video.FilePath,
		})
	}

	logger.Info(logger.CategoryDB, "video_deleted", "Video and its dependents deleted", map[string]interface{}{
		"video_id": id.String(),
		"title":    video.Title,
	})
	return nil
}
