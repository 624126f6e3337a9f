package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

type VideoService interface {
	ListVideos(ctx context.Context, search string, page, limit int) ([]models.VideoStats, int64, error)
	GetVideo(ctx context.Context, id uuid.UUID) (*models.VideoStats, error)
	// TrackPositions averages each track's detections with frame timestamp <= cutoff
	TrackPositions(ctx context.Context, videoID uuid.UUID, cutoff float64) ([]models.TrackPosition, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}
