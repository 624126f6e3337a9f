package repositories

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

// TrackFilter narrows track listings; nil fields are ignored
type TrackFilter struct {
	VideoID *uuid.UUID
	TrackID *int
}

type TrackRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Track, error)
	List(ctx context.Context, filter TrackFilter, offset, limit int) ([]models.Track, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// PositionsAt averages the detections of every track of a video whose frame timestamp is <= cutoff
	PositionsAt(ctx context.Context, videoID uuid.UUID, cutoff float64) ([]models.TrackPosition, error)

	// Trajectory streams the detections of a track ordered by frame timestamp.
	// Every range over the returned sequence runs the query again.
	Trajectory(ctx context.Context, trackingID uuid.UUID) iter.Seq2[models.TrajectoryPoint, error]
}
